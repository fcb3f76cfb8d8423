package smartforge

import (
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/catalog"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/observability"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/opcua"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/app/config"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// EngineConfig sets the tick interval, ledger capacity, worker count and seed.
	EngineConfig = config.EngineConfig
	// Policy controls per-subscriber queue length and backpressure.
	Policy = ports.Policy
	// CatalogConfig selects the machine catalog source.
	CatalogConfig = catalog.Config
	// OPCUAConfig holds connection + status tag details.
	OPCUAConfig = opcua.Config
	// OPCUANodeConfig binds a status tag to a machine.
	OPCUANodeConfig = opcua.NodeConfig
	// HTTPConfig configures the dashboard API listener.
	HTTPConfig = config.HTTPConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures structured logging.
	LogConfig = observability.LogConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ParseConfig decodes, defaults and validates an in-memory YAML document.
func ParseConfig(raw []byte) (*Config, error) {
	return config.Parse(raw)
}
