package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/catalog"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/observability"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/opcua"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

type Config struct {
	Engine   EngineConfig            `yaml:"engine"`
	Delivery ports.Policy            `yaml:"delivery"`
	Catalog  catalog.Config          `yaml:"catalog"`
	OPCUA    opcua.Config            `yaml:"opcua"`
	HTTP     HTTPConfig              `yaml:"http"`
	Metrics  MetricsConfig           `yaml:"metrics"`
	Log      observability.LogConfig `yaml:"log"`
}

type EngineConfig struct {
	Interval  time.Duration `yaml:"interval"`
	LedgerCap int           `yaml:"ledger_cap"`
	Workers   int           `yaml:"workers"`
	// Seed fixes the noise sequence; zero seeds from the clock.
	Seed uint64 `yaml:"seed"`
}

type HTTPConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes a YAML document, fills defaults and validates the result.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) ApplyDefaults() {
	if c.Engine.Interval == 0 {
		c.Engine.Interval = 3 * time.Second
	}
	if c.Engine.LedgerCap == 0 {
		c.Engine.LedgerCap = 50
	}
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 1
	}
	if c.Delivery.MaxQueueLen == 0 {
		c.Delivery.MaxQueueLen = 64
	}
	if c.Delivery.MaxBatchSize == 0 {
		c.Delivery.MaxBatchSize = 16
	}
	if c.Delivery.IdleSleep == 0 {
		c.Delivery.IdleSleep = 5 * time.Millisecond
	}
	if c.Delivery.BlockTimeout == 0 {
		c.Delivery.BlockTimeout = time.Second
	}
	if c.Delivery.OnQueueFull == "" {
		c.Delivery.OnQueueFull = "block"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}

	c.Catalog.ApplyDefaults()
	c.Log.ApplyDefaults()
	if c.OPCUA.Enabled() {
		c.OPCUA.ApplyDefaults()
	}
}

func (c *Config) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog config: %w", err)
	}
	return nil
}

// ValidateSettings checks everything except the catalog source, for callers
// that supply machines through their own CatalogSource.
func (c *Config) ValidateSettings() error {
	if c.Engine.Interval <= 0 {
		return fmt.Errorf("engine.interval must be positive")
	}
	if c.Engine.LedgerCap <= 0 {
		return fmt.Errorf("engine.ledger_cap must be positive")
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive")
	}
	switch c.Delivery.OnQueueFull {
	case "block", "drop":
	default:
		return fmt.Errorf("delivery.on_queue_full: unknown policy %q", c.Delivery.OnQueueFull)
	}
	if c.Delivery.MaxQueueLen < 0 {
		return fmt.Errorf("delivery.queue_len must not be negative")
	}
	if c.OPCUA.Enabled() {
		if err := c.OPCUA.Validate(); err != nil {
			return fmt.Errorf("opcua config: %w", err)
		}
	}
	return c.Log.Validate()
}
