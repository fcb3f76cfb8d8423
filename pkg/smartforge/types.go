package smartforge

import (
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// Machine is one catalog entry together with its live sample.
type Machine = domain.Machine

type (
	Parameter        = domain.Parameter
	Range            = domain.Range
	Envelope         = domain.Envelope
	LiveSample       = domain.LiveSample
	OperationalState = domain.OperationalState
	Severity         = domain.Severity
)

// AnomalyRecord is one threshold breach.
type AnomalyRecord = domain.AnomalyRecord

// Frame is what every subscriber receives once per tick: the fleet, the
// ledger, and the records that were new in that tick.
type Frame = domain.Frame

const (
	MouldingPressure  = domain.MouldingPressure
	SandTemperature   = domain.SandTemperature
	CycleTimeVariance = domain.CycleTimeVariance

	StateRunning = domain.StateRunning
	StateIdle    = domain.StateIdle
	StateDown    = domain.StateDown

	SeverityWarning  = domain.SeverityWarning
	SeverityCritical = domain.SeverityCritical
)

// Subscriber receives frames in tick order from its own bounded queue.
type Subscriber = ports.Subscriber

// CatalogSource loads the machine catalog at startup (YAML, Postgres, custom).
type CatalogSource = ports.CatalogSource

// StateSource pushes operator state changes (OPC UA tags, MES hooks, etc.).
type StateSource = ports.StateSource

// StateApplier is handed to a StateSource on Start.
type StateApplier = ports.StateApplier

// NoiseSource supplies uniform draws in [0, 1) to the mutator.
type NoiseSource = ports.NoiseSource

// Observability emits metrics and structured logs.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field

// ParseOperationalState accepts running/idle/down and their aliases.
func ParseOperationalState(s string) (OperationalState, error) {
	return domain.ParseOperationalState(s)
}
