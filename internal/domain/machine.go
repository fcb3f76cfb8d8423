package domain

import (
	"fmt"
	"math"
	"strings"
)

// Parameter identifies one monitored process value on a machine.
type Parameter string

const (
	MouldingPressure  Parameter = "moulding_pressure"
	SandTemperature   Parameter = "sand_temperature"
	CycleTimeVariance Parameter = "cycle_time_variance"
)

// Parameters lists the monitored parameters in evaluation order.
var Parameters = []Parameter{MouldingPressure, SandTemperature, CycleTimeVariance}

// Label is the display name used on dashboards and anomaly records.
func (p Parameter) Label() string {
	switch p {
	case MouldingPressure:
		return "Moulding Pressure"
	case SandTemperature:
		return "Sand Temperature"
	case CycleTimeVariance:
		return "Cycle Time Variance"
	default:
		return string(p)
	}
}

// OperationalState is set by operators outside the engine; the engine only reads it.
type OperationalState string

const (
	StateRunning OperationalState = "Running"
	StateIdle    OperationalState = "Idle"
	StateDown    OperationalState = "Down"
)

// Valid reports whether s is one of the canonical states.
func (s OperationalState) Valid() bool {
	switch s {
	case StateRunning, StateIdle, StateDown:
		return true
	}
	return false
}

// ParseOperationalState accepts the canonical names case-insensitively.
func ParseOperationalState(s string) (OperationalState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "running", "run":
		return StateRunning, nil
	case "idle":
		return StateIdle, nil
	case "down", "stopped", "fault":
		return StateDown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownState, s)
	}
}

// Range is the operating envelope of a single parameter.
type Range struct {
	Min         float64 `json:"min" yaml:"min"`
	Ideal       float64 `json:"ideal" yaml:"ideal"`
	Max         float64 `json:"max" yaml:"max"`
	CriticalMax float64 `json:"critical_max" yaml:"critical_max"`
}

// IsZero reports whether the range is the all-zero envelope used for
// auxiliary equipment that is not monitored.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0 && r.CriticalMax == 0
}

func (r Range) Validate() error {
	for _, v := range []float64{r.Min, r.Ideal, r.Max, r.CriticalMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite bound", ErrMalformedEnvelope)
		}
	}
	if r.IsZero() {
		return nil
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %v above max %v", ErrMalformedEnvelope, r.Min, r.Max)
	}
	if r.Max > r.CriticalMax {
		return fmt.Errorf("%w: max %v above critical_max %v", ErrMalformedEnvelope, r.Max, r.CriticalMax)
	}
	return nil
}

// Envelope holds the operating range of every monitored parameter.
type Envelope map[Parameter]Range

// Range returns the validated range for p.
func (e Envelope) Range(p Parameter) (Range, error) {
	r, ok := e[p]
	if !ok {
		return Range{}, fmt.Errorf("%w: %s", ErrMissingEnvelope, p)
	}
	if err := r.Validate(); err != nil {
		return Range{}, fmt.Errorf("%s: %w", p, err)
	}
	return r, nil
}

// LiveSample is the current value of each monitored parameter.
type LiveSample map[Parameter]float64

func (s LiveSample) Clone() LiveSample {
	if s == nil {
		return nil
	}
	out := make(LiveSample, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Machine is one entry of the fleet. Identity and envelope never change after
// the catalog is loaded; State is written externally and Live by the engine.
type Machine struct {
	ID       string           `json:"id" yaml:"id"`
	Name     string           `json:"name" yaml:"name"`
	Type     string           `json:"type" yaml:"type"`
	Location string           `json:"location" yaml:"location"`
	Envelope Envelope         `json:"envelope" yaml:"envelope"`
	State    OperationalState `json:"state" yaml:"state"`
	Live     LiveSample       `json:"live" yaml:"live,omitempty"`
}

// Clone returns a deep copy so readers never share maps with engine state.
func (m Machine) Clone() Machine {
	out := m
	if m.Envelope != nil {
		out.Envelope = make(Envelope, len(m.Envelope))
		for k, v := range m.Envelope {
			out.Envelope[k] = v
		}
	}
	out.Live = m.Live.Clone()
	return out
}
