package smartforge

import (
	base "github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/pkg/smartforge"
)

// Re-exported errors for convenience.
var (
	ErrChannelSubscriberClosed = base.ErrChannelSubscriberClosed
)

// Type aliases so consumers can import the module root directly.
type (
	Config           = base.Config
	EngineConfig     = base.EngineConfig
	Policy           = base.Policy
	CatalogConfig    = base.CatalogConfig
	OPCUAConfig      = base.OPCUAConfig
	OPCUANodeConfig  = base.OPCUANodeConfig
	HTTPConfig       = base.HTTPConfig
	MetricsConfig    = base.MetricsConfig
	LogConfig        = base.LogConfig
	Flow             = base.Flow
	FlowOption       = base.FlowOption
	StreamInOption   = base.StreamInOption
	StreamOutOption  = base.StreamOutOption
	Runtime          = base.Runtime
	RuntimeOption    = base.RuntimeOption
	Machine          = base.Machine
	Parameter        = base.Parameter
	Range            = base.Range
	Envelope         = base.Envelope
	LiveSample       = base.LiveSample
	OperationalState = base.OperationalState
	Severity         = base.Severity
	AnomalyRecord    = base.AnomalyRecord
	Frame            = base.Frame
	FrameHandler     = base.FrameHandler
	AlertHandler     = base.AlertHandler
	Subscriber       = base.Subscriber
	CatalogSource    = base.CatalogSource
	StateSource      = base.StateSource
	StateApplier     = base.StateApplier
	NoiseSource      = base.NoiseSource
	Observability    = base.Observability
	Field            = base.Field
)

const (
	MouldingPressure  = base.MouldingPressure
	SandTemperature   = base.SandTemperature
	CycleTimeVariance = base.CycleTimeVariance

	StateRunning = base.StateRunning
	StateIdle    = base.StateIdle
	StateDown    = base.StateDown

	SeverityWarning  = base.SeverityWarning
	SeverityCritical = base.SeverityCritical
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ParseConfig(raw []byte) (*Config, error) {
	return base.ParseConfig(raw)
}

func ParseOperationalState(s string) (OperationalState, error) {
	return base.ParseOperationalState(s)
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInCatalog(src CatalogSource) StreamInOption {
	return base.StreamInCatalog(src)
}

func StreamInMachines(machines ...Machine) StreamInOption {
	return base.StreamInMachines(machines...)
}

func StreamInNoise(src NoiseSource) StreamInOption {
	return base.StreamInNoise(src)
}

func StreamInState(src StateSource) StreamInOption {
	return base.StreamInState(src)
}

func StreamInObservability(obs Observability) StreamInOption {
	return base.StreamInObservability(obs)
}

func StreamOutSubscriber(sub Subscriber) StreamOutOption {
	return base.StreamOutSubscriber(sub)
}

func StreamOutCallback(name string, fn FrameHandler) StreamOutOption {
	return base.StreamOutCallback(name, fn)
}

func StreamOutAlerts(name string, floor Severity, fn AlertHandler) StreamOutOption {
	return base.StreamOutAlerts(name, floor, fn)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

// Runtime and options.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	return base.NewRuntime(cfg, opts...)
}

func WithCatalog(src CatalogSource) RuntimeOption {
	return base.WithCatalog(src)
}

func WithNoiseSource(src NoiseSource) RuntimeOption {
	return base.WithNoiseSource(src)
}

func WithStateSource(src StateSource) RuntimeOption {
	return base.WithStateSource(src)
}

func WithSubscriber(sub Subscriber) RuntimeOption {
	return base.WithSubscriber(sub)
}

func WithObservability(obs Observability) RuntimeOption {
	return base.WithObservability(obs)
}

// Subscriber adapters.
func NewCallbackSubscriber(name string, fn FrameHandler) Subscriber {
	return base.NewCallbackSubscriber(name, fn)
}

func NewChannelSubscriber(name string, buffer int) (Subscriber, <-chan *Frame, func()) {
	return base.NewChannelSubscriber(name, buffer)
}
