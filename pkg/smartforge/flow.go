package smartforge

import (
	"context"
	"fmt"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/catalog"
)

// Flow assembles a Runtime in two halves. The inbound half decides what the
// scheduler ticks over: which machines exist, where randomness comes from and
// who may flip a machine between Running, Idle and Down. The outbound half
// decides who receives the Frame committed at the end of every tick.
//
//	flow, err := smartforge.Conf("config.yaml")
//	...
//	rt, err := flow.
//		StreamIN(smartforge.StreamInState(plc)).
//		StreamOUT(smartforge.StreamOutAlerts("pager", smartforge.SeverityCritical, page))
type Flow struct {
	cfg  *Config
	opts []RuntimeOption
}

// FlowOption adjusts a Flow right after its configuration is known.
type FlowOption func(*Flow)

// StreamInOption shapes the inputs of a tick.
type StreamInOption func(*Flow)

// StreamOutOption attaches a consumer of committed frames.
type StreamOutOption func(*Flow)

// AlertHandler receives one fresh anomaly record. Records of a tick arrive in
// ledger order, which is catalog order then parameter order.
type AlertHandler func(AnomalyRecord) error

// Conf reads the YAML config at path and starts a Flow from it.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig starts a Flow from a Config built in code. The Config is
// kept by reference until StreamOUT builds the runtime.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options adds RuntimeOption values that have no StreamIn/StreamOut form,
// such as WithLogger.
func (f *Flow) Options(opts ...RuntimeOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// StreamIN applies inbound options. Later options win for single-valued
// inputs (catalog, noise); state sources accumulate.
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT applies outbound options and builds the Runtime. The catalog is
// loaded here, so catalog errors surface from this call, not from Run.
// Subscribers are attached on Start and receive frames from the first tick on.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*Runtime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewRuntime(f.cfg, f.opts...)
}

// Run builds the Runtime and ticks until ctx is cancelled. A tick already in
// progress is committed and delivered before Run returns.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

func WithFlowOptions(opts ...RuntimeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInCatalog replaces the configured catalog source.
func StreamInCatalog(src CatalogSource) StreamInOption {
	if src == nil {
		return nil
	}
	return flowOption(WithCatalog(src))
}

// StreamInMachines ticks over the given machines instead of the configured
// catalog. Entries without a state start Running.
func StreamInMachines(machines ...Machine) StreamInOption {
	if len(machines) == 0 {
		return nil
	}
	return flowOption(WithCatalog(catalog.NewStatic(machines)))
}

// StreamInNoise sets the random source behind the mutator. A fixed source
// makes every Running machine land on the same point of its band each tick.
func StreamInNoise(src NoiseSource) StreamInOption {
	if src == nil {
		return nil
	}
	return flowOption(WithNoiseSource(src))
}

// StreamInState adds an operator state feed. Its changes apply from the next
// tick; a machine frozen by Idle or Down keeps its last reading.
func StreamInState(src StateSource) StreamInOption {
	if src == nil {
		return nil
	}
	return flowOption(WithStateSource(src))
}

func StreamInObservability(obs Observability) StreamInOption {
	if obs == nil {
		return nil
	}
	return flowOption(WithObservability(obs))
}

// StreamOutSubscriber attaches sub. It gets every committed frame in Seq
// order through its own bounded queue, so a slow sub never delays a tick.
func StreamOutSubscriber(sub Subscriber) StreamOutOption {
	if sub == nil {
		return nil
	}
	return flowOption(WithSubscriber(sub))
}

// StreamOutCallback calls fn with each committed frame.
func StreamOutCallback(name string, fn FrameHandler) StreamOutOption {
	return flowOption(WithSubscriber(NewCallbackSubscriber(name, fn)))
}

// StreamOutAlerts calls fn for every fresh record of a tick whose severity is
// at least floor. Frames without such records are skipped. The first handler
// error stops the remaining records of that frame.
func StreamOutAlerts(name string, floor Severity, fn AlertHandler) StreamOutOption {
	if name == "" {
		name = "alerts"
	}
	var handler FrameHandler
	if fn != nil {
		handler = func(f *Frame) error {
			for _, rec := range f.Fresh {
				if severityRank(rec.Severity) < severityRank(floor) {
					continue
				}
				if err := fn(rec); err != nil {
					return fmt.Errorf("alert %s on %s: %w", rec.ID, rec.MachineID, err)
				}
			}
			return nil
		}
	}
	return flowOption(WithSubscriber(NewCallbackSubscriber(name, handler)))
}

func StreamOutObservability(obs Observability) StreamOutOption {
	if obs == nil {
		return nil
	}
	return flowOption(WithObservability(obs))
}

func severityRank(s Severity) int {
	if s == SeverityCritical {
		return 2
	}
	if s == SeverityWarning {
		return 1
	}
	return 0
}

func flowOption(opt RuntimeOption) func(*Flow) {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opt)
		}
	}
}

func (f *Flow) appendOptions(opts ...RuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
