package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

type PromObs struct {
	log      *zap.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the engine metrics on reg (the default registerer
// when nil) and logs through logger (a no-op logger when nil).
func NewPromObs(reg prometheus.Registerer, logger *zap.Logger) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartforge_ticks_total",
		Help: "Scheduler ticks committed and published.",
	})
	warnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartforge_anomalies_warning_total",
		Help: "Warning anomaly records produced.",
	})
	criticals := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartforge_anomalies_critical_total",
		Help: "Critical anomaly records produced.",
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartforge_machines_skipped_total",
		Help: "Per-machine evaluations skipped because of bad data.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartforge_frames_dropped_total",
		Help: "Frames lost due to subscriber backpressure policies.",
	})
	fallback := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "smartforge_noise_fallback_total",
		Help: "Parameters that fell back to a fixed value after a noise source failure.",
	})
	ledgerGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "smartforge_ledger_size",
		Help: "Records currently held by the anomaly ledger.",
	})
	running := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "smartforge_machines_running",
		Help: "Machines in Running state at the last tick.",
	})
	subscribers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "smartforge_subscribers",
		Help: "Frame subscribers currently attached.",
	})
	streamClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "smartforge_stream_clients",
		Help: "Dashboard WebSocket clients currently connected.",
	})
	tickLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "smartforge_tick_duration_seconds",
		Help:    "Time spent mutating, classifying and committing one tick.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	reg.MustRegister(ticks, warnings, criticals, skipped, dropped, fallback,
		ledgerGauge, running, subscribers, streamClients, tickLatency)

	return &PromObs{
		log: logger,
		counters: map[string]prometheus.Counter{
			"smartforge_ticks_total":              ticks,
			"smartforge_anomalies_warning_total":  warnings,
			"smartforge_anomalies_critical_total": criticals,
			"smartforge_machines_skipped_total":   skipped,
			"smartforge_frames_dropped_total":     dropped,
			"smartforge_noise_fallback_total":     fallback,
		},
		gauges: map[string]prometheus.Gauge{
			"smartforge_ledger_size":      ledgerGauge,
			"smartforge_machines_running": running,
			"smartforge_subscribers":      subscribers,
			"smartforge_stream_clients":   streamClients,
		},
		histos: map[string]prometheus.Observer{
			"smartforge_tick_duration_seconds": tickLatency,
		},
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.log.Info(msg, zapFields(fields)...)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	p.log.Warn(msg, zapFields(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.log.Error(msg, append(zapFields(fields), zap.Error(err), zap.Bool("critical", true))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) RecordSkip(machineID string, err error) {
	p.IncCounter("smartforge_machines_skipped_total", 1)
	p.log.Warn("machine_skipped", zap.String("machine_id", machineID), zap.Error(err))
}

// Logger exposes the underlying zap logger for adapters that log directly.
func (p *PromObs) Logger() *zap.Logger {
	return p.log
}

func zapFields(fields []ports.Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
