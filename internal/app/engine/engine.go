package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/anomaly"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/sim"
)

// Engine owns the fleet state and drives the simulate → evaluate → record →
// publish cycle. Only Tick writes live samples and the ledger; readers always
// get copies of the last committed tick.
type Engine struct {
	interval   time.Duration
	workers    int
	mutator    *sim.Mutator
	classifier *anomaly.Classifier
	ledger     *anomaly.Ledger
	obs        ports.Observability
	publisher  Publisher
	now        func() time.Time

	tickMu sync.Mutex

	mu       sync.RWMutex
	machines []domain.Machine
	index    map[string]int
	seq      uint64
	lastTick time.Time
}

type result struct {
	sample  domain.LiveSample
	records []domain.AnomalyRecord
	err     error
	updated bool
}

// New validates the catalog and builds an engine. An empty catalog, a
// missing id or a duplicate id is a configuration error.
func New(machines []domain.Machine, opts ...Option) (*Engine, error) {
	if len(machines) == 0 {
		return nil, ErrEmptyCatalog
	}

	s := settings{
		interval:  DefaultInterval,
		workers:   1,
		ledgerCap: anomaly.DefaultCap,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.noise == nil {
		s.noise = sim.NewSeededSource(uint64(time.Now().UnixNano()))
	}
	if s.obs == nil {
		s.obs = nopObs{}
	}
	if s.classifier == nil {
		s.classifier = anomaly.NewClassifier()
	}

	fleet := make([]domain.Machine, len(machines))
	index := make(map[string]int, len(machines))
	for i, m := range machines {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: %w", i, ErrMissingMachineID)
		}
		if _, dup := index[m.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMachine, m.ID)
		}
		if !m.State.Valid() {
			return nil, fmt.Errorf("machine %s: %w %q", m.ID, ErrInvalidState, m.State)
		}
		index[m.ID] = i
		fleet[i] = m.Clone()
	}

	return &Engine{
		interval:   s.interval,
		workers:    s.workers,
		mutator:    sim.NewMutator(s.noise, s.obs),
		classifier: s.classifier,
		ledger:     anomaly.NewLedger(s.ledgerCap),
		obs:        s.obs,
		publisher:  s.publisher,
		now:        s.now,
		machines:   fleet,
		index:      index,
	}, nil
}

// Run ticks every interval until ctx is cancelled. A tick that has started
// always commits and publishes before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.obs.LogInfo("scheduler_started",
		ports.Field{Key: "machines", Value: len(e.machines)},
		ports.Field{Key: "interval", Value: e.interval.String()})

	for {
		select {
		case <-ctx.Done():
			e.obs.LogInfo("scheduler_stopped", ports.Field{Key: "ticks", Value: e.Seq()})
			return nil
		case <-ticker.C:
			e.Tick(e.now())
		}
	}
}

// Tick runs one full cycle: mutate and classify every running machine, merge
// the whole fleet's batch into the ledger once, then publish. Ticks are
// serialized.
func (e *Engine) Tick(now time.Time) *domain.Frame {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()
	start := time.Now()

	e.mu.RLock()
	work := make([]domain.Machine, len(e.machines))
	for i, m := range e.machines {
		work[i] = m.Clone()
	}
	e.mu.RUnlock()

	results := make([]result, len(work))
	e.evaluateAll(work, results, now)

	var (
		batch   []domain.AnomalyRecord
		skipped []string
		running int
	)
	for i, r := range results {
		if r.err != nil {
			skipped = append(skipped, work[i].ID)
			e.obs.RecordSkip(work[i].ID, r.err)
			continue
		}
		if !r.updated {
			continue
		}
		running++
		batch = append(batch, r.records...)
	}

	e.mu.Lock()
	for i, r := range results {
		if r.updated && r.err == nil {
			e.machines[i].Live = r.sample
		}
	}
	e.ledger.Merge(batch)
	e.seq++
	e.lastTick = now
	frame := e.frameLocked()
	e.mu.Unlock()

	frame.Fresh = batch
	frame.Skipped = skipped

	e.record(frame, running, time.Since(start))
	if e.publisher != nil {
		e.publisher.Publish(frame)
	}
	return frame
}

func (e *Engine) evaluateAll(work []domain.Machine, results []result, now time.Time) {
	if e.workers <= 1 || len(work) < 2 {
		for i := range work {
			results[i] = e.evaluate(work[i], now)
		}
		return
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers && w < len(work); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.evaluate(work[i], now)
			}
		}()
	}
	for i := range work {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (e *Engine) evaluate(m domain.Machine, now time.Time) (r result) {
	if m.State != domain.StateRunning {
		return result{}
	}
	defer func() {
		if p := recover(); p != nil {
			r = result{err: fmt.Errorf("%w: %v", ErrMachinePanic, p)}
		}
	}()

	sample, err := e.mutator.Mutate(m.Envelope, m.Live)
	if err != nil {
		return result{err: err}
	}
	records, err := e.classifier.Classify(m, sample, now)
	if err != nil {
		return result{err: err}
	}
	return result{sample: sample, records: records, updated: true}
}

func (e *Engine) record(f *domain.Frame, running int, took time.Duration) {
	var warnings, criticals float64
	for _, r := range f.Fresh {
		if r.Severity == domain.SeverityCritical {
			criticals++
		} else {
			warnings++
		}
	}
	e.obs.IncCounter("smartforge_ticks_total", 1)
	e.obs.IncCounter("smartforge_anomalies_warning_total", warnings)
	e.obs.IncCounter("smartforge_anomalies_critical_total", criticals)
	e.obs.SetGauge("smartforge_ledger_size", float64(len(f.Anomalies)))
	e.obs.SetGauge("smartforge_machines_running", float64(running))
	e.obs.ObserveLatency("smartforge_tick_duration_seconds", took.Seconds())
}

func (e *Engine) frameLocked() *domain.Frame {
	machines := make([]domain.Machine, len(e.machines))
	for i, m := range e.machines {
		machines[i] = m.Clone()
	}
	return &domain.Frame{
		Seq:       e.seq,
		Timestamp: e.lastTick,
		Machines:  machines,
		Anomalies: e.ledger.Snapshot(),
	}
}
