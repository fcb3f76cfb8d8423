package smartforge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/catalog"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/observability"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/opcua"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/adapters/stream"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/app/engine"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/app/pipeline"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/sim"
)

const catalogLoadTimeout = 10 * time.Second

// Runtime wires catalog → engine → dispatcher → subscribers together with the
// dashboard API, state sources and metrics, and exposes lifecycle hooks for
// embedding SmartForge inside any Go service.
type Runtime struct {
	cfg        Config
	obs        ports.Observability
	logger     *zap.Logger
	registry   *prometheus.Registry
	engine     *engine.Engine
	dispatcher *pipeline.Dispatcher
	hub        *stream.Hub
	api        *stream.API
	db         *sql.DB

	stateSources []StateSource
	subscribers  []Subscriber

	mu           sync.Mutex
	started      bool
	activeStates []StateSource
	apiSrv       *http.Server
	apiAddr      string
	metricsSrv   *http.Server
	metricsAddr  string
	runCancel    context.CancelFunc
	runDone      chan struct{}

	shutdownOnce sync.Once
	shutdownErr  error
}

// NewRuntime loads the catalog and builds the default adapters (configured
// catalog source, crypto or seeded noise, Prometheus observability, OPC UA
// state source when configured). RuntimeOption values override any of them.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	c := *cfg
	c.ApplyDefaults()
	validate := c.Validate
	if overrides.catalog != nil {
		validate = c.ValidateSettings
	}
	if err := validate(); err != nil {
		return nil, err
	}

	logger := overrides.logger
	if logger == nil {
		var err error
		logger, err = observability.NewLogger(c.Log)
		if err != nil {
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := overrides.observability
	if obs == nil {
		obs = observability.NewPromObs(registry, logger)
	}

	var (
		src = overrides.catalog
		db  *sql.DB
		err error
	)
	if src == nil {
		src, db, err = catalog.Open(c.Catalog)
		if err != nil {
			return nil, err
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), catalogLoadTimeout)
	machines, err := src.Load(ctx)
	cancel()
	if err != nil {
		closeDB(db)
		obs.LogCritical("catalog_load_failed", err, ports.Field{Key: "source", Value: src.Name()})
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}

	noise := overrides.noise
	if noise == nil {
		if c.Engine.Seed != 0 {
			noise = sim.NewSeededSource(c.Engine.Seed)
		} else {
			noise = sim.CryptoSource{}
		}
	}

	dispatcher := pipeline.NewDispatcher(c.Delivery, obs)
	eng, err := engine.New(machines,
		engine.WithInterval(c.Engine.Interval),
		engine.WithWorkers(c.Engine.Workers),
		engine.WithLedgerCap(c.Engine.LedgerCap),
		engine.WithNoiseSource(noise),
		engine.WithObservability(obs),
		engine.WithPublisher(dispatcher),
	)
	if err != nil {
		closeDB(db)
		return nil, err
	}

	states := append([]StateSource(nil), overrides.stateSources...)
	if c.OPCUA.Enabled() {
		s, err := opcua.NewStateSource(c.OPCUA, obs)
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("opcua state source: %w", err)
		}
		states = append(states, s)
	}

	hub := stream.NewHub(context.Background(), obs)
	obs.LogInfo("catalog_loaded",
		ports.Field{Key: "source", Value: src.Name()},
		ports.Field{Key: "machines", Value: len(machines)})

	return &Runtime{
		cfg:          c,
		obs:          obs,
		logger:       logger,
		registry:     registry,
		engine:       eng,
		dispatcher:   dispatcher,
		hub:          hub,
		api:          stream.NewAPI(eng, hub, obs),
		db:           db,
		stateSources: states,
		subscribers:  overrides.subscribers,
	}, nil
}

// Start attaches subscribers, starts state sources and listeners, and begins
// ticking. It returns immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return fmt.Errorf("runtime already started")
	}
	r.started = true

	go r.hub.Run()
	if _, err := r.dispatcher.Subscribe(r.hub); err != nil {
		return err
	}
	for _, sub := range r.subscribers {
		if _, err := r.dispatcher.Subscribe(sub); err != nil {
			return fmt.Errorf("attach subscriber %s: %w", sub.Name(), err)
		}
	}

	for _, src := range r.stateSources {
		if err := src.Start(r.engine.SetOperationalState); err != nil {
			return fmt.Errorf("start state source: %w", err)
		}
		r.activeStates = append(r.activeStates, src)
	}

	if err := r.startHTTP(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.runCancel = cancel
	r.runDone = make(chan struct{})
	go func() {
		defer close(r.runDone)
		if err := r.engine.Run(ctx); err != nil {
			r.obs.LogError("scheduler_exited", err)
		}
	}()
	return nil
}

// Run starts the runtime and blocks until the provided context is cancelled.
// Upon cancellation it attempts a graceful shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(err, r.Shutdown(shutdownCtx))
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops ticking, drains subscribers, then closes state sources,
// listeners and the catalog database. The last committed frame is delivered
// before Shutdown returns.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.shutdownOnce.Do(func() {
		r.shutdownErr = r.shutdown(ctx)
	})
	return r.shutdownErr
}

func (r *Runtime) shutdown(ctx context.Context) error {
	var errs []error

	r.mu.Lock()
	cancel, done := r.runCancel, r.runDone
	states := r.activeStates
	apiSrv, metricsSrv := r.apiSrv, r.metricsSrv
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
		}
	}

	for _, src := range states {
		if err := src.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := r.dispatcher.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	r.hub.Stop()

	for _, srv := range []*http.Server{apiSrv, metricsSrv} {
		if srv == nil {
			continue
		}
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	r.obs.LogInfo("runtime_stopped", ports.Field{Key: "ticks", Value: r.engine.Seq()})
	_ = r.logger.Sync()
	return errors.Join(errs...)
}

func (r *Runtime) startHTTP() error {
	if r.cfg.HTTP.Addr != "" {
		srv, addr, err := r.serve(r.cfg.HTTP.Addr, r.api.Handler(r.cfg.HTTP.AllowedOrigins))
		if err != nil {
			return fmt.Errorf("api listener: %w", err)
		}
		r.apiSrv, r.apiAddr = srv, addr
	}

	if r.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		srv, addr, err := r.serve(r.cfg.Metrics.Addr, mux)
		if err != nil {
			return fmt.Errorf("metrics listener: %w", err)
		}
		r.metricsSrv, r.metricsAddr = srv, addr
	}
	return nil
}

func (r *Runtime) serve(addr string, h http.Handler) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.obs.LogError("http_server_exited", err, ports.Field{Key: "addr", Value: addr})
		}
	}()
	r.obs.LogInfo("http_listening", ports.Field{Key: "addr", Value: ln.Addr().String()})
	return srv, ln.Addr().String(), nil
}

// APIAddr is the bound address of the dashboard API, empty before Start.
func (r *Runtime) APIAddr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apiAddr
}

func (r *Runtime) MetricsAddr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metricsAddr
}

// Handler exposes the dashboard API for callers that mount it on their own server.
func (r *Runtime) Handler() http.Handler {
	return r.api.Handler(r.cfg.HTTP.AllowedOrigins)
}

// Subscribe attaches sub to every future frame. The returned function
// detaches it once its queued frames are delivered.
func (r *Runtime) Subscribe(sub Subscriber) (func(), error) {
	return r.dispatcher.Subscribe(sub)
}

// Tick runs one cycle immediately, outside the scheduler.
func (r *Runtime) Tick() *Frame {
	return r.engine.Tick(time.Now())
}

func (r *Runtime) LiveMachines() []Machine {
	return r.engine.LiveMachines()
}

func (r *Runtime) Machine(id string) (Machine, error) {
	return r.engine.Machine(id)
}

// Anomalies returns the ledger, newest first.
func (r *Runtime) Anomalies() []AnomalyRecord {
	return r.engine.Anomalies()
}

// Snapshot returns machines and ledger from the same committed tick.
func (r *Runtime) Snapshot() *Frame {
	return r.engine.Snapshot()
}

func (r *Runtime) SetOperationalState(id string, state OperationalState) error {
	return r.engine.SetOperationalState(id, state)
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}
