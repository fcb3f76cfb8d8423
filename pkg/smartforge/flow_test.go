package smartforge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestConfFromConfigAndStreamBuilder(t *testing.T) {
	cfg := testConfig()

	flow, err := ConfFromConfig(cfg, WithFlowOptions(WithLogger(zap.NewNop())))
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	if flow.Config() != cfg {
		t.Fatalf("expected Config to be returned verbatim")
	}

	cat := &stubCatalog{machines: []Machine{{ID: "F1", Envelope: testEnvelope(), State: StateRunning}}}
	state := &stubStateSource{}
	sub := NewCallbackSubscriber("flow", func(*Frame) error { return nil })

	rt, err := flow.
		StreamIN(
			StreamInCatalog(cat),
			StreamInNoise(&fixedNoise{v: 0.5}),
			StreamInState(state),
			StreamInObservability(&stubObservability{}),
		).
		StreamOUT(
			StreamOutSubscriber(sub),
			StreamOutCallback("cb", func(*Frame) error { return nil }),
		)
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if len(rt.subscribers) != 2 || rt.subscribers[0] != sub {
		t.Fatalf("expected both subscribers to be wired, got %d", len(rt.subscribers))
	}
	if len(rt.stateSources) != 1 || rt.stateSources[0] != state {
		t.Fatalf("expected custom state source to be wired")
	}
	if got := rt.LiveMachines(); len(got) != 1 || got[0].ID != "F1" {
		t.Fatalf("expected custom catalog, got %+v", got)
	}
}

func TestFlowRunUsesStreamOutOptions(t *testing.T) {
	flow, err := ConfFromConfig(testConfig(), WithFlowOptions(WithLogger(zap.NewNop())))
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	// Stop immediately; Run must still start and shut down cleanly.
	cancel()
	if err := flow.StreamIN(
		StreamInObservability(&stubObservability{}),
	).Run(ctx,
		StreamOutCallback("noop", func(*Frame) error { return nil }),
	); err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
}

func TestConfLoadsYAML(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	cfgPath := filepath.Join(dir, "config.yaml")

	catalogDoc := `
machines:
  - id: M1
    name: Moulding Line 1
    envelope:
      moulding_pressure: { min: 80, ideal: 100, max: 120, critical_max: 130 }
      sand_temperature: { min: 20, ideal: 35, max: 50, critical_max: 60 }
      cycle_time_variance: { min: 0, ideal: 0, max: 10, critical_max: 15 }
`
	cfgDoc := "catalog:\n  path: " + catalogPath + "\n"
	if err := os.WriteFile(catalogPath, []byte(catalogDoc), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if err := os.WriteFile(cfgPath, []byte(cfgDoc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flow, err := Conf(cfgPath, WithFlowOptions(WithLogger(zap.NewNop()), WithObservability(&stubObservability{})))
	if err != nil {
		t.Fatalf("Conf: %v", err)
	}
	rt, err := flow.StreamOUT()
	if err != nil {
		t.Fatalf("StreamOUT: %v", err)
	}
	m, err := rt.Machine("M1")
	if err != nil || m.State != StateRunning {
		t.Fatalf("expected M1 running from file catalog, got %+v %v", m, err)
	}
}

func TestConfMissingFile(t *testing.T) {
	if _, err := Conf(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config")
	}
}

func TestStreamInMachinesReplacesCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = CatalogConfig{}

	flow, err := ConfFromConfig(cfg, WithFlowOptions(WithLogger(zap.NewNop())))
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	rt, err := flow.StreamIN(
		StreamInMachines(
			Machine{ID: "A1", Envelope: testEnvelope()},
			Machine{ID: "A2", Envelope: testEnvelope(), State: "idle"},
		),
		StreamInNoise(&fixedNoise{v: 0.5}),
		StreamInObservability(&stubObservability{}),
	).StreamOUT()
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	got := rt.LiveMachines()
	if len(got) != 2 || got[0].State != StateRunning || got[1].State != StateIdle {
		t.Fatalf("expected A1 Running and A2 Idle, got %+v", got)
	}

	if StreamInMachines() != nil {
		t.Fatalf("expected no option for an empty machine list")
	}
}

func TestStreamOutAlertsFiltersBySeverity(t *testing.T) {
	frame := &Frame{Seq: 4, Fresh: []AnomalyRecord{
		{ID: "a", MachineID: "M1", Severity: SeverityWarning},
		{ID: "b", MachineID: "M1", Severity: SeverityCritical},
		{ID: "c", MachineID: "M2", Severity: SeverityCritical},
	}}

	var seen []string
	f := &Flow{}
	StreamOutAlerts("pager", SeverityCritical, func(r AnomalyRecord) error {
		seen = append(seen, r.ID)
		return nil
	})(f)
	if len(f.opts) != 1 {
		t.Fatalf("expected one runtime option, got %d", len(f.opts))
	}

	var o runtimeOverrides
	f.opts[0](&o)
	if len(o.subscribers) != 1 || o.subscribers[0].Name() != "pager" {
		t.Fatalf("expected pager subscriber, got %+v", o.subscribers)
	}
	if err := o.subscribers[0].Deliver(frame); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Fatalf("expected critical records b and c in order, got %v", seen)
	}

	seen = nil
	boom := errors.New("pager offline")
	f = &Flow{}
	StreamOutAlerts("", SeverityWarning, func(r AnomalyRecord) error {
		seen = append(seen, r.ID)
		return boom
	})(f)
	o = runtimeOverrides{}
	f.opts[0](&o)
	if o.subscribers[0].Name() != "alerts" {
		t.Fatalf("expected default name alerts, got %s", o.subscribers[0].Name())
	}
	if err := o.subscribers[0].Deliver(frame); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if len(seen) != 1 {
		t.Fatalf("expected delivery to stop after the first error, got %v", seen)
	}
}
