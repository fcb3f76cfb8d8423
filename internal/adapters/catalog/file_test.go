package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

func TestFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
machines:
  - id: M1
    name: Moulding Line 1
    type: moulding
    location: Bay A
    state: Idle
    envelope:
      moulding_pressure: { min: 80, ideal: 100, max: 120, critical_max: 130 }
      sand_temperature: { min: 20, ideal: 35, max: 50, critical_max: 60 }
      cycle_time_variance: { min: 0, ideal: 0, max: 10, critical_max: 15 }
  - id: M2
    envelope:
      moulding_pressure: { min: 0, ideal: 0, max: 0, critical_max: 0 }
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	machines, err := NewFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(machines) != 2 {
		t.Fatalf("expected 2 machines, got %d", len(machines))
	}
	if machines[0].State != domain.StateIdle {
		t.Fatalf("expected Idle, got %s", machines[0].State)
	}
	if machines[0].Envelope[domain.SandTemperature].Ideal != 35 {
		t.Fatalf("unexpected envelope: %+v", machines[0].Envelope)
	}
	if machines[1].Name != "M2" || machines[1].State != domain.StateRunning {
		t.Fatalf("expected defaults on M2, got %+v", machines[1])
	}
}

func TestFileLoadCanonicalizesStates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
machines:
  - id: M1
    state: running
  - id: M2
    state: " down "
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	machines, err := NewFile(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if machines[0].State != domain.StateRunning || machines[1].State != domain.StateDown {
		t.Fatalf("expected canonical states, got %s and %s", machines[0].State, machines[1].State)
	}
}

func TestFileLoadRejectsUnknownState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
machines:
  - id: M1
    state: Running
  - id: M2
    state: Bogus
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	_, err := NewFile(path).Load(context.Background())
	if !errors.Is(err, domain.ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestStaticLoadRejectsUnknownState(t *testing.T) {
	s := NewStatic([]domain.Machine{{ID: "M1", State: "Paused"}})
	if _, err := s.Load(context.Background()); !errors.Is(err, domain.ErrUnknownState) {
		t.Fatalf("expected ErrUnknownState, got %v", err)
	}
}

func TestFileLoadMissing(t *testing.T) {
	if _, err := NewFile(filepath.Join(t.TempDir(), "nope.yaml")).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing catalog file")
	}
}

func TestStaticLoadReturnsCopies(t *testing.T) {
	src := []domain.Machine{{
		ID:       "M1",
		Envelope: domain.Envelope{domain.MouldingPressure: {Max: 1, CriticalMax: 2}},
	}}
	s := NewStatic(src)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got[0].Envelope[domain.MouldingPressure] = domain.Range{}
	if src[0].Envelope[domain.MouldingPressure].Max != 1 {
		t.Fatalf("static catalog must hand out copies")
	}
	if src[0].State != "" {
		t.Fatalf("normalization must not leak into the source slice")
	}
}

func TestConfigValidate(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Table != "machines" {
		t.Fatalf("expected default table machines, got %s", c.Table)
	}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when no source configured")
	}
	c.Path = "catalog.yaml"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOpenSelectsSource(t *testing.T) {
	src, db, err := Open(Config{ConnString: "postgres://u:p@localhost/plant?sslmode=disable", Path: "ignored.yaml"})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	defer db.Close()
	if src.Name() != "postgres" || db == nil {
		t.Fatalf("expected postgres source with db handle, got %s", src.Name())
	}

	src, db, err = Open(Config{Path: "catalog.yaml"})
	if err != nil || src.Name() != "file" || db != nil {
		t.Fatalf("expected file source, got %v %v", src, err)
	}

	src, _, err = Open(Config{Machines: []domain.Machine{{ID: "M1"}}})
	if err != nil || src.Name() != "static" {
		t.Fatalf("expected static source, got %v %v", src, err)
	}

	if _, _, err := Open(Config{}); err == nil {
		t.Fatalf("expected error without a source")
	}
}
