package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	data := `
catalog:
  path: ./data/catalog.yaml
opcua:
  endpoint: opc.tcp://localhost:4840
  nodes:
    - node_id: "ns=2;s=Line1.M1.State"
      machine_id: M1
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Engine.Interval != 3*time.Second {
		t.Fatalf("expected interval default 3s, got %s", cfg.Engine.Interval)
	}
	if cfg.Engine.LedgerCap != 50 || cfg.Engine.Workers != 1 {
		t.Fatalf("unexpected engine defaults %+v", cfg.Engine)
	}
	if cfg.Delivery.MaxQueueLen != 64 || cfg.Delivery.OnQueueFull != "block" {
		t.Fatalf("unexpected delivery defaults %+v", cfg.Delivery)
	}
	if cfg.Delivery.BlockTimeout != time.Second || cfg.Delivery.IdleSleep != 5*time.Millisecond {
		t.Fatalf("unexpected delivery timings %+v", cfg.Delivery)
	}
	if cfg.Catalog.Table != "machines" {
		t.Fatalf("expected default table machines, got %s", cfg.Catalog.Table)
	}
	if cfg.HTTP.Addr != ":8080" || cfg.Metrics.Addr != ":9100" {
		t.Fatalf("unexpected listen addresses %s %s", cfg.HTTP.Addr, cfg.Metrics.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected log level info, got %s", cfg.Log.Level)
	}
	if cfg.OPCUA.SecurityMode != "None" {
		t.Fatalf("expected opcua defaults applied, got %+v", cfg.OPCUA)
	}
}

func TestParseInlineCatalog(t *testing.T) {
	cfg, err := Parse([]byte(`
engine:
  interval: 500ms
  seed: 42
catalog:
  machines:
    - id: M1
      name: Moulding Line 1
      envelope:
        moulding_pressure: { min: 80, ideal: 100, max: 120, critical_max: 130 }
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Engine.Interval != 500*time.Millisecond || cfg.Engine.Seed != 42 {
		t.Fatalf("unexpected engine config %+v", cfg.Engine)
	}
	if len(cfg.Catalog.Machines) != 1 || cfg.Catalog.Machines[0].Envelope["moulding_pressure"].CriticalMax != 130 {
		t.Fatalf("unexpected inline catalog %+v", cfg.Catalog.Machines)
	}
	if cfg.OPCUA.Enabled() {
		t.Fatalf("opcua should be disabled when not configured")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"no catalog": `
engine: { interval: 1s }
`,
		"bad policy": `
catalog: { path: x.yaml }
delivery: { on_queue_full: spill }
`,
		"negative interval": `
catalog: { path: x.yaml }
engine: { interval: -1s }
`,
		"opcua without endpoint": `
catalog: { path: x.yaml }
opcua:
  nodes: [{ node_id: "ns=2;i=1", machine_id: M1 }]
`,
		"bad log level": `
catalog: { path: x.yaml }
log: { level: loud }
`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestValidateSettingsIgnoresCatalog(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := cfg.ValidateSettings(); err != nil {
		t.Fatalf("unexpected error without catalog: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to require a catalog source")
	}

	cfg.Delivery.OnQueueFull = "blok"
	if err := cfg.ValidateSettings(); err == nil {
		t.Fatalf("expected bad policy to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected missing file error, got %v", err)
	}
}
