package opcua

import (
	"errors"
	"testing"
	"time"

	"github.com/gopcua/opcua/ua"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{
		Endpoint: "opc.tcp://hmi:4840",
		Nodes:    []NodeConfig{{NodeID: " ns=2;s=Line1.M1.State ", MachineID: "M1"}},
	}
	cfg.ApplyDefaults()
	if cfg.SecurityMode != "None" || cfg.PublishInterval != time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Nodes[0].NodeID != "ns=2;s=Line1.M1.State" {
		t.Fatalf("expected node id trimmed, got %q", cfg.Nodes[0].NodeID)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	cases := map[string]Config{
		"no endpoint": {Nodes: []NodeConfig{{NodeID: "ns=2;i=1", MachineID: "M1"}}},
		"no nodes":    {Endpoint: "opc.tcp://hmi:4840"},
		"no machine":  {Endpoint: "opc.tcp://hmi:4840", Nodes: []NodeConfig{{NodeID: "ns=2;i=1"}}},
		"duplicate": {Endpoint: "opc.tcp://hmi:4840", Nodes: []NodeConfig{
			{NodeID: "ns=2;i=1", MachineID: "M1"},
			{NodeID: "ns=2;i=2", MachineID: "M1"},
		}},
	}
	for name, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestNewStateSourceRejectsInvalidConfig(t *testing.T) {
	if _, err := NewStateSource(Config{}, nil); err == nil {
		t.Fatalf("expected error for empty config")
	}
}

func TestVariantToState(t *testing.T) {
	cases := []struct {
		in   any
		want domain.OperationalState
	}{
		{int32(0), domain.StateRunning},
		{uint16(1), domain.StateIdle},
		{int64(2), domain.StateDown},
		{"Idle", domain.StateIdle},
		{"fault", domain.StateDown},
		{true, domain.StateRunning},
		{false, domain.StateDown},
	}
	for _, tc := range cases {
		got, err := variantToState(ua.MustVariant(tc.in))
		if err != nil {
			t.Fatalf("%v: unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%v: expected %s, got %s", tc.in, tc.want, got)
		}
	}

	for _, bad := range []any{int32(7), "melting", float64(1)} {
		if _, err := variantToState(ua.MustVariant(bad)); !errors.Is(err, domain.ErrUnknownState) {
			t.Fatalf("%v: expected ErrUnknownState, got %v", bad, err)
		}
	}
	if _, err := variantToState(nil); err == nil {
		t.Fatalf("expected error for nil variant")
	}
}

func TestDispatchAppliesMappedStates(t *testing.T) {
	s := &StateSource{
		obs: &recordingObs{},
		handleMap: map[uint32]NodeConfig{
			1: {NodeID: "ns=2;i=1", MachineID: "M1"},
			2: {NodeID: "ns=2;i=2", MachineID: "M2"},
		},
	}
	applied := map[string]domain.OperationalState{}
	apply := func(id string, st domain.OperationalState) error {
		applied[id] = st
		return nil
	}

	s.dispatch([]*ua.MonitoredItemNotification{
		{ClientHandle: 1, Value: &ua.DataValue{Value: ua.MustVariant(int32(1))}},
		{ClientHandle: 2, Value: &ua.DataValue{Value: ua.MustVariant("down")}},
		{ClientHandle: 9, Value: &ua.DataValue{Value: ua.MustVariant(int32(0))}},
	}, apply)

	if applied["M1"] != domain.StateIdle || applied["M2"] != domain.StateDown || len(applied) != 2 {
		t.Fatalf("unexpected applied states %v", applied)
	}
}

func TestDispatchLogsUnreadableTag(t *testing.T) {
	obs := &recordingObs{}
	s := &StateSource{
		obs:       obs,
		handleMap: map[uint32]NodeConfig{1: {NodeID: "ns=2;i=1", MachineID: "M1"}},
	}
	s.dispatch([]*ua.MonitoredItemNotification{
		{ClientHandle: 1, Value: &ua.DataValue{Value: ua.MustVariant(int32(42))}},
	}, func(string, domain.OperationalState) error {
		t.Fatalf("apply must not be called for unreadable tags")
		return nil
	})
	if len(obs.warns) != 1 || obs.warns[0] != "opcua_state_unreadable" {
		t.Fatalf("expected a warning, got %v", obs.warns)
	}
}

func TestNormalizeSecurityMode(t *testing.T) {
	cases := map[string]string{
		"":                 "None",
		"sign":             "Sign",
		"SignAndEncrypt":   "SignAndEncrypt",
		"sign_and_encrypt": "SignAndEncrypt",
		"bogus":            "None",
	}
	for in, want := range cases {
		if got := normalizeSecurityMode(in); got != want {
			t.Fatalf("%q: expected %s, got %s", in, want, got)
		}
	}
}

func TestStopWithoutStart(t *testing.T) {
	s, err := NewStateSource(Config{
		Endpoint: "opc.tcp://hmi:4840",
		Nodes:    []NodeConfig{{NodeID: "ns=2;i=1", MachineID: "M1"}},
	}, &recordingObs{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop without start: %v", err)
	}
}

type recordingObs struct {
	warns []string
}

func (r *recordingObs) LogInfo(string, ...ports.Field)            {}
func (r *recordingObs) LogWarn(msg string, _ ...ports.Field)      { r.warns = append(r.warns, msg) }
func (r *recordingObs) LogError(string, error, ...ports.Field)    {}
func (r *recordingObs) LogCritical(string, error, ...ports.Field) {}
func (r *recordingObs) IncCounter(string, float64)                {}
func (r *recordingObs) ObserveLatency(string, float64)            {}
func (r *recordingObs) SetGauge(string, float64)                  {}
func (r *recordingObs) RecordSkip(string, error)                  {}
