package opcua

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gopcua/opcua"
	"github.com/gopcua/opcua/ua"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// StateSource subscribes to machine status tags and forwards every change to
// the engine. Tags may carry 0/1/2 (running/idle/down) or a state name.
type StateSource struct {
	cfg       Config
	obs       ports.Observability
	client    *opcua.Client
	sub       *opcua.Subscription
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	handleMap map[uint32]NodeConfig
	mu        sync.Mutex
	started   bool
}

func NewStateSource(cfg Config, obs ports.Observability) (*StateSource, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, errors.New("opcua state source: observability is required")
	}
	return &StateSource{cfg: cfg, obs: obs}, nil
}

func (s *StateSource) Start(apply ports.StateApplier) error {
	if apply == nil {
		return errors.New("opcua state source: nil applier")
	}
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("opcua state source already started")
	}
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	client, err := opcua.NewClient(s.cfg.Endpoint, s.clientOptions()...)
	if err != nil {
		cancel()
		return fmt.Errorf("opcua new client: %w", err)
	}
	if err := client.Connect(ctx); err != nil {
		cancel()
		return fmt.Errorf("opcua connect: %w", err)
	}

	notifyCh := make(chan *opcua.PublishNotificationData, len(s.cfg.Nodes)*4)
	sub, err := client.Subscribe(ctx, &opcua.SubscriptionParameters{
		Interval: s.cfg.PublishInterval,
	}, notifyCh)
	if err != nil {
		cancel()
		_ = client.Close(ctx)
		return fmt.Errorf("opcua subscribe: %w", err)
	}

	handleMap := make(map[uint32]NodeConfig, len(s.cfg.Nodes))
	for i, node := range s.cfg.Nodes {
		nodeID, err := ua.ParseNodeID(node.NodeID)
		if err != nil {
			s.abort(ctx, cancel, sub, client)
			return fmt.Errorf("parse node id %q: %w", node.NodeID, err)
		}
		handle := uint32(i + 1)
		req := opcua.NewMonitoredItemCreateRequestWithDefaults(nodeID, ua.AttributeIDValue, handle)
		if s.cfg.SamplingInterval > 0 {
			req.RequestedParameters.SamplingInterval = float64(s.cfg.SamplingInterval / time.Millisecond)
		}
		res, err := sub.Monitor(ctx, ua.TimestampsToReturnBoth, req)
		if err != nil {
			s.abort(ctx, cancel, sub, client)
			return fmt.Errorf("monitor node %q: %w", node.NodeID, err)
		}
		if len(res.Results) == 0 || res.Results[0].StatusCode != ua.StatusOK {
			s.abort(ctx, cancel, sub, client)
			return fmt.Errorf("monitor node %q failed", node.NodeID)
		}
		handleMap[handle] = node
	}

	s.mu.Lock()
	s.client = client
	s.sub = sub
	s.cancel = cancel
	s.handleMap = handleMap
	s.started = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.consume(ctx, notifyCh, apply)
	s.obs.LogInfo("opcua_state_source_started",
		ports.Field{Key: "endpoint", Value: s.cfg.Endpoint},
		ports.Field{Key: "nodes", Value: len(handleMap)})
	return nil
}

func (s *StateSource) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel, sub, client := s.cancel, s.sub, s.client
	s.started = false
	s.cancel, s.sub, s.client = nil, nil, nil
	s.mu.Unlock()

	cancel()

	ctx, ctxCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer ctxCancel()

	var err error
	if sub != nil {
		if e := sub.Cancel(ctx); e != nil && !errors.Is(e, context.Canceled) {
			err = errors.Join(err, e)
		}
	}
	if client != nil {
		if e := client.Close(ctx); e != nil && !errors.Is(e, context.Canceled) {
			err = errors.Join(err, e)
		}
	}
	s.wg.Wait()
	return err
}

func (s *StateSource) consume(ctx context.Context, ch <-chan *opcua.PublishNotificationData, apply ports.StateApplier) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case notif := <-ch:
			if notif == nil {
				continue
			}
			if notif.Error != nil {
				s.obs.LogWarn("opcua_notification_error", ports.Field{Key: "error", Value: notif.Error.Error()})
				continue
			}
			data, ok := notif.Value.(*ua.DataChangeNotification)
			if !ok {
				continue
			}
			s.dispatch(data.MonitoredItems, apply)
		}
	}
}

func (s *StateSource) dispatch(items []*ua.MonitoredItemNotification, apply ports.StateApplier) {
	for _, item := range items {
		node, ok := s.handleMap[item.ClientHandle]
		if !ok || item.Value == nil {
			continue
		}
		state, err := variantToState(item.Value.Value)
		if err != nil {
			s.obs.LogWarn("opcua_state_unreadable",
				ports.Field{Key: "node_id", Value: node.NodeID},
				ports.Field{Key: "error", Value: err.Error()})
			continue
		}
		if err := apply(node.MachineID, state); err != nil {
			s.obs.LogError("opcua_state_rejected", err,
				ports.Field{Key: "machine_id", Value: node.MachineID})
		}
	}
}

func (s *StateSource) clientOptions() []opcua.Option {
	opts := []opcua.Option{
		opcua.SecurityModeString(normalizeSecurityMode(s.cfg.SecurityMode)),
		opcua.SecurityPolicy(normalizeSecurityPolicy(s.cfg.SecurityPolicy)),
		opcua.ApplicationName(s.cfg.ApplicationName),
		opcua.AutoReconnect(true),
	}
	if s.cfg.Username != "" {
		opts = append(opts, opcua.AuthUsername(s.cfg.Username, s.cfg.Password))
	} else {
		opts = append(opts, opcua.AuthAnonymous())
	}
	return opts
}

func (s *StateSource) abort(ctx context.Context, cancel context.CancelFunc, sub *opcua.Subscription, client *opcua.Client) {
	cancel()
	if sub != nil {
		_ = sub.Cancel(ctx)
	}
	if client != nil {
		_ = client.Close(ctx)
	}
}

// variantToState maps a status tag to an operational state. Integer codes
// follow the HMI convention 0=running, 1=idle, 2=down.
func variantToState(v *ua.Variant) (domain.OperationalState, error) {
	if v == nil {
		return "", fmt.Errorf("%w: empty value", domain.ErrUnknownState)
	}
	var code int64
	switch val := v.Value().(type) {
	case string:
		return domain.ParseOperationalState(val)
	case bool:
		if val {
			return domain.StateRunning, nil
		}
		return domain.StateDown, nil
	case int8:
		code = int64(val)
	case uint8:
		code = int64(val)
	case int16:
		code = int64(val)
	case uint16:
		code = int64(val)
	case int32:
		code = int64(val)
	case uint32:
		code = int64(val)
	case int64:
		code = val
	case uint64:
		code = int64(val)
	default:
		return "", fmt.Errorf("%w: unsupported type %T", domain.ErrUnknownState, val)
	}
	switch code {
	case 0:
		return domain.StateRunning, nil
	case 1:
		return domain.StateIdle, nil
	case 2:
		return domain.StateDown, nil
	default:
		return "", fmt.Errorf("%w: code %d", domain.ErrUnknownState, code)
	}
}

func normalizeSecurityMode(mode string) string {
	switch strings.ToLower(mode) {
	case "sign":
		return "Sign"
	case "signandencrypt", "signencrypt", "sign_and_encrypt", "sign+encrypt":
		return "SignAndEncrypt"
	default:
		return "None"
	}
}

func normalizeSecurityPolicy(policy string) string {
	if policy == "" {
		return "None"
	}
	return policy
}

var _ ports.StateSource = (*StateSource)(nil)
