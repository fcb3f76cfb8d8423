package engine

import (
	"fmt"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/ports"
)

// LiveMachines returns the fleet as of the last committed tick.
func (e *Engine) LiveMachines() []domain.Machine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Machine, len(e.machines))
	for i, m := range e.machines {
		out[i] = m.Clone()
	}
	return out
}

// Machine returns one machine snapshot.
func (e *Engine) Machine(id string) (domain.Machine, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.index[id]
	if !ok {
		return domain.Machine{}, fmt.Errorf("%w: %s", ErrUnknownMachine, id)
	}
	return e.machines[i].Clone(), nil
}

// Anomalies returns the ledger, newest first.
func (e *Engine) Anomalies() []domain.AnomalyRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Snapshot()
}

// Snapshot returns machines and ledger from the same committed tick.
func (e *Engine) Snapshot() *domain.Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frameLocked()
}

func (e *Engine) Seq() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.seq
}

// SetOperationalState records a state change made by an operator. It takes
// effect from the next tick.
func (e *Engine) SetOperationalState(id string, state domain.OperationalState) error {
	if !state.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownState, state)
	}

	e.mu.Lock()
	i, ok := e.index[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownMachine, id)
	}
	prev := e.machines[i].State
	e.machines[i].State = state
	e.mu.Unlock()

	if prev != state {
		e.obs.LogInfo("machine_state_changed",
			ports.Field{Key: "machine_id", Value: id},
			ports.Field{Key: "from", Value: string(prev)},
			ports.Field{Key: "to", Value: string(state)})
	}
	return nil
}
