package ports

import "github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"

// StateApplier receives operational state changes made outside the engine.
type StateApplier func(machineID string, state domain.OperationalState) error

// StateSource watches an external system for operator state changes.
type StateSource interface {
	Start(apply StateApplier) error
	Stop() error
}
