package engine

import (
	"errors"

	"github.com/A-Jayaprakash-Jp/Smart-Forge-sub000/internal/domain"
)

var (
	// ErrEmptyCatalog indicates the engine was started without machines.
	ErrEmptyCatalog = errors.New("machine catalog is empty")

	// ErrMissingMachineID indicates a catalog entry without an id.
	ErrMissingMachineID = errors.New("machine id is required")

	// ErrDuplicateMachine indicates two catalog entries share an id.
	ErrDuplicateMachine = errors.New("duplicate machine id")

	// ErrInvalidState indicates a catalog entry whose operational state is not canonical.
	ErrInvalidState = errors.New("invalid operational state")

	ErrUnknownMachine = domain.ErrUnknownMachine

	// ErrMachinePanic wraps a recovered panic from one machine's evaluation.
	ErrMachinePanic = errors.New("machine evaluation panicked")
)
