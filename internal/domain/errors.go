package domain

import "errors"

var (
	// ErrMissingEnvelope indicates a machine has no range for a monitored parameter.
	ErrMissingEnvelope = errors.New("envelope range missing")

	// ErrMalformedEnvelope indicates bounds that are non-finite or out of order.
	ErrMalformedEnvelope = errors.New("envelope range malformed")

	// ErrMissingReading indicates a sample without a value for a monitored parameter.
	ErrMissingReading = errors.New("parameter reading missing")

	// ErrUnknownState indicates an operational state string that cannot be parsed.
	ErrUnknownState = errors.New("unknown operational state")

	// ErrUnknownMachine indicates a lookup or state change for an id not in the catalog.
	ErrUnknownMachine = errors.New("unknown machine")
)
