package engine

import "errors"

// Sentinel errors for the engine. Check with errors.Is:
// errors.Is(err, engine.ErrCardNotFound)
var (
	// ErrInvalidOutcome marks an outcome that is malformed beyond what
	// clamping can repair: missing card id, non-numeric quality, negative
	// response time, or a zero timestamp.
	ErrInvalidOutcome = errors.New("memorank: invalid outcome")

	// ErrCardNotFound is returned by single-outcome processing and card
	// resets when the referenced card is absent from the store. Batch
	// processing skips such outcomes instead.
	ErrCardNotFound = errors.New("memorank: card not found")

	// ErrStoreUnavailable is wrapped by store implementations around
	// infrastructure failures. The engine never recovers from it locally.
	ErrStoreUnavailable = errors.New("memorank: review state store unavailable")
)
