package stream

import "github.com/pkg/errors"

// Core conditions surfaced to callers. Compare with errors.Is; routing layers
// report these and drop the offending event, they never crash the session.
var (
	// ErrInvalidStateTransition flags a mutation attempted on a terminal node.
	// It is fatal to the call, not to the session.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrUnknownNode flags an event referencing a node this session never
	// opened. The event is dropped, the condition reported.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMalformedEvent flags an event missing required fields. Rejected
	// before any node state is touched.
	ErrMalformedEvent = errors.New("malformed event")
)
