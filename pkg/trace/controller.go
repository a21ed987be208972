package trace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Kind classifies a trace entry by the pipeline stage it was captured at.
type Kind string

const (
	KindRawReceipt     Kind = "raw_receipt"
	KindClassification Kind = "classification"
	KindDisplayUpdate  Kind = "display_update"
)

// Entry is one captured diagnostic record.
type Entry struct {
	ID        string
	Kind      Kind
	NodeID    string
	Payload   any
	Timestamp time.Time
}

// FlagStore persists the enabled flag across process restarts.
type FlagStore interface {
	Load(ctx context.Context) (enabled bool, found bool, err error)
	Save(ctx context.Context, enabled bool) error
}

// Controller records pipeline diagnostics into a bounded ring buffer, gated by
// a persisted on/off flag. It observes the merge path and never influences it:
// every failure inside the controller is logged at warn and swallowed, nothing
// propagates back to the caller.
type Controller struct {
	flags    FlagStore
	capacity int

	mu      sync.Mutex
	enabled bool
	entries []Entry
}

const DefaultCapacity = 512

// NewController builds a controller with the given flag store (nil allowed,
// the flag is then process-local) and ring capacity.
func NewController(flags FlagStore, capacity int) *Controller {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Controller{
		flags:    flags,
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
	}
}

// Init reads the persisted flag. Absent or unreadable state means disabled.
func (c *Controller) Init(ctx context.Context) error {
	if c == nil {
		return errors.New("trace: nil controller")
	}
	if c.flags == nil {
		return nil
	}
	enabled, found, err := c.flags.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("component", "trace").Msg("could not read trace flag, tracing stays disabled")
		return nil
	}
	if !found {
		return nil
	}
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
	return nil
}

// Enable turns tracing on and persists the flag. Returns the new state.
func (c *Controller) Enable(ctx context.Context) bool {
	return c.setEnabled(ctx, true)
}

// Disable turns tracing off and persists the flag. Returns the new state.
func (c *Controller) Disable(ctx context.Context) bool {
	return c.setEnabled(ctx, false)
}

func (c *Controller) setEnabled(ctx context.Context, enabled bool) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()

	if c.flags != nil {
		if err := c.flags.Save(ctx, enabled); err != nil {
			log.Warn().Err(err).Str("component", "trace").Bool("enabled", enabled).Msg("could not persist trace flag")
		}
	}
	return enabled
}

func (c *Controller) Enabled() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Observe implements the session observer seam. Stage names map one-to-one
// onto entry kinds; unknown stages are recorded as-is rather than dropped.
func (c *Controller) Observe(stage string, nodeID string, payload any) {
	c.Record(Entry{Kind: Kind(stage), NodeID: nodeID, Payload: payload})
}

// Record appends an entry when tracing is enabled, evicting the oldest entry
// once the buffer is at capacity.
func (c *Controller) Record(entry Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	c.entries = append(c.entries, entry)
	if len(c.entries) > c.capacity {
		drop := len(c.entries) - c.capacity
		c.entries = append([]Entry(nil), c.entries[drop:]...)
	}
}

// Entries copies out the buffered entries, oldest first.
func (c *Controller) Entries() []Entry {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len reports how many entries are currently buffered.
func (c *Controller) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
