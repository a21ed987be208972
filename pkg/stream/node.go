package stream

import (
	"time"

	"github.com/pkg/errors"

	"github.com/go-go-golems/rivulet/pkg/merge"
)

// Status is the lifecycle state of one stream node. Transitions only run
// Idle → Streaming → {Done | Errored}; the terminal states are immutable apart
// from the no-op of re-finalizing a Done node.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusDone      Status = "done"
	StatusErrored   Status = "errored"
)

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusErrored
}

// Snapshot is the immutable, rendering-ready state of a node after one applied
// event. The rendering collaborator displays it as-is and performs no further
// text merging.
type Snapshot struct {
	NodeID     string
	Text       string
	Status     Status
	ChunkCount int
	ErrReason  string
}

// NodeStore holds the accumulated display text for one stream node and applies
// classifier decisions to it. One instance per nodeID, owned by a Session;
// nothing else writes to it.
type NodeStore struct {
	nodeID      string
	text        string
	chunkCount  int
	status      Status
	errReason   string
	lastUpdated time.Time

	// obs taps classifier decisions for diagnostics; set by the owning
	// session, may stay nil.
	obs Observer
}

func NewNodeStore(nodeID string) *NodeStore {
	return &NodeStore{nodeID: nodeID, status: StatusIdle}
}

// Apply merges one raw fragment into the accumulated text. The first fragment
// moves the node to Streaming and is taken verbatim; later fragments go through
// the classifier. Applying to a terminal node fails without mutating anything.
func (n *NodeStore) Apply(rawText string) (Snapshot, error) {
	if n == nil {
		return Snapshot{}, errors.New("node store: nil store")
	}
	if n.status.Terminal() {
		return n.snapshot(), errors.Wrapf(ErrInvalidStateTransition, "apply on %s node %s", n.status, n.nodeID)
	}

	if n.status == StatusIdle {
		n.text = rawText
		n.status = StatusStreaming
	} else {
		d := merge.Classify(n.text, rawText)
		if n.obs != nil {
			n.obs.Observe(StageClassification, n.nodeID, map[string]any{"kind": string(d.Kind), "common_prefix": d.CommonPrefixLen})
		}
		n.text = merge.Apply(n.text, rawText, d)
	}
	n.chunkCount++
	n.lastUpdated = time.Now()
	return n.snapshot(), nil
}

// Finalize freezes the accumulated text. Idempotent: finalizing a Done node
// returns the same snapshot again.
func (n *NodeStore) Finalize() (Snapshot, error) {
	if n == nil {
		return Snapshot{}, errors.New("node store: nil store")
	}
	switch n.status {
	case StatusDone:
		return n.snapshot(), nil
	case StatusErrored, StatusIdle:
		return n.snapshot(), errors.Wrapf(ErrInvalidStateTransition, "finalize on %s node %s", n.status, n.nodeID)
	}
	n.status = StatusDone
	n.lastUpdated = time.Now()
	return n.snapshot(), nil
}

// Error moves the node to Errored, keeping the last good text so the renderer
// never shows a blank or reverted message. Erroring an already-terminal node is
// a no-op returning the existing snapshot.
func (n *NodeStore) Error(reason string) Snapshot {
	if n == nil {
		return Snapshot{}
	}
	if n.status.Terminal() {
		return n.snapshot()
	}
	n.status = StatusErrored
	n.errReason = reason
	n.lastUpdated = time.Now()
	return n.snapshot()
}

// Reset clears the node back to Idle with empty text. The only path that
// shrinks accumulated text; used when a nodeID is deliberately reused across
// turns.
func (n *NodeStore) Reset() {
	if n == nil {
		return
	}
	n.text = ""
	n.chunkCount = 0
	n.status = StatusIdle
	n.errReason = ""
	n.lastUpdated = time.Now()
}

// LastUpdated reports when the node last changed.
func (n *NodeStore) LastUpdated() time.Time {
	if n == nil {
		return time.Time{}
	}
	return n.lastUpdated
}

func (n *NodeStore) Status() Status {
	if n == nil {
		return StatusIdle
	}
	return n.status
}

func (n *NodeStore) snapshot() Snapshot {
	return Snapshot{
		NodeID:     n.nodeID,
		Text:       n.text,
		Status:     n.status,
		ChunkCount: n.chunkCount,
		ErrReason:  n.errReason,
	}
}
