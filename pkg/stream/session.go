package stream

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DeltaEvent is one received fragment for one node. Produced by the transport
// collaborator and consumed exactly once by a Session.
type DeltaEvent struct {
	NodeID  string
	RawText string
	IsFinal bool
}

// SnapshotSink receives every snapshot a session produces, one per applied
// event. The rendering collaborator hangs off this.
type SnapshotSink func(Snapshot)

// Observer taps the merge pipeline for diagnostics. Implementations must be
// side-effect free with respect to correctness; the session calls them
// best-effort and ignores them otherwise.
type Observer interface {
	Observe(stage string, nodeID string, payload any)
}

// Stages passed to Observer.Observe.
const (
	StageRawReceipt     = "raw_receipt"
	StageClassification = "classification"
	StageDisplayUpdate  = "display_update"
)

// Session orchestrates one streaming turn across possibly several concurrently
// streaming nodes. It owns the nodeID → NodeStore mapping; stores are created
// lazily on the first event for an id and discarded with the session. Events
// for one node are applied in exact receipt order, there is no buffering or
// reordering by sequence number.
type Session struct {
	id   string
	sink SnapshotSink
	obs  Observer

	mu        sync.Mutex
	nodes     map[string]*NodeStore
	order     []string
	concluded bool
}

type SessionOption func(*Session)

// WithSink sets the snapshot sink. A nil sink is allowed; snapshots are then
// only returned to the caller.
func WithSink(sink SnapshotSink) SessionOption {
	return func(s *Session) { s.sink = sink }
}

// WithObserver attaches a diagnostics observer, typically a trace controller.
func WithObserver(obs Observer) SessionOption {
	return func(s *Session) { s.obs = obs }
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:    uuid.NewString(),
		nodes: map[string]*NodeStore{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// OnDelta routes one fragment to its node store and returns the resulting
// snapshot. A missing NodeID is rejected as ErrMalformedEvent before any store
// is touched. IsFinal finalizes the node right after the fragment is applied.
func (s *Session) OnDelta(ev DeltaEvent) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, errors.New("session: nil session")
	}
	s.observe(StageRawReceipt, ev.NodeID, map[string]any{"text_len": len(ev.RawText), "final": ev.IsFinal})

	if strings.TrimSpace(ev.NodeID) == "" {
		return Snapshot{}, errors.Wrap(ErrMalformedEvent, "delta event without node id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[ev.NodeID]
	if !ok {
		node = NewNodeStore(ev.NodeID)
		node.obs = s.obs
		s.nodes[ev.NodeID] = node
		s.order = append(s.order, ev.NodeID)
	}

	snap, err := node.Apply(ev.RawText)
	if err != nil {
		return snap, errors.Wrapf(err, "session %s: node %s", s.id, ev.NodeID)
	}
	if ev.IsFinal {
		snap, err = node.Finalize()
		if err != nil {
			return snap, errors.Wrapf(err, "session %s: node %s", s.id, ev.NodeID)
		}
	}
	s.emit(snap)
	return snap, nil
}

// OnTransportError marks a node as Errored with the upstream reason, keeping
// the text accumulated so far. An unknown node is reported as ErrUnknownNode
// and nothing is mutated; retrying is the transport's business, not ours.
func (s *Session) OnTransportError(nodeID, reason string) (Snapshot, error) {
	if s == nil {
		return Snapshot{}, errors.New("session: nil session")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[nodeID]
	if !ok {
		return Snapshot{}, errors.Wrapf(ErrUnknownNode, "transport error for node %q", nodeID)
	}
	snap := node.Error(reason)
	s.emit(snap)
	return snap, nil
}

// OnCancel flips every still-Streaming node to Errored with the cancellation
// reason, preserving partial text, and concludes the session. Idempotent: a
// second cancel returns nil.
func (s *Session) OnCancel(reason string) []Snapshot {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.concluded {
		return nil
	}
	s.concluded = true

	var out []Snapshot
	for _, id := range s.order {
		node := s.nodes[id]
		if node.Status() != StatusStreaming {
			continue
		}
		snap := node.Error(reason)
		s.emit(snap)
		out = append(out, snap)
	}
	log.Debug().Str("component", "stream").Str("session_id", s.id).Str("reason", reason).Int("cancelled", len(out)).Msg("session cancelled")
	return out
}

// Snapshots returns the current snapshot of every node in creation order.
func (s *Session) Snapshots() []Snapshot {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].snapshot())
	}
	return out
}

// emit pushes a snapshot to the sink and the observer. Called with s.mu held;
// sinks must not call back into the session.
func (s *Session) emit(snap Snapshot) {
	if s.sink != nil {
		s.sink(snap)
	}
	s.observe(StageDisplayUpdate, snap.NodeID, map[string]any{"status": string(snap.Status), "text_len": len(snap.Text), "chunks": snap.ChunkCount})
}

func (s *Session) observe(stage, nodeID string, payload any) {
	if s.obs == nil {
		return
	}
	s.obs.Observe(stage, nodeID, payload)
}
