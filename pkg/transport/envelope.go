package transport

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Envelope is the wire form of one transport event. Delta envelopes carry a
// text fragment for a node, error envelopes an upstream failure for a node,
// cancel envelopes tear down the whole turn.
type Envelope struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	NodeID string `json:"node_id,omitempty"`
	Text   string `json:"text,omitempty"`
	Final  bool   `json:"final,omitempty"`
	Reason string `json:"reason,omitempty"`
}

const (
	TypeDelta  = "delta"
	TypeError  = "error"
	TypeCancel = "cancel"
)

// NewDeltaEnvelope builds a delta envelope with a fresh event id.
func NewDeltaEnvelope(nodeID, text string, final bool) Envelope {
	return Envelope{Type: TypeDelta, ID: uuid.NewString(), NodeID: nodeID, Text: text, Final: final}
}

// NewErrorEnvelope builds an error envelope for one node.
func NewErrorEnvelope(nodeID, reason string) Envelope {
	return Envelope{Type: TypeError, ID: uuid.NewString(), NodeID: nodeID, Reason: reason}
}

// NewCancelEnvelope builds a cancel envelope for the whole turn.
func NewCancelEnvelope(reason string) Envelope {
	return Envelope{Type: TypeCancel, ID: uuid.NewString(), Reason: reason}
}

// ParseEnvelope decodes one wire payload.
func ParseEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, errors.Wrap(err, "parse envelope")
	}
	if env.Type == "" {
		return Envelope{}, errors.New("parse envelope: missing type")
	}
	return env, nil
}

// Marshal encodes the envelope for publishing.
func (e Envelope) Marshal() ([]byte, error) {
	b, err := json.Marshal(e)
	return b, errors.Wrap(err, "marshal envelope")
}
