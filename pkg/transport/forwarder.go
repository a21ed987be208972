package transport

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/rivulet/pkg/stream"
)

// ForwardFunc returns a watermill handler that feeds envelopes into a session.
// Malformed payloads and per-event conditions (unknown node, terminal node) are
// logged and dropped; the handler never returns an error, so the transport does
// not redeliver. Retrying is the upstream's responsibility, not this layer's.
func ForwardFunc(sess *stream.Session) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		env, err := ParseEnvelope(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("component", "transport").Str("payload", string(msg.Payload)).Msg("dropping malformed payload")
			return nil
		}

		switch env.Type {
		case TypeDelta:
			_, err := sess.OnDelta(stream.DeltaEvent{NodeID: env.NodeID, RawText: env.Text, IsFinal: env.Final})
			switch {
			case err == nil:
			case errors.Is(err, stream.ErrMalformedEvent):
				log.Warn().Str("component", "transport").Str("event_id", env.ID).Msg("dropping malformed delta event")
			case errors.Is(err, stream.ErrInvalidStateTransition):
				log.Warn().Str("component", "transport").Str("event_id", env.ID).Str("node_id", env.NodeID).Msg("dropping delta for terminal node")
			default:
				log.Error().Err(err).Str("component", "transport").Str("node_id", env.NodeID).Msg("delta event failed")
			}
		case TypeError:
			if _, err := sess.OnTransportError(env.NodeID, env.Reason); err != nil {
				if errors.Is(err, stream.ErrUnknownNode) {
					log.Warn().Str("component", "transport").Str("node_id", env.NodeID).Msg("transport error for unknown node")
				} else {
					log.Error().Err(err).Str("component", "transport").Str("node_id", env.NodeID).Msg("transport error routing failed")
				}
			}
		case TypeCancel:
			sess.OnCancel(env.Reason)
		default:
			log.Warn().Str("component", "transport").Str("type", env.Type).Msg("dropping envelope with unknown type")
		}
		return nil
	}
}
