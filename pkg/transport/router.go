package transport

import (
	"context"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/rivulet/pkg/stream"
)

// DefaultTopic is the topic delta envelopes are published on.
const DefaultTopic = "rivulet.deltas"

// RedisSettings configures the optional Redis Streams transport.
type RedisSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Group    string `yaml:"group"`
	Consumer string `yaml:"consumer"`
}

func DefaultRedisSettings() RedisSettings {
	return RedisSettings{
		Addr:     "localhost:6379",
		Group:    "rivulet",
		Consumer: "ui-1",
	}
}

// NewGoChannelPubSub returns the in-memory pub/sub used when Redis is not
// enabled. The returned value is both publisher and subscriber.
func NewGoChannelPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, NewWatermillLogger(log.Logger))
}

// NewRedisSubscriber returns a Redis Streams subscriber bound to the configured
// consumer group and name.
func NewRedisSubscriber(s RedisSettings) (message.Subscriber, error) {
	client := redis.NewClient(&redis.Options{Addr: s.Addr})
	return rstream.NewSubscriber(rstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  rstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: s.Group,
		Consumer:      s.Consumer,
	}, NewWatermillLogger(log.Logger))
}

// NewRedisPublisher returns a Redis Streams publisher for the same transport.
func NewRedisPublisher(s RedisSettings) (message.Publisher, error) {
	client := redis.NewClient(&redis.Options{Addr: s.Addr})
	return rstream.NewPublisher(rstream.PublisherConfig{
		Client:     client,
		Marshaller: rstream.DefaultMarshallerUnmarshaller{},
	}, NewWatermillLogger(log.Logger))
}

// EnsureGroupAtTail creates the consumer group for a stream at the tail ($) if
// it doesn't exist yet, so the first subscribe does not replay history.
func EnsureGroupAtTail(ctx context.Context, addr, topic, group string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()
	err := client.XGroupCreateMkStream(ctx, topic, group, "$").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.Contains(err.Error(), "BUSYGROUP") {
			return nil
		}
		return err
	}
	log.Info().Str("component", "transport").Str("topic", topic).Str("group", group).Msg("created redis consumer group at $ (tail)")
	return nil
}

// NewRouter builds a watermill router with a single forwarding handler that
// drains the topic into the session.
func NewRouter(topic string, sub message.Subscriber, sess *stream.Session) (*message.Router, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	router, err := message.NewRouter(message.RouterConfig{}, NewWatermillLogger(log.Logger))
	if err != nil {
		return nil, err
	}
	router.AddNoPublisherHandler("rivulet-forwarder", topic, sub, ForwardFunc(sess))
	return router, nil
}
