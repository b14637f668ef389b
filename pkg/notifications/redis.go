package notifications

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channelPrefix = "notifications:"

// RedisBroker fans messages out through redis pub/sub.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, msg Message) error {
	msg.Topic = topic
	buf, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelPrefix+topic, buf).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	ps := b.client.Subscribe(ctx, channelPrefix+topic)
	// wait for the confirmation so nothing published after Subscribe returns is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := newSubscription(topic)
	sub.closeFn = func() { _ = ps.Close() }
	go func() {
		defer close(sub.ch)
		logger := log.Ctx(ctx).With().Str("topic", topic).Logger()
		for m := range ps.Channel() {
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				logger.Warn().Err(err).Msg("discarding malformed notification")
				continue
			}
			if !sub.offer(msg) {
				logger.Warn().Str("message_id", msg.ID).Msg("subscriber is full, dropping message")
			}
		}
	}()
	sub.watch(ctx)
	return sub, nil
}

// Close is a no-op, the redis client is owned by the caller.
func (b *RedisBroker) Close() error {
	return nil
}
