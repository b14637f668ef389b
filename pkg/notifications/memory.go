package notifications

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// MemoryBroker delivers messages to subscribers of the same process.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: map[string]map[*Subscription]struct{}{}}
}

func (b *MemoryBroker) Publish(ctx context.Context, topic string, msg Message) error {
	msg.Topic = topic
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for sub := range b.topics[topic] {
		if !sub.offer(msg) {
			log.Ctx(ctx).Warn().Str("topic", topic).Str("message_id", msg.ID).Msg("subscriber is full, dropping message")
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	sub := newSubscription(topic)
	sub.closeFn = func() { b.remove(sub) }
	if b.topics[topic] == nil {
		b.topics[topic] = map[*Subscription]struct{}{}
	}
	b.topics[topic][sub] = struct{}{}
	sub.watch(ctx)
	return sub, nil
}

// remove runs once per subscription. The channel is closed under the write
// lock so no publisher can be sending to it.
func (b *MemoryBroker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[sub.topic]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.ch)
		}
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var subs []*Subscription
	for _, topicSubs := range b.topics {
		for sub := range topicSubs {
			subs = append(subs, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}
