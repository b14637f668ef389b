// Package notifications carries tenant scoped messages from the point where
// state changes to the WebSocket connections listening for them.
package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// subscriptionBuffer is how many undelivered messages a slow subscriber may
// hold before new ones are dropped for it.
const subscriptionBuffer = 64

var ErrClosed = errors.New("broker closed")

type Message struct {
	ID      string          `json:"id"`
	Event   EventName       `json:"event"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// NewMessage builds a message with a fresh id, payload is encoded as JSON.
func NewMessage(event EventName, payload any) (Message, error) {
	msg := Message{
		ID:     uuid.NewString(),
		Event:  event,
		SentAt: time.Now().UTC(),
	}
	if payload == nil {
		return msg, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	msg.Payload = raw
	return msg, nil
}

type Broker interface {
	Publish(ctx context.Context, topic string, msg Message) error
	// Subscribe listens on topic until the subscription is closed or ctx is done.
	Subscribe(ctx context.Context, topic string) (*Subscription, error)
	Close() error
}

// NewBroker returns a redis backed broker when client is set, so every
// gateway instance sees every message, and an in-process one otherwise.
func NewBroker(client *redis.Client) Broker {
	if client == nil {
		return NewMemoryBroker()
	}
	return NewRedisBroker(client)
}

type Subscription struct {
	topic   string
	ch      chan Message
	once    sync.Once
	closeFn func()

	mu   sync.Mutex
	stop func() bool
}

func newSubscription(topic string) *Subscription {
	return &Subscription{
		topic: topic,
		ch:    make(chan Message, subscriptionBuffer),
		stop:  func() bool { return false },
	}
}

// watch ends the subscription when ctx is done. closeFn must be set.
func (s *Subscription) watch(ctx context.Context) {
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
}

func (s *Subscription) Topic() string {
	return s.topic
}

// Messages is closed once the subscription ends.
func (s *Subscription) Messages() <-chan Message {
	return s.ch
}

func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		stop := s.stop
		s.mu.Unlock()
		stop()
		s.closeFn()
	})
	return nil
}

// offer delivers msg without blocking the publisher.
func (s *Subscription) offer(msg Message) bool {
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}
