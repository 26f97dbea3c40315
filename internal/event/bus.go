// Package event provides an in-process publish/subscribe bus.
//
// Delivery is synchronous and in subscription order, so handlers observe the
// events of a publisher in the same order they were published.
package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/slok/taskmgr/internal/log"
)

// Topic is the name of an event.
type Topic string

// Handler handles a published event payload.
type Handler func(ctx context.Context, payload any)

// BusConfig is the configuration for the event bus.
type BusConfig struct {
	Logger log.Logger
}

func (c *BusConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "event.Bus"})
	return nil
}

// Bus is a synchronous topic based event bus.
type Bus struct {
	subs   map[Topic][]*Subscription
	mu     sync.RWMutex
	logger log.Logger
}

// NewBus creates a new event bus.
func NewBus(cfg BusConfig) (*Bus, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Bus{
		subs:   map[Topic][]*Subscription{},
		logger: cfg.Logger,
	}, nil
}

// Subscription is an active handler registration on a topic.
type Subscription struct {
	id      string
	topic   Topic
	handler Handler
	bus     *Bus
	once    sync.Once
}

// ID returns the unique subscription ID.
func (s *Subscription) ID() string { return s.id }

// Topic returns the subscribed topic.
func (s *Subscription) Topic() Topic { return s.topic }

// Dispose removes the subscription from the bus, it's safe to call multiple times.
func (s *Subscription) Dispose() {
	s.once.Do(func() {
		s.bus.remove(s)
	})
}

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic Topic, h Handler) *Subscription {
	sub := &Subscription{
		id:      uuid.New().String(),
		topic:   topic,
		handler: h,
		bus:     b,
	}

	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	b.logger.Debugf("Subscribed %s to %s", sub.id, topic)
	return sub
}

// Publish delivers the payload to all the handlers subscribed to the topic.
// It returns once all handlers have been executed. A panicking handler doesn't
// stop the delivery to the rest of handlers.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) {
	b.mu.RLock()
	subs := make([]*Subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, sub := range subs {
		b.deliver(ctx, sub, payload)
	}
}

func (b *Bus) deliver(ctx context.Context, sub *Subscription, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Handler %s for %s panicked: %v", sub.id, sub.topic, r)
		}
	}()

	sub.handler(ctx, payload)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.topic]
	for i, s := range subs {
		if s == sub {
			b.subs[sub.topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}

	if len(b.subs[sub.topic]) == 0 {
		delete(b.subs, sub.topic)
	}

	b.logger.Debugf("Disposed subscription %s from %s", sub.id, sub.topic)
}
