package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrShutdown is returned when subscribing to a bus that has shut down.
var ErrShutdown = errors.New("pubsub: shut down")

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 100

// PubSub provides publish/subscribe functionality for real-time updates.
// Publishing never blocks: a subscriber whose buffer is full misses the
// message and the drop is counted.
type PubSub[T any] struct {
	subscribers map[string]map[*Subscription[T]]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	isShutdown  bool
	buffer      int
	dropped     atomic.Uint64
	onDrop      func()
}

// Subscription represents a subscription to a topic
type Subscription[T any] struct {
	topic     string
	channel   chan T
	ps        *PubSub[T]
	cancel    context.CancelFunc
	closeOnce sync.Once // Ensures channel is only closed once
}

// Option configures a PubSub.
type Option[T any] func(*PubSub[T])

// WithBuffer sets the per-subscription channel capacity.
func WithBuffer[T any](n int) Option[T] {
	return func(ps *PubSub[T]) {
		if n > 0 {
			ps.buffer = n
		}
	}
}

// WithDropHook registers a callback run for every dropped message.
func WithDropHook[T any](fn func()) Option[T] {
	return func(ps *PubSub[T]) { ps.onDrop = fn }
}

// NewPubSub creates a new PubSub instance
func NewPubSub[T any](opts ...Option[T]) *PubSub[T] {
	ps := &PubSub[T]{
		subscribers: make(map[string]map[*Subscription[T]]bool),
		shutdown:    make(chan struct{}),
		buffer:      DefaultBuffer,
	}
	for _, opt := range opts {
		opt(ps)
	}
	return ps
}

// Subscribe creates a new subscription to a topic. The subscription ends
// when ctx is cancelled, Unsubscribe is called or the bus shuts down.
func (ps *PubSub[T]) Subscribe(ctx context.Context, topic string) (*Subscription[T], error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription[T]{
		topic:   topic,
		channel: make(chan T, ps.buffer),
		ps:      ps,
		cancel:  cancel,
	}

	ps.mu.Lock()
	if ps.isShutdown {
		ps.mu.Unlock()
		cancel()
		return nil, ErrShutdown
	}
	if ps.subscribers[topic] == nil {
		ps.subscribers[topic] = make(map[*Subscription[T]]bool)
	}
	ps.subscribers[topic][sub] = true
	ps.mu.Unlock()

	// Monitor context cancellation
	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-ps.shutdown:
		}
	}()

	return sub, nil
}

// Publish sends a message to all subscribers of a topic. Sends happen under
// the read lock so a subscription cannot be closed mid-send; they are
// non-blocking so the lock is held briefly.
func (ps *PubSub[T]) Publish(topic string, message T) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.isShutdown {
		return
	}

	for sub := range ps.subscribers[topic] {
		select {
		case sub.channel <- message:
		default:
			ps.dropped.Add(1)
			if ps.onDrop != nil {
				ps.onDrop()
			}
		}
	}
}

// GetSubscriberCount returns the number of subscribers for a topic
func (ps *PubSub[T]) GetSubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	return len(ps.subscribers[topic])
}

// Dropped returns how many messages were dropped for full subscribers.
func (ps *PubSub[T]) Dropped() uint64 {
	return ps.dropped.Load()
}

// Shutdown closes all subscriptions and shuts down the PubSub
func (ps *PubSub[T]) Shutdown() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.isShutdown {
		return
	}
	ps.isShutdown = true
	close(ps.shutdown)

	// Close all subscription channels
	for topic, subs := range ps.subscribers {
		for sub := range subs {
			sub.cancel()
			sub.close()
		}
		delete(ps.subscribers, topic)
	}
}

// Channel returns the subscription's message channel. It is closed when
// the subscription ends.
func (s *Subscription[T]) Channel() <-chan T {
	return s.channel
}

// Topic returns the subscribed topic.
func (s *Subscription[T]) Topic() string {
	return s.topic
}

// Unsubscribe removes the subscription
func (s *Subscription[T]) Unsubscribe() {
	s.cancel()

	s.ps.mu.Lock()
	defer s.ps.mu.Unlock()

	if s.ps.subscribers[s.topic] != nil {
		delete(s.ps.subscribers[s.topic], s)
		if len(s.ps.subscribers[s.topic]) == 0 {
			delete(s.ps.subscribers, s.topic)
		}
	}

	s.close()
}

// close closes the subscription channel safely (idempotent)
func (s *Subscription[T]) close() {
	s.closeOnce.Do(func() {
		close(s.channel)
	})
}
