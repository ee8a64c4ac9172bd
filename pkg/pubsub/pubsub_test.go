package pubsub

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type event struct {
	Kind    string
	Version int
}

// TestBasicPubSub tests basic publish/subscribe functionality
func TestBasicPubSub(t *testing.T) {
	ps := NewPubSub[event]()
	defer ps.Shutdown()

	sub, err := ps.Subscribe(context.Background(), "graph")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	ps.Publish("graph", event{Kind: "refresh", Version: 1})

	select {
	case msg := <-sub.Channel():
		if msg.Kind != "refresh" || msg.Version != 1 {
			t.Errorf("Unexpected message %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for message")
	}

	if sub.Topic() != "graph" {
		t.Errorf("Topic() = %q", sub.Topic())
	}
}

// TestMultipleSubscribers tests fan-out to every subscriber of a topic
func TestMultipleSubscribers(t *testing.T) {
	ps := NewPubSub[event]()
	defer ps.Shutdown()

	const numSubscribers = 5
	subs := make([]*Subscription[event], numSubscribers)
	for i := range subs {
		sub, err := ps.Subscribe(context.Background(), "selection")
		if err != nil {
			t.Fatalf("Failed to subscribe %d: %v", i, err)
		}
		defer sub.Unsubscribe()
		subs[i] = sub
	}

	ps.Publish("selection", event{Kind: "click", Version: 7})

	for i, sub := range subs {
		select {
		case msg := <-sub.Channel():
			if msg.Version != 7 {
				t.Errorf("Subscriber %d: got %+v", i, msg)
			}
		case <-time.After(time.Second):
			t.Fatalf("Subscriber %d: timeout waiting for message", i)
		}
	}
}

// TestTopicIsolation tests that messages are isolated by topic
func TestTopicIsolation(t *testing.T) {
	ps := NewPubSub[event]()
	defer ps.Shutdown()

	graphSub, _ := ps.Subscribe(context.Background(), "graph")
	selSub, _ := ps.Subscribe(context.Background(), "selection")
	defer graphSub.Unsubscribe()
	defer selSub.Unsubscribe()

	ps.Publish("graph", event{Kind: "refresh"})

	select {
	case msg := <-graphSub.Channel():
		if msg.Kind != "refresh" {
			t.Errorf("graph topic got %+v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("graph topic did not receive its message")
	}

	select {
	case msg := <-selSub.Channel():
		t.Errorf("selection topic received %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestUnsubscribe tests that unsubscribed clients stop receiving
func TestUnsubscribe(t *testing.T) {
	ps := NewPubSub[event]()
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), "graph")
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	ps.Publish("graph", event{Kind: "late"})

	if _, ok := <-sub.Channel(); ok {
		t.Error("Received message after unsubscribe")
	}
	if ps.GetSubscriberCount("graph") != 0 {
		t.Error("Subscriber should be removed")
	}
}

// TestContextCancellation tests that subscriptions respect context cancellation
func TestContextCancellation(t *testing.T) {
	ps := NewPubSub[event]()
	defer ps.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := ps.Subscribe(ctx, "graph")

	done := make(chan struct{})
	go func() {
		for range sub.Channel() {
		}
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscription channel did not close on context cancellation")
	}
}

// TestConcurrentPublish tests concurrent publishing from multiple goroutines
func TestConcurrentPublish(t *testing.T) {
	ps := NewPubSub[event](WithBuffer[event](200))
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), "graph")
	defer sub.Unsubscribe()

	const numMessages = 100
	var wg sync.WaitGroup
	for i := 0; i < numMessages; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ps.Publish("graph", event{Version: n})
		}(i)
	}
	wg.Wait()

	received := make(map[int]bool)
	for len(received) < numMessages {
		select {
		case msg := <-sub.Channel():
			received[msg.Version] = true
		case <-time.After(time.Second):
			t.Fatalf("Expected %d messages, received %d", numMessages, len(received))
		}
	}
}

// TestSlowSubscriberDrops tests that a full buffer drops rather than blocks
func TestSlowSubscriberDrops(t *testing.T) {
	var hooked atomic.Int32
	ps := NewPubSub[event](WithBuffer[event](2), WithDropHook[event](func() { hooked.Add(1) }))
	defer ps.Shutdown()

	sub, _ := ps.Subscribe(context.Background(), "graph")
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		ps.Publish("graph", event{Version: i})
	}

	if ps.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", ps.Dropped())
	}
	if hooked.Load() != 3 {
		t.Errorf("drop hook ran %d times, want 3", hooked.Load())
	}

	// The oldest messages are the ones kept
	if msg := <-sub.Channel(); msg.Version != 0 {
		t.Errorf("first buffered message = %d, want 0", msg.Version)
	}
}

// TestGetSubscriberCount tests getting the number of subscribers for a topic
func TestGetSubscriberCount(t *testing.T) {
	ps := NewPubSub[event]()
	defer ps.Shutdown()

	if count := ps.GetSubscriberCount("graph"); count != 0 {
		t.Errorf("Expected 0 subscribers, got %d", count)
	}

	sub1, _ := ps.Subscribe(context.Background(), "graph")
	sub2, _ := ps.Subscribe(context.Background(), "graph")

	if count := ps.GetSubscriberCount("graph"); count != 2 {
		t.Errorf("Expected 2 subscribers, got %d", count)
	}

	sub1.Unsubscribe()
	if count := ps.GetSubscriberCount("graph"); count != 1 {
		t.Errorf("Expected 1 subscriber after unsubscribe, got %d", count)
	}
	sub2.Unsubscribe()
}

// TestShutdown tests graceful shutdown
func TestShutdown(t *testing.T) {
	ps := NewPubSub[event]()

	sub, _ := ps.Subscribe(context.Background(), "graph")

	done := make(chan struct{})
	go func() {
		for range sub.Channel() {
		}
		close(done)
	}()

	ps.Shutdown()
	ps.Shutdown() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscription channel did not close on shutdown")
	}

	if _, err := ps.Subscribe(context.Background(), "graph"); !errors.Is(err, ErrShutdown) {
		t.Errorf("Subscribe after shutdown = %v, want ErrShutdown", err)
	}

	// Publishing after shutdown is a no-op
	ps.Publish("graph", event{})
}
