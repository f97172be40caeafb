package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Change {
	t.Helper()
	select {
	case c, ok := <-sub.Channel():
		if !ok {
			t.Fatal("subscription closed")
		}
		return c
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for change")
	}
	return Change{}
}

// TestBasicPublish tests that a subscriber receives a published change
func TestBasicPublish(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, err := bus.Subscribe(context.Background(), KindGraph)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	bus.Publish(Change{Kind: KindGraph, Operation: "delete", Nodes: 3})

	c := receive(t, sub)
	if c.Operation != "delete" || c.Nodes != 3 {
		t.Errorf("got %+v", c)
	}
	if c.Seq != 1 {
		t.Errorf("Seq = %d, want 1", c.Seq)
	}
}

// TestKindIsolation tests that subscribers only see the kinds they asked for
func TestKindIsolation(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	ctx := context.Background()
	graphSub, _ := bus.Subscribe(ctx, KindGraph)
	solderSub, _ := bus.Subscribe(ctx, KindSolder)
	allSub, _ := bus.Subscribe(ctx)

	bus.Publish(Change{Kind: KindSolder, Solder: "soldering"})
	bus.Publish(Change{Kind: KindGraph, Operation: "add_node"})

	if c := receive(t, graphSub); c.Kind != KindGraph {
		t.Errorf("graph subscriber got %s", c.Kind)
	}
	if c := receive(t, solderSub); c.Solder != "soldering" {
		t.Errorf("solder subscriber got %+v", c)
	}
	if first, second := receive(t, allSub), receive(t, allSub); first.Kind != KindSolder || second.Kind != KindGraph {
		t.Errorf("wildcard subscriber got %s then %s", first.Kind, second.Kind)
	}

	select {
	case c := <-graphSub.Channel():
		t.Errorf("graph subscriber received extra change %+v", c)
	default:
	}
}

// TestBufferedDelivery tests ordering and sequence numbers before consumption
func TestBufferedDelivery(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, _ := bus.Subscribe(context.Background(), KindSelection)
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		bus.Publish(Change{Kind: KindSelection})
	}
	for i := 1; i <= 5; i++ {
		if c := receive(t, sub); c.Seq != uint64(i) {
			t.Errorf("Seq = %d, want %d", c.Seq, i)
		}
	}
}

// TestSlowSubscriberDrops tests that a full subscriber never blocks Publish
func TestSlowSubscriberDrops(t *testing.T) {
	bus := NewBus(2)
	defer bus.Shutdown()

	sub, _ := bus.Subscribe(context.Background(), KindView)
	defer sub.Unsubscribe()

	for i := 0; i < 5; i++ {
		bus.Publish(Change{Kind: KindView})
	}
	if bus.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", bus.Dropped())
	}
}

// TestContextCancellation tests that subscriptions end with their context
func TestContextCancellation(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	sub, _ := bus.Subscribe(ctx, KindGraph)

	done := make(chan bool, 1)
	go func() {
		for range sub.Channel() {
		}
		done <- true
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscription channel did not close on context cancellation")
	}
	if bus.SubscriberCount(KindGraph) != 0 {
		t.Errorf("SubscriberCount = %d after cancel", bus.SubscriberCount(KindGraph))
	}
}

// TestConcurrentPublish tests publishing from multiple goroutines
func TestConcurrentPublish(t *testing.T) {
	bus := NewBus(200)
	defer bus.Shutdown()

	sub, _ := bus.Subscribe(context.Background(), KindGraph)
	defer sub.Unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(Change{Kind: KindGraph})
		}()
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		seen[receive(t, sub).Seq] = true
	}
	if len(seen) != 100 {
		t.Errorf("Expected 100 distinct sequence numbers, got %d", len(seen))
	}
}

// TestShutdown tests that shutdown closes subscriptions and refuses new ones
func TestShutdown(t *testing.T) {
	bus := NewBus(0)
	sub, _ := bus.Subscribe(context.Background(), KindGraph)

	done := make(chan bool, 1)
	go func() {
		for range sub.Channel() {
		}
		done <- true
	}()

	bus.Shutdown()
	bus.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Subscription channel did not close on shutdown")
	}

	if _, err := bus.Subscribe(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after shutdown err = %v, want ErrClosed", err)
	}
	bus.Publish(Change{Kind: KindGraph})
}

// TestPublishDuringUnsubscribe tests that publishers never send on a channel
// closed by Unsubscribe, context cancellation or Shutdown. Run with -race.
func TestPublishDuringUnsubscribe(t *testing.T) {
	bus := NewBus(1)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					bus.Publish(Change{Kind: KindGraph})
				}
			}
		}()
	}

	for i := 0; i < 2000; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		sub, err := bus.Subscribe(ctx)
		if err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
		if i%2 == 0 {
			sub.Unsubscribe()
		}
		cancel()
	}

	// Leave subscriptions open so Shutdown closes them under load
	for i := 0; i < 10; i++ {
		if _, err := bus.Subscribe(context.Background(), KindGraph); err != nil {
			t.Fatalf("Failed to subscribe: %v", err)
		}
	}
	bus.Shutdown()

	close(stop)
	wg.Wait()
}

// TestUnsubscribeTwice tests that a second Unsubscribe is harmless
func TestUnsubscribeTwice(t *testing.T) {
	bus := NewBus(0)
	defer bus.Shutdown()

	sub, _ := bus.Subscribe(context.Background(), KindGraph)
	sub.Unsubscribe()
	sub.Unsubscribe()

	if _, ok := <-sub.Channel(); ok {
		t.Error("channel still open after Unsubscribe")
	}
	bus.Publish(Change{Kind: KindGraph})
}
