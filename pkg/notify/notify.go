// Package notify carries change notifications from an editor session to
// renderers running on other goroutines.
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Kind names what part of the editor state changed
type Kind string

const (
	// KindGraph is published after every committed edit, undo and redo
	KindGraph Kind = "graph"
	// KindSelection is published when the selection changes without an edit
	KindSelection Kind = "selection"
	// KindView is published when scroll or zoom changes
	KindView Kind = "view"
	// KindSolder is published on every solder state transition
	KindSolder Kind = "solder"
)

// allKinds is the topic that receives every change
const allKinds Kind = "*"

// DefaultBuffer is the per-subscription channel capacity
const DefaultBuffer = 100

// ErrClosed is returned when subscribing to a bus that has been shut down
var ErrClosed = errors.New("notify: bus is shut down")

// Change describes one state change. Seq increases by one per published change.
type Change struct {
	Seq         uint64
	Kind        Kind
	Operation   string
	Nodes       int
	Connections int
	Selected    []string
	Solder      string
}

// Publisher is what an editor session needs to announce changes
type Publisher interface {
	Publish(c Change)
}

// Discard drops every change
type Discard struct{}

func (Discard) Publish(Change) {}

// Bus fans changes out to subscribers. Slow subscribers lose changes rather
// than block the publisher. Subscription channels are only closed while mu is
// held for writing, and only sent on while it is held for reading.
type Bus struct {
	subscribers map[Kind]map[*Subscription]bool
	mu          sync.RWMutex
	shutdown    chan struct{}
	isShutdown  bool
	buffer      int
	seq         atomic.Uint64
	dropped     atomic.Uint64
}

// Subscription receives the changes of the kinds it subscribed to
type Subscription struct {
	kinds   []Kind
	channel chan Change
	bus     *Bus
	cancel  context.CancelFunc
	closed  bool // guarded by bus.mu
}

// NewBus creates a bus; buffer below 1 means DefaultBuffer
func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subscribers: make(map[Kind]map[*Subscription]bool),
		shutdown:    make(chan struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers for changes of the given kinds, or all kinds when none
// are given. The subscription ends when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context, kinds ...Kind) (*Subscription, error) {
	if len(kinds) == 0 {
		kinds = []Kind{allKinds}
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		kinds:   kinds,
		channel: make(chan Change, b.buffer),
		bus:     b,
		cancel:  cancel,
	}

	b.mu.Lock()
	if b.isShutdown {
		b.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	for _, k := range kinds {
		if b.subscribers[k] == nil {
			b.subscribers[k] = make(map[*Subscription]bool)
		}
		b.subscribers[k][sub] = true
	}
	b.mu.Unlock()

	go func() {
		select {
		case <-subCtx.Done():
			sub.Unsubscribe()
		case <-b.shutdown:
			// Shutdown has already closed the channel
			cancel()
		}
	}()

	return sub, nil
}

// Publish stamps c with the next sequence number and delivers it to every
// matching subscriber without blocking.
func (b *Bus) Publish(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isShutdown {
		return
	}

	c.Seq = b.seq.Add(1)
	b.deliver(b.subscribers[c.Kind], c)
	if c.Kind != allKinds {
		b.deliver(b.subscribers[allKinds], c)
	}
}

// deliver must be called with mu held
func (b *Bus) deliver(subs map[*Subscription]bool, c Change) {
	for sub := range subs {
		if sub.closed {
			continue
		}
		select {
		case sub.channel <- c:
		default:
			b.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of subscribers registered for kind
func (b *Bus) SubscriberCount(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[kind])
}

// Dropped returns how many deliveries were skipped because a subscriber was full
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Shutdown closes all subscriptions
func (b *Bus) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isShutdown {
		return
	}
	b.isShutdown = true
	close(b.shutdown)

	for kind, subs := range b.subscribers {
		for sub := range subs {
			sub.closeLocked()
		}
		delete(b.subscribers, kind)
	}
}

// Channel returns the subscription's change channel. It is closed when the
// subscription ends.
func (s *Subscription) Channel() <-chan Change {
	return s.channel
}

// Unsubscribe removes the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.cancel()

	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	for _, k := range s.kinds {
		if subs := s.bus.subscribers[k]; subs != nil {
			delete(subs, s)
			if len(subs) == 0 {
				delete(s.bus.subscribers, k)
			}
		}
	}
	s.closeLocked()
}

// closeLocked must be called with bus.mu held for writing
func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.channel)
}
