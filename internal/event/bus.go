package event

import (
	"sync"
	"time"
)

// Bus is the per-session pub/sub. Watchers run synchronously in the
// publishing goroutine, in registration order, after channel subscribers
// have been offered the event; a watcher may publish further events.
// Subscribers receive on buffered channels and are skipped when full.
type Bus struct {
	mu       sync.Mutex
	watchers []watcher
	nextID   int
	subs     map[*Subscription]struct{}
}

type watcher struct {
	id int
	fn func(Event)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Watch registers an ordered synchronous observer and returns its cancel
// function. Cancel is idempotent.
func (b *Bus) Watch(fn func(Event)) (cancel func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers = append(b.watchers, watcher{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, w := range b.watchers {
			if w.id == id {
				b.watchers = append(b.watchers[:i], b.watchers[i+1:]...)
				return
			}
		}
	}
}

// Subscribe returns a channel subscription. With no kinds every event is
// delivered; otherwise only the named kinds. Events are dropped for a
// subscriber whose buffer is full.
func (b *Bus) Subscribe(buffer int, kinds ...Kind) *Subscription {
	s := &Subscription{
		ch:  make(chan Event, buffer),
		bus: b,
	}
	if len(kinds) > 0 {
		s.kinds = make(map[Kind]struct{}, len(kinds))
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// Publish wraps p in an Event and fans it out. It never blocks. Channel
// offers happen under the bus lock so Close cannot race a send; watcher
// callbacks run after the lock is released so they may publish again.
func (b *Bus) Publish(p Payload) {
	ev := Event{Kind: p.Kind(), At: time.Now(), Payload: p}

	b.mu.Lock()
	for s := range b.subs {
		s.offer(ev)
	}
	watchers := make([]watcher, len(b.watchers))
	copy(watchers, b.watchers)
	b.mu.Unlock()

	for _, w := range watchers {
		w.fn(ev)
	}
}

// Subscription is a buffered channel view of the bus.
type Subscription struct {
	ch    chan Event
	kinds map[Kind]struct{}
	bus   *Bus
	once  sync.Once
}

// Events is the receive side. It is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) offer(ev Event) {
	if s.kinds != nil {
		if _, ok := s.kinds[ev.Kind]; !ok {
			return
		}
	}
	select {
	case s.ch <- ev:
	default:
		// Drop if subscriber is slow.
	}
}

// Close detaches the subscription and closes its channel. Closing happens
// under the bus lock, after which no offer can reach the channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		close(s.ch)
		s.bus.mu.Unlock()
	})
}
