// Package events decouples the progression engine from presentation: the
// engine publishes domain events and subscribers (currently a notification
// writer) consume them off a buffered channel. Publishing never blocks the
// ledger path; events dropped on a full buffer are counted and logged.
package events

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	TypePointsIncreased = "points_increased"
	TypeMedalUnlocked   = "medal_unlocked"
	TypeRewardClaimed   = "reward_claimed"
)

// Event is one progression fact: points increased, medal unlocked, reward
// claimed.
type Event struct {
	Type    string
	UserID  uuid.UUID
	Message string
	Payload map[string]interface{}
}

type Subscriber interface {
	Handle(e Event)
}

type Bus struct {
	ch      chan Event
	mu      sync.RWMutex
	subs    []Subscriber
	dropped atomic.Int64
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	b := &Bus{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

func (b *Bus) Subscribe(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, s)
}

// Publish enqueues the event without blocking. A full buffer drops the
// event; progression state is already committed by the time an event is
// published, so a drop only loses a notification.
func (b *Bus) Publish(e Event) {
	select {
	case b.ch <- e:
	default:
		n := b.dropped.Add(1)
		slog.Warn("event dropped, bus buffer full", "type", e.Type, "dropped_total", n)
	}
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case e := <-b.ch:
			b.deliver(e)
		case <-b.done:
			// Drain what is already queued before stopping.
			for {
				select {
				case e := <-b.ch:
					b.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) deliver(e Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, s := range subs {
		s.Handle(e)
	}
}

// Close stops the dispatcher after draining queued events.
func (b *Bus) Close() {
	close(b.done)
	b.wg.Wait()
}

// Dropped reports how many events were discarded due to a full buffer.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}
