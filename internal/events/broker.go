// Package events fans state snapshots out to live WebSocket and SSE clients.
package events

import (
	"sync"

	"github.com/zhouzirui/kairn/backend/internal/service/dispatch"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 16

// Broker delivers each published snapshot to every subscriber. A subscriber that falls
// behind loses its oldest pending snapshot; only the latest state matters to clients.
type Broker struct {
	mu     sync.Mutex
	subs   map[int]chan dispatch.Snapshot
	next   int
	buffer int
	closed bool
}

// NewBroker returns a broker whose subscriber channels hold buffer snapshots.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Broker{subs: make(map[int]chan dispatch.Snapshot), buffer: buffer}
}

// Publish delivers snap without blocking. It matches dispatch.Dispatcher.OnChange.
func (b *Broker) Publish(snap dispatch.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Subscribe returns a channel of snapshots and a cancel function that closes it.
func (b *Broker) Subscribe() (<-chan dispatch.Snapshot, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan dispatch.Snapshot, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.next
	b.next++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// Close closes every subscriber channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
