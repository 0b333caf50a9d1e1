package event

import (
	"log/slog"
	"sync"
)

type HandlerFunc func(raw any)

type queued struct {
	name string
	evt  any
}

// Bus queues events published from any goroutine and delivers them when the
// owner calls Dispatch, so handlers always run on the dispatching goroutine.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc

	qmu     sync.Mutex
	pending []queued
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventName string, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish enqueues evt. It never blocks on handlers.
func (b *Bus) Publish(eventName string, evt any) {
	b.qmu.Lock()
	b.pending = append(b.pending, queued{name: eventName, evt: evt})
	b.qmu.Unlock()
}

// Pending reports how many events are waiting for the next Dispatch.
func (b *Bus) Pending() int {
	b.qmu.Lock()
	defer b.qmu.Unlock()
	return len(b.pending)
}

// Dispatch delivers every event queued so far in publish order and returns
// how many were delivered. Events published by handlers wait for the next call.
func (b *Bus) Dispatch() int {
	b.qmu.Lock()
	batch := b.pending
	b.pending = nil
	b.qmu.Unlock()

	for _, q := range batch {
		b.mu.RLock()
		handlers := make([]HandlerFunc, len(b.handlers[q.name]))
		copy(handlers, b.handlers[q.name])
		b.mu.RUnlock()

		for _, h := range handlers {
			deliver(q.name, h, q.evt)
		}
	}
	return len(batch)
}

func deliver(eventName string, h HandlerFunc, evt any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event handler panicked", "event", eventName, "panic", r)
		}
	}()
	h(evt)
}
