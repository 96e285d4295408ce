package bus

import (
	"context"
	"sync"

	"coda-dashboard/internal/events"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

// Handler receives events asynchronously on the bus worker goroutine.
type Handler func(events.Envelope)

type subscription struct {
	token   int
	handler Handler
}

// Bus fans decoded backend events out to dashboard panels. Publishing
// never blocks the reader: events are buffered and dropped when the
// buffer is full.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]subscription
	nextToken   int
	dropped     int64

	buffer chan events.Envelope
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	ctx, cancel := context.WithCancel(context.Background())

	b := &Bus{
		subscribers: make(map[string][]subscription),
		buffer:      make(chan events.Envelope, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	b.wg.Add(1)
	go b.run()
	return b
}

// Subscribe registers a handler for one event type, or AllEvents for every
// type. The returned token identifies the subscription for Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextToken++
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{
		token:   b.nextToken,
		handler: handler,
	})
	return b.nextToken
}

func (b *Bus) Unsubscribe(eventType string, token int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.token == token {
			b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Publish enqueues an event for dispatch. Full buffer drops the event to
// keep the backend read loop from stalling behind a slow panel.
func (b *Bus) Publish(env events.Envelope) {
	select {
	case b.buffer <- env:
	case <-b.ctx.Done():
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
	}
}

// Dropped returns the number of events discarded due to a full buffer.
func (b *Bus) Dropped() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Shutdown stops the dispatch worker after draining buffered events. The
// buffer channel is never closed so late publishers cannot panic; they
// observe the cancelled context instead.
func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) run() {
	defer b.wg.Done()

	for {
		select {
		case env := <-b.buffer:
			b.dispatch(env)
		case <-b.ctx.Done():
			for {
				select {
				case env := <-b.buffer:
					b.dispatch(env)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(env events.Envelope) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subscribers[string(env.Type)])+len(b.subscribers[AllEvents]))
	for _, s := range b.subscribers[string(env.Type)] {
		handlers = append(handlers, s.handler)
	}
	for _, s := range b.subscribers[AllEvents] {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				_ = recover() // a panicking panel must not kill dispatch
			}()
			h(env)
		}()
	}
}
