package mpv

import "sync"

// EventKind identifies a discrete lifecycle event pushed by the engine.
type EventKind string

// Lifecycle events consumed by the shell. The engine emits others; they are
// dispatched too if anything subscribes, but nothing in this daemon does.
const (
	EventStartFile  EventKind = "start-file"
	EventFileLoaded EventKind = "file-loaded"
	EventEndFile    EventKind = "end-file"
	EventShutdown   EventKind = "shutdown"
)

// Handler receives engine lifecycle events. Handlers run on the gateway's
// read goroutine and must not block; firing a handler never feeds back into
// the event stream.
type Handler func(kind EventKind)

// Subscription identifies one registered handler. Each Subscribe call
// yields a distinct subscription even for the same function, so handler
// identity is well-defined without comparing funcs.
type Subscription struct {
	kind    EventKind
	handler Handler
}

// registry keeps per-kind handler lists in registration order.
type registry struct {
	mu   sync.Mutex
	subs map[EventKind][]*Subscription
}

func newRegistry() *registry {
	return &registry{subs: make(map[EventKind][]*Subscription)}
}

func (r *registry) add(kind EventKind, h Handler) *Subscription {
	sub := &Subscription{kind: kind, handler: h}
	r.mu.Lock()
	r.subs[kind] = append(r.subs[kind], sub)
	r.mu.Unlock()
	return sub
}

func (r *registry) remove(sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	handlers := r.subs[sub.kind]
	for i, s := range handlers {
		if s == sub {
			r.subs[sub.kind] = append(handlers[:i:i], handlers[i+1:]...)
			return
		}
	}
}

// snapshot returns the handlers for a kind in registration order. The copy
// lets dispatch run without holding the lock, so a handler may subscribe or
// unsubscribe without deadlocking.
func (r *registry) snapshot(kind EventKind) []Handler {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs[kind]
	if len(subs) == 0 {
		return nil
	}
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	return handlers
}
