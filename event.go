package weakevent

import "sync"

// Event is a thread-safe push source with an explicit add/remove pair.
// Its Add and Remove methods plug directly into WeakSubscribe.
//
// The zero value is ready to use.
type Event[T any] struct {
	mu       sync.RWMutex
	handlers []Handler[T] // never mutated in place; Fire iterates a snapshot
}

// NewEvent creates an empty Event.
func NewEvent[T any]() *Event[T] {
	return &Event[T]{}
}

// Add registers h. Nil handlers are ignored. The same handler may be added
// more than once and is then called once per registration.
func (e *Event[T]) Add(h Handler[T]) {
	if isNil(h) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers[:len(e.handlers):len(e.handlers)], h)
}

// Remove unregisters the most recent registration of h. Removing a handler
// that is not registered is a no-op.
func (e *Event[T]) Remove(h Handler[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.handlers) - 1; i >= 0; i-- {
		if !sameHandler(e.handlers[i], h) {
			continue
		}
		next := make([]Handler[T], 0, len(e.handlers)-1)
		next = append(next, e.handlers[:i]...)
		e.handlers = append(next, e.handlers[i+1:]...)
		return
	}
}

// Fire delivers v to every registered handler synchronously, in
// registration order, and returns the number of handlers called.
// Handlers added or removed during Fire take effect on the next call.
func (e *Event[T]) Fire(v T) int {
	e.mu.RLock()
	snapshot := e.handlers
	e.mu.RUnlock()

	for _, h := range snapshot {
		h.Handle(v)
	}
	return len(snapshot)
}

// Count returns the number of registrations.
func (e *Event[T]) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.handlers)
}
