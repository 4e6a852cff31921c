package weakevent

import (
	"runtime"
	"sync"
)

// Disposer is anything that can be released.
type Disposer interface {
	Dispose()
}

// DisposerFunc adapts an ordinary function to Disposer.
type DisposerFunc func()

// Dispose calls f. A nil DisposerFunc is a no-op.
func (f DisposerFunc) Dispose() {
	if f != nil {
		f()
	}
}

// Disposable is an idempotent release handle carrying up to two actions.
//
// The primary action runs only when Dispose is called explicitly. The
// fallback action runs exactly once: alongside the primary on Dispose, or
// alone when the Disposable becomes unreachable without ever being disposed.
// Panics raised by either action are recovered and discarded.
//
// A Disposable must be created with NewDisposable and must not be copied.
// The zero value and a nil *Disposable behave as already disposed.
type Disposable struct {
	state   *disposeState
	cleanup runtime.Cleanup
}

// disposeState lives in its own allocation so the reclamation cleanup can
// reach it without keeping the Disposable itself alive.
type disposeState struct {
	mu       sync.Mutex
	primary  func()
	fallback func()
	disposed bool
}

// NewDisposable creates a Disposable. Either action may be nil.
func NewDisposable(primary, fallback func()) *Disposable {
	d := &Disposable{
		state: &disposeState{primary: primary, fallback: fallback},
	}
	d.cleanup = runtime.AddCleanup(d, (*disposeState).reclaim, d.state)
	return d
}

// SetPrimary attaches the primary action, replacing any previous one.
// It reports false, without attaching fn, if d is already disposed.
func (d *Disposable) SetPrimary(fn func()) bool {
	s := d.stateOf()
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.primary = fn
	return true
}

// SetFallback attaches the fallback action, replacing any previous one.
// It reports false, without attaching fn, if d is already disposed.
func (d *Disposable) SetFallback(fn func()) bool {
	s := d.stateOf()
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	s.fallback = fn
	return true
}

// Dispose runs the primary action and then the fallback action, once.
// It is safe to call concurrently and any number of times; only the first
// call does any work and every other call returns as soon as it observes
// that d has been disposed. Dispose never panics because of an action.
func (d *Disposable) Dispose() {
	s := d.stateOf()
	if s == nil {
		return
	}
	primary, fallback, ok := s.take(true)
	if !ok {
		return
	}
	d.cleanup.Stop()
	runSuppressed(primary)
	runSuppressed(fallback)
}

// Close disposes d. It always returns nil.
func (d *Disposable) Close() error {
	d.Dispose()
	return nil
}

// Disposed reports whether d has been released on either path.
func (d *Disposable) Disposed() bool {
	s := d.stateOf()
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

func (d *Disposable) stateOf() *disposeState {
	if d == nil {
		return nil
	}
	return d.state
}

// take marks the state disposed and hands back the actions to run.
// The primary action is withheld unless the release is explicit.
func (s *disposeState) take(explicit bool) (primary, fallback func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, nil, false
	}
	s.disposed = true
	primary, fallback = s.primary, s.fallback
	s.primary, s.fallback = nil, nil
	if !explicit {
		primary = nil
	}
	return primary, fallback, true
}

// reclaim runs on the runtime cleanup goroutine once the owning Disposable
// is unreachable.
func (s *disposeState) reclaim() {
	_, fallback, ok := s.take(false)
	if !ok {
		return
	}
	logDebug("disposable reclaimed without explicit dispose")
	runSuppressed(fallback)
}

// runSuppressed calls fn and discards any panic it raises.
func runSuppressed(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	fn()
}
