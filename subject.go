package weakevent

import (
	"sync"

	"github.com/google/uuid"
)

// Subject is an Observable that is also an Observer: notifications passed
// to it are forwarded to its subscribers synchronously, in subscription
// order. After OnError or OnCompleted the subject is terminated and new
// subscribers receive the terminal notification immediately.
type Subject[T any] struct {
	mu      sync.Mutex
	entries []subjectEntry[T]
	done    bool
	err     error
}

type subjectEntry[T any] struct {
	id       uuid.UUID
	observer Observer[T]
}

// NewSubject creates a Subject with no subscribers.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe adds observer and returns a Disposer that removes it.
func (s *Subject[T]) Subscribe(observer Observer[T]) (Disposer, error) {
	if isNil(observer) {
		return nil, argError(ParamObserver)
	}

	s.mu.Lock()
	if s.done {
		err := s.err
		s.mu.Unlock()
		if err != nil {
			observer.OnError(err)
		} else {
			observer.OnCompleted()
		}
		return DisposerFunc(func() {}), nil
	}
	id := uuid.New()
	s.entries = append(s.entries[:len(s.entries):len(s.entries)], subjectEntry[T]{id: id, observer: observer})
	s.mu.Unlock()

	return DisposerFunc(func() { s.remove(id) }), nil
}

func (s *Subject[T]) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id != id {
			continue
		}
		next := make([]subjectEntry[T], 0, len(s.entries)-1)
		next = append(next, s.entries[:i]...)
		s.entries = append(next, s.entries[i+1:]...)
		return
	}
}

func (s *Subject[T]) snapshot() ([]subjectEntry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries, s.done
}

// terminate marks the subject done and hands back the final subscriber list.
func (s *Subject[T]) terminate(err error) ([]subjectEntry[T], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil, false
	}
	s.done = true
	s.err = err
	entries := s.entries
	s.entries = nil
	return entries, true
}

// OnNext forwards v to every subscriber.
func (s *Subject[T]) OnNext(v T) {
	entries, done := s.snapshot()
	if done {
		return
	}
	for _, e := range entries {
		e.observer.OnNext(v)
	}
}

// OnError terminates the subject and forwards err to every subscriber.
func (s *Subject[T]) OnError(err error) {
	entries, ok := s.terminate(err)
	if !ok {
		return
	}
	for _, e := range entries {
		e.observer.OnError(err)
	}
}

// OnCompleted terminates the subject and notifies every subscriber.
func (s *Subject[T]) OnCompleted() {
	entries, ok := s.terminate(nil)
	if !ok {
		return
	}
	for _, e := range entries {
		e.observer.OnCompleted()
	}
}

// Count returns the number of current subscribers.
func (s *Subject[T]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
