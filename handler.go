package weakevent

import "reflect"

// Handler receives notifications of type T.
type Handler[T any] interface {
	Handle(T)
}

// HandlerFunc adapts an ordinary function to Handler.
//
// A HandlerFunc value is not a pointer, so it cannot be held weakly on its
// own; pass &fn to the VeryWeak entry points instead.
type HandlerFunc[T any] func(T)

// Handle calls f(v).
func (f HandlerFunc[T]) Handle(v T) {
	f(v)
}

// sameHandler reports whether a and b are the same registration.
// Handlers of non-comparable dynamic types never match.
func sameHandler[T any](a, b Handler[T]) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// isNil reports whether v is nil or holds a nil pointer, func, map, slice,
// channel or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
