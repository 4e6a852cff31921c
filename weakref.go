package weakevent

import (
	"reflect"
	"runtime"
	"unsafe"
	"weak"
)

// weakIface is a weak reference to the object behind an interface value
// whose dynamic type is a pointer. Resolving it rebuilds the interface
// value from the surviving pointer.
//
// Objects the garbage collector does not manage, such as package-level
// variables, are never reclaimed. Those are held strongly in fixed.
type weakIface[I any] struct {
	typ   reflect.Type
	ref   weak.Pointer[byte]
	fixed *I
}

// makeWeakIface fails with an ArgumentError naming param unless v holds a
// non-nil pointer to a value of non-zero size.
func makeWeakIface[I any](param string, v I) (weakIface[I], error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return weakIface[I]{}, notPointerError(param)
	}
	if rv.Type().Elem().Size() == 0 {
		return weakIface[I]{}, zeroSizeError(param)
	}
	p := (*byte)(rv.UnsafePointer())
	if !collectable(p) {
		return weakIface[I]{typ: rv.Type(), fixed: &v}, nil
	}
	return weakIface[I]{
		typ: rv.Type(),
		ref: weak.Make(p),
	}, nil
}

// collectable reports whether p points into memory the garbage collector
// manages. AddCleanup hands back a no-op Cleanup for anything else.
func collectable(p *byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	c := runtime.AddCleanup(p, func(struct{}) {}, struct{}{})
	if c == (runtime.Cleanup{}) {
		return false
	}
	c.Stop()
	return true
}

// Value returns the referenced object, or false once it has been reclaimed.
func (w weakIface[I]) Value() (I, bool) {
	if w.fixed != nil {
		return *w.fixed, true
	}
	var zero I
	p := w.ref.Value()
	if p == nil {
		return zero, false
	}
	v, ok := reflect.NewAt(w.typ.Elem(), unsafe.Pointer(p)).Interface().(I)
	return v, ok
}

// watch disposes d as soon as the referenced object is reclaimed.
// The returned Cleanup must be stopped once d is disposed some other way.
func (w weakIface[I]) watch(d *Disposable) runtime.Cleanup {
	if w.fixed != nil {
		return runtime.Cleanup{}
	}
	p := w.ref.Value()
	if p == nil {
		d.Dispose()
		return runtime.Cleanup{}
	}
	return runtime.AddCleanup(p, (*Disposable).Dispose, d)
}
