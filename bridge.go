package weakevent

import (
	"weak"

	"go.uber.org/zap"
)

// relay sits between a notification source and a subscription target.
// The source holds the relay strongly; the relay holds only a liveness
// token for whatever keeps the subscription alive.
type relay[H any] struct {
	inner   *Disposable
	resolve func() (H, bool)
}

// acquire returns the live target. Once the liveness token stops resolving
// it unregisters the relay and reports false from then on.
func (r *relay[H]) acquire() (H, bool) {
	var zero H
	if r.inner.Disposed() {
		return zero, false
	}
	target, ok := r.resolve()
	if !ok {
		logDebug("subscription owner reclaimed, unregistering relay")
		r.inner.Dispose()
		return zero, false
	}
	return target, true
}

type handlerRelay[T any] struct {
	*relay[Handler[T]]
}

func (r *handlerRelay[T]) Handle(v T) {
	if h, ok := r.acquire(); ok {
		h.Handle(v)
	}
}

// WeakSubscribe registers handler with a push source through a relay and
// returns the handle that keeps the subscription alive.
//
// The source only ever sees the relay, and the relay holds the returned
// Disposable weakly. While the caller keeps the Disposable reachable every
// notification is forwarded to handler synchronously. Disposing it removes
// the registration. Dropping it without disposing also ends the
// subscription: the registration is removed when the runtime reclaims the
// Disposable, and at the latest on the next notification after that.
//
// unregister may therefore run on the runtime's cleanup goroutine, or on
// whichever goroutine delivers that next notification. Sources that are not
// safe for concurrent use must guard register and unregister themselves.
func WeakSubscribe[T any](register, unregister func(Handler[T]), handler Handler[T]) (*Disposable, error) {
	if register == nil {
		return nil, argError(ParamRegister)
	}
	if unregister == nil {
		return nil, argError(ParamUnregister)
	}
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	return weakOwner(handler, asHandler[T], infallible(register), unregister)
}

// WeakSubscribeConvert is WeakSubscribe for sources whose native callback
// shape C differs from Handler. converter is applied once, and the same
// converted value is passed to register and unregister.
func WeakSubscribeConvert[T, C any](converter func(Handler[T]) C, register, unregister func(C), handler Handler[T]) (*Disposable, error) {
	if converter == nil {
		return nil, argError(ParamConverter)
	}
	if register == nil {
		return nil, argError(ParamRegister)
	}
	if unregister == nil {
		return nil, argError(ParamUnregister)
	}
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	return weakOwner(handler, convertHandler(converter), infallible(register), unregister)
}

// VeryWeakSubscribe is WeakSubscribe with the liveness token pointing at
// handler instead of the returned Disposable. The subscription lasts as
// long as something else keeps handler reachable, whether or not the
// Disposable is kept. Disposing it still unregisters immediately.
//
// handler must hold a non-nil pointer to a value of non-zero size. Once
// handler is reclaimed, unregister runs on the runtime's cleanup goroutine
// or on the goroutine delivering the next notification, as with
// WeakSubscribe. A handler that is never reclaimed, such as a package-level
// variable, keeps the subscription until it is disposed.
func VeryWeakSubscribe[T any](register, unregister func(Handler[T]), handler Handler[T]) (*Disposable, error) {
	if register == nil {
		return nil, argError(ParamRegister)
	}
	if unregister == nil {
		return nil, argError(ParamUnregister)
	}
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	return weakTarget(ParamHandler, handler, asHandler[T], infallible(register), unregister)
}

// VeryWeakSubscribeConvert is VeryWeakSubscribe with a converter, as in
// WeakSubscribeConvert.
func VeryWeakSubscribeConvert[T, C any](converter func(Handler[T]) C, register, unregister func(C), handler Handler[T]) (*Disposable, error) {
	if converter == nil {
		return nil, argError(ParamConverter)
	}
	if register == nil {
		return nil, argError(ParamRegister)
	}
	if unregister == nil {
		return nil, argError(ParamUnregister)
	}
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	return weakTarget(ParamHandler, handler, convertHandler(converter), infallible(register), unregister)
}

func asHandler[T any](r *relay[Handler[T]]) Handler[T] {
	return &handlerRelay[T]{r}
}

func convertHandler[T, C any](converter func(Handler[T]) C) func(*relay[Handler[T]]) C {
	return func(r *relay[Handler[T]]) C {
		return converter(&handlerRelay[T]{r})
	}
}

func infallible[C any](register func(C)) func(C) error {
	return func(c C) error {
		register(c)
		return nil
	}
}

// weakOwner builds a subscription whose liveness token is the returned
// outer handle.
func weakOwner[H, N any](target H, native func(*relay[H]) N, register func(N) error, unregister func(N)) (*Disposable, error) {
	inner := NewDisposable(nil, nil)
	outer := NewDisposable(nil, nil)
	owner := weak.Make(outer)
	r := &relay[H]{
		inner: inner,
		resolve: func() (H, bool) {
			return target, owner.Value() != nil
		},
	}
	d, err := link(native(r), register, unregister, inner, outer, nil, true)
	if err != nil {
		return nil, err
	}
	logDebug("weak subscription registered", zap.String("liveness", "handle"))
	return d, nil
}

// weakTarget builds a subscription whose liveness token is target itself.
// Nothing reachable from the relay refers to target strongly.
func weakTarget[H, N any](param string, target H, native func(*relay[H]) N, register func(N) error, unregister func(N)) (*Disposable, error) {
	ref, err := makeWeakIface(param, target)
	if err != nil {
		return nil, err
	}
	inner := NewDisposable(nil, nil)
	outer := NewDisposable(nil, nil)
	r := &relay[H]{
		inner:   inner,
		resolve: ref.Value,
	}
	watch := ref.watch(inner)
	d, err := link(native(r), register, unregister, inner, outer, watch.Stop, false)
	if err != nil {
		watch.Stop()
		return nil, err
	}
	logDebug("weak subscription registered", zap.String("liveness", param))
	return d, nil
}

// link registers the relay and chains outer -> inner -> unregister.
//
// A relay can give up while register is still running, leaving inner
// disposed before the unregister action is attached; the registration is
// then removed right away. With reclaimOuter set, reclaiming outer disposes
// inner through the fallback action.
func link[N any](native N, register func(N) error, unregister func(N), inner, outer *Disposable, detach func(), reclaimOuter bool) (*Disposable, error) {
	if err := register(native); err != nil {
		inner.Dispose()
		outer.Dispose()
		return nil, err
	}
	release := func() {
		if detach != nil {
			detach()
		}
		unregister(native)
	}
	if !inner.SetPrimary(release) {
		runSuppressed(release)
	}
	outer.SetPrimary(inner.Dispose)
	if reclaimOuter {
		outer.SetFallback(inner.Dispose)
	}
	return outer, nil
}
