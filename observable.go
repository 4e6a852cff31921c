package weakevent

import "sync"

// Observer receives the notifications of an Observable.
type Observer[T any] interface {
	OnNext(T)
	OnError(error)
	OnCompleted()
}

// Observable is a push source with a single subscribe entry point.
type Observable[T any] interface {
	Subscribe(Observer[T]) (Disposer, error)
}

// ObserverFuncs builds an Observer from optional callbacks.
// Use it by pointer so it can be held weakly.
type ObserverFuncs[T any] struct {
	Next      func(T)
	Error     func(error)
	Completed func()
}

// OnNext calls Next, if set.
func (o *ObserverFuncs[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

// OnError calls Error, if set.
func (o *ObserverFuncs[T]) OnError(err error) {
	if o.Error != nil {
		o.Error(err)
	}
}

// OnCompleted calls Completed, if set.
func (o *ObserverFuncs[T]) OnCompleted() {
	if o.Completed != nil {
		o.Completed()
	}
}

type observerRelay[T any] struct {
	*relay[Observer[T]]
}

func (r *observerRelay[T]) OnNext(v T) {
	if o, ok := r.acquire(); ok {
		o.OnNext(v)
	}
}

func (r *observerRelay[T]) OnError(err error) {
	if o, ok := r.acquire(); ok {
		o.OnError(err)
	}
}

func (r *observerRelay[T]) OnCompleted() {
	if o, ok := r.acquire(); ok {
		o.OnCompleted()
	}
}

func asObserver[T any](r *relay[Observer[T]]) Observer[T] {
	return &observerRelay[T]{r}
}

// WeakSubscribeObserver subscribes observer to source through a relay that
// holds the returned Disposable weakly, with the same lifetime rules as
// WeakSubscribe.
func WeakSubscribeObserver[T any](source Observable[T], observer Observer[T]) (*Disposable, error) {
	if isNil(source) {
		return nil, argError(ParamSource)
	}
	if isNil(observer) {
		return nil, argError(ParamObserver)
	}
	register, unregister := subscribeBinding(source.Subscribe)
	return weakOwner(observer, asObserver[T], register, unregister)
}

// VeryWeakSubscribeObserver subscribes observer to source through a relay
// that holds observer weakly, with the same lifetime rules as
// VeryWeakSubscribe. observer must hold a non-nil pointer to a value of
// non-zero size.
func VeryWeakSubscribeObserver[T any](source Observable[T], observer Observer[T]) (*Disposable, error) {
	if isNil(source) {
		return nil, argError(ParamSource)
	}
	if isNil(observer) {
		return nil, argError(ParamObserver)
	}
	register, unregister := subscribeBinding(source.Subscribe)
	return weakTarget(ParamObserver, observer, asObserver[T], register, unregister)
}

// AsWeakObservable wraps source so that every Subscribe goes through
// WeakSubscribeObserver.
func AsWeakObservable[T any](source Observable[T]) (Observable[T], error) {
	if isNil(source) {
		return nil, argError(ParamSource)
	}
	return &weakObservable[T]{source: source, subscribe: WeakSubscribeObserver[T]}, nil
}

// AsVeryWeakObservable wraps source so that every Subscribe goes through
// VeryWeakSubscribeObserver.
func AsVeryWeakObservable[T any](source Observable[T]) (Observable[T], error) {
	if isNil(source) {
		return nil, argError(ParamSource)
	}
	return &weakObservable[T]{source: source, subscribe: VeryWeakSubscribeObserver[T]}, nil
}

type weakObservable[T any] struct {
	source    Observable[T]
	subscribe func(Observable[T], Observer[T]) (*Disposable, error)
}

func (o *weakObservable[T]) Subscribe(observer Observer[T]) (Disposer, error) {
	d, err := o.subscribe(o.source, observer)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// subscribeBinding turns a subscribe-returns-disposer source into the
// register/unregister pair the bridge works with: register subscribes and
// keeps the disposer, unregister disposes it.
func subscribeBinding[C any](subscribe func(C) (Disposer, error)) (func(C) error, func(C)) {
	var (
		mu  sync.Mutex
		sub Disposer
	)
	register := func(c C) error {
		d, err := subscribe(c)
		if err != nil {
			return err
		}
		mu.Lock()
		sub = d
		mu.Unlock()
		return nil
	}
	unregister := func(C) {
		mu.Lock()
		d := sub
		sub = nil
		mu.Unlock()
		if d != nil {
			d.Dispose()
		}
	}
	return register, unregister
}
