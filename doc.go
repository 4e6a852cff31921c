/*
Package weakevent implements weak subscriptions: registering interest in a
push-based notification source without letting the registration itself keep
the subscriber alive.

A notification source holds its callbacks strongly. Registering a callback
directly therefore pins everything the callback reaches until someone
remembers to unregister it. The functions in this package register a small
relay instead. The relay checks a liveness token before every forward and,
once the token no longer resolves, removes itself from the source.

# Key Features

  - Idempotent release: Disposable runs its primary action at most once and
    its fallback action exactly once, no matter how many goroutines call
    Dispose or whether the runtime reclaims it first.

  - Weak subscriptions: WeakSubscribe keeps the subscription alive only while
    the returned Disposable is reachable.

  - Very weak subscriptions: VeryWeakSubscribe keeps it alive only while the
    handler itself is reachable, whether or not the Disposable is kept.

  - Observables: the same two lifetimes for Observer/Observable sources via
    WeakSubscribeObserver, VeryWeakSubscribeObserver, AsWeakObservable and
    AsVeryWeakObservable.

  - Reference sources: Event, Subject and the topic hub PubSub are
    thread-safe sources that deliver synchronously in registration order.

# Lifetime Rules

Disposing the returned handle removes the registration immediately. For
WeakSubscribe, dropping the handle ends the subscription too: the runtime
cleanup for the handle removes the registration, and if a notification
arrives before that cleanup has run, the relay notices the dead token and
unregisters instead of forwarding. A notification already in flight on
another goroutine when Dispose is called may still be delivered.

# Usage Examples

Subscribe a handler to an Event and keep the handle for as long as the
subscription should last:

	ev := weakevent.NewEvent[int]()

	sub, err := weakevent.WeakSubscribe(ev.Add, ev.Remove, weakevent.HandlerFunc[int](func(v int) {
		fmt.Println("got", v)
	}))
	if err != nil {
		// Only an ArgumentError is possible here.
	}
	defer sub.Dispose()

	ev.Fire(1) // prints "got 1"

Tie the subscription to the lifetime of a component instead:

	type Widget struct{ name string }

	func (w *Widget) Handle(v int) { fmt.Println(w.name, v) }

	w := &Widget{name: "w1"}
	weakevent.VeryWeakSubscribe(ev.Add, ev.Remove, w)
	// The subscription ends once w is unreachable.

Topics on a PubSub work the same way:

	ps := weakevent.NewPubSub()
	defer ps.Close()

	sub, _ := weakevent.WeakSubscribeTopic(ps, "alerts", handler)
	ps.Publish(weakevent.Message{Topic: "alerts", Data: "disk full"})

# Errors

Every entry point validates its collaborators before registering anything
and reports a missing one as an *ArgumentError naming the parameter. Use
errors.Is(err, ErrInvalidArgument) or errors.As to inspect it. Panics raised
by release actions are recovered and discarded.

# Logging

The package logs lifecycle events at debug level through a zap logger. It is
a no-op logger by default; install one with SetLogger or turn on a
development logger with SetDebug(true).
*/
package weakevent
