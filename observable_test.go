package weakevent

import (
	"errors"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valueObserver has value receivers, so it can't be referenced weakly.
type valueObserver struct{}

func (valueObserver) OnNext(int)    {}
func (valueObserver) OnError(error) {}
func (valueObserver) OnCompleted()  {}

type refusingSource struct {
	err error
}

func (s refusingSource) Subscribe(Observer[int]) (Disposer, error) {
	return nil, s.err
}

func Test_WeakSubscribeObserverForwardsUntilDisposed(t *testing.T) {
	s := NewSubject[int]()
	p := &probe{}

	d, err := WeakSubscribeObserver[int](s, p)
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	s.OnNext(1)
	s.OnNext(2)
	d.Dispose()
	s.OnNext(3)

	assert.Equal(t, []int{1, 2}, p.values)
	assert.Equal(t, 0, s.Count())
}

func Test_WeakSubscribeObserverForwardsTerminalNotifications(t *testing.T) {
	s := NewSubject[int]()
	p := &probe{}

	d, err := WeakSubscribeObserver[int](s, p)
	require.NoError(t, err)
	defer d.Dispose()

	s.OnNext(1)
	s.OnCompleted()

	assert.Equal(t, []int{1}, p.values)
	assert.Equal(t, 1, p.completed)
}

func Test_WeakSubscribeObserverToCompletedSubject(t *testing.T) {
	s := NewSubject[int]()
	s.OnCompleted()
	p := &probe{}

	d, err := WeakSubscribeObserver[int](s, p)
	require.NoError(t, err)

	assert.Equal(t, 1, p.completed)
	require.NotPanics(t, d.Dispose)
}

//go:noinline
func observeAndDrop(t *testing.T, s *Subject[int], p *probe) {
	d, err := WeakSubscribeObserver[int](s, p)
	require.NoError(t, err)
	s.OnNext(1)
	runtime.KeepAlive(d)
}

func Test_WeakSubscribeObserverDroppedHandle(t *testing.T) {
	s := NewSubject[int]()
	p := &probe{}

	observeAndDrop(t, s, p)
	runtime.GC()
	s.OnNext(2)

	assert.Equal(t, []int{1}, p.values)
	requireEventuallyEmpty(t, s.Count)
}

func Test_VeryWeakSubscribeObserverSurvivesDroppedHandle(t *testing.T) {
	s := NewSubject[int]()
	p := &probe{}

	func() {
		_, err := VeryWeakSubscribeObserver[int](s, p)
		require.NoError(t, err)
	}()

	runtime.GC()
	s.OnNext(1)

	assert.Equal(t, []int{1}, p.values)
	assert.Equal(t, 1, s.Count())
	runtime.KeepAlive(p)
}

//go:noinline
func observeWithTransientObserver(t *testing.T, s *Subject[int], hits *atomic.Int64) {
	o := &ObserverFuncs[int]{Next: func(int) { hits.Add(1) }}
	_, err := VeryWeakSubscribeObserver[int](s, o)
	require.NoError(t, err)
	s.OnNext(1)
}

func Test_VeryWeakSubscribeObserverEndsWithObserver(t *testing.T) {
	s := NewSubject[int]()
	var hits atomic.Int64

	observeWithTransientObserver(t, s, &hits)
	runtime.GC()
	s.OnNext(2)

	assert.Equal(t, int64(1), hits.Load())
	requireEventuallyEmpty(t, s.Count)
}

func Test_AsWeakObservable(t *testing.T) {
	s := NewSubject[int]()
	weakSource, err := AsWeakObservable[int](s)
	require.NoError(t, err)

	p := &probe{}
	d, err := weakSource.Subscribe(p)
	require.NoError(t, err)

	s.OnNext(4)
	d.Dispose()
	s.OnNext(5)

	assert.Equal(t, []int{4}, p.values)
	assert.Equal(t, 0, s.Count())
}

func Test_AsVeryWeakObservable(t *testing.T) {
	s := NewSubject[int]()
	weakSource, err := AsVeryWeakObservable[int](s)
	require.NoError(t, err)

	p := &probe{}
	func() {
		_, err := weakSource.Subscribe(p)
		require.NoError(t, err)
	}()

	runtime.GC()
	s.OnNext(6)

	assert.Equal(t, []int{6}, p.values)
	runtime.KeepAlive(p)

	_, err = weakSource.Subscribe(valueObserver{})
	var argErr *ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, ParamObserver, argErr.Param)
}

func Test_ObservableNilArguments(t *testing.T) {
	s := NewSubject[int]()
	p := &probe{}

	tests := []struct {
		name      string
		call      func() error
		wantParam string
	}{
		{"weak source", func() error { _, err := WeakSubscribeObserver[int](nil, p); return err }, ParamSource},
		{"weak observer", func() error { _, err := WeakSubscribeObserver[int](s, nil); return err }, ParamObserver},
		{"very weak source", func() error { _, err := VeryWeakSubscribeObserver[int](nil, p); return err }, ParamSource},
		{"very weak observer", func() error { _, err := VeryWeakSubscribeObserver[int](s, nil); return err }, ParamObserver},
		{"very weak typed nil observer", func() error {
			_, err := VeryWeakSubscribeObserver[int](s, (*probe)(nil))
			return err
		}, ParamObserver},
		{"adapt weak source", func() error { _, err := AsWeakObservable[int](nil); return err }, ParamSource},
		{"adapt very weak source", func() error { _, err := AsVeryWeakObservable[int](nil); return err }, ParamSource},
		{"adapted weak observer", func() error {
			o, err := AsWeakObservable[int](s)
			require.NoError(t, err)
			_, err = o.Subscribe(nil)
			return err
		}, ParamObserver},
		{"adapted very weak observer", func() error {
			o, err := AsVeryWeakObservable[int](s)
			require.NoError(t, err)
			_, err = o.Subscribe(nil)
			return err
		}, ParamObserver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.ErrorIs(t, err, ErrInvalidArgument)

			var argErr *ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.wantParam, argErr.Param)
		})
	}

	assert.Equal(t, 0, s.Count())
}

func Test_WeakSubscribeObserverSourceRefuses(t *testing.T) {
	errRefused := errors.New("refused")

	d, err := WeakSubscribeObserver[int](refusingSource{err: errRefused}, &probe{})
	require.ErrorIs(t, err, errRefused)
	assert.Nil(t, d)

	d, err = VeryWeakSubscribeObserver[int](refusingSource{err: errRefused}, &probe{})
	require.ErrorIs(t, err, errRefused)
	assert.Nil(t, d)
}
