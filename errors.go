package weakevent

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is wrapped by every ArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrPubSubClosed        = errors.New("pubsub is closed")
	ErrTooManySubscribers  = errors.New("maximum subscribers reached for topic")
	ErrDuplicateSubscriber = errors.New("subscriber already exists for topic")
	ErrUnknownTopic        = errors.New("topic not created")
)

// Parameter names reported by ArgumentError.
const (
	ParamRegister   = "register"
	ParamUnregister = "unregister"
	ParamHandler    = "handler"
	ParamConverter  = "converter"
	ParamSource     = "source"
	ParamObserver   = "observer"
	ParamPubSub     = "pubsub"
)

// ArgumentError reports a required collaborator that was not supplied or
// cannot be used. Param names the offending parameter.
type ArgumentError struct {
	Param  string
	Reason string
}

func (e *ArgumentError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "must not be nil"
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidArgument, e.Param, reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func argError(param string) error {
	return &ArgumentError{Param: param}
}

func notPointerError(param string) error {
	return &ArgumentError{Param: param, Reason: "must be a non-nil pointer to be held weakly"}
}

func zeroSizeError(param string) error {
	return &ArgumentError{Param: param, Reason: "must point to a value of non-zero size to be held weakly"}
}
