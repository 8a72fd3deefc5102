// Package request tracks the lifecycle of outbound HTTP calls made by the
// storefront: the menu fetch and the order submission.
//
// A Manager owns the State of one request identity (endpoint plus request
// shape). Managers are shared through a Registry so that repeated
// observations of the same identity reuse one instance and never trigger a
// second automatic fetch.
package request

// Status is the lifecycle position of a request.
type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Success Status = "success"
	Error   Status = "error"
)

// State is the observable result of a request. Data keeps its last value
// while a new call is loading or after a call fails.
type State[T any] struct {
	Status       Status `json:"status"`
	Data         T      `json:"data"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

// Initial returns an idle state holding data.
func Initial[T any](data T) State[T] {
	return State[T]{Status: Idle, Data: data}
}

func (s State[T]) Begin() State[T] {
	s.Status = Loading
	s.ErrorMessage = ""
	return s
}

func (s State[T]) Succeed(data T) State[T] {
	s.Status = Success
	s.Data = data
	s.ErrorMessage = ""
	return s
}

func (s State[T]) Fail(message string) State[T] {
	s.Status = Error
	s.ErrorMessage = message
	return s
}

// Reset discards the result and returns to Idle with data.
func (s State[T]) Reset(data T) State[T] {
	return Initial(data)
}

func (s State[T]) IsLoading() bool { return s.Status == Loading }
