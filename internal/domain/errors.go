package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across layers.
var (
	ErrNotFound = errors.New("not found")
	ErrNoSteps  = errors.New("no steps loaded")
	ErrClosed   = errors.New("controller is closed")
)

// ErrorKind classifies a step resolution failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindNoInternet
	KindServerError
	KindRequestTimeout
)

// String returns the upper-case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNoInternet:
		return "NO_INTERNET"
	case KindServerError:
		return "SERVER_ERROR"
	case KindRequestTimeout:
		return "REQUEST_TIMEOUT"
	default:
		return "OTHER"
	}
}

// NetworkError is returned by StepProvider implementations when steps
// cannot be produced.
type NetworkError struct {
	Kind ErrorKind
	Err  error
}

// NewNetworkError wraps err with the given kind.
func NewNetworkError(kind ErrorKind, err error) *NetworkError {
	return &NetworkError{Kind: kind, Err: err}
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Classify returns the kind of err. Errors that are not a *NetworkError
// are KindOther.
func Classify(err error) ErrorKind {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Kind
	}
	return KindOther
}

// UserMessage returns the text shown to the user for a failed resolution.
func UserMessage(err error) string {
	switch Classify(err) {
	case KindNoInternet:
		return "No internet connection"
	case KindServerError:
		return "Server error. Please try again."
	case KindRequestTimeout:
		return "Request timed out. Please try again."
	}
	var ne *NetworkError
	if errors.As(err, &ne) && ne.Err != nil {
		return fmt.Sprintf("Failed to load cooking steps: %v", ne.Err)
	}
	return fmt.Sprintf("Failed to load cooking steps: %v", err)
}
