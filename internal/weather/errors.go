package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyLocation is returned when a forecast is requested without a location.
	ErrEmptyLocation = errors.New("location is required")

	// Fetch failure kinds. A *FetchError matches exactly one of them with errors.Is.
	ErrNetwork        = errors.New("upstream request failed")
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	ErrParse          = errors.New("upstream body is not valid json")
	ErrShape          = errors.New("upstream payload has unexpected shape")
)

// FetchError describes why a forecast could not be produced.
type FetchError struct {
	// Kind is one of ErrNetwork, ErrUpstreamStatus, ErrParse or ErrShape.
	Kind error

	// Field is the JSON path of the offending field for ErrShape.
	Field string
	// StatusCode is set for ErrUpstreamStatus.
	StatusCode int
	// Timeout reports whether an ErrNetwork failure was caused by a deadline.
	Timeout bool

	Err error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == ErrShape:
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Field, e.Err)
	case e.Kind == ErrUpstreamStatus:
		return fmt.Sprintf("%v: %d", e.Kind, e.StatusCode)
	case e.Timeout:
		return fmt.Sprintf("%v (timeout): %v", e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return fmt.Sprint(e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets callers match the failure kind with errors.Is(err, weather.ErrShape).
func (e *FetchError) Is(target error) bool { return target == e.Kind }

// NetworkError wraps a transport level failure.
func NetworkError(err error, timeout bool) *FetchError {
	return &FetchError{Kind: ErrNetwork, Timeout: timeout, Err: err}
}

// StatusError reports a non-2xx upstream response.
func StatusError(code int) *FetchError {
	return &FetchError{Kind: ErrUpstreamStatus, StatusCode: code}
}

// ParseError wraps a JSON syntax failure.
func ParseError(err error) *FetchError {
	return &FetchError{Kind: ErrParse, Err: err}
}

// ShapeError reports a missing or mistyped field at the given path.
func ShapeError(field string, err error) *FetchError {
	return &FetchError{Kind: ErrShape, Field: field, Err: err}
}
