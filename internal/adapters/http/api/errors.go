package api

import (
	"errors"
	"net/http"

	service "github.com/okian/bgxboard/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrBackpressure    = errors.New("backpressure")
	ErrRateLimited     = errors.New("rate limited")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInternal        = errors.New("internal error")
	ErrNotReady        = errors.New("service not ready")
)

// opError tags an error with the operation that produced it and a sentinel kind.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.kind != nil && e.err != nil:
		return e.op + ": " + e.kind.Error() + ": " + e.err.Error()
	case e.err != nil:
		return e.op + ": " + e.err.Error()
	case e.kind != nil:
		return e.op + ": " + e.kind.Error()
	}
	return e.op
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// WrapKind wraps err as kind, raised by op. A nil err yields nil.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, kind: kind, err: err}
}

// Wrap annotates err with op. A nil err yields nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// classify maps a service error to its HTTP status and error code.
func classify(op string, err error) (int, string, error) {
	switch {
	case errors.Is(err, service.ErrUnknownCategory):
		return http.StatusNotFound, "unknown_category", WrapKind(op, ErrUnknownCategory, err)
	case errors.Is(err, service.ErrInvalidPage):
		return http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err)
	}
	return http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err)
}
