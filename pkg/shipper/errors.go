package shipper

import (
	"errors"
	"fmt"
	"net/http"
)

// CarrierError is a failure talking to a carrier API that prevented it from
// producing any answer (as opposed to a rejected estimate, which the carrier
// reports as messages).
type CarrierError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is matches another CarrierError with the same code, or the sentinel that
// corresponds to the HTTP status.
func (e *CarrierError) Is(target error) bool {
	if t, ok := target.(*CarrierError); ok {
		return e.Code == t.Code
	}
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return target == ErrAuthenticationFailed
	case http.StatusTooManyRequests:
		return target == ErrRateLimitExceeded
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return target == ErrServiceUnavailable
	}
	return false
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(carrier, code, message string) *CarrierError {
	return &CarrierError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// WithStatusCode records the HTTP status and derives Retryable from it.
func (e *CarrierError) WithStatusCode(code int) *CarrierError {
	e.StatusCode = code
	e.Retryable = code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
	return e
}

// WithRetryable overrides the retryable flag.
func (e *CarrierError) WithRetryable(retryable bool) *CarrierError {
	e.Retryable = retryable
	return e
}

var (
	// ErrMethodNotFound is returned by a MethodStore for an unknown id.
	ErrMethodNotFound = errors.New("shipping method not found")

	// ErrServiceUnavailable indicates the carrier service is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrAuthenticationFailed indicates carrier authentication failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrRateLimitExceeded indicates the carrier rate limit was exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// IsRetryable reports whether a caller may reasonably try the same request
// again later. Nothing in this module retries on its own.
func IsRetryable(err error) bool {
	var carrierErr *CarrierError
	if errors.As(err, &carrierErr) {
		return carrierErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimitExceeded)
}
