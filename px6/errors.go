package px6

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid px6 configuration")
	// ErrValidation indicates a parameter was rejected before any request was made
	ErrValidation = errors.New("px6: invalid parameter")
	// ErrTransport indicates the request never produced an HTTP response
	ErrTransport = errors.New("px6: transport failure")
	// ErrRateLimited indicates the API answered with 429 Too Many Requests
	ErrRateLimited = errors.New("px6: rate limited")
	// ErrDocumented indicates the API answered with one of its error codes
	ErrDocumented = errors.New("px6: api error")
	// ErrUnexpectedResponse indicates a body that could not be mapped to a result
	ErrUnexpectedResponse = errors.New("px6: unexpected response")
)

// ErrorKind discriminates the failures a call can end with.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindTransport
	KindRateLimited
	KindDocumented
	KindUnexpectedResponse
	KindOther
)

// String returns the kind as a short label, suitable for metrics and logs
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindRateLimited:
		return "rate_limited"
	case KindDocumented:
		return "documented"
	case KindUnexpectedResponse:
		return "unexpected_response"
	default:
		return "other"
	}
}

// KindOf classifies err. Wrapped errors are unwrapped with errors.Is.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnexpectedResponse):
		return KindUnexpectedResponse
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrDocumented):
		return KindDocumented
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindOther
	}
}

// ValidationError is returned when a value or parameter set is rejected locally.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("px6: invalid parameters: %s", e.Reason)
	}
	return fmt.Sprintf("px6: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransportError wraps a failure of the underlying transport.
type TransportError struct {
	Method Method
	Err    error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("px6: %s request failed: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// RateLimitedError is returned for HTTP 429 responses. Body is kept verbatim.
type RateLimitedError struct {
	Body string
}

// Error implements the error interface
func (e *RateLimitedError) Error() string {
	return "px6: too many requests"
}

func (e *RateLimitedError) Is(target error) bool { return target == ErrRateLimited }

// DocumentedError carries the error_id and error fields of a status "no" envelope.
type DocumentedError struct {
	Code    int
	Message string
}

// Error implements the error interface
func (e *DocumentedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("px6 API error %d: %s", e.Code, e.Description())
	}
	return fmt.Sprintf("px6 API error %d: %s", e.Code, e.Message)
}

func (e *DocumentedError) Is(target error) bool { return target == ErrDocumented }

// ErrorCode returns the code as an ErrorCode
func (e *DocumentedError) ErrorCode() ErrorCode {
	return ErrorCode(e.Code)
}

// Description returns the documented meaning of the code, or "" for codes
// outside the published table.
func (e *DocumentedError) Description() string {
	return ErrorCode(e.Code).Description()
}

// IsAuth checks if the error indicates a bad key or a disallowed source IP
func (e *DocumentedError) IsAuth() bool {
	return e.Code == int(CodeKey) || e.Code == int(CodeIP)
}

// IsNotFound checks if the error indicates a missing element
func (e *DocumentedError) IsNotFound() bool {
	return e.Code == int(CodeNotFound)
}

// IsInsufficientFunds checks if the account balance is too low for the operation
func (e *DocumentedError) IsInsufficientFunds() bool {
	return e.Code == int(CodeNoMoney)
}

// UnexpectedResponseError is returned when a body cannot be mapped to the
// expected result. Body is kept verbatim.
type UnexpectedResponseError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error implements the error interface
func (e *UnexpectedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("px6: unexpected response (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("px6: unexpected response (status %d)", e.StatusCode)
}

func (e *UnexpectedResponseError) Unwrap() error { return e.Err }

func (e *UnexpectedResponseError) Is(target error) bool { return target == ErrUnexpectedResponse }
