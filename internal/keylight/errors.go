package keylight

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of a device communication error
type ErrorType int

const (
	// ErrTypeUnreachable indicates the accessory could not be reached
	// (connection refused, timeout, no route, DNS failure)
	ErrTypeUnreachable ErrorType = iota
	// ErrTypeMalformed indicates the accessory returned a payload that does
	// not carry the expected state shape
	ErrTypeMalformed
	// ErrTypeHTTP indicates the accessory answered with a non-success
	// HTTP status
	ErrTypeHTTP
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeUnreachable:
		return "Device Unreachable"
	case ErrTypeMalformed:
		return "Malformed Response"
	case ErrTypeHTTP:
		return "HTTP Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// DeviceError is a typed error from a device operation. Network-level
// failures are always surfaced to the caller this way, never swallowed: a
// toggle or set failing invisibly is unacceptable.
type DeviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Addr       string    // Device address (for context)
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// newUnreachableError classifies a transport-level failure. The subtype
// only affects the message; every transport failure is unreachable from
// the caller's point of view.
func newUnreachableError(addr string, err error) *DeviceError {
	message := "network error"

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	switch {
	case os.IsTimeout(err):
		message = "request timed out"
	case errors.Is(err, syscall.ECONNREFUSED):
		message = "connection refused"
	case errors.Is(err, syscall.EHOSTUNREACH):
		message = "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		message = "network unreachable"
	default:
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			message = fmt.Sprintf("cannot resolve %s", dnsErr.Name)
		}
	}

	return &DeviceError{
		Type:    ErrTypeUnreachable,
		Message: message,
		Err:     err,
		Addr:    addr,
	}
}

func newMalformedError(addr, message string, err error) *DeviceError {
	return &DeviceError{
		Type:    ErrTypeMalformed,
		Message: message,
		Err:     err,
		Addr:    addr,
	}
}

func newHTTPError(addr string, statusCode int) *DeviceError {
	return &DeviceError{
		Type:       ErrTypeHTTP,
		Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		StatusCode: statusCode,
		Addr:       addr,
	}
}

// IsUnreachable checks whether an error means the accessory could not be
// reached
func IsUnreachable(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Type == ErrTypeUnreachable
}

// IsMalformed checks whether an error means the accessory returned an
// unexpected payload
func IsMalformed(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Type == ErrTypeMalformed
}
