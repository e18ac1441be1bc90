// Package uds implements a UDS (ISO 14229) request/response client over
// an ISO-TP channel: send-and-wait with negative-response and
// response-pending handling, grounded on original_source's
// uds/client.rs and uds/error.rs.
package uds

import (
	"errors"
	"fmt"

	"jlrdiag/internal/catalog"
)

// errMaxBusyRetries is the Cause carried when the busy-retry loop gives
// up after its retry cap (spec.md §4.C).
var errMaxBusyRetries = errors.New("max busy retries exceeded")

// Error is the tagged result every client operation returns on failure.
// Its Kind distinguishes the transport layer from the protocol layer so
// callers can retry negative responses differently from a dead channel.
type Error struct {
	Kind      ErrorKind
	ServiceID byte
	NRC       catalog.NRC
	Cause     error
}

// ErrorKind names one of the closed set of ways a UDS exchange fails
// (spec.md §7).
type ErrorKind int

const (
	// ErrKindTimeout means no matching positive or negative response
	// arrived within the deadline.
	ErrKindTimeout ErrorKind = iota
	// ErrKindNegativeResponse means the ECU answered 0x7F with a
	// non-pending NRC.
	ErrKindNegativeResponse
	// ErrKindTransport means the underlying binding call itself failed.
	ErrKindTransport
)

func (e *Error) Error() string {
	switch e.Kind {
	case ErrKindTimeout:
		return "uds: timeout waiting for response"
	case ErrKindNegativeResponse:
		return fmt.Sprintf("uds: service 0x%02X: %s", e.ServiceID, e.NRC.String())
	case ErrKindTransport:
		return fmt.Sprintf("uds: transport error: %v", e.Cause)
	default:
		return "uds: unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// IsTimeout reports whether err is a Timeout-kind *Error.
func IsTimeout(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == ErrKindTimeout
}

// IsNegativeResponse reports whether err is a NegativeResponse-kind
// *Error and, if so, returns its NRC.
func IsNegativeResponse(err error) (catalog.NRC, bool) {
	e, ok := err.(*Error)
	if !ok || e.Kind != ErrKindNegativeResponse {
		return catalog.NRC{}, false
	}
	return e.NRC, true
}

func timeoutErr() *Error {
	return &Error{Kind: ErrKindTimeout}
}

func negativeResponseErr(serviceID byte, nrc catalog.NRC) *Error {
	return &Error{Kind: ErrKindNegativeResponse, ServiceID: serviceID, NRC: nrc}
}

func transportErr(cause error) *Error {
	return &Error{Kind: ErrKindTransport, Cause: cause}
}
