package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNetworkFailure = errors.New("network failure")
	ErrDecodeFailure  = errors.New("invalid response body")
	ErrServer         = errors.New("server error")
	ErrValidation     = errors.New("validation failed")
)

// Kind classifies a GatewayError.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindHTTP means the server answered with a 4xx or 5xx status.
	KindHTTP
	// KindDecode means a 2xx body was not valid JSON.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// GatewayError is returned by every Gateway call that does not succeed.
// Detail carries the server-supplied message and is empty when the body
// had none.
type GatewayError struct {
	Kind   Kind
	Status int
	Detail string
	Err    error
}

func (e *GatewayError) Error() string {
	switch e.Kind {
	case KindHTTP:
		if e.Detail != "" {
			return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
		}
		return fmt.Sprintf("http %d: %s", e.Status, http.StatusText(e.Status))
	case KindDecode:
		return fmt.Sprintf("decode response: %v", e.Err)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Is lets callers match on the sentinel for the error's kind.
func (e *GatewayError) Is(target error) bool {
	switch target {
	case ErrNetworkFailure:
		return e.Kind == KindNetwork
	case ErrDecodeFailure:
		return e.Kind == KindDecode
	case ErrUnauthorized:
		return e.Kind == KindHTTP && e.Status == http.StatusUnauthorized
	case ErrServer:
		return e.Kind == KindHTTP && e.Status != http.StatusUnauthorized
	}
	return false
}

// ValidationError is a client-side rejection raised before any request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Detail returns the server-supplied message carried by err, if any.
func Detail(err error) string {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Detail
	}
	return ""
}
