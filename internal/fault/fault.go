// Package fault defines the error taxonomy shared by the API clients and agents.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can branch without string matching.
type Kind int

const (
	// KindUnknown is the zero value for errors that carry no classification.
	KindUnknown Kind = iota
	// KindInvalidArgument marks caller misuse detected before any I/O.
	KindInvalidArgument
	// KindAuth marks bad or missing credentials.
	KindAuth
	// KindRateLimited marks provider quota exhaustion.
	KindRateLimited
	// KindUpstream marks an unexpected status or payload from a remote service.
	KindUpstream
	// KindTransport marks a network-layer failure (connect, timeout, DNS).
	KindTransport
	// KindConfig marks a missing local file or path.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Error is a classified error with an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Invalidf reports caller misuse. Check inputs with it before spending quota.
func Invalidf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

// Authf reports bad or missing credentials.
func Authf(format string, args ...any) error {
	return &Error{Kind: KindAuth, Msg: fmt.Sprintf(format, args...)}
}

// RateLimitedf reports quota exhaustion.
func RateLimitedf(format string, args ...any) error {
	return &Error{Kind: KindRateLimited, Msg: fmt.Sprintf(format, args...)}
}

// Upstreamf reports an unexpected remote response, wrapping the cause if given.
func Upstreamf(err error, format string, args ...any) error {
	return &Error{Kind: KindUpstream, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Transportf wraps a network-layer failure.
func Transportf(err error, format string, args ...any) error {
	return &Error{Kind: KindTransport, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Configf reports a missing local file or path.
func Configf(format string, args ...any) error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
