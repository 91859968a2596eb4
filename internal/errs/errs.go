package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation decisions and HTTP mapping.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork covers transport failures and timeouts talking to upstreams.
	KindNetwork
	// KindParse covers malformed responses and unrecognizable price text.
	KindParse
	// KindMissingField means a required element was absent from an upstream response.
	KindMissingField
	// KindCache covers an unreachable cache backend or a corrupt payload.
	KindCache
	// KindNoMatch means zero quotes survived confidence filtering.
	KindNoMatch
	// KindInternal covers misconfiguration and unexpected failures.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindMissingField:
		return "missing field"
	case KindCache:
		return "cache"
	case KindNoMatch:
		return "no match"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two errs.Errors with the same Kind and Msg, so sentinel
// values created with New work with errors.Is across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Msg == t.Msg
}

// New returns an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf returns an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a kind and message. Returns nil if err is nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
