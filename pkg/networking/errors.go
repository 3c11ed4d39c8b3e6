package networking

import (
	"errors"
	"strings"
)

// ErrorKind classifies a failed request. Kinds are mutually exclusive.
type ErrorKind string

const (
	KindBadURL        ErrorKind = "bad_url"
	KindRequestFailed ErrorKind = "request_failed"
	KindUnknown       ErrorKind = "unknown"
	KindDecoding      ErrorKind = "decoding_error"
)

// Error is the only error type delivered to callers. It carries the kind and nothing else;
// transport and decoder error text stays in the executor's log.
type Error struct {
	Kind ErrorKind
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return strings.ReplaceAll(string(e.Kind), "_", " ")
}

// Sentinel errors, one per kind. Compare with errors.Is.
var (
	ErrBadURL        = &Error{Kind: KindBadURL}
	ErrRequestFailed = &Error{Kind: KindRequestFailed}
	ErrUnknown       = &Error{Kind: KindUnknown}
	ErrDecoding      = &Error{Kind: KindDecoding}
)

// KindOf returns the kind carried by err, or "" when err is not a networking error.
func KindOf(err error) ErrorKind {
	var ne *Error
	if errors.As(err, &ne) && ne != nil {
		return ne.Kind
	}
	return ""
}

// IsKind helps callers classify errors without switching on sentinels.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
