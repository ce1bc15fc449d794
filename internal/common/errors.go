// Package common defines the error taxonomy shared by the credential store,
// the session client and the orchestration layer. Callers should use
// errors.Is against the sentinel kinds, or KindOf to obtain a stable name.
package common

import (
	"errors"
	"fmt"
)

var (
	// Session client errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNetwork            = errors.New("network error")
	ErrServer             = errors.New("server error")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidServerURL   = errors.New("invalid server url")

	// Store errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrStorage         = errors.New("storage error")

	ErrUnknown = errors.New("unknown error")
)

var kinds = []error{
	ErrInvalidCredentials,
	ErrNetwork,
	ErrServer,
	ErrTokenExpired,
	ErrInvalidServerURL,
	ErrAccountNotFound,
	ErrStorage,
	ErrUnknown,
}

// Error carries a taxonomy kind together with a human readable message,
// an optional HTTP status and the underlying cause.
type Error struct {
	Kind   error
	Msg    string
	Status int
	Err    error
}

func (e *Error) Error() string {
	kind := ErrUnknown
	if e.Kind != nil {
		kind = e.Kind
	}
	switch {
	case e.Msg == "" && e.Err == nil:
		return kind.Error()
	case e.Msg == "":
		return fmt.Sprintf("%s: %v", kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", kind, e.Msg)
	default:
		return fmt.Sprintf("%s: %s: %v", kind, e.Msg, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewError builds an *Error of the given kind.
func NewError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// StorageError wraps cause as ErrStorage with a short context message.
func StorageError(msg string, cause error) error {
	return &Error{Kind: ErrStorage, Msg: msg, Err: cause}
}

// AccountNotFound reports a lookup miss for id.
func AccountNotFound(id string) error {
	return &Error{Kind: ErrAccountNotFound, Msg: id}
}

// KindOf returns the taxonomy kind carried by err, or ErrUnknown when err
// does not match any kind. It returns nil for a nil error.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrUnknown
}

// IsRetryable reports whether err is a transient transport failure.
// Credential, server and expiry failures never are.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
