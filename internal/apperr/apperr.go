// Package apperr defines the kind-tagged error type shared across the
// contact pipeline. Every layer that can fail (crypto, rate limiting,
// validation, mail dispatch) tags its errors with a Kind at the point of
// failure; the HTTP error responder switches on that Kind to pick a status
// code and a safe user-facing message. Classification never inspects error
// message text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the failure category of an Error.
type Kind int

const (
	// KindInternal is the fallback for unclassified failures (HTTP 500).
	KindInternal Kind = iota
	// KindValidation marks user-correctable input problems (HTTP 400).
	KindValidation
	// KindRateLimit marks sliding-window rejections (HTTP 429).
	KindRateLimit
	// KindCrypto marks encryption/decryption failures (HTTP 400, generic).
	KindCrypto
	// KindIntegrity marks HMAC verification failures (HTTP 400, generic).
	KindIntegrity
	// KindMailDispatch marks provider-side email failures (HTTP 500, generic).
	KindMailDispatch
	// KindTimeout marks deadline overruns, client- or server-imposed (HTTP 408).
	KindTimeout
)

// String returns a short label for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindRateLimit:
		return "rate_limit"
	case KindCrypto:
		return "crypto"
	case KindIntegrity:
		return "integrity"
	case KindMailDispatch:
		return "mail_dispatch"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is a kind-tagged application error. Details carries per-field
// validation messages and is only ever disclosed for KindValidation.
type Error struct {
	Kind    Kind
	Msg     string
	Details []string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds a kind-tagged error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a kind-tagged error around an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Validation builds a validation error carrying the accumulated rule
// violations so the handler can report them all at once.
func Validation(details []string) *Error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Details: details}
}

// KindOf extracts the Kind from err, walking the wrap chain. Untagged
// errors classify as KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// DetailsOf returns the validation details attached to err, if any.
func DetailsOf(err error) []string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Details
	}
	return nil
}
