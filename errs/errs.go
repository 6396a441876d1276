// Package errs defines the error taxonomy shared by the pipeline and the
// HTTP layer. Recoverable per-unit conditions are represented as values so
// the orchestrator can tell "unit failed, continue" from "request-fatal"
// without inspecting error types across goroutine boundaries.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuth           Kind = "auth"
	KindQuotaExceeded  Kind = "quota_exceeded"
	KindNotFound       Kind = "not_found"
	KindServiceFailure Kind = "service_failure"
	KindTimeout        Kind = "timeout"
)

// Error carries the failure kind, an operator-facing message, optional
// details for the response envelope, and whether a client retry could help.
type Error struct {
	Kind      Kind
	Message   string
	Details   string
	Retryable bool
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func QuotaExceeded(msg string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ServiceFailure(msg string, err error) *Error {
	return &Error{Kind: KindServiceFailure, Message: msg, Err: err, Retryable: true}
}

func Timeout(msg string) *Error {
	return &Error{Kind: KindTimeout, Message: msg, Retryable: true}
}

// KindOf returns the Kind of err, or KindServiceFailure for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindServiceFailure
}

// IsRetryable reports whether err is a transient failure worth retrying.
// Untyped errors from external collaborators are treated as transient;
// typed errors carry their own classification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return true
}

// HTTPStatus maps an error kind to the status used by the front door.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindQuotaExceeded:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
