package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind names the category of a failure as reported to protocol callers.
type ErrorKind string

const (
	KindConnection     ErrorKind = "connection_error"
	KindAuthentication ErrorKind = "authentication_error"
	KindPermission     ErrorKind = "permission_error"
	KindValidation     ErrorKind = "validation_error"
	KindTimeout        ErrorKind = "timeout_error"
	KindNotFound       ErrorKind = "not_found"
	KindInternal       ErrorKind = "internal_error"
)

// DenialReason distinguishes why the access controller refused an operation.
type DenialReason string

const (
	// ReasonModelNotEnabled means the model is absent from the enabled set.
	ReasonModelNotEnabled DenialReason = "model not enabled"
	// ReasonOperationNotPermitted means the model is enabled but the operation is not.
	ReasonOperationNotPermitted DenialReason = "operation not permitted"
	// ReasonNoPermissionData means no unexpired permission snapshot exists.
	ReasonNoPermissionData DenialReason = "no active permission data available"
	// ReasonBackendDenied means the backend itself rejected the call.
	ReasonBackendDenied DenialReason = "denied by backend"
)

// ConnectionError reports an unreachable backend or a transport failure.
// The connection that produced it must re-authenticate before the next call.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("connection error: %v", e.Err)
	}
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthenticationError reports invalid or missing credentials. Message never
// contains the credential values themselves.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return "authentication failed: " + e.Message
}

// PermissionError reports an operation refused by the access controller or
// by the backend.
type PermissionError struct {
	Model     string
	Operation string
	Reason    DenialReason
	Message   string
}

func (e *PermissionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("access denied: %s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("access denied: %s: %s on model '%s'", e.Reason, e.Operation, e.Model)
}

// ValidationError reports malformed input: a bad domain, an unknown field,
// or values rejected by the backend. Field or Fragment names the culprit.
type ValidationError struct {
	Field    string
	Fragment string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Fragment != "":
		return fmt.Sprintf("validation error: %s (near %q)", e.Message, e.Fragment)
	case e.Field != "":
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	default:
		return "validation error: " + e.Message
	}
}

// TimeoutError reports a backend call that exceeded its deadline. It is
// never retried automatically.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout: %s did not complete within %s", e.Op, e.Timeout)
}

// NotFoundError reports a record that does not exist.
type NotFoundError struct {
	Model    string
	RecordID int
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("record not found: %s with ID %d", e.Model, e.RecordID)
}

// IsConnectionError reports whether err is or wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// IsAuthenticationError reports whether err is or wraps an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var target *AuthenticationError
	return errors.As(err, &target)
}

// IsPermissionError reports whether err is or wraps a PermissionError.
func IsPermissionError(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsTimeoutError reports whether err is or wraps a TimeoutError.
func IsTimeoutError(err error) bool {
	var target *TimeoutError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// KindOf classifies err into one of the ErrorKind values.
func KindOf(err error) ErrorKind {
	switch {
	case IsTimeoutError(err):
		return KindTimeout
	case IsAuthenticationError(err):
		return KindAuthentication
	case IsPermissionError(err):
		return KindPermission
	case IsValidationError(err):
		return KindValidation
	case IsNotFound(err):
		return KindNotFound
	case IsConnectionError(err):
		return KindConnection
	default:
		return KindInternal
	}
}

// ErrorPayload builds the structured error body returned to protocol callers.
func ErrorPayload(err error) map[string]interface{} {
	payload := map[string]interface{}{
		"error": err.Error(),
		"type":  string(KindOf(err)),
	}

	var permErr *PermissionError
	if errors.As(err, &permErr) {
		payload["reason"] = string(permErr.Reason)
	}
	return payload
}
