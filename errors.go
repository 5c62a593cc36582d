package quill

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a machine-readable error code carried in the wire envelope.
// The code set and its HTTP status mapping are part of the protocol contract:
// every code maps to exactly one status, and both sides of a connection must
// agree on the strings below.
type ErrorCode string

const (
	// CodeCanceled means the operation was canceled by the caller. Status 408.
	CodeCanceled ErrorCode = "canceled"
	// CodeUnknown means an error of unknown origin. Status 500.
	CodeUnknown ErrorCode = "unknown"
	// CodeInvalidArgument means the client supplied a bad argument. Status 400.
	CodeInvalidArgument ErrorCode = "invalid_argument"
	// CodeMalformed means the request body could not be decoded. Status 400.
	CodeMalformed ErrorCode = "malformed"
	// CodeDeadlineExceeded means the deadline expired before completion. Status 408.
	CodeDeadlineExceeded ErrorCode = "deadline_exceeded"
	// CodeNotFound means a requested entity does not exist. Status 404.
	CodeNotFound ErrorCode = "not_found"
	// CodeBadRoute means no handler is bound to the requested path, or the
	// request used the wrong HTTP method. Status 404.
	CodeBadRoute ErrorCode = "bad_route"
	// CodeAlreadyExists means the entity already exists. Status 409.
	CodeAlreadyExists ErrorCode = "already_exists"
	// CodePermissionDenied means the caller lacks permission. Status 403.
	CodePermissionDenied ErrorCode = "permission_denied"
	// CodeUnauthenticated means the caller is not authenticated. Status 401.
	CodeUnauthenticated ErrorCode = "unauthenticated"
	// CodeResourceExhausted means a quota or rate limit was hit. Status 429.
	CodeResourceExhausted ErrorCode = "resource_exhausted"
	// CodeFailedPrecondition means system state forbids the operation. Status 412.
	CodeFailedPrecondition ErrorCode = "failed_precondition"
	// CodeAborted means the operation was aborted, e.g. a lost race. Status 409.
	CodeAborted ErrorCode = "aborted"
	// CodeOutOfRange means an argument was outside the valid range. Status 400.
	CodeOutOfRange ErrorCode = "out_of_range"
	// CodeUnimplemented means the method is not implemented. Status 501.
	CodeUnimplemented ErrorCode = "unimplemented"
	// CodeInternal means an invariant expected by the server was broken. Status 500.
	CodeInternal ErrorCode = "internal"
	// CodeUnavailable means the service is temporarily unavailable. Status 503.
	CodeUnavailable ErrorCode = "unavailable"
	// CodeDataLoss means unrecoverable data loss or corruption. Status 500.
	CodeDataLoss ErrorCode = "data_loss"
)

// HTTPStatus maps an ErrorCode to its HTTP status. The mapping is total:
// codes not listed here (including codes minted by future peers) map to 500.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeCanceled, CodeDeadlineExceeded:
		return http.StatusRequestTimeout
	case CodeInvalidArgument, CodeMalformed, CodeOutOfRange:
		return http.StatusBadRequest
	case CodeNotFound, CodeBadRoute:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeAborted:
		return http.StatusConflict
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeResourceExhausted:
		return http.StatusTooManyRequests
	case CodeFailedPrecondition:
		return http.StatusPreconditionFailed
	case CodeUnimplemented:
		return http.StatusNotImplemented
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured failure value a handler returns and the wire
// envelope it serializes to. Field names are part of the protocol contract.
type Error struct {
	Code ErrorCode         `json:"code"`
	Msg  string            `json:"msg"`
	Meta map[string]string `json:"meta,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// NewError creates a service error with the given code and message.
func NewError(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Errorf creates a service error with a formatted message.
func Errorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// WithMeta returns a copy of e with the key-value pair added to its metadata.
// The receiver is not modified.
func (e *Error) WithMeta(key, value string) *Error {
	meta := make(map[string]string, len(e.Meta)+1)
	for k, v := range e.Meta {
		meta[k] = v
	}
	meta[key] = value
	return &Error{Code: e.Code, Msg: e.Msg, Meta: meta}
}

// InternalError creates an internal error. Used for unexpected failures that
// should not leak implementation detail beyond the message.
func InternalError(msg string) *Error { return NewError(CodeInternal, msg) }

// NotFoundError creates a not_found error.
func NotFoundError(msg string) *Error { return NewError(CodeNotFound, msg) }

// InvalidArgumentError creates an invalid_argument error naming the bad argument.
func InvalidArgumentError(argument, reason string) *Error {
	return Errorf(CodeInvalidArgument, "%s %s", argument, reason).WithMeta("argument", argument)
}

// UnimplementedError creates an unimplemented error.
func UnimplementedError(msg string) *Error { return NewError(CodeUnimplemented, msg) }

// BadRouteError creates a bad_route error carrying the offending path.
func BadRouteError(msg, path string) *Error {
	return NewError(CodeBadRoute, msg).WithMeta("invalid_route", path)
}

// ErrorTransformer maps an arbitrary handler error to a service error.
// It runs at the handler boundary so that nothing but *Error values cross
// into dispatch.
type ErrorTransformer func(error) *Error

// defaultErrorTransformer passes *Error values through unchanged, maps
// context cancellation and deadline errors to their protocol codes, and
// folds everything else into an internal error.
func defaultErrorTransformer(err error) *Error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeDeadlineExceeded, "request deadline exceeded")
	}
	if errors.Is(err, context.Canceled) {
		return NewError(CodeCanceled, "request canceled")
	}
	return NewError(CodeInternal, err.Error())
}
