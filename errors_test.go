package quill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeCanceled, http.StatusRequestTimeout},
		{CodeUnknown, http.StatusInternalServerError},
		{CodeInvalidArgument, http.StatusBadRequest},
		{CodeMalformed, http.StatusBadRequest},
		{CodeDeadlineExceeded, http.StatusRequestTimeout},
		{CodeNotFound, http.StatusNotFound},
		{CodeBadRoute, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodePermissionDenied, http.StatusForbidden},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{CodeResourceExhausted, http.StatusTooManyRequests},
		{CodeFailedPrecondition, http.StatusPreconditionFailed},
		{CodeAborted, http.StatusConflict},
		{CodeOutOfRange, http.StatusBadRequest},
		{CodeUnimplemented, http.StatusNotImplemented},
		{CodeInternal, http.StatusInternalServerError},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeDataLoss, http.StatusInternalServerError},
		// Total mapping: unknown codes fall back to 500.
		{ErrorCode("no_such_code"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestErrorEnvelopeFieldNames(t *testing.T) {
	// The envelope field names are part of the wire contract.
	data, err := json.Marshal(InternalError("boom!"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"code":"internal","msg":"boom!"}`
	if string(data) != want {
		t.Errorf("envelope = %s, want %s", data, want)
	}

	data, err = json.Marshal(NewError(CodeNotFound, "gone").WithMeta("key", "value"))
	if err != nil {
		t.Fatal(err)
	}
	want = `{"code":"not_found","msg":"gone","meta":{"key":"value"}}`
	if string(data) != want {
		t.Errorf("envelope with meta = %s, want %s", data, want)
	}
}

func TestErrorError(t *testing.T) {
	err := NewError(CodeInternal, "something went wrong")
	if got, want := err.Error(), "internal: something went wrong"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeInvalidArgument, "bad field: %s", "email")
	if err.Code != CodeInvalidArgument {
		t.Errorf("code = %s, want %s", err.Code, CodeInvalidArgument)
	}
	if err.Msg != "bad field: email" {
		t.Errorf("msg = %q, want formatted message", err.Msg)
	}
}

func TestWithMetaCopies(t *testing.T) {
	base := NewError(CodeAborted, "lost the race")
	derived := base.WithMeta("attempt", "3")

	if base.Meta != nil {
		t.Errorf("WithMeta modified receiver: %v", base.Meta)
	}
	if derived.Meta["attempt"] != "3" {
		t.Errorf("derived meta = %v, want attempt=3", derived.Meta)
	}

	second := derived.WithMeta("reason", "conflict")
	if _, ok := derived.Meta["reason"]; ok {
		t.Error("WithMeta modified intermediate error")
	}
	if len(second.Meta) != 2 {
		t.Errorf("second meta = %v, want both keys", second.Meta)
	}
}

func TestInvalidArgumentError(t *testing.T) {
	err := InvalidArgumentError("name", "must not be empty")
	if err.Code != CodeInvalidArgument {
		t.Errorf("code = %s", err.Code)
	}
	if err.Msg != "name must not be empty" {
		t.Errorf("msg = %q", err.Msg)
	}
	if err.Meta["argument"] != "name" {
		t.Errorf("meta = %v, want argument=name", err.Meta)
	}
}

func TestDefaultErrorTransformer(t *testing.T) {
	svcErr := NotFoundError("no such user")
	tests := []struct {
		name     string
		input    error
		wantCode ErrorCode
		wantMsg  string
	}{
		{"passthrough", svcErr, CodeNotFound, "no such user"},
		{"wrapped passthrough", fmt.Errorf("lookup: %w", svcErr), CodeNotFound, "no such user"},
		{"deadline", context.DeadlineExceeded, CodeDeadlineExceeded, "request deadline exceeded"},
		{"canceled", context.Canceled, CodeCanceled, "request canceled"},
		{"plain error", errors.New("disk on fire"), CodeInternal, "disk on fire"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaultErrorTransformer(tt.input)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.Msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", got.Msg, tt.wantMsg)
			}
		})
	}

	if got := defaultErrorTransformer(nil); got != nil {
		t.Errorf("transformer(nil) = %v, want nil", got)
	}
}
