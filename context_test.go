package quill

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestContextHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test.TestAPI/Ping", nil)
	w := httptest.NewRecorder()
	info := &RPCInfo{Service: "test.TestAPI", Method: "Ping"}
	ctx := newContext(req.Context(), w, req, info)

	if got := RequestFromContext(ctx); got != req {
		t.Errorf("RequestFromContext = %v, want the original request", got)
	}
	service, method, ok := MethodFromContext(ctx)
	if !ok || service != "test.TestAPI" || method != "Ping" {
		t.Errorf("MethodFromContext = (%q, %q, %v)", service, method, ok)
	}

	SetResponseHeader(ctx, "X-Request-Id", "abc123")
	if got := w.Header().Get("X-Request-Id"); got != "abc123" {
		t.Errorf("response header = %q, want abc123", got)
	}
}

func TestContextHelpersOutsideHTTP(t *testing.T) {
	ctx := context.Background()

	if got := RequestFromContext(ctx); got != nil {
		t.Errorf("RequestFromContext = %v, want nil", got)
	}
	if _, _, ok := MethodFromContext(ctx); ok {
		t.Error("MethodFromContext should report no method")
	}
	// Must not panic without a writer in the context.
	SetResponseHeader(ctx, "X-Request-Id", "abc123")
}

func TestServeHTTPPopulatesContext(t *testing.T) {
	var service, method string
	b := NewRouterBuilder()
	b.Route("/test.TestAPI/Ping", func(ctx context.Context, req []byte) ([]byte, *Error) {
		service, method, _ = MethodFromContext(ctx)
		SetResponseHeader(ctx, "X-Handled-By", "ping")
		return []byte("{}"), nil
	})
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test.TestAPI/Ping", nil))

	if service != "test.TestAPI" || method != "Ping" {
		t.Errorf("rpc info = (%q, %q)", service, method)
	}
	if got := w.Header().Get("X-Handled-By"); got != "ping" {
		t.Errorf("header = %q, want ping", got)
	}
}
