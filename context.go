package quill

import (
	"context"
	"net/http"
)

type contextKey struct {
	name string
}

var (
	requestKey = &contextKey{"request"}
	writerKey  = &contextKey{"writer"}
	rpcInfoKey = &contextKey{"rpc_info"}
)

// RPCInfo identifies the method being dispatched.
type RPCInfo struct {
	Service string // fully-qualified service name, e.g. "test.TestAPI"
	Method  string // wire method name, e.g. "Ping"
}

// RequestFromContext returns the inbound HTTP request, or nil if the handler
// was invoked outside the HTTP adapter (e.g. directly via Dispatch).
func RequestFromContext(ctx context.Context) *http.Request {
	if r, ok := ctx.Value(requestKey).(*http.Request); ok {
		return r
	}
	return nil
}

// MethodFromContext returns the service and method of the current call.
func MethodFromContext(ctx context.Context) (service, method string, ok bool) {
	if info, ok := ctx.Value(rpcInfoKey).(*RPCInfo); ok {
		return info.Service, info.Method, true
	}
	return "", "", false
}

// SetResponseHeader sets a header on the HTTP response for the current call.
// It is a no-op when the handler was invoked outside the HTTP adapter.
func SetResponseHeader(ctx context.Context, key, value string) {
	if w, ok := ctx.Value(writerKey).(http.ResponseWriter); ok {
		w.Header().Set(key, value)
	}
}

func newContext(ctx context.Context, w http.ResponseWriter, r *http.Request, info *RPCInfo) context.Context {
	ctx = context.WithValue(ctx, writerKey, w)
	ctx = context.WithValue(ctx, requestKey, r)
	ctx = context.WithValue(ctx, rpcInfoKey, info)
	return ctx
}
