package quill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
)

// Handler is the raw dispatch unit: it receives the undecoded request body
// and returns the encoded response body or a service error. Decoding and
// encoding live inside the handler (see Route); the router itself never
// inspects message content.
type Handler func(ctx context.Context, req []byte) ([]byte, *Error)

// defaultMaxRequestBodySize caps inbound bodies at 1 MiB unless overridden.
const defaultMaxRequestBodySize = 1 << 20

// RouterOption configures a RouterBuilder.
type RouterOption func(*RouterBuilder)

// WithCodec sets the message codec used by typed routes. Default is JSONCodec.
func WithCodec(c Codec) RouterOption {
	return func(b *RouterBuilder) { b.codec = c }
}

// WithErrorTransformer sets the function that maps handler errors to service
// errors at the handler boundary.
func WithErrorTransformer(fn ErrorTransformer) RouterOption {
	return func(b *RouterBuilder) { b.transform = fn }
}

// WithInterceptor adds an interceptor around every handler. Interceptors run
// in registration order, first added outermost.
func WithInterceptor(i Interceptor) RouterOption {
	return func(b *RouterBuilder) { b.interceptors = append(b.interceptors, i) }
}

// WithLogger sets the logger used by the HTTP adapter. Default is slog.Default().
func WithLogger(logger *slog.Logger) RouterOption {
	return func(b *RouterBuilder) { b.logger = logger }
}

// WithMiddleware adds an HTTP middleware applied by Handler(). Middleware is
// applied in the order added, first added outermost.
func WithMiddleware(mw func(http.Handler) http.Handler) RouterOption {
	return func(b *RouterBuilder) { b.middlewares = append(b.middlewares, mw) }
}

// WithMaxRequestBodySize sets the maximum inbound request body size in bytes.
// Zero means no limit. Default is 1 MiB.
func WithMaxRequestBodySize(n int64) RouterOption {
	return func(b *RouterBuilder) {
		b.maxBody = n
		b.maxBodyIsSet = true
	}
}

// RouterBuilder accumulates routes before the router is frozen. It is not
// safe for concurrent use; build the router once, then share it.
type RouterBuilder struct {
	routes       map[string]Handler
	errs         []error
	codec        Codec
	transform    ErrorTransformer
	interceptors []Interceptor
	middlewares  []func(http.Handler) http.Handler
	logger       *slog.Logger
	maxBody      int64
	maxBodyIsSet bool
}

// NewRouterBuilder creates a builder with the given options. Options must be
// supplied here, before any routes are registered: typed routes capture the
// codec and error transformer at registration time.
func NewRouterBuilder(opts ...RouterOption) *RouterBuilder {
	b := &RouterBuilder{
		routes:    make(map[string]Handler),
		codec:     JSONCodec{},
		transform: defaultErrorTransformer,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.codec == nil {
		b.codec = JSONCodec{}
	}
	if b.transform == nil {
		b.transform = defaultErrorTransformer
	}
	return b
}

// Route registers a raw handler at path. A duplicate path is recorded as a
// build error and reported by Build; the earlier registration is never
// silently overwritten.
func (b *RouterBuilder) Route(path string, h Handler) *RouterBuilder {
	switch {
	case path == "" || !strings.HasPrefix(path, "/"):
		b.errs = append(b.errs, fmt.Errorf("route %q: path must begin with %q", path, "/"))
	case h == nil:
		b.errs = append(b.errs, fmt.Errorf("route %q: nil handler", path))
	default:
		if _, exists := b.routes[path]; exists {
			b.errs = append(b.errs, fmt.Errorf("route %q: duplicate registration", path))
			return b
		}
		b.routes[path] = h
	}
	return b
}

// Route registers a typed handler at path on b. The request is decoded and
// the response encoded with the builder's codec; errors returned by fn cross
// the dispatch boundary as *Error values via the builder's transformer.
// Generated router constructors register every method through this function.
func Route[In, Out any](b *RouterBuilder, path string, fn func(ctx context.Context, req *In) (*Out, error)) {
	codec := b.codec
	transform := b.transform
	b.Route(path, func(ctx context.Context, raw []byte) ([]byte, *Error) {
		req := new(In)
		if err := codec.Unmarshal(raw, req); err != nil {
			return nil, Errorf(CodeMalformed, "could not decode request body: %v", err)
		}
		res, err := fn(ctx, req)
		if err != nil {
			return nil, transform(err)
		}
		out, err := codec.Marshal(res)
		if err != nil {
			return nil, Errorf(CodeInternal, "could not encode response: %v", err)
		}
		return out, nil
	})
}

// Build freezes the builder into a Router. It fails if any registration was
// invalid, listing every recorded problem. The builder must not be used
// after a successful Build.
func (b *RouterBuilder) Build() (*Router, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("router build: %w", errors.Join(b.errs...))
	}
	routes := make(map[string]Handler, len(b.routes))
	for path, h := range b.routes {
		routes[path] = chainInterceptors(h, b.interceptors)
	}
	maxBody := int64(defaultMaxRequestBodySize)
	if b.maxBodyIsSet {
		maxBody = b.maxBody
	}
	return &Router{
		routes:      routes,
		codec:       b.codec,
		middlewares: b.middlewares,
		logger:      b.logger,
		maxBody:     maxBody,
	}, nil
}

// Router is the frozen dispatch table. Its route map is never mutated after
// Build, so concurrent lookups need no synchronization; lookup itself never
// blocks, only the invoked handler may.
type Router struct {
	routes      map[string]Handler
	codec       Codec
	middlewares []func(http.Handler) http.Handler
	logger      *slog.Logger
	maxBody     int64
}

// Dispatch looks up path by exact match and invokes the bound handler,
// passing its result through verbatim. An unknown path yields a bad_route
// error and invokes nothing. A handler panic is converted to an internal
// error at the dispatch boundary rather than unwinding further.
func (r *Router) Dispatch(ctx context.Context, path string, req []byte) (out []byte, svcErr *Error) {
	h, ok := r.routes[path]
	if !ok {
		return nil, BadRouteError("no handler for path "+path, path)
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger := r.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("panic in handler",
				slog.String("path", path),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			out, svcErr = nil, Errorf(CodeInternal, "internal error: %v", rec)
		}
	}()
	return h(ctx, req)
}

// Paths returns the registered paths in sorted order.
func (r *Router) Paths() []string {
	paths := make([]string, 0, len(r.routes))
	for path := range r.routes {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ServeHTTP adapts the router to the HTTP transport: it reads the body,
// dispatches on the exact URL path, and serializes the result per the wire
// contract. Calls must be POST; anything else is a bad_route, matching the
// treatment of an unknown path.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		writeError(w, BadRouteError("method must be POST", req.URL.Path), r.logger)
		return
	}
	body := req.Body
	if r.maxBody > 0 {
		body = http.MaxBytesReader(w, body, r.maxBody)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		writeError(w, Errorf(CodeMalformed, "could not read request body: %v", err), r.logger)
		return
	}
	service, method := splitMethodPath(req.URL.Path)
	ctx := newContext(req.Context(), w, req, &RPCInfo{Service: service, Method: method})
	out, svcErr := r.Dispatch(ctx, req.URL.Path, raw)
	if svcErr != nil {
		writeError(w, svcErr, r.logger)
		return
	}
	writeResponse(w, r.codec.ContentType(), out, r.logger)
}

// Handler returns the router wrapped in its configured middleware, for use
// with http.ListenAndServe or httptest.
func (r *Router) Handler() http.Handler {
	var h http.Handler = r
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h
}

// splitMethodPath splits "/pkg.Service/Method" into its service and method
// parts. Unroutable paths yield empty strings; dispatch rejects them anyway.
func splitMethodPath(path string) (service, method string) {
	trimmed := strings.TrimPrefix(path, "/")
	i := strings.LastIndex(trimmed, "/")
	if i < 0 {
		return "", ""
	}
	return trimmed[:i], trimmed[i+1:]
}
