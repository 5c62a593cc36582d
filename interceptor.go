package quill

// Interceptor wraps handler execution. Interceptors can inspect the raw
// request, short-circuit with an error, or decorate the context before
// calling next.
//
//	func timing(next quill.Handler) quill.Handler {
//	    return func(ctx context.Context, req []byte) ([]byte, *quill.Error) {
//	        start := time.Now()
//	        res, err := next(ctx, req)
//	        log.Printf("call took %v", time.Since(start))
//	        return res, err
//	    }
//	}
type Interceptor func(next Handler) Handler

// chainInterceptors applies interceptors around h so that the first
// interceptor in the slice runs outermost.
func chainInterceptors(h Handler, interceptors []Interceptor) Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		h = interceptors[i](h)
	}
	return h
}
