// Package quilltest carries the canonical test.TestAPI fixture service used
// by conformance tests: Ping echoes the request name, Boom always fails with
// an internal error. The bindings below are written in exactly the shape
// quillgen emits for this service's descriptor.
package quilltest

import (
	"context"

	quill "github.com/quillrpc/quill"
)

// PingRequest is the input message for both fixture methods.
type PingRequest struct {
	Name string `json:"name"`
}

// PingResponse is the output message for both fixture methods.
type PingResponse struct {
	Name string `json:"name"`
}

// TestAPIPathPrefix is the canonical routing prefix for the test.TestAPI service.
const TestAPIPathPrefix = "/test.TestAPI"

// TestAPI is the server capability contract for the test.TestAPI service.
type TestAPI interface {
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	Boom(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// SharedTestAPI lets a single TestAPI implementation back any number of
// router closures.
type SharedTestAPI struct {
	Impl TestAPI
}

func (s SharedTestAPI) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return s.Impl.Ping(ctx, req)
}

func (s SharedTestAPI) Boom(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return s.Impl.Boom(ctx, req)
}

// NewTestAPIRouter registers every test.TestAPI method and freezes the router.
func NewTestAPIRouter(api TestAPI, opts ...quill.RouterOption) (*quill.Router, error) {
	b := quill.NewRouterBuilder(opts...)
	quill.Route(b, TestAPIPathPrefix+"/Ping", func(ctx context.Context, req *PingRequest) (*PingResponse, error) {
		return api.Ping(ctx, req)
	})
	quill.Route(b, TestAPIPathPrefix+"/Boom", func(ctx context.Context, req *PingRequest) (*PingResponse, error) {
		return api.Boom(ctx, req)
	})
	return b.Build()
}

// TestAPIClient is the client capability contract for the test.TestAPI service.
type TestAPIClient interface {
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	Boom(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

type testAPIClient struct {
	c *quill.Client
}

// NewTestAPIClient returns a TestAPIClient that issues calls through c.
func NewTestAPIClient(c *quill.Client) TestAPIClient {
	return &testAPIClient{c: c}
}

func (x *testAPIClient) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	out := new(PingResponse)
	if err := x.c.Call(ctx, TestAPIPathPrefix+"/Ping", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (x *testAPIClient) Boom(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	out := new(PingResponse)
	if err := x.c.Call(ctx, TestAPIPathPrefix+"/Boom", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Server is the reference TestAPI implementation.
type Server struct{}

func (Server) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return &PingResponse{Name: req.Name}, nil
}

func (Server) Boom(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return nil, quill.InternalError("boom!")
}
