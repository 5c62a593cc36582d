package quill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ClientErrorKind distinguishes the failure classes a call can produce, so
// callers can choose different remediation per kind: retry transport errors,
// surface bad-status errors to the user, treat decode errors as a protocol
// or version mismatch.
type ClientErrorKind string

const (
	// ErrKindBuildRequest means the outbound request could not be constructed.
	ErrKindBuildRequest ClientErrorKind = "build_request"
	// ErrKindTransport means no usable response was obtained.
	ErrKindTransport ClientErrorKind = "transport"
	// ErrKindBadStatus means the server responded with a non-success status
	// and a decodable error envelope.
	ErrKindBadStatus ClientErrorKind = "bad_status"
	// ErrKindDecode means a response body was present but malformed.
	ErrKindDecode ClientErrorKind = "decode"
)

// ClientError is the failure value returned by Client.Call.
type ClientError struct {
	Kind ClientErrorKind
	// Status is the HTTP status of the response, when one was obtained.
	Status int
	// Server carries the decoded error envelope for ErrKindBadStatus.
	Server *Error
	cause  error
}

func (e *ClientError) Error() string {
	switch e.Kind {
	case ErrKindBadStatus:
		return fmt.Sprintf("bad status %d: %v", e.Status, e.Server)
	case ErrKindDecode:
		return fmt.Sprintf("decode response (status %d): %v", e.Status, e.cause)
	default:
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
}

func (e *ClientError) Unwrap() error {
	if e.Server != nil {
		return e.Server
	}
	return e.cause
}

// AsClientError unwraps err as a *ClientError.
func AsClientError(err error) (*ClientError, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client. Default is http.DefaultClient.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithClientCodec sets the message codec. It must match the server's codec.
// Default is JSONCodec.
func WithClientCodec(codec Codec) ClientOption {
	return func(c *Client) { c.codec = codec }
}

// Client executes calls against a service endpoint. Generated client
// implementations are thin wrappers around Call. A Client is safe for
// concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	codec      Codec
}

// NewClient creates a client rooted at baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	c := &Client{
		baseURL:    u,
		httpClient: http.DefaultClient,
		codec:      JSONCodec{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Call issues one request to path (e.g. "/test.TestAPI/Ping") carrying the
// encoded in message, and decodes the response into out. Every failure is a
// *ClientError; there are no automatic retries.
func (c *Client) Call(ctx context.Context, path string, in, out any) error {
	body, err := c.codec.Marshal(in)
	if err != nil {
		return &ClientError{Kind: ErrKindBuildRequest, cause: fmt.Errorf("encode request: %w", err)}
	}
	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return &ClientError{Kind: ErrKindBuildRequest, cause: err}
	}
	req.Header.Set("Content-Type", c.codec.ContentType())
	req.Header.Set("Accept", c.codec.ContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ClientError{Kind: ErrKindTransport, cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ClientError{Kind: ErrKindTransport, Status: resp.StatusCode, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The error envelope is JSON regardless of the message codec.
		var svcErr Error
		if err := json.Unmarshal(data, &svcErr); err != nil || svcErr.Code == "" {
			if err == nil {
				err = fmt.Errorf("error envelope missing code")
			}
			return &ClientError{Kind: ErrKindDecode, Status: resp.StatusCode, cause: err}
		}
		return &ClientError{Kind: ErrKindBadStatus, Status: resp.StatusCode, Server: &svcErr}
	}

	if err := c.codec.Unmarshal(data, out); err != nil {
		return &ClientError{Kind: ErrKindDecode, Status: resp.StatusCode, cause: err}
	}
	return nil
}
