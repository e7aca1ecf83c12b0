package exchange

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/ccxtgo/unified/signing"
)

// HTTPResponse is the transport-agnostic result an HTTPCollaborator returns.
// The core never sees a net/http.Response directly so a test double can be a
// plain struct literal.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// HTTPCollaborator is the injected transport (§1/§6: HTTP transport is
// explicitly external). The facade builds a signing.SignedRequest and hands
// it here; the collaborator owns retries, connection pooling, everything
// below the wire.
type HTTPCollaborator interface {
	Do(ctx context.Context, req *signing.SignedRequest, timeout time.Duration) (*HTTPResponse, error)
}

// defaultHTTPCollaborator is the concrete default handed to callers who don't
// inject their own, per §4.2's "default HTTP collaborator constructor". It is
// a thin wrapper over net/http configured for HTTP/2, nothing more — retry
// policy and circuit breaking stay external collaborators.
type defaultHTTPCollaborator struct {
	client *http.Client
}

// NewDefaultHTTPCollaborator builds the stock HTTPCollaborator: an
// http.Client whose transport is configured for HTTP/2 via
// golang.org/x/net/http2, matching every exchange's TLS REST endpoint.
func NewDefaultHTTPCollaborator() HTTPCollaborator {
	transport := &http.Transport{}
	// ConfigureTransport upgrades transport in place to negotiate h2 over
	// TLS; it only errors on a transport that already has an explicit
	// non-nil TLSNextProto map, which a fresh http.Transport never does.
	_ = http2.ConfigureTransport(transport)
	return &defaultHTTPCollaborator{client: &http.Client{Transport: transport}}
}

func (d *defaultHTTPCollaborator) Do(ctx context.Context, req *signing.SignedRequest, timeout time.Duration) (*HTTPResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), req.URL, body)
	if err != nil {
		return nil, err
	}
	for _, h := range req.Headers {
		httpReq.Header.Add(h.Name, h.Value)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &HTTPResponse{StatusCode: resp.StatusCode, Headers: resp.Header, Body: out}, nil
}

// CoercionCollaborator is the injected type-coercion/parse layer (§1: "the
// type-coercion/parse layer turning raw maps into typed structs" is
// explicitly external). The facade hands it the transformed response body
// plus the endpoint name; it returns whatever shape the caller expects.
type CoercionCollaborator interface {
	Coerce(endpoint string, body any) (any, error)
}

// passthroughCoercion is the default CoercionCollaborator: it returns the
// transformed body unchanged. A real coercion layer (instruction-list
// interpreter, see package coerce) can be injected via WithCoercionCollaborator.
type passthroughCoercion struct{}

func (passthroughCoercion) Coerce(_ string, body any) (any, error) { return body, nil }
