package exchange

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccxtgo/unified/emulation"
	"github.com/ccxtgo/unified/errs"
	"github.com/ccxtgo/unified/signing"
	"github.com/ccxtgo/unified/spec"
	"github.com/ccxtgo/unified/telemetry"
)

// fakeHTTP is an HTTPCollaborator test double that records the last request
// it saw and returns a canned response.
type fakeHTTP struct {
	lastReq   *signing.SignedRequest
	lastTO    time.Duration
	status    int
	body      []byte
	transport error
}

func (f *fakeHTTP) Do(_ context.Context, req *signing.SignedRequest, timeout time.Duration) (*HTTPResponse, error) {
	f.lastReq = req
	f.lastTO = timeout
	if f.transport != nil {
		return nil, f.transport
	}
	status := f.status
	if status == 0 {
		status = 200
	}
	return &HTTPResponse{StatusCode: status, Body: f.body}, nil
}

func jsonBody(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func binanceLikeSpec() *spec.Spec {
	return &spec.Spec{
		ID:             "binance",
		Classification: spec.ClassificationCertifiedPro,
		URLs: spec.Urls{
			API: spec.URLSet{Flat: "https://api.binance.com"},
		},
		Has: map[string]spec.HasValue{
			"fetch_ticker": spec.HasTrue,
			"fetch_order":  spec.HasTrue,
		},
		Endpoints: []spec.Endpoint{
			{Name: "fetch_ticker", Method: spec.MethodGET, Path: "/api/v3/ticker/price", Auth: false, MarketType: spec.MarketSpot},
			{Name: "fetch_order", Method: spec.MethodGET, Path: "/api/v3/order", Auth: true, MarketType: spec.MarketSpot},
		},
		SymbolFormat: &spec.SymbolFormat{Separator: "", Case: spec.CaseUpper},
	}
}

func TestCallPublicEndpointBuildsURLAndDecodesBody(t *testing.T) {
	t.Parallel()
	http := &fakeHTTP{body: jsonBody(t, map[string]any{"symbol": "BTCUSDT", "price": "42000.00"})}
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(http))

	result, err := ex.Call(context.Background(), "fetch_ticker", map[string]any{"symbol": "BTC/USDT"}, nil)
	require.NoError(t, err)

	m, ok := result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "BTCUSDT", m["symbol"])

	require.Contains(t, http.lastReq.URL, "symbol=BTCUSDT")
	require.Equal(t, "https://api.binance.com/api/v3/ticker/price", http.lastReq.URL[:len("https://api.binance.com/api/v3/ticker/price")])
}

func TestCallPrivateEndpointRequiresCredentials(t *testing.T) {
	t.Parallel()
	http := &fakeHTTP{body: []byte(`{}`)}
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(http))

	_, err := ex.Call(context.Background(), "fetch_order", map[string]any{"symbol": "BTC/USDT"}, nil)
	require.Error(t, err)
	var unified *errs.Error
	require.ErrorAs(t, err, &unified)
	require.Equal(t, errs.TypeInvalidCredentials, unified.Type)
}

func TestCallPrivateEndpointSignsWhenCredentialsProvided(t *testing.T) {
	t.Parallel()
	s := binanceLikeSpec()
	s.Signing = spec.Signing{Pattern: spec.PatternHMACSHA256Query, APIKeyHeader: "X-MBX-APIKEY", TimestampFormat: spec.TimestampMillis}

	fakeClock := time.UnixMilli(1700000000000)
	http := &fakeHTTP{body: jsonBody(t, map[string]any{"orderId": 1})}
	ex := New(s, WithHTTPCollaborator(http), WithSigningDeps(signing.Deps{
		Now:   func() time.Time { return fakeClock },
		Nonce: func() string { return "" },
	}))

	creds := signing.Credentials{APIKey: "K", Secret: "S"}
	_, err := ex.CallAuthenticated(context.Background(), creds, "fetch_order", map[string]any{"symbol": "BTC/USDT"}, nil)
	require.NoError(t, err)

	require.Contains(t, http.lastReq.URL, "timestamp=1700000000000")
	var foundKey bool
	for _, h := range http.lastReq.Headers {
		if h.Name == "X-MBX-APIKEY" && h.Value == "K" {
			foundKey = true
		}
	}
	require.True(t, foundKey)
}

func TestCallUnknownMethodNotSupported(t *testing.T) {
	t.Parallel()
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(&fakeHTTP{}))
	_, err := ex.Call(context.Background(), "fetch_something_nonexistent", nil, nil)
	require.Error(t, err)
	var unified *errs.Error
	require.ErrorAs(t, err, &unified)
	require.Equal(t, errs.TypeNotSupported, unified.Type)
}

func TestCallHTTPStatusMapsToUnifiedError(t *testing.T) {
	t.Parallel()
	http := &fakeHTTP{status: 429}
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(http))
	_, err := ex.Call(context.Background(), "fetch_ticker", map[string]any{"symbol": "BTC/USDT"}, nil)
	require.Error(t, err)
	var unified *errs.Error
	require.ErrorAs(t, err, &unified)
	require.Equal(t, errs.TypeRateLimited, unified.Type)
}

func TestCallRawOptionSkipsCoercion(t *testing.T) {
	t.Parallel()
	http := &fakeHTTP{body: jsonBody(t, []any{map[string]any{"symbol": "BTCUSDT"}})}
	coerceCalled := false
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(http), WithCoercionCollaborator(coercionFunc(func(string, any) (any, error) {
		coerceCalled = true
		return nil, nil
	})))

	_, err := ex.Call(context.Background(), "fetch_ticker", map[string]any{"symbol": "BTC/USDT"}, map[string]any{"raw": true})
	require.NoError(t, err)
	require.False(t, coerceCalled)
}

type coercionFunc func(endpoint string, body any) (any, error)

func (f coercionFunc) Coerce(endpoint string, body any) (any, error) { return f(endpoint, body) }

func TestEndpointAvailableAndAuthRequired(t *testing.T) {
	t.Parallel()
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(&fakeHTTP{}))
	require.True(t, ex.EndpointAvailable("fetch_ticker"))
	require.False(t, ex.AuthRequired("fetch_ticker"))
	require.True(t, ex.AuthRequired("fetch_order"))
	require.False(t, ex.EndpointAvailable("fetch_nonexistent"))
}

// TestEmulatedMethodRoutesThroughFacadeCall exercises the full dispatch
// order's step 1: an exchange whose fetch_ticker is marked emulated
// synthesises it from fetch_tickers, calling back into the same *Exchange
// as its own emulation.Facade.
func TestEmulatedMethodRoutesThroughFacadeCall(t *testing.T) {
	t.Parallel()
	s := binanceLikeSpec()
	s.Has["fetch_ticker"] = spec.HasEmulated
	s.Endpoints = append(s.Endpoints, spec.Endpoint{
		Name: "fetch_tickers", Method: spec.MethodGET, Path: "/api/v3/tickers", Auth: false,
	})

	idx := emulation.NewIndex()
	require.NoError(t, idx.Load([]byte(`{"emulated_methods":{"binance":[{"name":"fetch_ticker","scope":"rest"}]}}`)))

	http := &fakeHTTP{body: jsonBody(t, []any{
		map[string]any{"symbol": "BTC/USDT", "last": 42000.0},
	})}
	ex := New(s, WithHTTPCollaborator(http), WithEmulationIndex(idx))

	result, err := ex.Call(context.Background(), "fetch_ticker", map[string]any{"symbol": "BTC/USDT"}, nil)
	require.NoError(t, err)
	m, ok := result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "BTC/USDT", m["symbol"])
	require.Contains(t, http.lastReq.URL, "/api/v3/tickers")
}

type recordingEmitter struct{ events []telemetry.Event }

func (r *recordingEmitter) Emit(e telemetry.Event) { r.events = append(r.events, e) }

func TestCallEmitsRequestStartAndStop(t *testing.T) {
	t.Parallel()
	rec := &recordingEmitter{}
	http := &fakeHTTP{body: jsonBody(t, map[string]any{"price": "42000.00"})}
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(http), WithTelemetry(rec))

	_, err := ex.Call(context.Background(), "fetch_ticker", nil, nil)
	require.NoError(t, err)
	require.Len(t, rec.events, 2)
	require.Equal(t, "request.start", rec.events[0].Name)
	require.Equal(t, "request.stop", rec.events[1].Name)
	require.Equal(t, 200, rec.events[1].Metadata["status"])
}

func TestCallEmitsRequestExceptionOnHTTPError(t *testing.T) {
	t.Parallel()
	rec := &recordingEmitter{}
	http := &fakeHTTP{status: 429}
	ex := New(binanceLikeSpec(), WithHTTPCollaborator(http), WithTelemetry(rec))

	_, err := ex.Call(context.Background(), "fetch_ticker", nil, nil)
	require.Error(t, err)
	require.Len(t, rec.events, 2)
	require.Equal(t, "request.start", rec.events[0].Name)
	require.Equal(t, "request.exception", rec.events[1].Name)
	require.Equal(t, string(errs.TypeRateLimited), rec.events[1].Metadata["kind"])
}
