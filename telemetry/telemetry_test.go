package telemetry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestStartShape(t *testing.T) {
	t.Parallel()
	e := RequestStart(1700000000000, "binance", "fetch_ticker", "/api/v3/ticker")
	require.Equal(t, "request.start", e.Name)
	require.Equal(t, ContractVersion, e.ContractVersion)
	require.Equal(t, int64(1700000000000), e.Measurements["system_time"])
	require.Equal(t, "binance", e.Metadata["exchange"])
	require.Equal(t, "fetch_ticker", e.Metadata["method"])
	require.Equal(t, "/api/v3/ticker", e.Metadata["path"])
}

func TestRequestStopOmitsRateLimitWhenEmpty(t *testing.T) {
	t.Parallel()
	e := RequestStop(42, "binance", "fetch_ticker", "/api/v3/ticker", 200, "")
	require.NotContains(t, e.Metadata, "rate_limit")
	require.Equal(t, 200, e.Metadata["status"])
}

func TestRequestStopIncludesRateLimitWhenSet(t *testing.T) {
	t.Parallel()
	e := RequestStop(42, "binance", "fetch_ticker", "/api/v3/ticker", 429, "exceeded")
	require.Equal(t, "exceeded", e.Metadata["rate_limit"])
}

func TestRequestExceptionShape(t *testing.T) {
	t.Parallel()
	e := RequestException(12, "binance", "fetch_order", "/api/v3/order", "rate_limited", "rate limit exceeded")
	require.Equal(t, "rate_limited", e.Metadata["kind"])
	require.Equal(t, "rate limit exceeded", e.Metadata["reason"])
}

func TestCircuitBreakerEvents(t *testing.T) {
	t.Parallel()
	require.Equal(t, "circuit_breaker.open", CircuitBreakerOpen(1, "binance").Name)
	require.Equal(t, "circuit_breaker.closed", CircuitBreakerClosed(1, "binance").Name)
	require.Equal(t, "circuit_breaker.rejected", CircuitBreakerRejected(1, "binance").Name)
}

type recordingEmitter struct{ events []Event }

func (r *recordingEmitter) Emit(e Event) { r.events = append(r.events, e) }

func TestNoopEmitterDiscards(t *testing.T) {
	t.Parallel()
	var e Emitter = NoopEmitter{}
	e.Emit(RequestStart(1, "binance", "fetch_ticker", "/x"))
}

func TestRecordingEmitterCapturesEvents(t *testing.T) {
	t.Parallel()
	rec := &recordingEmitter{}
	rec.Emit(RequestStart(1, "binance", "fetch_ticker", "/x"))
	rec.Emit(RequestStop(2, "binance", "fetch_ticker", "/x", 200, ""))
	require.Len(t, rec.events, 2)
}
