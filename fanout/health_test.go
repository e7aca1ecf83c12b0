package fanout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ccxtgo/unified/errs"
)

type fakePinger struct {
	id   string
	call func(ctx context.Context, name string, args, opts map[string]any) (any, error)
}

func (f *fakePinger) ID() string { return f.id }
func (f *fakePinger) Call(ctx context.Context, name string, args, opts map[string]any) (any, error) {
	return f.call(ctx, name, args, opts)
}

func TestPingSuccess(t *testing.T) {
	t.Parallel()
	p := &fakePinger{id: "binance", call: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
		require.Equal(t, "fetch_time", name)
		return int64(1700000000000), nil
	}}
	require.NoError(t, Ping(context.Background(), p))
}

// TestCircuitOpenFastPath is Property 11: a circuit_open error short-circuits
// status without inflating latency from a real network round trip.
func TestCircuitOpenFastPath(t *testing.T) {
	t.Parallel()
	p := &fakePinger{id: "binance", call: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
		return nil, errs.CircuitOpen("binance")
	}}
	tick := 0
	now := func() time.Time {
		tick++
		return time.Unix(int64(tick), 0)
	}
	status := StatusOf(context.Background(), p, nil, now)
	require.False(t, status.Reachable)
	require.Equal(t, "unknown", status.CircuitState)
	require.NotEmpty(t, status.Error)
}

func TestStatusOfReachable(t *testing.T) {
	t.Parallel()
	p := &fakePinger{id: "binance", call: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
		return int64(1), nil
	}}
	status := StatusOf(context.Background(), p, nil, time.Now)
	require.True(t, status.Reachable)
	require.GreaterOrEqual(t, status.LatencyMS, int64(0))
}

type fakeCircuits struct{ state string }

func (f fakeCircuits) State(exchangeID string) string { return f.state }

func TestStatusOfReportsCircuitState(t *testing.T) {
	t.Parallel()
	p := &fakePinger{id: "binance", call: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
		return int64(1), nil
	}}
	status := StatusOf(context.Background(), p, fakeCircuits{state: "closed"}, time.Now)
	require.Equal(t, "closed", status.CircuitState)
}
