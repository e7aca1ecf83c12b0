package emulation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccxtgo/unified/errs"
)

type fakeFacade struct {
	id          string
	available   map[string]bool
	authRequired map[string]bool
	calls       func(ctx context.Context, name string, args, opts map[string]any) (any, error)
}

func (f *fakeFacade) ID() string { return f.id }

func (f *fakeFacade) EndpointAvailable(name string) bool { return f.available[name] }

func (f *fakeFacade) AuthRequired(name string) bool { return f.authRequired[name] }

func (f *fakeFacade) Call(ctx context.Context, name string, args map[string]any, opts map[string]any) (any, error) {
	return f.calls(ctx, name, args, opts)
}

func newIndexWith(t *testing.T, exchangeID string, methods ...string) *Index {
	t.Helper()
	var buf strings.Builder
	buf.WriteString(`{"emulated_methods":{"` + exchangeID + `":[`)
	for i, m := range methods {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString(`{"name":"` + m + `","scope":"rest"}`)
	}
	buf.WriteString(`]}}`)

	idx := NewIndex()
	require.NoError(t, idx.Load([]byte(buf.String())))
	return idx
}

// TestDispatchPassthrough is Property 7: when the method isn't listed as
// emulated, dispatch always returns passthrough regardless of context.
func TestDispatchPassthrough(t *testing.T) {
	t.Parallel()
	idx := newIndexWith(t, "binance", "fetch_ticker")
	res := Dispatch(idx, "binance", "fetch_order_book", ScopeREST, nil)
	require.True(t, res.Passthrough)
}

// TestFetchTickerEmulation is S6 from §8.
func TestFetchTickerEmulation(t *testing.T) {
	t.Parallel()
	idx := newIndexWith(t, "example", "fetch_ticker")

	facade := &fakeFacade{
		id:        "example",
		available: map[string]bool{},
		calls: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
			require.Equal(t, "fetch_tickers", name)
			return []map[string]any{{"symbol": "BTC/USDT", "last": 42000.0}}, nil
		},
	}
	res := Dispatch(idx, "example", "fetch_ticker", ScopeREST, &Context{
		Ctx:    context.Background(),
		Facade: facade,
		Params: map[string]any{"symbol": "BTC/USDT"},
	})
	require.Nil(t, res.Err)
	entry, ok := res.Value.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "BTC/USDT", entry["symbol"])
	require.Equal(t, 42000.0, entry["last"])
}

// TestFetchDepositsWithdrawalsNotSupported is S7 from §8.
func TestFetchDepositsWithdrawalsNotSupported(t *testing.T) {
	t.Parallel()
	idx := newIndexWith(t, "example", "fetch_deposits_withdrawals")

	facade := &fakeFacade{
		id:        "example",
		available: map[string]bool{}, // none of fetch_deposits/withdrawals/ledger available
		calls: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
			t.Fatalf("unexpected call to %s", name)
			return nil, nil
		},
	}
	res := Dispatch(idx, "example", "fetch_deposits_withdrawals", ScopeREST, &Context{
		Ctx:    context.Background(),
		Facade: facade,
		Params: map[string]any{},
	})
	require.NotNil(t, res.Err)
	require.Equal(t, errs.TypeNotSupported, res.Err.Type)
}

func TestDispatchMissingFacade(t *testing.T) {
	t.Parallel()
	idx := newIndexWith(t, "example", "fetch_ticker")
	res := Dispatch(idx, "example", "fetch_ticker", ScopeREST, &Context{})
	require.NotNil(t, res.Err)
	require.Equal(t, errs.TypeInvalidParameters, res.Err.Type)
}

func TestFetchOrderNotFound(t *testing.T) {
	t.Parallel()
	idx := newIndexWith(t, "example", "fetch_order")
	facade := &fakeFacade{
		id:        "example",
		available: map[string]bool{"fetch_orders": true},
		calls: func(ctx context.Context, name string, args, opts map[string]any) (any, error) {
			return []map[string]any{{"id": "1"}, {"id": "2"}}, nil
		},
	}
	res := Dispatch(idx, "example", "fetch_order", ScopeREST, &Context{
		Ctx:    context.Background(),
		Facade: facade,
		Params: map[string]any{"id": "999"},
	})
	require.NotNil(t, res.Err)
	require.Equal(t, errs.TypeOrderNotFound, res.Err.Type)
}
