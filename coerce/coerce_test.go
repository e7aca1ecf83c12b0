package coerce

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func tickerProgram() Program {
	return Program{
		{Dest: "symbol", Source: "symbol", Kind: KindString},
		{Dest: "last", Source: "last", Kind: KindDecimal},
		{Dest: "volume", Source: "info.volume", Kind: KindFloat},
		{Dest: "timestamp", Source: "timestamp", Kind: KindTimestampMS},
		{Dest: "note", Source: "note", Kind: KindString, Optional: true},
	}
}

func TestInterpretConvertsEachKind(t *testing.T) {
	t.Parallel()
	raw := map[string]any{
		"symbol":    "BTC/USDT",
		"last":      "65000.50",
		"info":      map[string]any{"volume": 12.5},
		"timestamp": float64(1700000000000),
	}
	out, err := Interpret(tickerProgram(), raw)
	require.NoError(t, err)
	require.Equal(t, "BTC/USDT", out["symbol"])
	require.True(t, decimal.RequireFromString("65000.50").Equal(out["last"].(decimal.Decimal)))
	require.Equal(t, 12.5, out["volume"])
	require.Equal(t, time.UnixMilli(1700000000000).UTC(), out["timestamp"])
	require.NotContains(t, out, "note")
}

func TestInterpretMissingRequiredFieldErrors(t *testing.T) {
	t.Parallel()
	raw := map[string]any{"symbol": "BTC/USDT"}
	_, err := Interpret(tickerProgram(), raw)
	require.Error(t, err)
}

func TestInterpretBytesMatchesInterpret(t *testing.T) {
	t.Parallel()
	raw := []byte(`{"symbol":"BTC/USDT","last":"65000.50","info":{"volume":12.5},"timestamp":1700000000000}`)
	out, err := InterpretBytes(tickerProgram(), raw)
	require.NoError(t, err)
	require.Equal(t, "BTC/USDT", out["symbol"])
	require.True(t, decimal.RequireFromString("65000.50").Equal(out["last"].(decimal.Decimal)))
	require.Equal(t, 12.5, out["volume"])
	require.Equal(t, time.UnixMilli(1700000000000).UTC(), out["timestamp"])
}

func TestCoercerPassesThroughUnregisteredEndpoint(t *testing.T) {
	t.Parallel()
	c := NewCoercer(Registry{"fetch_ticker": tickerProgram()})
	body := map[string]any{"anything": "goes"}
	out, err := c.Coerce("fetch_trades", body)
	require.NoError(t, err)
	require.Equal(t, body, out)
}

func TestCoercerRunsRegisteredProgram(t *testing.T) {
	t.Parallel()
	c := NewCoercer(Registry{"fetch_ticker": tickerProgram()})
	out, err := c.Coerce("fetch_ticker", map[string]any{
		"symbol":    "ETH/USDT",
		"last":      "3200.0",
		"info":      map[string]any{"volume": 1.0},
		"timestamp": float64(1700000000000),
	})
	require.NoError(t, err)
	m := out.(map[string]any)
	require.Equal(t, "ETH/USDT", m["symbol"])
}

func TestCoercerRejectsNonMapBody(t *testing.T) {
	t.Parallel()
	c := NewCoercer(Registry{"fetch_ticker": tickerProgram()})
	_, err := c.Coerce("fetch_ticker", "not a map")
	require.Error(t, err)
}
