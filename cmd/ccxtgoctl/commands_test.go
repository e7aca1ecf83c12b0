package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func writeTestSpec(t *testing.T, dir, id string) string {
	t.Helper()
	body := `{
		"id": "` + id + `",
		"name": "` + id + `",
		"classification": "certified_pro",
		"urls": {"api": "https://api.example.com"},
		"signing": {"pattern": "hmac_sha256_query", "timestamp_format": "ms"},
		"has": {"fetch_ticker": "true"},
		"endpoints": [
			{"name": "fetch_ticker", "method": "GET", "path": "/ticker", "auth": false, "market_type": "spot", "params": []}
		],
		"symbol_format": {"separator": "", "case": "upper"},
		"spec_format_version": 1
	}`
	path := filepath.Join(dir, id+".json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func newTestApp() *cli.App {
	return &cli.App{
		Name: "ccxtgoctl",
		Commands: []*cli.Command{
			validateCommand,
			convertSymbolCommand,
			signCommand,
			capabilitiesCommand,
		},
	}
}

func TestValidateCommandAcceptsWellFormedSpec(t *testing.T) {
	t.Parallel()
	path := writeTestSpec(t, t.TempDir(), "binance")
	app := newTestApp()
	err := app.Run([]string{"ccxtgoctl", "validate", "--spec", path})
	require.NoError(t, err)
}

func TestValidateCommandRejectsMissingFile(t *testing.T) {
	t.Parallel()
	app := newTestApp()
	err := app.Run([]string{"ccxtgoctl", "validate", "--spec", "/nonexistent/spec.json"})
	require.Error(t, err)
}

func TestConvertSymbolCommandUnifiedToExchange(t *testing.T) {
	t.Parallel()
	path := writeTestSpec(t, t.TempDir(), "binance")
	app := newTestApp()
	err := app.Run([]string{"ccxtgoctl", "convert-symbol", "--spec", path, "--symbol", "BTC/USDT", "--market-type", "spot"})
	require.NoError(t, err)
}

func TestConvertSymbolCommandReverse(t *testing.T) {
	t.Parallel()
	path := writeTestSpec(t, t.TempDir(), "binance")
	app := newTestApp()
	err := app.Run([]string{"ccxtgoctl", "convert-symbol", "--spec", path, "--symbol", "BTCUSDT", "--market-type", "spot", "--reverse"})
	require.NoError(t, err)
}

func TestSignCommandDeterministicOutputIsStable(t *testing.T) {
	t.Parallel()
	path := writeTestSpec(t, t.TempDir(), "binance")

	run := func() error {
		app := newTestApp()
		return app.Run([]string{
			"ccxtgoctl", "sign",
			"--spec", path,
			"--method", "GET",
			"--path", "/order",
			"--api-key", "K",
			"--secret", "S",
			"--deterministic",
		})
	}
	require.NoError(t, run())
	require.NoError(t, run())
}

func TestCapabilitiesCommandListsSupportingExchanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestSpec(t, dir, "binance")
	writeTestSpec(t, dir, "kraken")

	app := newTestApp()
	err := app.Run([]string{"ccxtgoctl", "capabilities", "--spec-dir", dir, "--method", "fetch_ticker"})
	require.NoError(t, err)
}

func TestCapabilitiesCommandCompareMode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestSpec(t, dir, "binance")

	app := newTestApp()
	err := app.Run([]string{"ccxtgoctl", "capabilities", "--spec-dir", dir, "--method", "fetch_ticker", "--compare"})
	require.NoError(t, err)
}
