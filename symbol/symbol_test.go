package symbol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccxtgo/unified/spec"
)

func binanceSpotSpec() *spec.Spec {
	return &spec.Spec{
		ID:            "binance",
		SymbolFormats: map[spec.MarketType]spec.SymbolFormat{spec.MarketSpot: {Separator: "", Case: spec.CaseUpper}},
	}
}

func binanceFutureSpec() *spec.Spec {
	return &spec.Spec{
		ID: "binance",
		SymbolFormats: map[spec.MarketType]spec.SymbolFormat{
			spec.MarketFuture: {Separator: "", Case: spec.CaseUpper},
		},
		SymbolPatterns: map[spec.MarketType]spec.SymbolPattern{
			spec.MarketFuture: {Pattern: "future_yymmdd", Separator: "_", DateFormat: spec.DateYYMMDD},
		},
	}
}

func deribitOptionSpec() *spec.Spec {
	return &spec.Spec{
		ID: "deribit",
		SymbolPatterns: map[spec.MarketType]spec.SymbolPattern{
			spec.MarketOption: {Pattern: "option_ddmmmyy", Separator: "-", DateFormat: spec.DateDDMMMYY},
			spec.MarketFuture: {Pattern: "future_ddmmmyy", Separator: "-", DateFormat: spec.DateDDMMMYY},
		},
	}
}

func krakenSpec() *spec.Spec {
	return &spec.Spec{
		ID:              "kraken",
		Options:         map[string]any{"prefix_style": "kraken"},
		CurrencyAliases: map[string]string{"BTC": "XBT"},
	}
}

// TestParseS1 is S1 from §8: parse("BTC/USDT") yields base BTC, quote USDT.
func TestParseS1(t *testing.T) {
	t.Parallel()
	p, err := Parse("BTC/USDT")
	require.NoError(t, err)
	require.Equal(t, "BTC", p.Base)
	require.Equal(t, "USDT", p.Quote)
	require.True(t, p.IsSpot())
}

func TestParseRejectsMalformed(t *testing.T) {
	t.Parallel()
	cases := []string{"", "BTCUSDT", "/USDT", "BTC/", "BTC/USDT:", "BTC/USDT:BTC-1-2-3-4"}
	for _, c := range cases {
		_, err := Parse(c)
		require.Error(t, err, c)
	}
}

// TestSpotRoundTrip is Property 1 for the spot case: denormalize then
// normalize recovers the original unified symbol.
func TestSpotRoundTrip(t *testing.T) {
	t.Parallel()
	s := binanceSpotSpec()
	exch, err := DenormalizeE("BTC/USDT", s, spec.MarketSpot)
	require.NoError(t, err)
	require.Equal(t, "BTCUSDT", exch)

	p, err := NormalizeE(exch, s, spec.MarketSpot)
	require.NoError(t, err)
	require.Equal(t, "BTC/USDT", Build(p))
}

// TestLongestMatchingQuote is Property 2: a no-separator exchange must pick
// the longest known quote suffix, not a shorter one that also matches
// (e.g. "USDT" over "USD" embedded in "BTCUSDT" ... "T").
func TestLongestMatchingQuote(t *testing.T) {
	t.Parallel()
	base, quote, ok := longestMatchingQuote("BTCUSDT")
	require.True(t, ok)
	require.Equal(t, "BTC", base)
	require.Equal(t, "USDT", quote)
}

// TestCurrencyAliasSymmetry is Property 3: applying the unified->exchange
// alias then the exchange->unified alias recovers the original code.
func TestCurrencyAliasSymmetry(t *testing.T) {
	t.Parallel()
	aliases := map[string]string{"BTC": "XBT"}
	exch := applyAlias(aliases, "BTC")
	require.Equal(t, "XBT", exch)
	back := reverseApplyAlias(aliases, exch)
	require.Equal(t, "BTC", back)
}

func TestKrakenPrefixRoundTrip(t *testing.T) {
	t.Parallel()
	s := krakenSpec()

	// S2 from §8: normalize("XXBTZUSD", kraken_spec) == "BTC/USD".
	p, err := NormalizeE("XXBTZUSD", s, "")
	require.NoError(t, err)
	require.Equal(t, "BTC/USD", Build(p))

	exch, err := DenormalizeE("BTC/USD", s, "")
	require.NoError(t, err)
	require.Equal(t, "XXBTZUSD", exch)
}

// TestDateConversionInvolution is Property 4.
func TestDateConversionInvolution(t *testing.T) {
	t.Parallel()
	pairs := [][2]spec.DateFormat{
		{spec.DateYYMMDD, spec.DateDDMMMYY},
		{spec.DateYYMMDD, spec.DateYYYYMMDD},
		{spec.DateDDMMMYY, spec.DateYYYYMMDD},
	}
	originals := map[spec.DateFormat]string{
		spec.DateYYMMDD:   "260112",
		spec.DateDDMMMYY:  "12JAN26",
		spec.DateYYYYMMDD: "20260112",
	}
	for _, pair := range pairs {
		from, to := pair[0], pair[1]
		original := originals[from]
		converted, err := ConvertDate(original, from, to)
		require.NoError(t, err)
		back, err := ConvertDate(converted, to, from)
		require.NoError(t, err)
		require.Equal(t, original, back, "%s -> %s -> %s", from, to, from)
	}
}

func TestValidateConversion(t *testing.T) {
	t.Parallel()
	s := binanceSpotSpec()
	require.NoError(t, ValidateConversion("BTC/USDT", s, spec.MarketSpot))

	err := ValidateConversion("BTC/", s, spec.MarketSpot)
	require.Error(t, err)

	fs := binanceFutureSpec()
	err = ValidateConversion("BTC/USDT:USDT-260327", fs, spec.MarketOption)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "pattern_not_found", verr.Kind)
}
