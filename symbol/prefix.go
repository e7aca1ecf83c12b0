package symbol

import (
	"strings"

	"github.com/ccxtgo/unified/spec"
)

// prefixStyle reads the exchange-specific prefix convention declared in
// Spec.Options["prefix_style"] (§4.4 step 8). An exchange with no such key
// uses the plain separator/case convention from SymbolFormat.
func prefixStyle(s *spec.Spec) (string, bool) {
	if s == nil || s.Options == nil {
		return "", false
	}
	v, _ := s.Options["prefix_style"].(string)
	return v, v != ""
}

// fiatCodes is the fixed table the Kraken Z-prefix heuristic checks
// against. Per spec.md §9 this heuristic "keys on a 4-character total
// length" — behavior for a hypothetical non-4-char fiat code in that
// position is left undefined rather than guessed at.
var fiatCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CAD": true, "CHF": true, "AUD": true,
}

// krakenFuturesPrefixes is the closed set of contract-type prefixes
// KrakenFutures symbols carry (§4.4 step 8).
var krakenFuturesPrefixes = []string{"PI_", "PF_", "FI_", "FF_", "PV_"}

func normalizeWithPrefix(raw string, s *spec.Spec, style string) (Parsed, error) {
	switch style {
	case "kraken":
		base, quote, ok := decodeKrakenPair(raw)
		if !ok {
			return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
		}
		base = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, base))
		quote = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, quote))
		return Parsed{Base: base, Quote: quote}, nil

	case "kraken_futures":
		stripped, ok := stripKrakenFuturesPrefix(raw)
		if !ok {
			return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
		}
		base, quote, found := longestMatchingQuote(stripped)
		if !found {
			return Parsed{}, &ValidationError{Kind: "unknown_quote_currency", Symbol: raw}
		}
		base = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, base))
		quote = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, quote))
		return Parsed{Base: base, Quote: quote}, nil

	default:
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
	}
}

func denormalizeWithPrefix(p Parsed, s *spec.Spec, style string, marketType spec.MarketType) (string, error) {
	base := applyAlias(s.CurrencyAliases, p.Base)
	quote := applyAlias(s.CurrencyAliases, p.Quote)

	switch style {
	case "kraken":
		return encodeKrakenToken(base) + encodeKrakenToken(quote), nil

	case "kraken_futures":
		prefix := "PI_"
		if marketType == spec.MarketFuture {
			prefix = "FI_"
		}
		return prefix + strings.ToUpper(base) + strings.ToUpper(quote), nil

	default:
		return "", &ValidationError{Kind: "invalid_format"}
	}
}

// decodeKrakenPair splits a Kraken raw pair (e.g. "XXBTZUSD") into its two
// prefixed currency tokens, trying the longer (doubled-prefix) split first.
func decodeKrakenPair(raw string) (base, quote string, ok bool) {
	for _, baseLen := range []int{4, 3} {
		quoteLen := len(raw) - baseLen
		if quoteLen != 3 && quoteLen != 4 {
			continue
		}
		baseTok, baseOK := decodeKrakenToken(raw[:baseLen])
		quoteTok, quoteOK := decodeKrakenToken(raw[baseLen:])
		if baseOK && quoteOK {
			return baseTok, quoteTok, true
		}
	}
	return "", "", false
}

func decodeKrakenToken(tok string) (string, bool) {
	switch {
	case len(tok) == 4 && tok[0] == 'X':
		return tok[1:], true // crypto, X prefix (doubled when the code itself starts with X, e.g. XXBT -> XBT)
	case len(tok) == 4 && tok[0] == 'Z' && fiatCodes[tok[1:]]:
		return tok[1:], true // 4-char-total fiat heuristic
	case len(tok) == 3:
		return tok, true // unprefixed code
	default:
		return "", false
	}
}

func encodeKrakenToken(code string) string {
	upper := strings.ToUpper(code)
	if len(upper) != 3 {
		return upper
	}
	if fiatCodes[upper] {
		return "Z" + upper
	}
	return "X" + upper
}

func stripKrakenFuturesPrefix(raw string) (string, bool) {
	for _, p := range krakenFuturesPrefixes {
		if strings.HasPrefix(raw, p) {
			return raw[len(p):], true
		}
	}
	return "", false
}
