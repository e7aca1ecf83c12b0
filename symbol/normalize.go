package symbol

import (
	"strings"

	"github.com/ccxtgo/unified/spec"
)

// Normalize converts an exchange-specific spot symbol into the unified
// grammar (§4.4 step 3). It applies case, splits by the format's separator
// (or, if the separator is empty, finds the longest matching known quote
// currency suffix), then applies currency aliases in the exchange->unified
// direction.
//
// Non-bang contract: on failure it returns the input unchanged (legacy
// best-effort), matching §4.4's "Non-bang functions return the input
// unchanged on failure".
func Normalize(raw string, s *spec.Spec, marketType spec.MarketType) string {
	p, err := NormalizeE(raw, s, marketType)
	if err != nil {
		return raw
	}
	return Build(p)
}

// NormalizeE is the bang variant of Normalize: it fails with a typed error
// instead of silently returning the input.
func NormalizeE(raw string, s *spec.Spec, marketType spec.MarketType) (Parsed, error) {
	if raw == "" {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
	}

	if style, ok := prefixStyle(s); ok {
		return normalizeWithPrefix(raw, s, style)
	}

	format, ok := s.FormatFor(marketType)
	if !ok {
		return Parsed{}, &ValidationError{Kind: "pattern_not_found", MarketType: marketType, Symbol: raw}
	}

	var base, quote string
	if format.Separator != "" {
		b, q, found := strings.Cut(raw, format.Separator)
		if !found || b == "" || q == "" {
			return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
		}
		base, quote = b, q
	} else {
		b, q, found := longestMatchingQuote(raw)
		if !found {
			return Parsed{}, &ValidationError{Kind: "unknown_quote_currency", Symbol: raw}
		}
		base, quote = b, q
	}

	base = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, base))
	quote = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, quote))

	return Parsed{Base: base, Quote: quote}, nil
}

// Denormalize converts a unified spot symbol into the exchange's native
// form (§4.4 step 4): strip any :SETTLE[...] suffix, replace "/" with the
// configured separator, apply case. Non-bang: returns the input unchanged
// on failure.
func Denormalize(unified string, s *spec.Spec, marketType spec.MarketType) string {
	out, err := DenormalizeE(unified, s, marketType)
	if err != nil {
		return unified
	}
	return out
}

// DenormalizeE is the bang variant of Denormalize.
func DenormalizeE(unified string, s *spec.Spec, marketType spec.MarketType) (string, error) {
	p, err := Parse(unified)
	if err != nil {
		return "", err
	}

	if style, ok := prefixStyle(s); ok {
		return denormalizeWithPrefix(p, s, style, marketType)
	}

	format, ok := s.FormatFor(marketType)
	if !ok {
		return "", &ValidationError{Kind: "pattern_not_found", MarketType: marketType, Symbol: unified}
	}

	base := applyAlias(s.CurrencyAliases, p.Base)
	quote := applyAlias(s.CurrencyAliases, p.Quote)

	combined := base + format.Separator + quote
	return applySymbolCase(combined, format.Case), nil
}

func applySymbolCase(s string, c spec.SymbolCase) string {
	switch c {
	case spec.CaseUpper:
		return strings.ToUpper(s)
	case spec.CaseLower:
		return strings.ToLower(s)
	default: // mixed: the extractor detected a fixed, non-uniform case from a
		// real sample; this package has no way to reconstruct that casing
		// generically, so it passes the already-canonical-case string through.
		return s
	}
}
