package symbol

import (
	"strings"

	"github.com/ccxtgo/unified/spec"
)

// Unified expiry is always carried as YYMMDD internally (the grammar itself
// is date-format-agnostic; YYMMDD is this package's one canonical wire-free
// representation, converted to/from an exchange's own date_format only at
// the to_exchange_id/from_exchange_id boundary).
const unifiedExpiryFormat = spec.DateYYMMDD

// ToExchangeID converts a unified symbol into its exchange-native form,
// dispatching to the pattern-based derivative conversion of §4.4 step 5 for
// non-spot market types, and to Denormalize for spot/margin.
func ToExchangeID(unified string, s *spec.Spec, marketType spec.MarketType) (string, error) {
	p, err := Parse(unified)
	if err != nil {
		return "", err
	}
	effective := marketType
	if effective == "" {
		effective = inferMarketType(p)
	}

	if effective == spec.MarketSpot || effective == spec.MarketMargin {
		return DenormalizeE(unified, s, effective)
	}

	pattern, ok := s.PatternFor(effective)
	if !ok {
		return "", &ValidationError{Kind: "pattern_not_found", MarketType: effective, Symbol: unified}
	}

	base := applyAlias(s.CurrencyAliases, p.Base)
	quote := applyAlias(s.CurrencyAliases, p.Quote)

	switch effective {
	case spec.MarketSwap:
		return buildSwap(base, quote, pattern), nil
	case spec.MarketFuture:
		return buildFuture(base, quote, p.Expiry, s, effective, pattern)
	case spec.MarketOption:
		return buildOption(base, p, s, pattern)
	default:
		return "", &ValidationError{Kind: "pattern_not_found", MarketType: effective, Symbol: unified}
	}
}

// FromExchangeID converts an exchange-native symbol back into the unified
// grammar, trying more specific reverse recipes first (§4.4 step 6).
func FromExchangeID(raw string, s *spec.Spec, marketType spec.MarketType) (string, error) {
	if marketType == spec.MarketSpot || marketType == spec.MarketMargin {
		p, err := NormalizeE(raw, s, marketType)
		if err != nil {
			return "", err
		}
		return Build(p), nil
	}

	effective := marketType
	if effective == "" {
		// Try specific-first: option, then future, then swap — matching the
		// design note that a more specific recipe must be attempted before a
		// more general one (e.g. a Bybit future carrying its quote before a
		// Deribit future that drops it).
		for _, mt := range []spec.MarketType{spec.MarketOption, spec.MarketFuture, spec.MarketSwap} {
			if pattern, ok := s.PatternFor(mt); ok {
				if p, err := reverseByPattern(raw, s, mt, pattern); err == nil {
					return Build(p), nil
				}
			}
		}
		p, err := NormalizeE(raw, s, "")
		if err != nil {
			return "", err
		}
		return Build(p), nil
	}

	pattern, ok := s.PatternFor(effective)
	if !ok {
		return "", &ValidationError{Kind: "pattern_not_found", MarketType: effective, Symbol: raw}
	}
	p, err := reverseByPattern(raw, s, effective, pattern)
	if err != nil {
		return "", err
	}
	return Build(p), nil
}

func reverseByPattern(raw string, s *spec.Spec, marketType spec.MarketType, pattern spec.SymbolPattern) (Parsed, error) {
	switch marketType {
	case spec.MarketSwap:
		return reverseSwap(raw, s, pattern)
	case spec.MarketFuture:
		return reverseFuture(raw, s, pattern)
	case spec.MarketOption:
		return reverseOption(raw, s, pattern)
	default:
		return Parsed{}, &ValidationError{Kind: "pattern_not_found", MarketType: marketType, Symbol: raw}
	}
}

func inferMarketType(p Parsed) spec.MarketType {
	switch {
	case p.IsOption():
		return spec.MarketOption
	case p.IsFuture():
		return spec.MarketFuture
	case p.IsSwap():
		return spec.MarketSwap
	default:
		return spec.MarketSpot
	}
}

// ---- swap ----

func buildSwap(base, quote string, pattern spec.SymbolPattern) string {
	combined := base + pattern.Separator + quote
	switch pattern.Pattern {
	case "implicit":
		return applySymbolCase(combined, pattern.Case)
	default: // suffix_perpetual | suffix_swap | suffix_perp
		return applySymbolCase(combined+pattern.Suffix, pattern.Case)
	}
}

func reverseSwap(raw string, s *spec.Spec, pattern spec.SymbolPattern) (Parsed, error) {
	body := raw
	if pattern.Suffix != "" {
		body = strings.TrimSuffix(raw, pattern.Suffix)
		if body == raw && pattern.Pattern != "implicit" {
			return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
		}
	}
	base, quote, found := splitBaseQuote(body, pattern.Separator)
	if !found {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
	}
	base = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, base))
	quote = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, quote))
	// Linear perpetuals settle in their quote currency; this is the
	// convention assumed whenever the wire symbol carries no explicit
	// settle component.
	return Parsed{Base: base, Quote: quote, Settle: quote}, nil
}

// ---- future ----

func buildFuture(base, quote, unifiedExpiry string, s *spec.Spec, marketType spec.MarketType, pattern spec.SymbolPattern) (string, error) {
	switch pattern.Pattern {
	case "future_yyyymmdd":
		dateStr, err := ConvertDate(unifiedExpiry, unifiedExpiryFormat, spec.DateYYYYMMDD)
		if err != nil {
			return "", err
		}
		return joinBaseQuote(base, quote, s, marketType) + pattern.Separator + dateStr, nil

	case "future_ddmmmyy":
		dateStr, err := ConvertDate(unifiedExpiry, unifiedExpiryFormat, spec.DateDDMMMYY)
		if err != nil {
			return "", err
		}
		if pattern.Separator == "-" && quote == "USD" {
			// Deribit style: quote is dropped (§4.4 step 5).
			return base + pattern.Separator + dateStr, nil
		}
		// Bybit style: quote is kept.
		return base + quote + pattern.Separator + dateStr, nil

	default: // future_yymmdd: pass through unchanged
		return joinBaseQuote(base, quote, s, marketType) + pattern.Separator + unifiedExpiry, nil
	}
}

func reverseFuture(raw string, s *spec.Spec, pattern spec.SymbolPattern) (Parsed, error) {
	idx := strings.LastIndex(raw, pattern.Separator)
	if idx <= 0 || idx == len(raw)-len(pattern.Separator) {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
	}
	body := raw[:idx]
	dateToken := raw[idx+len(pattern.Separator):]

	switch pattern.Pattern {
	case "future_yyyymmdd":
		expiry, err := ConvertDate(dateToken, spec.DateYYYYMMDD, unifiedExpiryFormat)
		if err != nil {
			return Parsed{}, err
		}
		base, quote, ok := splitBaseQuote(body, "")
		if !ok {
			return Parsed{}, &ValidationError{Kind: "unknown_quote_currency", Symbol: raw}
		}
		return finishFuture(s, base, quote, expiry), nil

	case "future_ddmmmyy":
		expiry, err := ConvertDate(dateToken, spec.DateDDMMMYY, unifiedExpiryFormat)
		if err != nil {
			return Parsed{}, err
		}
		if pattern.Separator == "-" {
			// Try Deribit-style first (quote dropped, base is the whole body):
			// §9 disambiguates this from Bybit-style by separator=="-".
			base := strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, body))
			if _, found := longestMatchingQuote(body); !found {
				p := Parsed{Base: base, Quote: "USD", Settle: base, Expiry: expiry}
				return p, nil
			}
		}
		base, quote, ok := splitBaseQuote(body, "")
		if !ok {
			return Parsed{}, &ValidationError{Kind: "unknown_quote_currency", Symbol: raw}
		}
		return finishFuture(s, base, quote, expiry), nil

	default: // future_yymmdd
		base, quote, ok := splitBaseQuote(body, "")
		if !ok {
			return Parsed{}, &ValidationError{Kind: "unknown_quote_currency", Symbol: raw}
		}
		return finishFuture(s, base, quote, dateToken), nil
	}
}

func finishFuture(s *spec.Spec, base, quote, expiry string) Parsed {
	base = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, base))
	quote = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, quote))
	return Parsed{Base: base, Quote: quote, Settle: quote, Expiry: expiry}
}

// ---- option ----

func buildOption(base string, p Parsed, s *spec.Spec, pattern spec.SymbolPattern) (string, error) {
	var dateStr string
	var err error
	switch pattern.Pattern {
	case "option_yymmdd":
		dateStr = p.Expiry
	default: // option_ddmmmyy, option_with_settle, option_unknown all use ddmmmyy
		dateStr, err = ConvertDate(p.Expiry, unifiedExpiryFormat, spec.DateDDMMMYY)
	}
	if err != nil {
		return "", err
	}

	optType := strings.ToUpper(p.OptionType)
	parts := []string{base, dateStr, p.Strike, optType}
	if pattern.Pattern == "option_with_settle" {
		parts = append(parts, applyAlias(s.CurrencyAliases, p.Settle))
	}
	return strings.Join(parts, pattern.Separator), nil
}

func reverseOption(raw string, s *spec.Spec, pattern spec.SymbolPattern) (Parsed, error) {
	parts := strings.Split(raw, pattern.Separator)
	minParts := 4
	if pattern.Pattern == "option_with_settle" {
		minParts = 5
	}
	if len(parts) != minParts {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: raw}
	}

	base := strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, parts[0]))
	var expiry string
	var err error
	switch pattern.Pattern {
	case "option_yymmdd":
		expiry = parts[1]
	default:
		expiry, err = ConvertDate(parts[1], spec.DateDDMMMYY, unifiedExpiryFormat)
	}
	if err != nil {
		return Parsed{}, err
	}

	strike := parts[2]
	optType := strings.ToUpper(parts[3])

	settle := base
	quote := "USD" // Deribit-style options are conventionally USD-quoted.
	if pattern.Pattern == "option_with_settle" {
		settle = strings.ToUpper(reverseApplyAlias(s.CurrencyAliases, parts[4]))
	}

	return Parsed{
		Base:       base,
		Quote:      quote,
		Settle:     settle,
		Expiry:     expiry,
		Strike:     strike,
		OptionType: optType,
	}, nil
}

// ---- shared helpers ----

func joinBaseQuote(base, quote string, s *spec.Spec, marketType spec.MarketType) string {
	format, ok := s.FormatFor(marketType)
	if !ok {
		return base + quote
	}
	return base + format.Separator + quote
}

// splitBaseQuote splits body into base/quote either by an explicit
// separator, or (separator=="") via the longest-matching-quote heuristic.
func splitBaseQuote(body, separator string) (base, quote string, ok bool) {
	if separator != "" {
		b, q, found := strings.Cut(body, separator)
		return b, q, found && b != "" && q != ""
	}
	return longestMatchingQuote(body)
}
