// Package symbol implements bidirectional conversion between the unified
// symbol grammar BASE/QUOTE[:SETTLE[-EXPIRY[-STRIKE-TYPE]]] and
// exchange-specific market identifiers (§4.4). Every function here is pure:
// no shared state, no I/O, safe to call concurrently (§4.4 "Determinism").
package symbol

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ccxtgo/unified/spec"
)

// Parsed is a unified symbol broken into its components (§3). Settle/Expiry/
// Strike/OptionType are populated only for non-spot symbols.
type Parsed struct {
	Base       string
	Quote      string
	Settle     string
	Expiry     string
	Strike     string
	OptionType string
}

// IsSpot reports whether p has no derivative components.
func (p Parsed) IsSpot() bool { return p.Settle == "" }

// IsFuture reports whether p has a settle+expiry but no strike/option type.
func (p Parsed) IsFuture() bool {
	return p.Settle != "" && p.Expiry != "" && p.Strike == ""
}

// IsOption reports whether p has every derivative component.
func (p Parsed) IsOption() bool {
	return p.Settle != "" && p.Expiry != "" && p.Strike != "" && p.OptionType != ""
}

// IsSwap reports whether p has a settle currency but no expiry (perpetual).
func (p Parsed) IsSwap() bool {
	return p.Settle != "" && p.Expiry == ""
}

// ValidationError reports the three failure modes of
// validate_symbol_conversion (§4.4), told apart by Kind.
type ValidationError struct {
	Kind       string // "invalid_format" | "pattern_not_found" | "unknown_quote_currency"
	MarketType spec.MarketType
	Symbol     string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case "pattern_not_found":
		return "symbol: no pattern found for market type " + string(e.MarketType)
	case "unknown_quote_currency":
		return "symbol: unknown quote currency in " + e.Symbol
	default:
		return "symbol: invalid format: " + e.Symbol
	}
}

// Parse accepts BASE/QUOTE, BASE/QUOTE:SETTLE, BASE/QUOTE:SETTLE-EXPIRY, or
// BASE/QUOTE:SETTLE-EXPIRY-STRIKE-TYPE. It rejects anything lacking a
// non-empty base and quote.
func Parse(unified string) (Parsed, error) {
	baseQuote, rest, hasSettle := strings.Cut(unified, ":")

	base, quote, ok := strings.Cut(baseQuote, "/")
	if !ok || base == "" || quote == "" {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: unified}
	}

	p := Parsed{Base: base, Quote: quote}
	if !hasSettle {
		return p, nil
	}
	if rest == "" {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: unified}
	}

	parts := strings.Split(rest, "-")
	switch len(parts) {
	case 1:
		p.Settle = parts[0]
	case 2:
		p.Settle, p.Expiry = parts[0], parts[1]
	case 4:
		p.Settle, p.Expiry, p.Strike, p.OptionType = parts[0], parts[1], parts[2], parts[3]
	default:
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: unified}
	}
	if p.Settle == "" {
		return Parsed{}, &ValidationError{Kind: "invalid_format", Symbol: unified}
	}
	return p, nil
}

// Build is the inverse of Parse: it reconstructs the canonical unified
// symbol string from its components.
func Build(p Parsed) string {
	var b strings.Builder
	b.WriteString(p.Base)
	b.WriteByte('/')
	b.WriteString(p.Quote)
	if p.Settle == "" {
		return b.String()
	}
	b.WriteByte(':')
	b.WriteString(p.Settle)
	if p.Expiry == "" {
		return b.String()
	}
	b.WriteByte('-')
	b.WriteString(p.Expiry)
	if p.Strike == "" {
		return b.String()
	}
	b.WriteByte('-')
	b.WriteString(p.Strike)
	b.WriteByte('-')
	b.WriteString(p.OptionType)
	return b.String()
}

// ValidateConversion runs the checks of validate_symbol_conversion (§4.4):
// the symbol parses, a pattern exists for marketType (when marketType is a
// derivative type), and (for spot, no-separator exchanges) the quote
// currency is one this package can recover on the way back.
func ValidateConversion(unifiedSymbol string, s *spec.Spec, marketType spec.MarketType) error {
	p, err := Parse(unifiedSymbol)
	if err != nil {
		return err
	}
	if marketType != "" && marketType != spec.MarketSpot && marketType != spec.MarketMargin {
		if _, ok := s.PatternFor(marketType); !ok {
			return &ValidationError{Kind: "pattern_not_found", MarketType: marketType, Symbol: unifiedSymbol}
		}
	}
	format, ok := s.FormatFor(marketType)
	if ok && format.Separator == "" {
		quote := applyAlias(s.CurrencyAliases, p.Quote)
		if !isKnownQuoteCurrency(quote) {
			return &ValidationError{Kind: "unknown_quote_currency", MarketType: marketType, Symbol: unifiedSymbol}
		}
	}
	if p.Strike != "" {
		if _, err := decimal.NewFromString(p.Strike); err != nil {
			return &ValidationError{Kind: "invalid_format", MarketType: marketType, Symbol: unifiedSymbol}
		}
	}
	return nil
}
