package spec

import (
	"fmt"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
)

// CompileError is returned by Validate when a spec fails a structural
// invariant. It wraps the underlying vala validation failure so the
// original field-level message survives.
type CompileError struct {
	ExchangeID string
	cause      error
}

func (e *CompileError) Error() string {
	if e.ExchangeID != "" {
		return fmt.Sprintf("spec %q: %v", e.ExchangeID, e.cause)
	}
	return fmt.Sprintf("spec: %v", e.cause)
}

func (e *CompileError) Unwrap() error { return e.cause }

// Warning is a non-fatal semantic finding surfaced during extraction
// (§4.1 "Semantic warnings"); Validate never fails because of these, it
// only returns them alongside a nil error for the caller to log.
type Warning struct {
	ExchangeID string
	Message    string
}

func (w Warning) String() string {
	return fmt.Sprintf("spec %q: %s", w.ExchangeID, w.Message)
}

// Validate runs the structural checks of §4.1 and returns the semantic
// warnings alongside any fatal CompileError. warnings is always returned,
// even when err != nil, so a caller can log everything found before
// aborting.
func Validate(s *Spec) (warnings []Warning, err error) {
	if s == nil {
		return nil, &CompileError{cause: errors.New("spec must not be nil")}
	}
	warnings = semanticWarnings(s)

	validation := vala.BeginValidation().Validate(
		vala.StringNotEmpty(s.ID, "id"),
		vala.StringNotEmpty(s.Name, "name"),
		checker(func() (bool, string) {
			return !s.URLs.API.Empty(), "urls.api must not be empty"
		}),
		checker(func() (bool, string) {
			return SupportedSigningPatterns[s.Signing.Pattern], fmt.Sprintf("signing.pattern %q is not a supported pattern", s.Signing.Pattern)
		}),
		checker(func() (bool, string) {
			switch s.Classification {
			case ClassificationCertifiedPro, ClassificationPro, ClassificationSupported:
				return true, ""
			default:
				return false, fmt.Sprintf("classification %q is not one of certified_pro/pro/supported", s.Classification)
			}
		}),
		checker(func() (bool, string) {
			return s.SpecFormatVersion <= CurrentSupportedFormatVersion,
				fmt.Sprintf("spec_format_version %d exceeds supported %d", s.SpecFormatVersion, CurrentSupportedFormatVersion)
		}),
	)

	if err := validation.Check(); err != nil {
		return warnings, &CompileError{ExchangeID: s.ID, cause: err}
	}

	seen := make(map[string]bool, len(s.Endpoints))
	for _, e := range s.Endpoints {
		if e.Name == "" {
			return warnings, &CompileError{ExchangeID: s.ID, cause: errors.New("endpoint with empty name")}
		}
		if seen[e.Name] {
			return warnings, &CompileError{ExchangeID: s.ID, cause: errors.Errorf("duplicate endpoint name %q", e.Name)}
		}
		seen[e.Name] = true

		switch e.Method {
		case MethodGET, MethodPOST, MethodPUT, MethodPATCH, MethodDELETE:
		default:
			return warnings, &CompileError{ExchangeID: s.ID, cause: errors.Errorf("endpoint %q: unsupported method %q", e.Name, e.Method)}
		}
		if e.Path == "" {
			return warnings, &CompileError{ExchangeID: s.ID, cause: errors.Errorf("endpoint %q: path must not be empty", e.Name)}
		}
		if e.Params == nil {
			return warnings, &CompileError{ExchangeID: s.ID, cause: errors.Errorf("endpoint %q: params must be a list (possibly empty, not nil)", e.Name)}
		}
	}

	return warnings, nil
}

// semanticWarnings implements the three non-fatal checks from §4.1.
func semanticWarnings(s *Spec) []Warning {
	var out []Warning

	backing := make(map[string]bool, len(s.Endpoints))
	for _, e := range s.Endpoints {
		backing[e.Name] = true
	}
	for method, v := range s.Has {
		if v == HasFalse {
			continue
		}
		if v == HasEmulated {
			continue // emulated methods are backed by other endpoints, not a direct one
		}
		if !backing[method] {
			out = append(out, Warning{s.ID, fmt.Sprintf("capability %q has no backing endpoint", method)})
		}
	}

	declaredMarketTypes := map[MarketType]bool{}
	if mts, ok := s.Features["market_types"].([]any); ok {
		for _, mt := range mts {
			if str, ok := mt.(string); ok {
				declaredMarketTypes[MarketType(str)] = true
			}
		}
	}
	if len(declaredMarketTypes) > 0 {
		for _, e := range s.Endpoints {
			if e.MarketType != "" && !declaredMarketTypes[e.MarketType] {
				out = append(out, Warning{s.ID, fmt.Sprintf("endpoint %q: market_type %q not listed in features", e.Name, e.MarketType)})
			}
		}
	}

	if s.Fees != nil {
		trading, _ := s.Fees["trading"].(map[string]any)
		_, hasMaker := trading["maker"]
		_, hasTaker := trading["taker"]
		if !hasMaker && !hasTaker {
			out = append(out, Warning{s.ID, "fees map present but missing both trading.maker and trading.taker"})
		}
	}

	return out
}

// checker adapts a (bool, string) closure into a vala.Checker. vala.Checker
// itself is func() (bool, string, []string), the third result being the
// param-name slice vala's own checkers use to fill in %s in shared message
// templates; these closures build their own complete message, so they have
// no param names to report.
func checker(f func() (bool, string)) vala.Checker {
	return func() (bool, string, []string) {
		ok, msg := f()
		return ok, msg, nil
	}
}
