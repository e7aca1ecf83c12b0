package classification

import (
	"github.com/ccxtgo/unified/spec"
)

// WhichSupport returns the IDs of every spec in specs whose capability for
// method is spec.HasTrue or spec.HasEmulated — "supports" means callers get
// a usable result, whether native or synthesised.
func WhichSupport(specs []*spec.Spec, method string) []string {
	var out []string
	for _, s := range specs {
		if supportsMethod(s, method) {
			out = append(out, s.ID)
		}
	}
	return out
}

// WhichSupportAll returns the IDs of every spec in specs that supports every
// method in methods.
func WhichSupportAll(specs []*spec.Spec, methods []string) []string {
	var out []string
	for _, s := range specs {
		supportsAll := true
		for _, m := range methods {
			if !supportsMethod(s, m) {
				supportsAll = false
				break
			}
		}
		if supportsAll {
			out = append(out, s.ID)
		}
	}
	return out
}

func supportsMethod(s *spec.Spec, method string) bool {
	switch s.HasCapability(method) {
	case spec.HasTrue, spec.HasEmulated:
		return true
	default:
		return false
	}
}

// CapabilityComparison is CompareCapability's result for one exchange: the
// raw tri-state flag plus whether it counts as "supported" for discovery
// purposes (true or emulated).
type CapabilityComparison struct {
	ExchangeID string
	Has        spec.HasValue
	Supported  bool
}

// CompareCapability reports method's status across every spec in specs, a
// concrete struct result rather than a bare boolean predicate (per the
// grounding ledger's Supplemented-features decision).
func CompareCapability(specs []*spec.Spec, method string) []CapabilityComparison {
	out := make([]CapabilityComparison, 0, len(specs))
	for _, s := range specs {
		has := s.HasCapability(method)
		out = append(out, CapabilityComparison{
			ExchangeID: s.ID,
			Has:        has,
			Supported:  has == spec.HasTrue || has == spec.HasEmulated,
		})
	}
	return out
}
