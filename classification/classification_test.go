package classification

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ccxtgo/unified/spec"
)

// TestClassificationInvariants is Property 12: certified_pro, pro_only, and
// supported are disjoint and their union is All().
func TestClassificationInvariants(t *testing.T) {
	t.Parallel()

	cp := set(CertifiedPro())
	po := set(ProOnly())
	sup := set(Supported())

	for id := range cp {
		require.False(t, po[id], "%s in both certified_pro and pro_only", id)
		require.False(t, sup[id], "%s in both certified_pro and supported", id)
	}
	for id := range po {
		require.False(t, sup[id], "%s in both pro_only and supported", id)
	}

	union := map[string]bool{}
	for id := range cp {
		union[id] = true
	}
	for id := range po {
		union[id] = true
	}
	for id := range sup {
		union[id] = true
	}
	require.ElementsMatch(t, All(), keys(union))
}

func TestTier1CertifiedProSubsetOfBoth(t *testing.T) {
	t.Parallel()
	cp := set(CertifiedPro())
	for _, id := range Tier1CertifiedPro() {
		tier, ok := Tier(id)
		require.True(t, ok)
		require.Equal(t, Tier1, tier)
		require.True(t, cp[id])
	}
}

func TestGetUnregisteredReturnsFalse(t *testing.T) {
	t.Parallel()
	_, ok := Get("not-a-real-exchange")
	require.False(t, ok)
	require.False(t, Certified("not-a-real-exchange"))
}

func TestWhichSupport(t *testing.T) {
	t.Parallel()
	specs := []*spec.Spec{
		{ID: "a", Has: map[string]spec.HasValue{"fetch_ticker": spec.HasTrue}},
		{ID: "b", Has: map[string]spec.HasValue{"fetch_ticker": spec.HasEmulated}},
		{ID: "c", Has: map[string]spec.HasValue{"fetch_ticker": spec.HasFalse}},
	}
	require.ElementsMatch(t, []string{"a", "b"}, WhichSupport(specs, "fetch_ticker"))
}

func TestWhichSupportAllRequiresEveryMethod(t *testing.T) {
	t.Parallel()
	specs := []*spec.Spec{
		{ID: "a", Has: map[string]spec.HasValue{"fetch_ticker": spec.HasTrue, "fetch_order": spec.HasTrue}},
		{ID: "b", Has: map[string]spec.HasValue{"fetch_ticker": spec.HasTrue}},
	}
	require.Equal(t, []string{"a"}, WhichSupportAll(specs, []string{"fetch_ticker", "fetch_order"}))
}

func TestCompareCapability(t *testing.T) {
	t.Parallel()
	specs := []*spec.Spec{
		{ID: "a", Has: map[string]spec.HasValue{"fetch_order": spec.HasTrue}},
		{ID: "b", Has: map[string]spec.HasValue{"fetch_order": spec.HasEmulated}},
		{ID: "c", Has: map[string]spec.HasValue{}},
	}
	got := CompareCapability(specs, "fetch_order")
	require.Len(t, got, 3)
	require.Equal(t, CapabilityComparison{ExchangeID: "a", Has: spec.HasTrue, Supported: true}, got[0])
	require.Equal(t, CapabilityComparison{ExchangeID: "b", Has: spec.HasEmulated, Supported: true}, got[1])
	require.Equal(t, CapabilityComparison{ExchangeID: "c", Has: spec.HasFalse, Supported: false}, got[2])
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
