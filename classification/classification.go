// Package classification is the compile-time-derived capability registry of
// §4.7: two static tables (certified/pro/testnet flags, priority tiers) plus
// the derived sets and queries built from them. Nothing here is mutable at
// runtime; every query is a pure function over the two tables below.
package classification

// PriorityTier is the closed set a module can be assigned to.
type PriorityTier string

const (
	Tier1 PriorityTier = "tier1"
	Tier2 PriorityTier = "tier2"
	Tier3 PriorityTier = "tier3"
	TierDEX PriorityTier = "dex"
)

// Flags is one exchange's entry in the CCXT-style capability table.
type Flags struct {
	Certified bool
	Pro       bool
	Testnet   bool
}

// table is the static certified/pro/testnet registry. Populated once at
// package init from the literal entries below; never mutated afterward.
var table = map[string]Flags{
	"binance":  {Certified: true, Pro: true, Testnet: true},
	"okx":      {Certified: true, Pro: true, Testnet: true},
	"bybit":    {Certified: true, Pro: true, Testnet: true},
	"kraken":   {Certified: true, Pro: true, Testnet: false},
	"deribit":  {Certified: true, Pro: false, Testnet: true},
	"coinbase": {Certified: true, Pro: true, Testnet: false},
	"kucoin":   {Certified: false, Pro: true, Testnet: true},
	"gateio":   {Certified: false, Pro: true, Testnet: false},
	"bitget":   {Certified: false, Pro: true, Testnet: true},
	"mexc":     {Certified: false, Pro: false, Testnet: false},
}

// tiers is the static priority-tier registry.
var tiers = map[string]PriorityTier{
	"binance": Tier1,
	"okx":     Tier1,
	"bybit":   Tier1,
	"kraken":  Tier2,
	"deribit": Tier2,
	"coinbase": Tier1,
	"kucoin":  Tier2,
	"gateio":  Tier3,
	"bitget":  Tier3,
	"mexc":    Tier3,
}

// All returns every registered exchange id, in no particular order.
func All() []string {
	out := make([]string, 0, len(table))
	for id := range table {
		out = append(out, id)
	}
	return out
}

// Get returns the registered Flags for id, or the zero value if id is
// unregistered.
func Get(id string) (Flags, bool) {
	f, ok := table[id]
	return f, ok
}

// Certified reports whether id is registered and marked certified.
func Certified(id string) bool {
	return table[id].Certified
}

// Pro reports whether id is registered and marked pro.
func Pro(id string) bool {
	return table[id].Pro
}

// HasTestnet reports whether id is registered and has a testnet.
func HasTestnet(id string) bool {
	return table[id].Testnet
}

// Tier returns id's priority tier and whether it is registered at all.
func Tier(id string) (PriorityTier, bool) {
	t, ok := tiers[id]
	return t, ok
}

// CertifiedPro is the derived set certified ∩ pro.
func CertifiedPro() []string {
	return filterIDs(func(f Flags) bool { return f.Certified && f.Pro })
}

// ProOnly is the derived set pro \ certified.
func ProOnly() []string {
	return filterIDs(func(f Flags) bool { return f.Pro && !f.Certified })
}

// Supported is the derived set all \ pro.
func Supported() []string {
	return filterIDs(func(f Flags) bool { return !f.Pro })
}

func filterIDs(pred func(Flags) bool) []string {
	var out []string
	for id, f := range table {
		if pred(f) {
			out = append(out, id)
		}
	}
	return out
}

// IsCertifiedPro reports whether id belongs to the certified_pro derived set.
func IsCertifiedPro(id string) bool {
	f := table[id]
	return f.Certified && f.Pro
}

// Tier1CertifiedPro is the derived set tier1 ∩ certified_pro.
func Tier1CertifiedPro() []string {
	var out []string
	for id, f := range table {
		if tiers[id] == Tier1 && f.Certified && f.Pro {
			out = append(out, id)
		}
	}
	return out
}
