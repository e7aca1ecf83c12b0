package emulation

import (
	"github.com/ccxtgo/unified/errs"
)

// requireContractMarket implements §4.5's "Contract market validation":
// load market via fetch_markets, select by symbol, require a truthy
// contract field.
func requireContractMarket(ctx *Context, symbol string) *errs.Error {
	raw, err := ctx.Facade.Call(ctx.Ctx, "fetch_markets", nil, ctx.Options)
	if err != nil {
		return errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_markets failed", err)
	}
	markets := toEntries(raw)
	for _, m := range markets {
		sym, _ := field(m, "symbol")
		s, _ := asString(sym)
		if s != symbol {
			continue
		}
		contract, _ := field(m, "contract")
		if truthy(contract) {
			return nil
		}
		return errs.InvalidParameters(ctx.Facade.ID(), "Method supports contract markets only")
	}
	return errs.InvalidParameters(ctx.Facade.ID(), "Method supports contract markets only")
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	default:
		return true
	}
}
