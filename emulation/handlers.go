package emulation

import (
	"github.com/ccxtgo/unified/errs"
)

func requireParam(ctx *Context, key, method string) (any, *errs.Error) {
	v, ok := field(ctx.Params, key)
	if !ok || v == nil {
		return nil, errs.InvalidParameters(ctx.Facade.ID(), method+" requires "+key)
	}
	return v, nil
}

func requireStringParam(ctx *Context, key, method string) (string, *errs.Error) {
	v, err := requireParam(ctx, key, method)
	if err != nil {
		return "", err
	}
	s, ok := asString(v)
	if !ok {
		return "", errs.InvalidParameters(ctx.Facade.ID(), method+" requires "+key)
	}
	return s, nil
}

func call(ctx *Context, method string, args map[string]any) (any, *errs.Error) {
	v, err := ctx.Facade.Call(ctx.Ctx, method, args, ctx.Options)
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			return nil, e
		}
		return nil, errs.New(errs.TypeExchangeError, ctx.Facade.ID(), method+" failed", err)
	}
	return v, nil
}

func selectBySymbol(entries []map[string]any, symbol string) (map[string]any, bool) {
	for _, e := range entries {
		v, _ := field(e, "symbol")
		if s, ok := asString(v); ok && s == symbol {
			return e, true
		}
	}
	return nil, false
}

func selectByField(entries []map[string]any, key, value string) (map[string]any, bool) {
	for _, e := range entries {
		v, _ := field(e, key)
		if s, ok := asString(v); ok && s == value {
			return e, true
		}
	}
	return nil, false
}

// ---- single-selection emulations ----

func handleFetchTicker(idx *Index, ctx *Context) Result {
	symbol, err := requireStringParam(ctx, "symbol", "fetch_ticker")
	if err != nil {
		return fail(err)
	}
	raw, err := call(ctx, "fetch_tickers", map[string]any{"symbols": []any{symbol}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_ticker: no ticker for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchBidsAsks(idx *Index, ctx *Context) Result {
	raw, err := call(ctx, "fetch_tickers", ctx.Params)
	if err != nil {
		return fail(err)
	}
	return okResult(raw)
}

func handleFetchCurrencies(idx *Index, ctx *Context) Result {
	raw, err := call(ctx, "fetch_markets", nil)
	if err != nil {
		return fail(err)
	}
	best := map[string]map[string]any{}
	for _, m := range toEntries(raw) {
		for _, role := range []string{"base", "quote"} {
			code, ok := asString(mustField(m, role))
			if !ok || code == "" {
				continue
			}
			precision := 1e-8
			if p, ok := field(m, role+"Precision"); ok {
				if f, ok := asFloat(p); ok {
					precision = f
				}
			}
			if existing, seen := best[code]; seen {
				ep, _ := asFloat(mustField(existing, "precision"))
				if precision <= ep {
					continue
				}
			}
			best[code] = map[string]any{"code": code, "precision": precision}
		}
	}
	out := make([]map[string]any, 0, len(best))
	for _, v := range best {
		out = append(out, v)
	}
	return okResult(out)
}

func mustField(m map[string]any, key string) any {
	v, _ := field(m, key)
	return v
}

func handleFetchTradingLimits(idx *Index, ctx *Context) Result {
	raw, err := call(ctx, "fetch_markets", nil)
	if err != nil {
		return fail(err)
	}
	var symbols map[string]bool
	if v, ok := field(ctx.Params, "symbols"); ok {
		if list, ok := v.([]any); ok {
			symbols = map[string]bool{}
			for _, s := range list {
				if str, ok := asString(s); ok {
					symbols[str] = true
				}
			}
		}
	}
	out := map[string]any{}
	for _, m := range toEntries(raw) {
		symbol, ok := asString(mustField(m, "symbol"))
		if !ok {
			continue
		}
		if symbols != nil && !symbols[symbol] {
			continue
		}
		limits, _ := field(m, "limits")
		limitsMap, _ := limits.(map[string]any)
		amount, _ := field(limitsMap, "amount")
		out[symbol] = map[string]any{"amount": amount}
	}
	return okResult(out)
}

func handleFetchTransactions(idx *Index, ctx *Context) Result {
	raw, err := call(ctx, "fetch_deposits_withdrawals", ctx.Params)
	if err != nil {
		return fail(err)
	}
	return okResult(raw)
}

func handleFetchTradingFee(idx *Index, ctx *Context) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", "fetch_trading_fee")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_trading_fees", nil)
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_trading_fee: no entry for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchTransactionFee(idx *Index, ctx *Context) Result {
	code, ferr := requireStringParam(ctx, "code", "fetch_transaction_fee")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_transaction_fees", map[string]any{"codes": []any{code}})
	if err != nil {
		return fail(err)
	}
	return okResult(raw)
}

func handleFetchDepositWithdrawFee(idx *Index, ctx *Context) Result {
	code, ferr := requireStringParam(ctx, "code", "fetch_deposit_withdraw_fee")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_deposit_withdraw_fees", map[string]any{"codes": []any{code}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectByField(toEntries(raw), "code", code)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_deposit_withdraw_fee: no entry for "+code, nil))
	}
	return okResult(entry)
}

func handleFetchDepositAddress(idx *Index, ctx *Context) Result {
	code, ferr := requireStringParam(ctx, "code", "fetch_deposit_address")
	if ferr != nil {
		return fail(ferr)
	}

	if ctx.Facade.EndpointAvailable("fetch_deposit_addresses") {
		raw, err := call(ctx, "fetch_deposit_addresses", map[string]any{"codes": []any{code}})
		if err != nil {
			return fail(err)
		}
		entry, found := selectByField(toEntries(raw), "code", code)
		if !found {
			return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_deposit_address: no entry for "+code, nil))
		}
		return okResult(entry)
	}

	if ctx.Facade.EndpointAvailable("fetch_deposit_addresses_by_network") {
		args := map[string]any{"code": code}
		network, hasNetwork := field(ctx.Params, "network")
		raw, err := call(ctx, "fetch_deposit_addresses_by_network", args)
		if err != nil {
			return fail(err)
		}
		entries := toEntries(raw)
		if hasNetwork {
			if n, ok := asString(network); ok {
				for _, e := range entries {
					v, _ := field(e, "network")
					if s, ok := asString(v); ok && equalFold(s, n) {
						return okResult(e)
					}
				}
			}
		}
		if len(entries) > 0 {
			return okResult(entries[0])
		}
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_deposit_address: no entry for "+code, nil))
	}

	return fail(errs.NotSupported(ctx.Facade.ID(), "fetch_deposit_address"))
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func handleFetchPosition(idx *Index, ctx *Context) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", "fetch_position")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_positions", map[string]any{"symbols": []any{symbol}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_position: no position for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchPositionHistory(idx *Index, ctx *Context) Result {
	raw, err := call(ctx, "fetch_positions_history", ctx.Params)
	if err != nil {
		return fail(err)
	}
	return okResult(raw)
}

func handleFetchLeverage(idx *Index, ctx *Context) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", "fetch_leverage")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_leverages", map[string]any{"symbols": []any{symbol}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_leverage: no entry for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchMarginMode(idx *Index, ctx *Context) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", "fetch_margin_mode")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_margin_modes", map[string]any{"symbols": []any{symbol}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_margin_mode: no entry for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchMarketLeverageTiers(idx *Index, ctx *Context) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", "fetch_market_leverage_tiers")
	if ferr != nil {
		return fail(ferr)
	}
	if cerr := requireContractMarket(ctx, symbol); cerr != nil {
		return fail(cerr)
	}
	raw, err := call(ctx, "fetch_leverage_tiers", map[string]any{"symbols": []any{symbol}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_market_leverage_tiers: no entry for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchFundingRate(idx *Index, ctx *Context) Result {
	return handleContractSelectBySymbol(ctx, "fetch_funding_rate", "fetch_funding_rates")
}

func handleFetchFundingInterval(idx *Index, ctx *Context) Result {
	return handleContractSelectBySymbol(ctx, "fetch_funding_interval", "fetch_funding_intervals")
}

func handleContractSelectBySymbol(ctx *Context, method, delegate string) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", method)
	if ferr != nil {
		return fail(ferr)
	}
	if cerr := requireContractMarket(ctx, symbol); cerr != nil {
		return fail(cerr)
	}
	raw, err := call(ctx, delegate, map[string]any{"symbols": []any{symbol}})
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), method+": no entry for "+symbol, nil))
	}
	return okResult(entry)
}

func handleFetchIsolatedBorrowRate(idx *Index, ctx *Context) Result {
	symbol, ferr := requireStringParam(ctx, "symbol", "fetch_isolated_borrow_rate")
	if ferr != nil {
		return fail(ferr)
	}
	raw, err := call(ctx, "fetch_isolated_borrow_rates", nil)
	if err != nil {
		return fail(err)
	}
	entry, found := selectBySymbol(toEntries(raw), symbol)
	if !found {
		return fail(errs.New(errs.TypeExchangeError, ctx.Facade.ID(), "fetch_isolated_borrow_rate: no entry for "+symbol, nil))
	}
	return okResult(entry)
}

// ---- order family ----

// fetchOrdersByStatus calls fetch_orders and narrows the result to the
// given statuses, without applying the since/limit window — callers apply
// that themselves so a merge of several statuses windows only once.
func fetchOrdersByStatus(ctx *Context, statuses ...string) ([]map[string]any, *errs.Error) {
	symbol, _ := asString(mustField(ctx.Params, "symbol"))
	raw, err := call(ctx, "fetch_orders", map[string]any{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	return filterByStatus(toEntries(raw), statuses...), nil
}

func windowByTime(entries []map[string]any, ctx *Context) []map[string]any {
	since, limit := sinceLimitFromParams(ctx.Params)
	ascending := isAscending(entries, "timestamp")
	entries = filterBySince(entries, since, "timestamp")
	return filterByLimit(entries, limit, "timestamp", ascending)
}

func handleFetchOpenOrders(idx *Index, ctx *Context) Result {
	entries, err := fetchOrdersByStatus(ctx, "open")
	if err != nil {
		return fail(err)
	}
	return okResult(windowByTime(entries, ctx))
}

func handleFetchClosedOrders(idx *Index, ctx *Context) Result {
	entries, err := fetchOrdersByStatus(ctx, "closed")
	if err != nil {
		return fail(err)
	}
	return okResult(windowByTime(entries, ctx))
}

func handleFetchCanceledOrders(idx *Index, ctx *Context) Result {
	entries, err := fetchOrdersByStatus(ctx, "canceled")
	if err != nil {
		return fail(err)
	}
	return okResult(windowByTime(entries, ctx))
}

func handleFetchCanceledAndClosedOrders(idx *Index, ctx *Context) Result {
	entries, err := fetchOrdersByStatus(ctx, "canceled", "closed")
	if err != nil {
		return fail(err)
	}
	entries = sortByTimestampDescending(entries)
	since, limit := sinceLimitFromParams(ctx.Params)
	entries = filterBySince(entries, since, "timestamp")
	entries = filterByLimit(entries, limit, "timestamp", false)
	return okResult(entries)
}

func handleFetchOrder(idx *Index, ctx *Context) Result {
	id, ferr := requireStringParam(ctx, "id", "fetch_order")
	if ferr != nil {
		return fail(ferr)
	}

	var entries []map[string]any
	if ctx.Facade.EndpointAvailable("fetch_orders") {
		raw, err := call(ctx, "fetch_orders", ctx.Params)
		if err != nil {
			return fail(err)
		}
		entries = toEntries(raw)
	} else {
		names := []string{"fetch_open_orders", "fetch_closed_orders", "fetch_canceled_orders"}
		var anyAvailable bool
		for _, name := range names {
			if !ctx.Facade.EndpointAvailable(name) {
				continue
			}
			anyAvailable = true
			raw, err := call(ctx, name, ctx.Params)
			if err != nil {
				return fail(err)
			}
			entries = append(entries, toEntries(raw)...)
		}
		if !anyAvailable {
			return fail(errs.NotSupported(ctx.Facade.ID(), "fetch_order"))
		}
	}

	entry, found := selectByField(entries, "id", id)
	if !found {
		return fail(errs.New(errs.TypeOrderNotFound, ctx.Facade.ID(), "order "+id+" not found", nil))
	}
	return okResult(entry)
}

func handleFetchOrderTrades(idx *Index, ctx *Context) Result {
	id, ferr := requireStringParam(ctx, "id", "fetch_order_trades")
	if ferr != nil {
		return fail(ferr)
	}

	if v, ok := field(ctx.Params, "trades"); ok {
		trades := toEntries(v)
		out := make([]map[string]any, 0, len(trades))
		for _, t := range trades {
			orderID, _ := field(t, "order")
			if s, ok := asString(orderID); ok && s == id {
				out = append(out, t)
			}
		}
		return okResult(out)
	}

	raw, err := call(ctx, "fetch_my_trades", ctx.Params)
	if err != nil {
		return fail(err)
	}
	out := make([]map[string]any, 0)
	for _, t := range toEntries(raw) {
		orderID, _ := field(t, "order")
		if s, ok := asString(orderID); ok && s == id {
			out = append(out, t)
		}
	}
	return okResult(out)
}

func handleFetchMyTrades(idx *Index, ctx *Context) Result {
	raw, err := call(ctx, "fetch_orders", ctx.Params)
	if err != nil {
		return fail(err)
	}
	symbol, _ := asString(mustField(ctx.Params, "symbol"))
	since, limit := sinceLimitFromParams(ctx.Params)

	var trades []map[string]any
	for _, order := range toEntries(raw) {
		v, _ := field(order, "trades")
		trades = append(trades, toEntries(v)...)
	}
	if symbol != "" {
		out := trades[:0:0]
		for _, t := range trades {
			s, _ := asString(mustField(t, "symbol"))
			if s == symbol {
				out = append(out, t)
			}
		}
		trades = out
	}
	ascending := isAscending(trades, "timestamp")
	trades = filterBySince(trades, since, "timestamp")
	trades = filterByLimit(trades, limit, "timestamp", ascending)
	return okResult(trades)
}

func handleFetchDepositsWithdrawals(idx *Index, ctx *Context) Result {
	if ctx.Facade.EndpointAvailable("fetch_deposits") || ctx.Facade.EndpointAvailable("fetch_withdrawals") {
		var deposits, withdrawals []map[string]any
		if ctx.Facade.EndpointAvailable("fetch_deposits") {
			raw, err := call(ctx, "fetch_deposits", ctx.Params)
			if err != nil {
				return fail(err)
			}
			deposits = toEntries(raw)
		}
		if ctx.Facade.EndpointAvailable("fetch_withdrawals") {
			raw, err := call(ctx, "fetch_withdrawals", ctx.Params)
			if err != nil {
				return fail(err)
			}
			withdrawals = toEntries(raw)
		}
		merged := append(append([]map[string]any(nil), deposits...), withdrawals...)
		return okResult(sortByTimestampDescending(merged))
	}

	if ctx.Facade.EndpointAvailable("fetch_ledger") {
		raw, err := call(ctx, "fetch_ledger", ctx.Params)
		if err != nil {
			return fail(err)
		}
		return okResult(filterByFieldValue(toEntries(raw), "type", "deposit", "withdrawal"))
	}

	return fail(errs.NotSupported(ctx.Facade.ID(), "fetch_deposits_withdrawals"))
}
