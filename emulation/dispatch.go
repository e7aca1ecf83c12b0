package emulation

import (
	"context"

	"github.com/ccxtgo/unified/errs"
)

// Facade is the minimal surface emulation needs back from the exchange
// facade (§9: "an explicit exchange-handle interface passed into emulation,
// never a module reference"). The facade supplies it; emulation never
// imports the exchange package.
type Facade interface {
	ID() string
	EndpointAvailable(name string) bool
	AuthRequired(name string) bool
	Call(ctx context.Context, name string, args map[string]any, opts map[string]any) (any, error)
}

// Context carries everything a handler needs besides the static Index/Spec:
// the facade handle, the caller's raw params, and call options.
type Context struct {
	Ctx     context.Context
	Facade  Facade
	Params  map[string]any
	Options map[string]any
}

// Result is dispatch's three-way outcome: Passthrough (not emulated here —
// caller proceeds with the normal HTTP path), Ok(value), or Err(*errs.Error).
type Result struct {
	Passthrough bool
	Value       any
	Err         *errs.Error
}

func passthrough() Result       { return Result{Passthrough: true} }
func okResult(value any) Result { return Result{Value: value} }
func fail(e *errs.Error) Result { return Result{Err: e} }

type handlerFunc func(idx *Index, ctx *Context) Result

var handlers = map[string]handlerFunc{
	"fetch_ticker":                     handleFetchTicker,
	"fetch_bids_asks":                  handleFetchBidsAsks,
	"fetch_currencies":                 handleFetchCurrencies,
	"fetch_trading_limits":             handleFetchTradingLimits,
	"fetch_transactions":               handleFetchTransactions,
	"fetch_trading_fee":                handleFetchTradingFee,
	"fetch_transaction_fee":            handleFetchTransactionFee,
	"fetch_deposit_withdraw_fee":       handleFetchDepositWithdrawFee,
	"fetch_deposit_address":            handleFetchDepositAddress,
	"fetch_position":                   handleFetchPosition,
	"fetch_position_history":           handleFetchPositionHistory,
	"fetch_leverage":                   handleFetchLeverage,
	"fetch_margin_mode":                handleFetchMarginMode,
	"fetch_market_leverage_tiers":      handleFetchMarketLeverageTiers,
	"fetch_funding_rate":               handleFetchFundingRate,
	"fetch_funding_interval":           handleFetchFundingInterval,
	"fetch_isolated_borrow_rate":       handleFetchIsolatedBorrowRate,
	"fetch_open_orders":                handleFetchOpenOrders,
	"fetch_closed_orders":              handleFetchClosedOrders,
	"fetch_canceled_orders":            handleFetchCanceledOrders,
	"fetch_canceled_and_closed_orders": handleFetchCanceledAndClosedOrders,
	"fetch_order":                      handleFetchOrder,
	"fetch_order_trades":               handleFetchOrderTrades,
	"fetch_my_trades":                  handleFetchMyTrades,
	"fetch_deposits_withdrawals":       handleFetchDepositsWithdrawals,
}

// Dispatch is the emulation entry point (§4.5 "Dispatch contract"):
// dispatch(spec, method, scope, context) -> :passthrough | Ok(value) | Err(Error).
func Dispatch(idx *Index, exchangeID string, method string, scope Scope, ctx *Context) Result {
	if _, emulated := idx.Lookup(exchangeID, scope, method); !emulated {
		return passthrough()
	}
	if ctx == nil || ctx.Facade == nil {
		return fail(errs.InvalidParameters(exchangeID, "Emulation context missing exchange module"))
	}
	handler, found := handlers[method]
	if !found {
		return fail(errs.NotSupported(exchangeID, method))
	}
	return handler(idx, ctx)
}
