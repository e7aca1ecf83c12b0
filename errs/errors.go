// Package errs defines the unified error taxonomy shared across the core:
// every subsystem returns one of these variants rather than an ad-hoc error
// string, so callers can branch on Type instead of parsing messages.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Type is one of the closed set of error variants a caller can branch on.
type Type string

// The fixed variant set. No other Type value is ever constructed by this
// module; an exchange-reported code that maps to nothing known becomes
// TypeExchangeError, never a freshly invented Type.
const (
	TypeRateLimited        Type = "rate_limited"
	TypeInsufficientBalance Type = "insufficient_balance"
	TypeInvalidCredentials Type = "invalid_credentials"
	TypeInvalidParameters  Type = "invalid_parameters"
	TypeOrderNotFound      Type = "order_not_found"
	TypeInvalidOrder       Type = "invalid_order"
	TypeMarketClosed       Type = "market_closed"
	TypeNetworkError       Type = "network_error"
	TypeAccessRestricted   Type = "access_restricted"
	TypeNotSupported       Type = "not_supported"
	TypeCircuitOpen        Type = "circuit_open"
	TypeExchangeError      Type = "exchange_error"
)

// recoverable is a fixed function of Type per §4.6: "recoverable is a fixed
// function of type". Looked up once, never overridden per-instance.
var recoverable = map[Type]bool{
	TypeRateLimited:         true,
	TypeInsufficientBalance: false,
	TypeInvalidCredentials:  false,
	TypeInvalidParameters:   false,
	TypeOrderNotFound:       false,
	TypeInvalidOrder:        false,
	TypeMarketClosed:        false,
	TypeNetworkError:        true,
	TypeAccessRestricted:    false,
	TypeNotSupported:        false,
	TypeCircuitOpen:         true,
	TypeExchangeError:       false,
}

// Error is the unified error value returned by every exchange operation.
// Fields mirror §4.6 exactly: Type/Code/Message/Exchange/RetryAfter/Raw/
// Hints/Recoverable.
type Error struct {
	Type       Type
	Code       string
	Message    string
	Exchange   string
	RetryAfter int // seconds; only meaningful when Type == TypeRateLimited
	Raw        error
	Hints      []string
	Recoverable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Exchange != "" {
		return fmt.Sprintf("%s: %s: %s", e.Exchange, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes Raw so callers can errors.As/errors.Is into the underlying
// cause, and so pkg/errors-wrapped causes keep their stack.
func (e *Error) Unwrap() error { return e.Raw }

// Is allows errors.Is(err, &Error{Type: errs.TypeRateLimited}) style checks
// by comparing only the Type field of the target.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Type == "" {
		return false
	}
	return e.Type == t.Type
}

// New builds an Error, deriving Recoverable from Type and deterministic
// Hints from (Type, exchange). Raw is wrapped with pkg/errors so any
// later %+v formatting retains a stack trace from the construction site.
func New(typ Type, exchange, message string, raw error) *Error {
	e := &Error{
		Type:        typ,
		Message:     message,
		Exchange:    exchange,
		Recoverable: recoverable[typ],
	}
	if raw != nil {
		e.Raw = errors.WithStack(raw)
	}
	e.Hints = deriveHints(typ, exchange)
	return e
}

// deriveHints is a pure function of (type, exchange): no randomness, no
// clock, so Property 6 (no-sensitive-leak) and determinism both hold
// trivially — hints never touch raw credentials or request bodies.
func deriveHints(typ Type, exchange string) []string {
	switch typ {
	case TypeRateLimited:
		return []string{"reduce request frequency", "respect retry_after before retrying"}
	case TypeInsufficientBalance:
		return []string{"check account balance before retrying"}
	case TypeInvalidCredentials:
		return []string{"verify api_key/secret/password are set for " + exchange}
	case TypeInvalidParameters:
		return []string{"check required parameters for this call"}
	case TypeOrderNotFound:
		return []string{"the order id may be stale or belong to a different account"}
	case TypeInvalidOrder:
		return []string{"check order price/amount against market limits"}
	case TypeMarketClosed:
		return []string{"the market is not currently trading"}
	case TypeNetworkError:
		return []string{"transient network failure, safe to retry idempotent requests"}
	case TypeAccessRestricted:
		return []string{"this account/region is restricted from this endpoint"}
	case TypeNotSupported:
		return []string{exchange + " does not implement this method"}
	case TypeCircuitOpen:
		return []string{"circuit breaker is open for " + exchange + ", no request was sent"}
	default:
		return nil
	}
}

// RateLimited constructs a TypeRateLimited error with RetryAfter populated.
func RateLimited(exchange string, retryAfterSeconds int, raw error) *Error {
	e := New(TypeRateLimited, exchange, "rate limit exceeded", raw)
	e.RetryAfter = retryAfterSeconds
	return e
}

// NotSupported constructs a TypeNotSupported error for a given method name.
func NotSupported(exchange, method string) *Error {
	return New(TypeNotSupported, exchange, method+" is not supported", nil)
}

// InvalidParameters constructs a TypeInvalidParameters error with the given
// message, conventionally "<method> requires <field>" per §4.5's error
// policy table.
func InvalidParameters(exchange, message string) *Error {
	return New(TypeInvalidParameters, exchange, message, nil)
}

// CircuitOpen constructs a TypeCircuitOpen error. It must be returned
// without any network round trip (Property 11).
func CircuitOpen(exchange string) *Error {
	return New(TypeCircuitOpen, exchange, "circuit breaker is open", nil)
}
