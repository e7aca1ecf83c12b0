package fanout

import (
	"context"
	"time"

	"github.com/ccxtgo/unified/errs"
)

// Pinger is the minimal facade surface Health needs: a named exchange that
// can be called by method name. emulation.Facade and *exchange.Exchange both
// satisfy this already.
type Pinger interface {
	ID() string
	Call(ctx context.Context, name string, args, opts map[string]any) (any, error)
}

// CircuitStater is an optional injected lookup for a per-exchange circuit
// breaker's state (external collaborator per §5/§6); Status reports
// "unknown" when none is supplied.
type CircuitStater interface {
	State(exchangeID string) string
}

// Status is Health.status's result shape (§4.8).
type Status struct {
	Reachable    bool
	LatencyMS    int64
	CircuitState string
	Error        string
}

// Ping calls fetch_time and reports whether the round trip succeeded.
func Ping(ctx context.Context, p Pinger) error {
	_, err := p.Call(ctx, "fetch_time", nil, nil)
	return err
}

// Latency calls fetch_time and returns the wall-clock round trip, using now
// as the injectable clock (tests fix it for determinism).
func Latency(ctx context.Context, p Pinger, now func() time.Time) (time.Duration, error) {
	start := now()
	_, err := p.Call(ctx, "fetch_time", nil, nil)
	return now().Sub(start), err
}

// StatusOf composes ping + latency + (optional) circuit state into one
// Status value. A circuit_open error short-circuits latency measurement
// (Property 11: the fast path never touches the HTTP collaborator).
func StatusOf(ctx context.Context, p Pinger, circuits CircuitStater, now func() time.Time) Status {
	state := "unknown"
	if circuits != nil {
		state = circuits.State(p.ID())
	}

	start := now()
	_, err := p.Call(ctx, "fetch_time", nil, nil)
	elapsed := now().Sub(start)

	if err != nil {
		var unified *errs.Error
		reachable := false
		if asUnified(err, &unified) && unified.Type == errs.TypeCircuitOpen {
			return Status{Reachable: false, CircuitState: state, Error: unified.Error()}
		}
		return Status{Reachable: reachable, LatencyMS: elapsed.Milliseconds(), CircuitState: state, Error: err.Error()}
	}
	return Status{Reachable: true, LatencyMS: elapsed.Milliseconds(), CircuitState: state}
}

func asUnified(err error, target **errs.Error) bool {
	e, ok := err.(*errs.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
