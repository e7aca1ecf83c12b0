// Package telemetry is the Go shape of the six-event contract §6 describes
// as consumed, not owned, by the core: the core only needs to know how to
// emit the events, never how they're pipelined or stored. ContractVersion
// lets a consumer detect a future, incompatible event shape.
package telemetry

// ContractVersion is this build's telemetry event contract version.
const ContractVersion = 1

// Event is one telemetry emission. Measurements carries numeric/timestamp
// values a consumer would aggregate (duration, system_time); Metadata
// carries dimensions a consumer would group or filter by (exchange,
// method, path, ...).
type Event struct {
	Name            string
	ContractVersion int
	Measurements    map[string]any
	Metadata        map[string]any
}

// Emitter is the sole core-side contract with the telemetry pipeline: emit
// one event, never block on delivery guarantees the core can't reason
// about.
type Emitter interface {
	Emit(Event)
}

// NoopEmitter discards every event. It is the default for callers who don't
// configure telemetry.
type NoopEmitter struct{}

// Emit implements Emitter by doing nothing.
func (NoopEmitter) Emit(Event) {}

func newEvent(name string, measurements, metadata map[string]any) Event {
	return Event{Name: name, ContractVersion: ContractVersion, Measurements: measurements, Metadata: metadata}
}

// RequestStart builds the request.start event.
func RequestStart(systemTimeMS int64, exchange, method, path string) Event {
	return newEvent("request.start",
		map[string]any{"system_time": systemTimeMS},
		map[string]any{"exchange": exchange, "method": method, "path": path})
}

// RequestStop builds the request.stop event. rateLimit is optional per §6
// ("rate_limit?") and omitted from Metadata when empty.
func RequestStop(durationMS int64, exchange, method, path string, status int, rateLimit string) Event {
	metadata := map[string]any{"exchange": exchange, "method": method, "path": path, "status": status}
	if rateLimit != "" {
		metadata["rate_limit"] = rateLimit
	}
	return newEvent("request.stop", map[string]any{"duration": durationMS}, metadata)
}

// RequestException builds the request.exception event. kind is the
// unified error taxonomy variant (errs.Type, passed as a string to avoid a
// telemetry->errs dependency); reason is a short human message.
func RequestException(durationMS int64, exchange, method, path, kind, reason string) Event {
	return newEvent("request.exception",
		map[string]any{"duration": durationMS},
		map[string]any{"exchange": exchange, "method": method, "path": path, "kind": kind, "reason": reason})
}

// CircuitBreakerOpen builds the circuit_breaker.open event.
func CircuitBreakerOpen(systemTimeMS int64, exchange string) Event {
	return circuitBreakerEvent("circuit_breaker.open", systemTimeMS, exchange)
}

// CircuitBreakerClosed builds the circuit_breaker.closed event.
func CircuitBreakerClosed(systemTimeMS int64, exchange string) Event {
	return circuitBreakerEvent("circuit_breaker.closed", systemTimeMS, exchange)
}

// CircuitBreakerRejected builds the circuit_breaker.rejected event.
func CircuitBreakerRejected(systemTimeMS int64, exchange string) Event {
	return circuitBreakerEvent("circuit_breaker.rejected", systemTimeMS, exchange)
}

func circuitBreakerEvent(name string, systemTimeMS int64, exchange string) Event {
	return newEvent(name, map[string]any{"system_time": systemTimeMS}, map[string]any{"exchange": exchange})
}
