package exchange

import (
	"time"

	"github.com/ccxtgo/unified/emulation"
	"github.com/ccxtgo/unified/signing"
	"github.com/ccxtgo/unified/telemetry"
)

// Option configures an Exchange at construction time. Every field has a
// working zero-configuration default (New(s) alone is always usable), so
// Option only needs to be reached for when a caller wants to inject a test
// double or override a production collaborator.
type Option func(*Exchange)

// WithHTTPCollaborator overrides the default HTTP/2 collaborator.
func WithHTTPCollaborator(c HTTPCollaborator) Option {
	return func(e *Exchange) { e.http = c }
}

// WithCoercionCollaborator overrides the default passthrough coercion layer.
func WithCoercionCollaborator(c CoercionCollaborator) Option {
	return func(e *Exchange) { e.coerce = c }
}

// WithSigningDeps overrides the clock/nonce sources signing patterns use.
// Tests fix both for deterministic output (Property 5).
func WithSigningDeps(d signing.Deps) Option {
	return func(e *Exchange) { e.signDeps = d }
}

// WithCustomScripts supplies the tengo loader backing the "custom" signing
// pattern (§4.3). Exchanges not using PatternCustom never need this.
func WithCustomScripts(l signing.ScriptLoader) Option {
	return func(e *Exchange) { e.customScripts = l }
}

// WithEmulationIndex overrides the process-default emulation index, mainly
// for tests that want an isolated index rather than the shared default.
func WithEmulationIndex(idx *emulation.Index) Option {
	return func(e *Exchange) { e.emuIndex = idx }
}

// WithSandbox routes every call through the spec's sandbox URLs, when the
// spec declares one.
func WithSandbox(sandbox bool) Option {
	return func(e *Exchange) { e.sandbox = sandbox }
}

// WithDefaultTimeout sets the request timeout used when an individual call's
// options map does not override timeout_ms.
func WithDefaultTimeout(d time.Duration) Option {
	return func(e *Exchange) { e.defaultTimeout = d }
}

// WithTelemetry overrides the default no-op telemetry emitter so request
// start/stop/exception events (§6) reach a real pipeline.
func WithTelemetry(t telemetry.Emitter) Option {
	return func(e *Exchange) { e.telem = t }
}
