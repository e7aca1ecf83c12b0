// Package signing implements the fixed set of ~8 authentication recipes
// (§4.3) that cover the overwhelming majority of exchanges. Every pattern is
// a pure function of (request, credentials, config, deps): no I/O, no
// hidden clock, no hidden randomness, so tests can fix time and nonce and
// assert byte-exact output (Property 5, Property 6).
package signing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/ccxtgo/unified/errs"
	"github.com/ccxtgo/unified/spec"
)

// Credentials carries the caller-owned, per-call authentication material
// (§3). It is never persisted by this package and is never copied into an
// Error's Raw/Hints fields (Property 6 / §7 "Sensitive data").
type Credentials struct {
	APIKey   string
	Secret   string
	Password string
	Sandbox  bool
}

// Request is the internal signing input (§3): an unsigned call against a
// resolved base URL.
type Request struct {
	Method  spec.HTTPMethod
	BaseURL string
	Path    string
	Body    []byte
	Params  map[string]any
}

// Header is one (name, value) pair. Signed requests carry an ordered list
// of headers rather than a map, matching §3's literal tuple-list shape.
type Header struct {
	Name  string
	Value string
}

// SignedRequest is the output of Sign (§3).
type SignedRequest struct {
	URL     string
	Method  spec.HTTPMethod
	Headers []Header
	Body    []byte
}

// Deps isolates the two suspension/non-determinism points a pattern can
// touch: wall-clock time and nonce generation. Tests supply fixed values;
// Default() wires real ones.
type Deps struct {
	Now   func() time.Time
	Nonce func() string
}

// Default returns production Deps: real wall-clock time and a fresh
// UUIDv4-derived nonce per call.
func Default() Deps {
	return Deps{
		Now: time.Now,
		Nonce: func() string {
			id, err := uuid.NewV4()
			if err != nil {
				// uuid.NewV4 only fails if the system RNG is broken; fall
				// back to a timestamp-derived value rather than panicking,
				// since signing must never panic (§4.3 failure semantics).
				return strconv.FormatInt(time.Now().UnixNano(), 10)
			}
			return id.String()
		},
	}
}

// Sign dispatches to the pattern named in cfg.Pattern and returns a fully
// signed request, or a *errs.Error (invalid_credentials/invalid_parameters)
// on a recognised failure — it never panics (§4.3).
func Sign(pattern spec.SigningPattern, req Request, creds Credentials, cfg spec.Signing, deps Deps, customScripts ScriptLoader) (*SignedRequest, error) {
	switch pattern {
	case spec.PatternHMACSHA256Query:
		return signHMACSHA256Query(req, creds, cfg, deps)
	case spec.PatternHMACSHA256Headers:
		return signHMACSHA256Headers(req, creds, cfg, deps)
	case spec.PatternHMACSHA256ISOPassphrase:
		return signHMACSHA256ISOPassphrase(req, creds, cfg, deps)
	case spec.PatternHMACSHA256PassphraseSigned:
		return signHMACSHA256PassphraseSigned(req, creds, cfg, deps)
	case spec.PatternHMACSHA512Nonce:
		return signHMACSHA512Nonce(req, creds, cfg, deps)
	case spec.PatternHMACSHA512Gate:
		return signHMACSHA512Gate(req, creds, cfg, deps)
	case spec.PatternHMACSHA384Payload:
		return signHMACSHA384Payload(req, creds, cfg, deps)
	case spec.PatternDeribit:
		return signDeribit(req, creds, cfg, deps)
	case spec.PatternCustom:
		return signCustom(req, creds, cfg, deps, customScripts)
	default:
		return nil, errs.InvalidParameters("", "unknown signing pattern: "+string(pattern))
	}
}

// Patterns lists every pattern name this package implements, in the order
// given by §4.3's table, for introspection (§6 Signing.patterns).
func Patterns() []spec.SigningPattern {
	return []spec.SigningPattern{
		spec.PatternHMACSHA256Query,
		spec.PatternHMACSHA256Headers,
		spec.PatternHMACSHA256ISOPassphrase,
		spec.PatternHMACSHA256PassphraseSigned,
		spec.PatternHMACSHA512Nonce,
		spec.PatternHMACSHA512Gate,
		spec.PatternHMACSHA384Payload,
		spec.PatternDeribit,
		spec.PatternCustom,
	}
}

// Pattern reports whether name is a recognised pattern (§6 Signing.pattern?).
func Pattern(name string) (spec.SigningPattern, bool) {
	p := spec.SigningPattern(name)
	return p, spec.SupportedSigningPatterns[p]
}

// formatTimestamp renders now according to format, or returns an
// invalid_parameters error for any format outside the closed set.
func formatTimestamp(now time.Time, format spec.TimestampFormat) (string, *errs.Error) {
	switch format {
	case spec.TimestampMillis, "":
		return strconv.FormatInt(now.UnixMilli(), 10), nil
	case spec.TimestampSeconds:
		return strconv.FormatInt(now.Unix(), 10), nil
	case spec.TimestampISO8601:
		return now.UTC().Format("2006-01-02T15:04:05.000Z"), nil
	default:
		return "", errs.InvalidParameters("", "unsupported timestamp_format: "+string(format))
	}
}

// sortedQueryString builds a deterministic, URL-encoded "k=v&k2=v2..." query
// string from params, sorted by key — the shared basis for every
// query-string-signed pattern.
func sortedQueryString(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(stringifyParam(params[k])))
	}
	return b.String()
}

func stringifyParam(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func cloneParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params)+2)
	for k, v := range params {
		out[k] = v
	}
	return out
}

func apiKeyHeaderOr(cfg spec.Signing, fallback string) string {
	if cfg.APIKeyHeader != "" {
		return cfg.APIKeyHeader
	}
	return fallback
}
