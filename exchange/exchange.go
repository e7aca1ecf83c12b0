// Package exchange generates a per-exchange call surface from a *spec.Spec
// (§4.2): the facade callers actually use. It owns the dispatch order
// (emulation check, symbol conversion, URL/param resolution, signing,
// transport, coercion) and takes HTTP transport and typed coercion as
// injectable collaborators. The facade does no rate limiting or circuit
// breaking and has no collaborator slot for either.
package exchange

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ccxtgo/unified/emulation"
	"github.com/ccxtgo/unified/errs"
	"github.com/ccxtgo/unified/signing"
	"github.com/ccxtgo/unified/symbol"
	"github.com/ccxtgo/unified/telemetry"

	"github.com/ccxtgo/unified/spec"
)

// Exchange is the generated facade for one exchange Spec. Construct with
// New; every exported method is safe for concurrent use since a Spec is
// immutable and the collaborators are expected to be.
type Exchange struct {
	spec *spec.Spec

	http   HTTPCollaborator
	coerce CoercionCollaborator
	telem  telemetry.Emitter

	emuIndex      *emulation.Index
	signDeps      signing.Deps
	customScripts signing.ScriptLoader

	sandbox        bool
	defaultTimeout time.Duration
}

// New builds a facade for s. With no options, it uses the default HTTP/2
// collaborator, a passthrough coercion layer, production signing
// dependencies, and the process-default emulation index.
func New(s *spec.Spec, opts ...Option) *Exchange {
	e := &Exchange{
		spec:           s,
		http:           NewDefaultHTTPCollaborator(),
		coerce:         passthroughCoercion{},
		telem:          telemetry.NoopEmitter{},
		signDeps:       signing.Default(),
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// --- introspection accessors (§4.2) ---

// ID returns the exchange identifier. Part of the emulation.Facade contract.
func (e *Exchange) ID() string { return e.spec.ID }

func (e *Exchange) Spec() *spec.Spec { return e.spec }

func (e *Exchange) Endpoints() []spec.Endpoint { return e.spec.Endpoints }

func (e *Exchange) Signing() spec.Signing { return e.spec.Signing }

func (e *Exchange) Classification() spec.Classification { return e.spec.Classification }

// EndpointAvailable reports whether name resolves to a real (non-emulated,
// non-false) capability. Part of the emulation.Facade contract.
func (e *Exchange) EndpointAvailable(name string) bool {
	if _, ok := e.spec.EndpointByName(name); ok {
		return true
	}
	return e.spec.HasCapability(name) == spec.HasTrue
}

// AuthRequired reports whether name's endpoint record requires signing.
// Part of the emulation.Facade contract.
func (e *Exchange) AuthRequired(name string) bool {
	ep, ok := e.spec.EndpointByName(name)
	return ok && ep.Auth
}

// Call invokes method by name with positional-ish params and the open
// options map. The keys read from options are params (extra param mapping),
// raw (skip typed coercion) and timeout_ms. A "sandbox" key is not read
// (sandbox URLs are chosen per Exchange with WithSandbox), and other keys
// are neither read nor passed to the HTTP collaborator. It implements
// emulation.Facade so the emulation dispatcher can call back into this
// same facade for synthesised methods. Call sends no credentials; private
// endpoints go through CallAuthenticated.
func (e *Exchange) Call(ctx context.Context, method string, params map[string]any, options map[string]any) (any, error) {
	return e.call(ctx, method, nil, params, options)
}

// CallAuthenticated is Call's private-endpoint counterpart (§4.2: private
// endpoints take credentials as a leading argument).
func (e *Exchange) CallAuthenticated(ctx context.Context, creds signing.Credentials, method string, params map[string]any, options map[string]any) (any, error) {
	return e.call(ctx, method, &creds, params, options)
}

func (e *Exchange) call(ctx context.Context, method string, creds *signing.Credentials, params, options map[string]any) (any, error) {
	// 1. Emulation check (§4.5 dispatch order step 1).
	if e.spec.HasCapability(method) == spec.HasEmulated {
		idx, err := e.resolveEmulationIndex()
		if err != nil {
			return nil, err
		}
		res := emulation.Dispatch(idx, e.spec.ID, method, emulation.ScopeREST, &emulation.Context{
			Ctx:     ctx,
			Facade:  e,
			Params:  params,
			Options: options,
		})
		if !res.Passthrough {
			if res.Err != nil {
				return nil, res.Err
			}
			return res.Value, nil
		}
		// passthrough: fall through to the normal HTTP path below.
	}

	ep, ok := e.spec.EndpointByName(method)
	if !ok {
		return nil, errs.NotSupported(e.spec.ID, method)
	}
	if ep.Auth && creds == nil {
		return nil, errs.New(errs.TypeInvalidCredentials, e.spec.ID, "credentials required for "+method, nil)
	}

	req, symbolErr := e.buildRequest(ep, params, options)
	if symbolErr != nil {
		return nil, symbolErr
	}

	signed, err := e.signIfNeeded(req, ep, creds)
	if err != nil {
		return nil, err
	}

	timeout := e.callTimeout(options)
	start := time.Now()
	e.telem.Emit(telemetry.RequestStart(start.UnixMilli(), e.spec.ID, method, ep.Path))

	resp, err := e.http.Do(ctx, signed, timeout)
	durationMS := time.Since(start).Milliseconds()
	if err != nil {
		httpErr := errs.ClassifyHTTP(e.spec.ID, 0, err)
		e.telem.Emit(telemetry.RequestException(durationMS, e.spec.ID, method, ep.Path, string(httpErr.Type), httpErr.Message))
		return nil, httpErr
	}
	if httpErr := errs.ClassifyHTTP(e.spec.ID, resp.StatusCode, nil); httpErr != nil {
		e.telem.Emit(telemetry.RequestException(durationMS, e.spec.ID, method, ep.Path, string(httpErr.Type), httpErr.Message))
		return nil, httpErr
	}
	e.telem.Emit(telemetry.RequestStop(durationMS, e.spec.ID, method, ep.Path, resp.StatusCode, ""))

	var decoded any
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &decoded); err != nil {
			return nil, errs.New(errs.TypeExchangeError, e.spec.ID, "malformed response body", err)
		}
	}
	if body, ok := decoded.(map[string]any); ok {
		if bodyErr, isErr := errs.DetectBodyError(e.spec, e.spec.ID, body); isErr {
			return nil, bodyErr
		}
	}

	transformed := applyResponseTransformer(ep.ResponseTransformer, decoded)

	if raw, _ := options["raw"].(bool); raw {
		return transformed, nil
	}
	return e.coerce.Coerce(method, transformed)
}

// Request performs a signed passthrough request using this exchange's
// signing config (§4.2 request/raw_request).
func (e *Exchange) Request(ctx context.Context, creds signing.Credentials, method spec.HTTPMethod, path string, options map[string]any) (any, error) {
	base, ok := e.baseURL("")
	if !ok {
		return nil, errs.New(errs.TypeExchangeError, e.spec.ID, "no base URL configured", nil)
	}
	req := signing.Request{Method: method, BaseURL: base, Path: path, Params: paramsFromOptions(options)}
	signed, err := signing.Sign(e.spec.Signing.Pattern, req, creds, e.spec.Signing, e.signDeps, e.customScripts)
	if err != nil {
		return nil, err
	}
	resp, err := e.http.Do(ctx, signed, e.callTimeout(options))
	if err != nil {
		return nil, errs.ClassifyHTTP(e.spec.ID, 0, err)
	}
	var decoded any
	if len(resp.Body) > 0 {
		_ = json.Unmarshal(resp.Body, &decoded)
	}
	return decoded, nil
}

// RawRequest performs an unsigned, un-rewritten request exactly as given
// (§4.2 raw_request): no signing, no URL rewriting.
func (e *Exchange) RawRequest(ctx context.Context, method spec.HTTPMethod, rawURL string, headers map[string]string, body []byte, options map[string]any) (any, error) {
	signed := &signing.SignedRequest{URL: rawURL, Method: method, Body: body}
	for k, v := range headers {
		signed.Headers = append(signed.Headers, signing.Header{Name: k, Value: v})
	}
	resp, err := e.http.Do(ctx, signed, e.callTimeout(options))
	if err != nil {
		return nil, errs.ClassifyHTTP(e.spec.ID, 0, err)
	}
	var decoded any
	if len(resp.Body) > 0 {
		_ = json.Unmarshal(resp.Body, &decoded)
	}
	return decoded, nil
}

// buildRequest implements dispatch order steps 2-3: symbol conversion,
// path_prefix + path merge, URL resolution, param_mappings.
func (e *Exchange) buildRequest(ep spec.Endpoint, params, options map[string]any) (signing.Request, *errs.Error) {
	converted := make(map[string]any, len(params))
	for k, v := range params {
		if k == "symbol" {
			if unified, ok := v.(string); ok {
				exchangeID, err := symbol.ToExchangeID(unified, e.spec, ep.MarketType)
				if err != nil {
					return signing.Request{}, errs.InvalidParameters(e.spec.ID, "invalid symbol: "+err.Error())
				}
				converted[e.mappedField("symbol")] = exchangeID
				continue
			}
		}
		converted[e.mappedField(k)] = v
	}
	if extra, ok := options["params"].(map[string]any); ok {
		for k, v := range extra {
			converted[k] = v
		}
	}

	base, ok := e.baseURL(ep.APISection)
	if !ok {
		return signing.Request{}, errs.New(errs.TypeExchangeError, e.spec.ID, "no base URL configured for "+ep.Name, nil)
	}

	path := e.spec.PathPrefix + ep.Path
	return signing.Request{
		Method:  ep.Method,
		BaseURL: base,
		Path:    path,
		Params:  converted,
	}, nil
}

func (e *Exchange) mappedField(name string) string {
	if mapped, ok := e.spec.ParamMappings[name]; ok {
		return mapped
	}
	return name
}

// baseURL resolves production vs. sandbox and, when the exchange declares a
// nested URL map, the given api_section.
func (e *Exchange) baseURL(apiSection string) (string, bool) {
	if e.sandbox && !e.spec.URLs.Sandbox.Empty() {
		return e.spec.URLs.Sandbox.Resolve(apiSection)
	}
	return e.spec.URLs.API.Resolve(apiSection)
}

func (e *Exchange) signIfNeeded(req signing.Request, ep spec.Endpoint, creds *signing.Credentials) (*signing.SignedRequest, error) {
	if !ep.Auth {
		return &signing.SignedRequest{
			URL:    req.BaseURL + req.Path + queryStringOrEmpty(req.Params),
			Method: req.Method,
			Body:   req.Body,
		}, nil
	}
	return signing.Sign(e.spec.Signing.Pattern, req, *creds, e.spec.Signing, e.signDeps, e.customScripts)
}

func queryStringOrEmpty(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	return "?" + sortedQueryString(params)
}

func (e *Exchange) callTimeout(options map[string]any) time.Duration {
	if ms, ok := options["timeout_ms"]; ok {
		if f, ok := asFloat64(ms); ok && f > 0 {
			return time.Duration(f) * time.Millisecond
		}
	}
	return e.defaultTimeout
}

func paramsFromOptions(options map[string]any) map[string]any {
	if extra, ok := options["params"].(map[string]any); ok {
		return extra
	}
	return nil
}

// resolveEmulationIndex returns the caller-injected index, or lazily the
// process-default one.
func (e *Exchange) resolveEmulationIndex() (*emulation.Index, error) {
	if e.emuIndex != nil {
		return e.emuIndex, nil
	}
	idx, err := emulation.Default()
	if err != nil {
		return nil, errs.New(errs.TypeExchangeError, e.spec.ID, "default emulation index failed to load", err)
	}
	return idx, nil
}

// sortedQueryString mirrors signing's internal helper for building a
// deterministic query string on unauthenticated GETs with params; kept
// local since signing's version is unexported and params here have already
// passed through param_mappings.
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
