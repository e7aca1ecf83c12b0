package signing

import (
	"context"
	"embed"
	"fmt"

	"github.com/d5/tengo/v2"

	"github.com/ccxtgo/unified/errs"
	"github.com/ccxtgo/unified/spec"
)

// ScriptLoader resolves a custom_module name (from Signing.CustomModule) to
// the tengo source implementing that exchange's bespoke signing logic. The
// 5% of exchanges that fit none of the eight parameterised patterns get one
// of these instead of a hand-written Go function, so adding one never
// requires a new release of this module.
type ScriptLoader func(moduleName string) ([]byte, error)

//go:embed scripts/*.tengo
var builtinScripts embed.FS

// BuiltinScripts resolves custom_module names shipped inside this module's
// scripts/ directory. Callers with their own script repository provide
// their own ScriptLoader instead (e.g. one backed by the spec directory).
func BuiltinScripts(moduleName string) ([]byte, error) {
	return builtinScripts.ReadFile("scripts/" + moduleName + ".tengo")
}

// signCustom compiles and runs the named tengo script with the request,
// credentials, and config exposed as globals, and reads the resulting
// "result" map back out. A script is expected to set:
//
//	result := {
//	    url: "...", method: "...", headers: {"Name": "Value", ...}, body: "..."
//	}
//
// Any script error becomes invalid_parameters — a malformed custom module is
// a configuration defect, not a transient failure.
func signCustom(req Request, creds Credentials, cfg spec.Signing, deps Deps, load ScriptLoader) (*SignedRequest, error) {
	if cfg.CustomModule == "" {
		return nil, errs.InvalidParameters("", "signing.custom_module is required for the custom pattern")
	}
	if load == nil {
		load = BuiltinScripts
	}

	src, err := load(cfg.CustomModule)
	if err != nil {
		return nil, errs.New(errs.TypeInvalidParameters, "", fmt.Sprintf("custom signing module %q not found", cfg.CustomModule), err)
	}

	script := tengo.NewScript(src)
	if err := script.Add("method", string(req.Method)); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("path", req.Path); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("base_url", req.BaseURL); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("body", string(req.Body)); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("params", toTengoParams(req.Params)); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("api_key", creds.APIKey); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("secret", creds.Secret); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("password", creds.Password); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("timestamp_ms", deps.Now().UnixMilli()); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}
	if err := script.Add("nonce", deps.Nonce()); err != nil {
		return nil, errs.InvalidParameters("", "custom module: "+err.Error())
	}

	compiled, err := script.RunContext(context.Background())
	if err != nil {
		return nil, errs.New(errs.TypeInvalidParameters, "", fmt.Sprintf("custom signing module %q failed", cfg.CustomModule), err)
	}

	result := compiled.Get("result")
	if result == nil {
		return nil, errs.InvalidParameters("", fmt.Sprintf("custom signing module %q did not set a result", cfg.CustomModule))
	}
	resultMap, ok := result.Value().(map[string]any)
	if !ok {
		return nil, errs.InvalidParameters("", fmt.Sprintf("custom signing module %q result must be a map", cfg.CustomModule))
	}

	signed := &SignedRequest{
		URL:    req.BaseURL + req.Path,
		Method: req.Method,
		Body:   req.Body,
	}
	if u, ok := resultMap["url"].(string); ok && u != "" {
		signed.URL = u
	}
	if b, ok := resultMap["body"].(string); ok {
		signed.Body = []byte(b)
	}
	if headers, ok := resultMap["headers"].(map[string]any); ok {
		for name, v := range headers {
			if str, ok := v.(string); ok {
				signed.Headers = append(signed.Headers, Header{Name: name, Value: str})
			}
		}
	}
	return signed, nil
}

func toTengoParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
