package spec

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ErrUnsupportedVersion is returned by Load when a spec file declares a
// spec_format_version greater than CurrentSupportedFormatVersion.
var ErrUnsupportedVersion = errors.New("spec: upgrade required: spec_format_version is newer than supported")

// ErrEmptyPath is returned when Load is called with an empty path.
var ErrEmptyPath = errors.New("spec: path must not be empty")

// rawSpec mirrors the on-disk declarative JSON form. Field names match the
// extractor's output exactly; Load translates this into the canonical Spec
// shape and applies version migration (currently identity for v1 — the only
// format version this build has ever shipped).
type rawSpec struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Version        string `json:"version"`

	URLs struct {
		API     json.RawMessage `json:"api"`
		Sandbox json.RawMessage `json:"sandbox"`
		WWW     string          `json:"www"`
		Doc     string          `json:"doc"`
	} `json:"urls"`

	Signing struct {
		Pattern           string `json:"pattern"`
		APIKeyHeader      string `json:"api_key_header"`
		TimestampHeader   string `json:"timestamp_header"`
		SignatureHeader   string `json:"signature_header"`
		PassphraseHeader  string `json:"passphrase_header"`
		RecvWindowHeader  string `json:"recv_window_header"`
		RecvWindowMS      int    `json:"recv_window"`
		TimestampFormat   string `json:"timestamp_format"`
		SignatureEncoding string `json:"signature_encoding"`
		SignBody          bool   `json:"sign_body"`
		NonceInBody       bool   `json:"nonce_in_body"`
		CustomModule      string `json:"custom_module"`
	} `json:"signing"`

	Has map[string]string `json:"has"`

	Endpoints []struct {
		Name                string   `json:"name"`
		Method              string   `json:"method"`
		Path                string   `json:"path"`
		Auth                bool     `json:"auth"`
		Params              []string `json:"params"`
		APISection          string   `json:"api_section"`
		MarketType          string   `json:"market_type"`
		ResponseTransformer string   `json:"response_transformer"`
		Approximate         bool     `json:"approximate"`
	} `json:"endpoints"`

	SymbolFormat  *rawSymbolFormat            `json:"symbol_format"`
	SymbolFormats map[string]rawSymbolFormat  `json:"symbol_formats"`
	SymbolPatterns map[string]rawSymbolPattern `json:"symbol_patterns"`

	CurrencyAliases map[string]string `json:"currency_aliases"`

	ErrorCodes       map[string]string `json:"error_codes"`
	ErrorCodeDetails map[string]struct {
		Variant     string `json:"variant"`
		Description string `json:"description"`
	} `json:"error_code_details"`

	ResponseError struct {
		Type          string   `json:"type"`
		Field         string   `json:"field"`
		SuccessValues []string `json:"success_values"`
		CodeField     string   `json:"code_field"`
		MessageField  string   `json:"message_field"`
	} `json:"response_error"`

	RateLimits map[string]any `json:"rate_limits"`
	Features   map[string]any `json:"features"`
	Fees       map[string]any `json:"fees"`
	Options    map[string]any `json:"options"`

	OHLCVTimestampResolution string            `json:"ohlcv_timestamp_resolution"`
	PathPrefix               string            `json:"path_prefix"`
	ParamMappings            map[string]string `json:"param_mappings"`
	RequiredCredentials      []string          `json:"required_credentials"`

	SpecFormatVersion int `json:"spec_format_version"`
}

type rawSymbolFormat struct {
	Separator string `json:"separator"`
	Case      string `json:"case"`
	Sample    string `json:"sample"`
}

type rawSymbolPattern struct {
	Pattern        string   `json:"pattern"`
	Separator      string   `json:"separator"`
	Case           string   `json:"case"`
	DateFormat     string   `json:"date_format"`
	Suffix         string   `json:"suffix"`
	ComponentOrder []string `json:"component_order"`
}

// Load reads the declarative spec file at path and materialises it into the
// canonical Spec shape. It does not validate semantic invariants; call
// Validate on the result (SpecLoader and SpecValidator are kept distinct per
// §4.1).
func Load(path string) (*Spec, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "spec: reading %s", path)
	}
	return LoadBytes(data)
}

// LoadBytes materialises a Spec from raw declarative JSON bytes, useful for
// embedded/testdata specs that do not live on a real filesystem path.
func LoadBytes(data []byte) (*Spec, error) {
	var raw rawSpec
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "spec: decoding declarative form")
	}

	if raw.SpecFormatVersion > CurrentSupportedFormatVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "got version %d, support up to %d", raw.SpecFormatVersion, CurrentSupportedFormatVersion)
	}
	// v1 -> v1 is the only migration this build ships; a future version
	// bump adds a case here rather than changing this one.

	s := &Spec{
		ID:                raw.ID,
		Name:              raw.Name,
		Classification:    Classification(raw.Classification),
		Version:           raw.Version,
		Has:               map[string]HasValue{},
		CurrencyAliases:   raw.CurrencyAliases,
		ErrorCodes:        raw.ErrorCodes,
		ErrorCodeDetails:  map[string]ErrorCodeDetail{},
		RateLimits:        raw.RateLimits,
		Features:          raw.Features,
		Fees:              raw.Fees,
		Options:           raw.Options,
		OHLCVTimestampResolution: OHLCVTimestampResolution(raw.OHLCVTimestampResolution),
		PathPrefix:        raw.PathPrefix,
		ParamMappings:     raw.ParamMappings,
		RequiredCredentials: raw.RequiredCredentials,
		SpecFormatVersion: raw.SpecFormatVersion,
	}

	for k, v := range raw.Has {
		s.Has[k] = HasValue(v)
	}
	for k, v := range raw.ErrorCodeDetails {
		s.ErrorCodeDetails[k] = ErrorCodeDetail{Variant: v.Variant, Description: v.Description}
	}

	urlSet, err := decodeURLSet(raw.URLs.API)
	if err != nil {
		return nil, errors.Wrap(err, "spec: decoding urls.api")
	}
	s.URLs.API = urlSet
	if len(raw.URLs.Sandbox) > 0 {
		sandboxSet, err := decodeURLSet(raw.URLs.Sandbox)
		if err != nil {
			return nil, errors.Wrap(err, "spec: decoding urls.sandbox")
		}
		s.URLs.Sandbox = sandboxSet
	}
	s.URLs.WWW = raw.URLs.WWW
	s.URLs.Doc = raw.URLs.Doc

	s.Signing = Signing{
		Pattern:           SigningPattern(raw.Signing.Pattern),
		APIKeyHeader:      raw.Signing.APIKeyHeader,
		TimestampHeader:   raw.Signing.TimestampHeader,
		SignatureHeader:   raw.Signing.SignatureHeader,
		PassphraseHeader:  raw.Signing.PassphraseHeader,
		RecvWindowHeader:  raw.Signing.RecvWindowHeader,
		RecvWindowMS:      raw.Signing.RecvWindowMS,
		TimestampFormat:   TimestampFormat(raw.Signing.TimestampFormat),
		SignatureEncoding: SignatureEncoding(raw.Signing.SignatureEncoding),
		SignBody:          raw.Signing.SignBody,
		NonceInBody:       raw.Signing.NonceInBody,
		CustomModule:      raw.Signing.CustomModule,
	}

	for _, e := range raw.Endpoints {
		s.Endpoints = append(s.Endpoints, Endpoint{
			Name:                e.Name,
			Method:              HTTPMethod(e.Method),
			Path:                e.Path,
			Auth:                e.Auth,
			Params:              e.Params,
			APISection:          e.APISection,
			MarketType:          MarketType(e.MarketType),
			ResponseTransformer: e.ResponseTransformer,
			Approximate:         e.Approximate,
		})
	}

	if raw.SymbolFormat != nil {
		s.SymbolFormat = &SymbolFormat{
			Separator: raw.SymbolFormat.Separator,
			Case:      SymbolCase(raw.SymbolFormat.Case),
			Sample:    raw.SymbolFormat.Sample,
		}
	}
	if raw.SymbolFormats != nil {
		s.SymbolFormats = map[MarketType]SymbolFormat{}
		for k, v := range raw.SymbolFormats {
			s.SymbolFormats[MarketType(k)] = SymbolFormat{
				Separator: v.Separator,
				Case:      SymbolCase(v.Case),
				Sample:    v.Sample,
			}
		}
	}
	if raw.SymbolPatterns != nil {
		s.SymbolPatterns = map[MarketType]SymbolPattern{}
		for k, v := range raw.SymbolPatterns {
			s.SymbolPatterns[MarketType(k)] = SymbolPattern{
				Pattern:        v.Pattern,
				Separator:      v.Separator,
				Case:           SymbolCase(v.Case),
				DateFormat:     DateFormat(v.DateFormat),
				Suffix:         v.Suffix,
				ComponentOrder: v.ComponentOrder,
			}
		}
	}

	s.ResponseError = ResponseError{
		Type:          ResponseErrorType(raw.ResponseError.Type),
		Field:         raw.ResponseError.Field,
		SuccessValues: raw.ResponseError.SuccessValues,
		CodeField:     raw.ResponseError.CodeField,
		MessageField:  raw.ResponseError.MessageField,
	}

	return s, nil
}

// decodeURLSet decodes a urls.api/urls.sandbox field that is either a bare
// JSON string (single-API exchange) or an object mapping api_section names
// to URLs (multi-API exchange).
func decodeURLSet(raw json.RawMessage) (URLSet, error) {
	if len(raw) == 0 {
		return URLSet{}, nil
	}
	var flat string
	if err := json.Unmarshal(raw, &flat); err == nil {
		return URLSet{Flat: flat}, nil
	}
	var sections map[string]string
	if err := json.Unmarshal(raw, &sections); err != nil {
		return URLSet{}, errors.New("urls field must be a string or an object of strings")
	}
	return URLSet{Sections: sections}, nil
}
