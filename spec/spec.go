// Package spec holds the canonical in-memory shape of one exchange: the
// immutable record produced offline by an extractor and consumed at build
// time to generate a facade (see package exchange). A Spec is read-only once
// Load returns it; nothing in this package mutates a *Spec after loading.
package spec

// CurrentSupportedFormatVersion is the highest spec_format_version this
// build understands. Load rejects anything greater with ErrUnsupportedVersion.
const CurrentSupportedFormatVersion = 1

// Classification is one of the three upstream tiers an exchange can carry.
type Classification string

const (
	ClassificationCertifiedPro Classification = "certified_pro"
	ClassificationPro          Classification = "pro"
	ClassificationSupported    Classification = "supported"
)

// HTTPMethod is the closed set of verbs an Endpoint can use.
type HTTPMethod string

const (
	MethodGET    HTTPMethod = "GET"
	MethodPOST   HTTPMethod = "POST"
	MethodPUT    HTTPMethod = "PUT"
	MethodPATCH  HTTPMethod = "PATCH"
	MethodDELETE HTTPMethod = "DELETE"
)

// MarketType is the closed set of market kinds an endpoint or symbol format
// can be scoped to.
type MarketType string

const (
	MarketSpot   MarketType = "spot"
	MarketSwap   MarketType = "swap"
	MarketFuture MarketType = "future"
	MarketOption MarketType = "option"
	MarketMargin MarketType = "margin"
)

// HasValue is the tri-state capability flag value: supported, unsupported,
// or emulated (synthesised by package emulation from other endpoints).
type HasValue string

const (
	HasTrue     HasValue = "true"
	HasFalse    HasValue = "false"
	HasEmulated HasValue = "emulated"
)

// Urls carries the production (API) and optional sandbox base URLs. Both
// API and Sandbox may be either a single string (single-API exchange) or a
// per-api_section mapping (multi-API exchange, e.g. spot vs futures).
type Urls struct {
	API     URLSet
	Sandbox URLSet // zero value means no sandbox
	WWW     string
	Doc     string
}

// URLSet is either a single flat URL (Flat != "") or a per-section mapping
// (Sections != nil), never both.
type URLSet struct {
	Flat     string
	Sections map[string]string
}

// Empty reports whether this URLSet carries no URL at all.
func (u URLSet) Empty() bool {
	return u.Flat == "" && len(u.Sections) == 0
}

// Resolve returns the URL for the given api_section, falling back to Flat
// when the endpoint/exchange does not declare sections.
func (u URLSet) Resolve(apiSection string) (string, bool) {
	if len(u.Sections) > 0 {
		if apiSection == "" {
			return "", false
		}
		v, ok := u.Sections[apiSection]
		return v, ok
	}
	return u.Flat, u.Flat != ""
}

// SigningPattern is one of the fixed ~8 recipes from §4.3, plus "custom".
type SigningPattern string

const (
	PatternHMACSHA256Query            SigningPattern = "hmac_sha256_query"
	PatternHMACSHA256Headers          SigningPattern = "hmac_sha256_headers"
	PatternHMACSHA256ISOPassphrase    SigningPattern = "hmac_sha256_iso_passphrase"
	PatternHMACSHA256PassphraseSigned SigningPattern = "hmac_sha256_passphrase_signed"
	PatternHMACSHA512Nonce            SigningPattern = "hmac_sha512_nonce"
	PatternHMACSHA512Gate             SigningPattern = "hmac_sha512_gate"
	PatternHMACSHA384Payload          SigningPattern = "hmac_sha384_payload"
	PatternDeribit                    SigningPattern = "deribit"
	PatternCustom                     SigningPattern = "custom"
)

// SupportedSigningPatterns is the fixed set validated against in Validate.
var SupportedSigningPatterns = map[SigningPattern]bool{
	PatternHMACSHA256Query:            true,
	PatternHMACSHA256Headers:          true,
	PatternHMACSHA256ISOPassphrase:    true,
	PatternHMACSHA256PassphraseSigned: true,
	PatternHMACSHA512Nonce:            true,
	PatternHMACSHA512Gate:             true,
	PatternHMACSHA384Payload:          true,
	PatternDeribit:                    true,
	PatternCustom:                     true,
}

// TimestampFormat is the closed set a signing config can request.
type TimestampFormat string

const (
	TimestampMillis  TimestampFormat = "ms"
	TimestampSeconds TimestampFormat = "seconds"
	TimestampISO8601 TimestampFormat = "iso8601"
)

// SignatureEncoding is the closed set a signing config can request.
type SignatureEncoding string

const (
	EncodingHex    SignatureEncoding = "hex"
	EncodingBase64 SignatureEncoding = "base64"
)

// Signing carries the pattern name plus every pattern-specific option. All
// fields are optional except Pattern; unrecognised config keys from the
// on-disk form are simply not represented here and are ignored (§4.3).
type Signing struct {
	Pattern SigningPattern

	APIKeyHeader      string
	TimestampHeader   string
	SignatureHeader   string
	PassphraseHeader  string
	RecvWindowHeader  string
	RecvWindowMS      int
	TimestampFormat   TimestampFormat
	SignatureEncoding SignatureEncoding
	SignBody          bool
	NonceInBody       bool
	CustomModule      string // used only by PatternCustom: a tengo script name
}

// Endpoint is one callable operation on an exchange.
type Endpoint struct {
	Name                string
	Method              HTTPMethod
	Path                string
	Auth                bool
	Params              []string
	APISection          string     // optional; selects a URLSet section
	MarketType          MarketType // optional
	ResponseTransformer string     // optional; name of a declarative transformer
	Approximate         bool       // optional
}

// SymbolFormat describes how one market type's symbols are composed from
// base/quote.
type SymbolFormat struct {
	Separator string
	Case      SymbolCase
	Sample    string
}

// SymbolCase is the closed case convention for an exchange's symbols.
type SymbolCase string

const (
	CaseUpper SymbolCase = "upper"
	CaseLower SymbolCase = "lower"
	CaseMixed SymbolCase = "mixed"
)

// DateFormat is the closed set of derivative expiry date encodings.
type DateFormat string

const (
	DateYYMMDD   DateFormat = "yymmdd"
	DateDDMMMYY  DateFormat = "ddmmmyy"
	DateYYYYMMDD DateFormat = "yyyymmdd"
	DateNone     DateFormat = ""
)

// SymbolPattern is the detected derivative-symbol recipe for one market
// type, produced offline during extraction.
type SymbolPattern struct {
	Pattern        string
	Separator      string
	Case           SymbolCase
	DateFormat     DateFormat
	Suffix         string
	ComponentOrder []string
}

// ResponseErrorType is the closed set of body-level error detection
// strategies an exchange's spec can declare.
type ResponseErrorType string

const (
	ResponseErrorSuccessCode  ResponseErrorType = "success_code"
	ResponseErrorPresent      ResponseErrorType = "error_present"
	ResponseErrorArray        ResponseErrorType = "error_array"
	ResponseErrorFieldPresent ResponseErrorType = "error_field_present"
)

// ResponseError configures how to detect a body-level (HTTP 200) error.
type ResponseError struct {
	Type          ResponseErrorType
	Field         string
	SuccessValues []string
	CodeField     string
	MessageField  string
}

// ErrorCodeDetail pairs an exchange error code with its unified variant and
// a human description.
type ErrorCodeDetail struct {
	Variant     string
	Description string
}

// OHLCVTimestampResolution is the closed set of units an exchange's OHLCV
// timestamps may be expressed in.
type OHLCVTimestampResolution string

const (
	ResolutionMillis  OHLCVTimestampResolution = "ms"
	ResolutionSeconds OHLCVTimestampResolution = "seconds"
)

// Spec is the canonical immutable per-exchange record (§3). Zero value is
// never valid; always obtain one via Load or in tests via a literal that is
// then passed through Validate.
type Spec struct {
	ID             string
	Name           string
	Classification Classification
	Version        string

	URLs Urls

	Signing Signing

	Has map[string]HasValue

	Endpoints []Endpoint

	SymbolFormat   *SymbolFormat               // set for single-market exchanges
	SymbolFormats  map[MarketType]SymbolFormat // set for per-market-type exchanges
	SymbolPatterns map[MarketType]SymbolPattern

	CurrencyAliases map[string]string // unified -> exchange

	ErrorCodes       map[string]string
	ErrorCodeDetails map[string]ErrorCodeDetail

	ResponseError ResponseError

	RateLimits map[string]any
	Features   map[string]any
	Fees       map[string]any
	Options    map[string]any

	OHLCVTimestampResolution OHLCVTimestampResolution
	PathPrefix               string
	ParamMappings            map[string]string // unified field name -> exchange field name
	RequiredCredentials      []string

	SpecFormatVersion int
}

// EndpointByName returns the endpoint with the given name, or false if the
// spec declares no such endpoint. Endpoint names are unique per-spec by
// the Validate invariant.
func (s *Spec) EndpointByName(name string) (Endpoint, bool) {
	for _, e := range s.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return Endpoint{}, false
}

// HasCapability reports the tri-state capability flag for method, defaulting
// to HasFalse when the spec declares nothing for it.
func (s *Spec) HasCapability(method string) HasValue {
	if v, ok := s.Has[method]; ok {
		return v
	}
	return HasFalse
}

// FormatFor resolves the symbol format to use for marketType, falling back
// to the single SymbolFormat when the exchange does not distinguish by
// market type.
func (s *Spec) FormatFor(marketType MarketType) (SymbolFormat, bool) {
	if s.SymbolFormats != nil {
		if f, ok := s.SymbolFormats[marketType]; ok {
			return f, true
		}
		if f, ok := s.SymbolFormats[MarketSpot]; marketType == "" && ok {
			return f, true
		}
		return SymbolFormat{}, false
	}
	if s.SymbolFormat != nil {
		return *s.SymbolFormat, true
	}
	return SymbolFormat{}, false
}

// PatternFor resolves the detected derivative pattern for marketType.
func (s *Spec) PatternFor(marketType MarketType) (SymbolPattern, bool) {
	p, ok := s.SymbolPatterns[marketType]
	return p, ok
}

// ReverseCurrencyAliases derives the exchange->unified map on demand; it is
// never cached on the Spec itself since Spec is immutable and this is cheap
// relative to a network round trip.
func (s *Spec) ReverseCurrencyAliases() map[string]string {
	out := make(map[string]string, len(s.CurrencyAliases))
	for unified, exch := range s.CurrencyAliases {
		out[exch] = unified
	}
	return out
}
