package errs

import (
	"net/http"
	"strconv"

	"github.com/ccxtgo/unified/spec"
)

// ClassifyHTTP maps an HTTP-level failure (no parseable body, a timeout, a
// transport error) to TypeNetworkError, or a bare status code to the closest
// variant when the body carried no exchange-specific error shape.
func ClassifyHTTP(exchange string, statusCode int, raw error) *Error {
	if raw != nil {
		return New(TypeNetworkError, exchange, "http transport failure", raw)
	}
	switch {
	case statusCode == http.StatusTooManyRequests:
		return RateLimited(exchange, 0, nil)
	case statusCode == http.StatusUnauthorized:
		return New(TypeInvalidCredentials, exchange, "unauthorized", nil)
	case statusCode == http.StatusForbidden:
		return New(TypeAccessRestricted, exchange, "forbidden", nil)
	case statusCode >= 500:
		return New(TypeNetworkError, exchange, "server error: "+strconv.Itoa(statusCode), nil)
	case statusCode >= 400:
		return New(TypeInvalidParameters, exchange, "client error: "+strconv.Itoa(statusCode), nil)
	default:
		return nil
	}
}

// DetectBodyError inspects a decoded JSON response body (as a generic map)
// against the spec's response_error configuration and returns the unified
// Error if the body represents a failure, or (nil, false) if the body looks
// like success. It never inspects credentials, only the response body.
func DetectBodyError(s *spec.Spec, exchange string, body map[string]any) (*Error, bool) {
	re := s.ResponseError
	switch re.Type {
	case spec.ResponseErrorSuccessCode:
		v, ok := body[re.Field]
		if !ok {
			return nil, false
		}
		str := stringify(v)
		for _, sv := range re.SuccessValues {
			if sv == str {
				return nil, false
			}
		}
		return fromCode(s, exchange, codeOf(body, re.CodeField), messageOf(body, re.MessageField)), true

	case spec.ResponseErrorPresent:
		v, ok := body[re.Field]
		if !ok || isEmptyValue(v) {
			return nil, false
		}
		return fromCode(s, exchange, codeOf(body, re.CodeField), messageOf(body, re.MessageField)), true

	case spec.ResponseErrorArray:
		v, ok := body[re.Field]
		if !ok {
			return nil, false
		}
		arr, ok := v.([]any)
		if !ok || len(arr) == 0 {
			return nil, false
		}
		return fromCode(s, exchange, codeOf(body, re.CodeField), messageOf(body, re.MessageField)), true

	case spec.ResponseErrorFieldPresent:
		if _, ok := body[re.Field]; !ok {
			return nil, false
		}
		return fromCode(s, exchange, codeOf(body, re.CodeField), messageOf(body, re.MessageField)), true

	default:
		return nil, false
	}
}

// fromCode maps an exchange-reported error code through the spec's
// error_codes/error_code_details tables to a unified Type, falling back to
// TypeExchangeError when the code is unmapped (§4.6).
func fromCode(s *spec.Spec, exchange, code, message string) *Error {
	typ := TypeExchangeError
	if detail, ok := s.ErrorCodeDetails[code]; ok && detail.Variant != "" {
		typ = Type(detail.Variant)
		if message == "" {
			message = detail.Description
		}
	} else if variant, ok := s.ErrorCodes[code]; ok && variant != "" {
		typ = Type(variant)
	}
	e := New(typ, exchange, message, nil)
	e.Code = code
	return e
}

func codeOf(body map[string]any, field string) string {
	if field == "" {
		return ""
	}
	return stringify(body[field])
}

func messageOf(body map[string]any, field string) string {
	if field == "" {
		return ""
	}
	if v, ok := body[field]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case bool:
		return !t
	default:
		return false
	}
}
