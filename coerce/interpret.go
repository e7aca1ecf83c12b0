package coerce

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"
	"github.com/shopspring/decimal"
)

// Interpret runs program against an already-decoded response map, producing
// a new map keyed by each Instruction's Dest. This is the reference
// interpreter: callers with a real typed-struct layer don't need it, but
// tests do.
func Interpret(program Program, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(program))
	for _, ins := range program {
		v, found := lookup(raw, ins.Source)
		if !found {
			if ins.Optional {
				continue
			}
			return nil, fmt.Errorf("coerce: missing required field %q", ins.Source)
		}
		converted, err := convert(ins.Kind, v)
		if err != nil {
			return nil, fmt.Errorf("coerce %s (%s): %w", ins.Dest, ins.Source, err)
		}
		out[ins.Dest] = converted
	}
	return out, nil
}

// InterpretBytes runs program directly against raw JSON bytes using
// jsonparser's typed Get* accessors, avoiding a full map[string]any decode
// for large responses.
func InterpretBytes(program Program, raw []byte) (map[string]any, error) {
	out := make(map[string]any, len(program))
	for _, ins := range program {
		path := strings.Split(ins.Source, ".")
		converted, err := getTyped(raw, ins.Kind, path)
		if err != nil {
			if ins.Optional && errors.Is(err, jsonparser.KeyPathNotFoundError) {
				continue
			}
			return nil, fmt.Errorf("coerce %s (%s): %w", ins.Dest, ins.Source, err)
		}
		out[ins.Dest] = converted
	}
	return out, nil
}

// lookup walks a dotted path through nested map[string]any values.
func lookup(raw map[string]any, path string) (any, bool) {
	cur := any(raw)
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func convert(kind Kind, v any) (any, error) {
	switch kind {
	case KindPassthrough:
		return v, nil
	case KindString:
		return fmt.Sprintf("%v", v), nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		return b, nil
	case KindInt:
		switch n := v.(type) {
		case float64:
			return int64(n), nil
		case string:
			return strconv.ParseInt(n, 10, 64)
		case int64:
			return n, nil
		default:
			return nil, fmt.Errorf("want int, got %T", v)
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case string:
			return strconv.ParseFloat(n, 64)
		default:
			return nil, fmt.Errorf("want float, got %T", v)
		}
	case KindDecimal:
		switch n := v.(type) {
		case string:
			return decimal.NewFromString(n)
		case float64:
			return decimal.NewFromFloat(n), nil
		default:
			return nil, fmt.Errorf("want decimal-compatible value, got %T", v)
		}
	case KindTimestampMS:
		switch n := v.(type) {
		case float64:
			return time.UnixMilli(int64(n)).UTC(), nil
		case string:
			ms, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, err
			}
			return time.UnixMilli(ms).UTC(), nil
		default:
			return nil, fmt.Errorf("want timestamp_ms-compatible value, got %T", v)
		}
	default:
		return nil, fmt.Errorf("unknown coercion kind %q", kind)
	}
}

// getTyped dispatches to jsonparser's typed Get* accessors per Kind, then
// applies any further conversion (decimal, timestamp) the raw string/number
// value needs.
func getTyped(raw []byte, kind Kind, path []string) (any, error) {
	switch kind {
	case KindPassthrough, KindString:
		return jsonparser.GetString(raw, path...)
	case KindBool:
		return jsonparser.GetBoolean(raw, path...)
	case KindInt:
		return jsonparser.GetInt(raw, path...)
	case KindFloat:
		return jsonparser.GetFloat(raw, path...)
	case KindDecimal:
		s, err := jsonparser.GetString(raw, path...)
		if err != nil {
			n, numErr := jsonparser.GetFloat(raw, path...)
			if numErr != nil {
				return nil, err
			}
			return decimal.NewFromFloat(n), nil
		}
		return decimal.NewFromString(s)
	case KindTimestampMS:
		ms, err := jsonparser.GetInt(raw, path...)
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return nil, fmt.Errorf("unknown coercion kind %q", kind)
	}
}
