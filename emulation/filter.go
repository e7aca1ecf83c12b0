package emulation

import (
	"sort"
	"strings"
)

// field does the dual-key lookup §9 calls for: try the exact key, then its
// lowercase form, then camelCase, nil-safe on a missing or non-map entry.
func field(entry map[string]any, key string) (any, bool) {
	if entry == nil {
		return nil, false
	}
	if v, ok := entry[key]; ok {
		return v, true
	}
	lower := strings.ToLower(key)
	if v, ok := entry[lower]; ok {
		return v, true
	}
	if v, ok := entry[camelCase(key)]; ok {
		return v, true
	}
	return nil, false
}

func camelCase(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// filterBySince drops entries whose key field is missing or < since.
func filterBySince(entries []map[string]any, since *int64, key string) []map[string]any {
	if since == nil {
		return entries
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		v, ok := field(e, key)
		if !ok {
			continue
		}
		n, ok := asFloat(v)
		if !ok || n < float64(*since) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// filterByLimit keeps the first limit entries when fromStart is true and the
// last limit entries otherwise. It does not look at key or infer order
// itself; callers choose fromStart (for example from isAscending).
func filterByLimit(entries []map[string]any, limit *int, key string, fromStart bool) []map[string]any {
	if limit == nil || *limit < 0 || *limit >= len(entries) {
		return entries
	}
	n := *limit
	if fromStart {
		return append([]map[string]any(nil), entries[:n]...)
	}
	return append([]map[string]any(nil), entries[len(entries)-n:]...)
}

// isAscending reports whether entries is sorted ascending by key, comparing
// only the first and last elements (§4.5's inference rule).
func isAscending(entries []map[string]any, key string) bool {
	if len(entries) < 2 {
		return true
	}
	first, ok1 := field(entries[0], key)
	last, ok2 := field(entries[len(entries)-1], key)
	if !ok1 || !ok2 {
		return true
	}
	fv, ok1 := asFloat(first)
	lv, ok2 := asFloat(last)
	if !ok1 || !ok2 {
		return true
	}
	return fv <= lv
}

func sortByTimestampDescending(entries []map[string]any) []map[string]any {
	out := append([]map[string]any(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		vi, _ := field(out[i], "timestamp")
		vj, _ := field(out[j], "timestamp")
		fi, _ := asFloat(vi)
		fj, _ := asFloat(vj)
		return fi > fj
	})
	return out
}

func filterByStatus(entries []map[string]any, wanted ...string) []map[string]any {
	return filterByFieldValue(entries, "status", wanted...)
}

// filterByFieldValue keeps entries whose key field (lowercased) is one of
// wanted; used both for order status filtering and for narrowing a ledger
// to deposit/withdrawal entries by their type field.
func filterByFieldValue(entries []map[string]any, key string, wanted ...string) []map[string]any {
	set := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		set[strings.ToLower(w)] = true
	}
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		v, ok := field(e, key)
		if !ok {
			continue
		}
		s, ok := asString(v)
		if !ok {
			continue
		}
		if set[strings.ToLower(s)] {
			out = append(out, e)
		}
	}
	return out
}

func toEntries(v any) []map[string]any {
	list, ok := v.([]map[string]any)
	if ok {
		return list
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func sinceLimitFromParams(params map[string]any) (*int64, *int) {
	var since *int64
	var limit *int
	if v, ok := field(params, "since"); ok {
		if f, ok := asFloat(v); ok {
			n := int64(f)
			since = &n
		}
	}
	if v, ok := field(params, "limit"); ok {
		if f, ok := asFloat(v); ok {
			n := int(f)
			limit = &n
		}
	}
	return since, limit
}
