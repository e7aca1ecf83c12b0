package exchange

import (
	"sort"
	"strings"
)

// applyResponseTransformer dispatches to the named declarative transformer
// (§4.2), or returns body unchanged when name is empty or unrecognised — an
// endpoint with no response_transformer is simply handed the raw decoded
// body.
func applyResponseTransformer(name string, body any) any {
	switch name {
	case "unwrap_single_element_list":
		return unwrapSingleElementList(body)
	case "order_book_from_flat_list":
		return orderBookFromFlatList(body)
	default:
		if path, ok := extractPathArg(name, "extract_path_unwrap"); ok {
			return unwrapSingleElementList(extractPath(body, path))
		}
		if path, ok := extractPathArg(name, "extract_path"); ok {
			return extractPath(body, path)
		}
		return body
	}
}

// extractPathArg recognises the "extract_path(a.b.c)" / "extract_path_unwrap(a.b.c)"
// call-like transformer names a spec can declare, splitting the dotted path
// out of the parens. Returns ok=false for any other transformer name.
func extractPathArg(name, prefix string) (string, bool) {
	rest := strings.TrimPrefix(name, prefix)
	if rest == name { // prefix didn't match
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", false
	}
	return strings.TrimSpace(rest[1 : len(rest)-1]), true
}

func unwrapSingleElementList(body any) any {
	list, ok := body.([]any)
	if !ok || len(list) != 1 {
		return body
	}
	return list[0]
}

// extractPath walks dotted nested keys, stopping at the first missing key
// and returning the last reachable nested map rather than nil (Open Question
// decision recorded in the grounding ledger).
func extractPath(body any, path string) any {
	if path == "" {
		return body
	}
	keys := strings.Split(path, ".")
	current := body
	for _, k := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return current
		}
		v, ok := m[k]
		if !ok {
			return current
		}
		current = v
	}
	return current
}

// orderBookFromFlatList turns a flat list of {side, price, size, ...} rows
// into {bids, asks} sorted descending/ascending by price respectively.
func orderBookFromFlatList(body any) any {
	rows, ok := body.([]any)
	if !ok {
		return body
	}
	var bids, asks [][]float64
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		side, _ := row["side"].(string)
		price, pOK := asFloat64(row["price"])
		size, sOK := asFloat64(row["size"])
		if !pOK || !sOK {
			continue
		}
		switch strings.ToLower(side) {
		case "bid", "buy", "bids":
			bids = append(bids, []float64{price, size})
		case "ask", "sell", "asks":
			asks = append(asks, []float64{price, size})
		}
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i][0] > bids[j][0] })
	sort.Slice(asks, func(i, j int) bool { return asks[i][0] < asks[j][0] })
	return map[string]any{"bids": toAnySlice(bids), "asks": toAnySlice(asks)}
}

func asFloat64(v any) (float64, bool) {
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

func toAnySlice(pairs [][]float64) []any {
	out := make([]any, len(pairs))
	for i, p := range pairs {
		out[i] = []any{p[0], p[1]}
	}
	return out
}
