package user

// deepMerge applies src onto dst, document-store style: nested maps
// merge recursively, everything else (scalars, arrays) replaces the
// previous value. dst is mutated and returned.
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}

	for key, val := range src {
		srcMap, srcIsMap := val.(map[string]any)
		dstMap, dstIsMap := dst[key].(map[string]any)

		if srcIsMap && dstIsMap {
			dst[key] = deepMerge(dstMap, srcMap)
			continue
		}
		dst[key] = val
	}

	return dst
}

// arrayUnion appends the values missing from an existing list field,
// preserving order of first occurrence.
func arrayUnion(existing []string, add []string) []string {
	seen := make(map[string]bool, len(existing))
	out := make([]string, 0, len(existing)+len(add))

	for _, v := range existing {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range add {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	return out
}

// stringSlice coerces a decoded JSON value into []string, dropping
// non-string members.
func stringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
