package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EncodeValue serializes a canonical value for persistence. All values encode
// as JSON so the store stays a flat string/string table.
func EncodeValue(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

// DecodeValue parses a persisted value back into the canonical Go type for t.
func DecodeValue(t Type, raw string) (any, error) {
	switch t {
	case TypeBool:
		var v bool
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode bool: %w", err)
		}
		return v, nil
	case TypeInt:
		var v int
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode int: %w", err)
		}
		return v, nil
	case TypeFloat:
		var v float64
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode float: %w", err)
		}
		return v, nil
	case TypeString:
		var v string
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode string: %w", err)
		}
		return v, nil
	case TypeStringList:
		var v []string
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return v, nil
	case TypeStringMap:
		var v map[string]string
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("decode map: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("decode: unknown type %d", int(t))
	}
}

// FormatValue renders a value for display in menus and popups.
// Empty and zero scalars render as a dash so menus stay scannable.
func FormatValue(d Descriptor, v any) string {
	if v == nil {
		return "—"
	}
	switch d.Type {
	case TypeBool:
		if b, _ := v.(bool); b {
			return "true"
		}
		return "false"
	case TypeInt:
		n, _ := v.(int)
		if n == 0 {
			return "—"
		}
		return strconv.Itoa(n)
	case TypeFloat:
		f, _ := v.(float64)
		return strconv.FormatFloat(f, 'g', -1, 64)
	case TypeString:
		s, _ := v.(string)
		if strings.TrimSpace(s) == "" {
			return "—"
		}
		if d.Sensitive {
			return "(configured)"
		}
		return s
	case TypeStringList:
		l, _ := v.([]string)
		if len(l) == 0 {
			return "—"
		}
		return "[" + strings.Join(l, ", ") + "]"
	case TypeStringMap:
		m, _ := v.(map[string]string)
		if len(m) == 0 {
			return "—"
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+m[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// SplitSet decodes an enabled-set value (sorted, comma-joined string) into
// its members. Empty input yields an empty set.
func SplitSet(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinSet encodes members as a sorted, comma-joined string, deduplicated.
func JoinSet(members []string) string {
	seen := make(map[string]struct{}, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

// SetContains reports whether member is present in an encoded enabled set.
func SetContains(s, member string) bool {
	for _, m := range SplitSet(s) {
		if m == member {
			return true
		}
	}
	return false
}
