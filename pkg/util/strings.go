package util

// HasPrefix reports whether s begins with prefix. An empty prefix always
// matches; an empty s only matches an empty prefix.
func HasPrefix(s, prefix string) bool {
	lp := len(prefix)
	if lp == 0 {
		return true
	}
	if len(s) < lp {
		return false
	}
	return s[:lp] == prefix
}

// HasAnyPrefix reports whether s begins with any of the provided prefixes.
// The check is performed in order, short-circuiting on first match.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if HasPrefix(s, p) {
			return true
		}
	}
	return false
}
