package schema

import "strings"

const (
	// Separator separates PathSpec segments.
	Separator = "/"
	// Wildcard addresses an array item or a map value.
	Wildcard = "*"
	// MapKey addresses the key of a map.
	MapKey = "$key"
	// RefSegment marks a typeref-to-target hop in a detailed traverse path.
	// It never appears in a PathSpec.
	RefSegment = "$ref"
)

// ValidatePathSpec reports whether p is a well-formed PathSpec: it starts
// with a separator, has no empty segment and no trailing separator. A lone
// separator is valid and addresses the declaring node itself.
func ValidatePathSpec(p string) bool {
	if p == Separator {
		return true
	}
	if len(p) < 2 || !strings.HasPrefix(p, Separator) || strings.HasSuffix(p, Separator) {
		return false
	}
	return !strings.Contains(p, Separator+Separator)
}

// SplitPathSpec returns the non-empty segments of p.
func SplitPathSpec(p string) []string {
	parts := strings.Split(p, Separator)
	segs := parts[:0]
	for _, s := range parts {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// JoinPathSpec renders segments as a PathSpec.
func JoinPathSpec(segs []string) string {
	return Separator + strings.Join(segs, Separator)
}
