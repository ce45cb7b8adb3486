package noise

import "strings"

// Filter reports whether a title marks a non-original recording. The zero
// value matches nothing; construct with NewFilter.
type Filter struct {
	keywords []string
}

// NewFilter builds a filter over the given exclusion vocabulary. Keywords
// are matched case-insensitively as substrings.
func NewFilter(keywords []string) *Filter {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if trimmed := strings.ToLower(strings.TrimSpace(keyword)); trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return &Filter{keywords: normalized}
}

// IsNoise reports whether title contains any exclusion keyword.
func (f *Filter) IsNoise(title string) bool {
	if f == nil || len(f.keywords) == 0 {
		return false
	}
	lowered := strings.ToLower(title)
	for _, keyword := range f.keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
