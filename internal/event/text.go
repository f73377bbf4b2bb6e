package event

import "strings"

// CollapseWhitespace replaces every run of whitespace (spaces, tabs, newlines)
// with a single space and trims both ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanText collapses whitespace and returns nil when nothing is left,
// so optional fields never hold an empty string.
func CleanText(s string) *string {
	cleaned := CollapseWhitespace(s)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// CleanTextPtr is CleanText for a value that may itself be absent
func CleanTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	return CleanText(*s)
}

// SplitList splits a delimited value into trimmed, non-empty items
func SplitList(value, sep string) []string {
	items := make([]string, 0)
	for _, part := range strings.Split(value, sep) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}
