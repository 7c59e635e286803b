package domain

import "strings"

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for display names, trip names, stop cities and activity titles.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeSearchQuery lowercases and collapses whitespace for case-insensitive matching.
func NormalizeSearchQuery(s string) string {
	return strings.ToLower(NormalizeHumanName(s))
}
