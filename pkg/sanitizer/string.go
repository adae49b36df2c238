package sanitizer

import "strings"

// CollapseSpaces trims s and replaces every run of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeName is applied to car names and card holder names.
func NormalizeName(name string) string {
	return CollapseSpaces(name)
}
