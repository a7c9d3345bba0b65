package entity

import "strings"

// csvJoin serializes a string slice as a comma-joined, insertion-order
// string, as spec.md §4.3 specifies for the (itemId, extras, excluded)
// grouping key.
func csvJoin(values []string) string {
	return strings.Join(values, ",")
}
