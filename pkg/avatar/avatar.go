// Package avatar derives deterministic portrait URLs from student names.
package avatar

import "strings"

const baseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// URL returns the portrait URL for a name. The mapping is pure: the same
// name always yields the same URL. Whitespace is stripped so the seed stays
// a single query token.
func URL(name string) string {
	return baseURL + strings.ReplaceAll(name, " ", "")
}
