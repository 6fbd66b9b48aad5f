package events

import "strings"

// LocationAllowed reports whether a location string names a campus venue:
// case-insensitive containment of at least one keyword. Applied only to
// events submitted for external-type organizers.
func LocationAllowed(location string, keywords []string) bool {
	lower := strings.ToLower(location)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
