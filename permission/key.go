package permission

import "strings"

// SplitKey splits "resource:action" into its two halves. ok is false when
// either half is empty or the separator is missing.
func SplitKey(key string) (resource, action string, ok bool) {
	resource, action, found := strings.Cut(key, ":")
	if !found || resource == "" || action == "" {
		return "", "", false
	}
	if strings.ContainsAny(resource, " \t\n") || strings.ContainsAny(action, " \t\n") {
		return "", "", false
	}
	return resource, action, true
}

// ValidKey reports whether key is a well-formed permission key.
func ValidKey(key string) bool {
	_, _, ok := SplitKey(key)
	return ok
}

// Resource returns the resource half of key, or "" when key is malformed.
func Resource(key string) string {
	resource, _, _ := SplitKey(key)
	return resource
}
