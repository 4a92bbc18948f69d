package upload

import "strings"

// FriendlyMessage maps a raw error string onto a user-facing message
// by substring classification. Strings that match no known category
// are shown verbatim - the backend's own message is usually better
// than a generic one.
func FriendlyMessage(raw string) string {
	lower := strings.ToLower(raw)

	switch {
	case strings.Contains(lower, "rate limit"):
		return "You've hit the rate limit. Please wait a moment and try again."
	case strings.Contains(lower, "network"), strings.Contains(lower, "fetch"):
		return "Cannot reach the server. Please check your connection and try again."
	case strings.Contains(raw, "Security check failed"):
		return "Security check failed. Please refresh the page and try again."
	case strings.Contains(raw, "File type"):
		return "This file type is not supported. Please upload a document in a supported format."
	case strings.Contains(raw, "File size"):
		return "This file is too large. Please upload a smaller document."
	}
	return raw
}
