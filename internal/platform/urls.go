package platform

import (
	"regexp"
	"strings"
)

// Accepted source URL shapes. Each pattern is anchored at the start of the
// input; the scheme and host parts match case-insensitively.
var sourceURLPatterns = []*regexp.Regexp{
	// canonical watch form, v= may follow other query parameters
	regexp.MustCompile(`^(?i:https?://)?(?i:www\.)?(?i:youtube\.com)/watch\?(?:[^#\s]*&)?v=[\w-]+`),
	// short link
	regexp.MustCompile(`^(?i:https?://)?(?i:www\.)?(?i:youtu\.be)/[\w-]+`),
	// embed and shorts players
	regexp.MustCompile(`^(?i:https?://)?(?i:www\.)?(?i:youtube(?:-nocookie)?\.com)/(?:embed|shorts)/[\w-]+`),
}

// IsBlank reports whether input is empty or whitespace only
func IsBlank(input string) bool {
	return strings.TrimSpace(input) == ""
}

// ValidateURL reports whether input looks like a playable YouTube item.
// Blank input is rejected; callers check IsBlank first for a specific message.
func ValidateURL(input string) bool {
	if IsBlank(input) {
		return false
	}
	for _, pattern := range sourceURLPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}
