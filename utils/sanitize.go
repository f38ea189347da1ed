package utils

import "github.com/microcosm-cc/bluemonday"

// Check-in titles and chat messages are plain text, so everything HTML-like
// is stripped rather than filtered. Notice HTML from config keeps a UGC
// subset since it is rendered by clients.
var (
	strictSanitizer = bluemonday.StrictPolicy()
	noticeSanitizer = bluemonday.UGCPolicy()
)

// Sanitize strips all HTML from user supplied plain-text fields.
func Sanitize(input string) string {
	return strictSanitizer.Sanitize(input)
}

// SanitizeNotice cleans operator supplied notice HTML to a safe subset.
func SanitizeNotice(input string) string {
	return noticeSanitizer.Sanitize(input)
}
