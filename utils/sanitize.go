package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML in user-authored text (journal entries, task notes)
// to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
