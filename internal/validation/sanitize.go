package validation

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// policyHTML keeps formatting markup and drops scripts, event handler
	// attributes and javascript: links.
	policyHTML = bluemonday.UGCPolicy()

	whitespaceRun = regexp.MustCompile(`\s{2,}`)
	angleBrackets = strings.NewReplacer("<", "", ">", "")
)

// SanitizeInput trims s and removes literal angle brackets. Used for short
// identity fields such as names and emails.
func SanitizeInput(s string) string {
	return angleBrackets.Replace(strings.TrimSpace(s))
}

// SanitizePolicyContent cleans a long policy text. Markup goes through the
// HTML policy; plain text is only trimmed. Whitespace runs are collapsed in
// both cases. Returns nil for nil or blank input.
func SanitizePolicyContent(content *string) *string {
	if content == nil {
		return nil
	}
	s := strings.TrimSpace(*content)
	if s == "" {
		return nil
	}
	if IsHTML(s) {
		s = strings.TrimSpace(policyHTML.Sanitize(s))
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return &s
}
