package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinPolicyLength = 10
	MaxPolicyLength = 50000
)

// Column widths of the events and tickets tables.
const (
	MaxTitleLength       = 500
	MaxLocationLength    = 500
	MaxOrganizerIDLength = 255
	MaxNameLength        = 255
	MaxEmailLength       = 255
	MaxPhoneLength       = 50
)

var (
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex  = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	uuidV4Regex = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

	htmlTagRegex     = regexp.MustCompile(`<[^>]+>`)
	openTagRegex     = regexp.MustCompile(`<[^/][^>]*>`)
	closeTagRegex    = regexp.MustCompile(`</[^>]*>`)
	selfClosingRegex = regexp.MustCompile(`<[^>]*/>`)
)

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func IsEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsPhone accepts an empty value since phone numbers are optional.
func IsPhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phoneRegex.MatchString(phone)
}

// checkLength appends an error when s is longer than limit characters.
func checkLength(errs []string, field, s string, limit int) []string {
	if utf8.RuneCountInString(strings.TrimSpace(s)) > limit {
		return append(errs, fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return errs
}

// IsUUIDv4 matches the version-4 layout only, case-insensitively.
func IsUUIDv4(id string) bool {
	return uuidV4Regex.MatchString(id)
}

// IsHTML reports whether content contains anything tag-shaped.
func IsHTML(content string) bool {
	return htmlTagRegex.MatchString(content)
}

// ParseDate accepts RFC 3339 timestamps, timestamps without a zone and
// plain dates. Zone-less values are read as UTC.
func ParseDate(value string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// IsFutureDate reports whether value parses and lies strictly after now.
func IsFutureDate(value string, now time.Time) bool {
	t, err := ParseDate(value)
	if err != nil {
		return false
	}
	return t.After(now)
}

// PolicyContent checks the length bounds of a policy text and, for markup,
// a loose open/close tag balance. Empty content is accepted.
func PolicyContent(content string) bool {
	if content == "" {
		return true
	}
	if utf8.RuneCountInString(content) > MaxPolicyLength {
		return false
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < MinPolicyLength {
		return false
	}

	open := len(openTagRegex.FindAllStringIndex(content, -1))
	closing := len(closeTagRegex.FindAllStringIndex(content, -1))
	selfClosing := len(selfClosingRegex.FindAllStringIndex(content, -1))

	diff := open - closing
	if diff < 0 {
		diff = -diff
	}
	return diff <= selfClosing+5
}
