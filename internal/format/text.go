package format

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces   = regexp.MustCompile(`\s+`)
	slugHyphens  = regexp.MustCompile(`-+`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Slugify lowercases text, strips accents and joins words with hyphens:
// "Concierto de Rock en Bogotá" becomes "concierto-de-rock-en-bogota".
func Slugify(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, strings.ToLower(text))
	if err != nil {
		s = strings.ToLower(text)
	}

	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Truncate shortens text to maxLength runes, ending with "...".
func Truncate(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = 100
	}
	r := []rune(text)
	if len(r) <= maxLength {
		return text
	}
	if maxLength <= 3 {
		return string(r[:maxLength])
	}
	return string(r[:maxLength-3]) + "..."
}

func CapitalizeWords(text string) string {
	out := []rune(text)
	start := true
	for i, r := range out {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if isWord && start {
			out[i] = unicode.ToUpper(r)
		}
		start = !isWord
	}
	return string(out)
}

// MaskEmail keeps the first and last character of the local part.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := []rune(email[:at]), email[at+1:]

	switch {
	case len(local) == 0:
		return "***@" + domain
	case len(local) <= 2:
		return string(local[0]) + "***@" + domain
	default:
		return string(local[0]) + strings.Repeat("*", len(local)-2) + string(local[len(local)-1]) + "@" + domain
	}
}

// PlainText drops tags and collapses whitespace.
func PlainText(content string) string {
	s := tagPattern.ReplaceAllString(content, " ")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}
