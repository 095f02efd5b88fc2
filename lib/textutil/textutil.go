package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

// unicode spaces count as whitespace too, the portals regularly use
// ideographic spaces (U+3000) for layout.
var whitespaceRegex = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// NormalizeWhitespace collapses every run of whitespace into a single space
// and trims both ends.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

var quotedRegex = regexp.MustCompile(`'([^']+)'`)

// ExtractFirstQuotedValue returns the contents of the first single-quoted
// substring in raw, this is usually a url passed to some javascript in an
// onclick handler.
func ExtractFirstQuotedValue(raw string) (string, bool) {
	groups := quotedRegex.FindStringSubmatch(raw)
	if len(groups) < 2 {
		return "", false
	}
	return groups[1], true
}

var nonDigitRegex = regexp.MustCompile(`[^\d]`)

// DigitsToInt strips every non-digit character out of s and parses the
// rest. Anything unparsable (including the empty string) is 0, a digit run
// that overflows int counts as unparsable.
func DigitsToInt(s string) int {
	digits := nonDigitRegex.ReplaceAllString(s, "")
	if digits == "" {
		return 0
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// AfterSlash returns the segment between the first "/" in s and the next
// one (or the end), or "" if there is no slash.
func AfterSlash(s string) string {
	_, after, found := strings.Cut(s, "/")
	if !found {
		return ""
	}
	segment, _, _ := strings.Cut(after, "/")
	return segment
}

// LeadingInt parses the integer prefix of s (after trimming), it returns
// false when s does not start with a digit or the prefix overflows int.
func LeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeName lowercases and strips all whitespace out of a name so that
// names can be compared loosely.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}
