package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)

// ErrInvalidTimeFormat is returned when time parsing fails
var ErrInvalidTimeFormat = errors.New("invalid time format")

// NormalizeText composes Hangul jamo (NFC) and collapses whitespace.
func NormalizeText(s string) string {
	s = norm.NFC.String(s)
	s = strings.TrimSpace(s)
	return wsRe.ReplaceAllString(s, " ")
}

// NormalizeToken creates a search token from a string
func NormalizeToken(s string) string {
	return strings.ToLower(NormalizeText(s))
}

// SearchTokens generates search tokens from multiple strings: each whole
// string plus every word of two or more runes.
func SearchTokens(strs ...string) []string {
	tokens := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range strs {
		lower := NormalizeToken(s)
		if lower == "" {
			continue
		}
		if !seen[lower] {
			tokens = append(tokens, lower)
			seen[lower] = true
		}
		for _, word := range strings.Fields(lower) {
			if !seen[word] && utf8.RuneCountInString(word) >= 2 {
				tokens = append(tokens, word)
				seen[word] = true
			}
		}
	}
	return tokens
}

// TrimMax trims a string to at most max runes.
func TrimMax(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func RuneLen(s string) int { return utf8.RuneCountInString(s) }

// localZone applies to times written without an offset. Members type
// wall-clock times in the neighborhood's zone.
var localZone = time.FixedZone("KST", 9*60*60)

// SetLocalZone replaces the zone used for offset-less input; call it once at
// startup.
func SetLocalZone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	localZone = loc
	return nil
}

func LocalZone() *time.Location { return localZone }

// ParseTime parses RFC3339 or a bare local date/time and returns UTC.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	s = strings.TrimSpace(s)
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, localZone); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidTimeFormat
}

// ContainsString reports whether xs contains s.
func ContainsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
