package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reFormFeed   = regexp.MustCompile(`\f+`)
)

// Normalize collapses noisy whitespace. Line breaks are kept; more than one
// blank line in a row becomes a single blank line. Invalid UTF-8 is dropped.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.TrimPrefix(s, "\ufeff")
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "\n\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	s = strings.Join(lines, "\n")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
