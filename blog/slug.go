package blog

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Characters stripped from slugs because they are reserved or unsafe in URLs.
const reservedSlugChars = "!#$&'()*,/:;=?@[]\"%.<>\\^_{}|~`+"

// CreateSlug derives a URL-safe slug from a post title: lower-case, spaces
// to hyphens, diacritics stripped, reserved characters removed. The result
// is stable under re-application, so user-supplied slugs can be passed
// through it too.
func CreateSlug(title string) string {
	s := strings.ToLower(title)
	s = strings.ReplaceAll(s, " ", "-")
	s = removeDiacritics(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(reservedSlugChars, r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}

// removeDiacritics decomposes to NFD, drops combining marks, and recomposes.
func removeDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
