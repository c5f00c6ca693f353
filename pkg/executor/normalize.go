package executor

import "strings"

// normalizePunctuation maps plain punctuation glyphs to the
// typographic forms the target site renders in its option text. User
// data usually carries the ASCII apostrophe; the site's dropdowns use
// U+2019.
func normalizePunctuation(s string) string {
	return strings.ReplaceAll(s, "'", "’")
}
