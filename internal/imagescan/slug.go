package imagescan

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slug derives the subject identifier from an image file name.
//
// The rule: take the stem (name without extension), NFC-normalize and
// lower-case it, cut at the first rune that is neither letter nor digit, then
// trim a trailing run of digits (the variant index). "amiya_02.png" and
// "amiya2.png" both map to "amiya". An empty result means the name carries no
// recognizable subject.
func Slug(fileName string) string {
	stem := fileName
	if idx := strings.LastIndex(stem, "."); idx > 0 {
		stem = stem[:idx]
	}
	stem = strings.ToLower(norm.NFC.String(stem))

	var b strings.Builder
	for _, r := range stem {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		b.WriteRune(r)
	}

	slug := b.String()
	return strings.TrimRightFunc(slug, unicode.IsDigit)
}
