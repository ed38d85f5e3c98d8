package imagescan_test

import (
	"testing"

	"golang.org/x/text/unicode/norm"

	"almanac/internal/imagescan"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"amiya_02.png", "amiya"},
		{"amiya2.png", "amiya"},
		{"Amiya-battle.jpg", "amiya"},
		{"texas.webp", "texas"},
		{"ch_en_01.gif", "ch"},
		{"42.png", ""},
		{"__cover.png", ""},
		{"no_extension", "no"},
	}
	for _, tc := range cases {
		if got := imagescan.Slug(tc.name); got != tc.want {
			t.Errorf("Slug(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSlugNormalizesComposition(t *testing.T) {
	// U+00E9 (precomposed) vs U+0065 U+0301 (decomposed) must map to one subject.
	composed := "\u00e9clair.png"
	decomposed := "e\u0301clair.png"
	if imagescan.Slug(composed) != imagescan.Slug(decomposed) {
		t.Fatalf("composition forms diverge: %q vs %q",
			imagescan.Slug(composed), imagescan.Slug(decomposed))
	}
	if got := imagescan.Slug(composed); got != norm.NFC.String(got) {
		t.Fatalf("slug not NFC-normalized: %q", got)
	}
}
