package textutil_test

import (
	"testing"

	"almanac/internal/textutil"
)

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"char_002_amiya", "char_002_amiya"},
		{"Char 002/Amiya", "char_002_amiya"},
		{"  UPPER-case  ", "upper-case"},
		{"___", ""},
		{"", ""},
		{"item#42!", "item_42"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"item_table", "Item Table"},
		{"character-record", "Character Record"},
		{"  spaced   out ", "Spaced Out"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.DisplayTitle(tc.in); got != tc.want {
			t.Errorf("DisplayTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
