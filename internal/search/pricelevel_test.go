package search

import "testing"

func TestFormatPriceLevel(t *testing.T) {
	cases := []struct {
		raw, lang, want string
	}{
		{"$", "zh-TW", "$ (平價)"},
		{"$$", "en", "$$ (Moderate)"},
		{"$$$", "ja", "$$$ (高い)"},
		{"$$$$", "zh-TW", "$$$$ (天價)"},
		{"-", "en", "-"},
		{"???", "ja", "$ (安い)"},
		{"$$", "ko", "$$ (稍貴)"}, // unsupported locale falls back to zh-TW
	}

	for _, c := range cases {
		if got := FormatPriceLevel(c.raw, c.lang); got != c.want {
			t.Errorf("FormatPriceLevel(%q, %q) = %q, want %q", c.raw, c.lang, got, c.want)
		}
	}
}
