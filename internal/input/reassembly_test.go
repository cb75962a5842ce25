package input

import "testing"

func TestMightHaveMoreDataCompleteSequences(t *testing.T) {
	cases := map[string]bool{
		"hello":          false,
		"\x1b[31m":       false,
		"\x1b[H":         false,
		"\x1b[2J":        false,
		"\x1b[<0;10;5M":  false,
		"a":              false,
		"":               false,
		"\x1b":           false,
		"\x1ba":          false,
		"\x1bO":          false,
		"\x1b]":          false,
		"\x1b0":          false,
		"\x1bz":          false,
		"\x1b[":          false,
		"\x1b[3":         true,
		"\x1b[31":        true,
		"\x1b[<0":        true,
		"\x1b[<0;10":     true,
		"\x1b[2":         true,
		"hello\x1b":      true,
		"hello\x1b[":     true,
		"hello\x1b[3":    true,
		"hello\x1b[31m":  false,
		"hello\x1b[H":    false,
	}
	for in, want := range cases {
		if got := mightHaveMoreData([]byte(in)); got != want {
			t.Errorf("mightHaveMoreData(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMightHaveMoreDataMixedContent(t *testing.T) {
	cases := map[string]bool{
		"\x1b[31mRED\x1b[0m": false,
		"text\x1b[Hmore":     false,
		"\x1b[31mRED\x1b[":   true,
		"text\x1b[31":        true,
	}
	for in, want := range cases {
		if got := mightHaveMoreData([]byte(in)); got != want {
			t.Errorf("mightHaveMoreData(%q) = %v, want %v", in, got, want)
		}
	}
}
