package grid

import "github.com/unilibs/uniwidth"

// runeWidth returns the display width: 2 for wide characters (CJK, emoji), 1 for normal, 0 for zero-width (combining marks, control chars).
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune returns true if the rune occupies 2 columns (CJK ideographs, fullwidth forms, emoji).
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// StringWidth returns the total display width of a string (sum of rune widths).
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// TruncateToWidth trims s to fit within max display columns, measured the
// same way Render measures glyph width, without splitting a wide
// character in half. A pane's OSC 0/1/2 title has no length limit of its
// own; this is what keeps a runaway title from a child application from
// blowing past a tab header's fixed column budget.
func TruncateToWidth(s string, max int) string {
	if max <= 0 {
		return ""
	}
	width := 0
	runes := []rune(s)
	for i, r := range runes {
		w := runeWidth(r)
		if width+w > max {
			return string(runes[:i])
		}
		width += w
	}
	return s
}
