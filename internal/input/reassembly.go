package input

// scanWindow bounds how far back mightHaveMoreData looks for a pending
// escape sequence (spec.md §4.6: "scan the last up-to-20 bytes").
const scanWindow = 20

// mightHaveMoreData implements the fragment-reassembly rule: a buffer
// ending mid-escape-sequence probably has more bytes coming on the next
// read, and should be held rather than decoded yet.
//
// A single byte is always released immediately, including a lone ESC
// (an isolated Escape keypress). A trailing "ESC [" with nothing before
// it in the buffer is the complete keystroke Alt+[ and also releases
// immediately; the same two bytes trailing a buffer that already has
// other content ahead of them are ambiguous — they could still be the
// start of a real CSI report arriving in two reads — and are held.
// Any other "ESC <printable>" is a complete Alt-combination. A CSI
// sequence ("ESC [ params final") is complete once a final byte in
// '@'-'~' appears; otherwise it's pending.
func mightHaveMoreData(buf []byte) bool {
	if len(buf) <= 1 {
		return false
	}

	window := buf
	if len(window) > scanWindow {
		window = window[len(window)-scanWindow:]
	}
	idx := lastIndexByte(window, esc)
	if idx == -1 {
		return false
	}
	tail := window[idx:]
	atBufStart := idx == 0 && len(window) == len(buf)

	if len(tail) == 1 {
		return true
	}
	if tail[1] == '[' {
		if len(tail) == 2 {
			return !atBufStart
		}
		return findFinalByte(tail[2:]) == -1
	}
	return false
}

func lastIndexByte(b []byte, c byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == c {
			return i
		}
	}
	return -1
}

func findFinalByte(b []byte) int {
	for i, c := range b {
		if isFinalByte(c) {
			return i
		}
	}
	return -1
}
