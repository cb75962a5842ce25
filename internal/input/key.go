package input

import "unicode/utf8"

// KeyCode tags a Key's named-key identity; KeyChar covers every
// printable character (including ones typed with Ctrl/Alt), carried in
// Key.Char.
type KeyCode int

const (
	KeyChar KeyCode = iota
	KeyEnter
	KeyTab
	KeyEsc
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Key is a decoded keystroke. Letter case is carried directly in Char
// (unlike the wire Key of spec.md §6, which keeps case out of main_key
// and signals it via the SHIFT modifier instead) — nothing downstream
// of the keybinding table needs to distinguish the two representations,
// so the simpler one is used internally.
type Key struct {
	Code KeyCode
	Char rune
	Ctrl bool
	Alt  bool
}

const esc = 0x1b

// decodeKey consumes one complete keystroke from the front of buf, which
// must already have passed mightHaveMoreData (false): buf is guaranteed
// not to end mid-escape-sequence. Returns the key, the number of bytes
// consumed, and ok=false if buf starts with an SGR mouse report instead
// (the caller routes those to decodeSGRMouse).
func decodeKey(buf []byte) (Key, int, bool) {
	if len(buf) == 0 {
		return Key{}, 0, false
	}
	b0 := buf[0]

	if b0 == esc {
		if len(buf) == 1 {
			return Key{Code: KeyEsc}, 1, true
		}
		switch buf[1] {
		case '[':
			if len(buf) == 2 {
				return Key{Code: KeyChar, Char: '[', Alt: true}, 2, true
			}
			return decodeCSIKey(buf)
		case 'O':
			if len(buf) == 2 {
				return Key{Code: KeyChar, Char: 'O', Alt: true}, 2, true
			}
			if k, ok := ss3Key(buf[2]); ok {
				return k, 3, true
			}
			return Key{Code: KeyChar, Char: 'O', Alt: true}, 2, true
		default:
			// ESC <printable>: a complete Alt-combination (§4.6).
			r, n := utf8.DecodeRune(buf[1:])
			return Key{Code: KeyChar, Char: r, Alt: true}, 1 + n, true
		}
	}

	switch b0 {
	case 9:
		return Key{Code: KeyTab}, 1, true
	case 13:
		return Key{Code: KeyEnter}, 1, true
	case 127, 8:
		return Key{Code: KeyBackspace}, 1, true
	}
	if b0 < 0x20 {
		return Key{Code: KeyChar, Char: rune(b0 + 0x60), Ctrl: true}, 1, true
	}

	r, n := utf8.DecodeRune(buf)
	return Key{Code: KeyChar, Char: r}, n, true
}

func ss3Key(b byte) (Key, bool) {
	switch b {
	case 'A':
		return Key{Code: KeyUp}, true
	case 'B':
		return Key{Code: KeyDown}, true
	case 'C':
		return Key{Code: KeyRight}, true
	case 'D':
		return Key{Code: KeyLeft}, true
	case 'H':
		return Key{Code: KeyHome}, true
	case 'F':
		return Key{Code: KeyEnd}, true
	case 'P':
		return Key{Code: KeyF1}, true
	case 'Q':
		return Key{Code: KeyF2}, true
	case 'R':
		return Key{Code: KeyF3}, true
	case 'S':
		return Key{Code: KeyF4}, true
	}
	return Key{}, false
}

// decodeCSIKey decodes "ESC [ <params> <final>" (buf[0]==ESC, buf[1]=='[',
// len(buf) >= 3) into a Key. Sequences whose params start with '<' are
// SGR mouse reports, not keys; the caller checks that case first via
// isMouseReport, so this is only reached for the key-shaped remainder.
func decodeCSIKey(buf []byte) (Key, int, bool) {
	i := 2
	for i < len(buf) && !isFinalByte(buf[i]) {
		i++
	}
	if i >= len(buf) {
		// Shouldn't happen once mightHaveMoreData has returned false,
		// but fail closed rather than index out of range.
		return Key{}, len(buf), false
	}
	params := buf[2:i]
	final := buf[i]
	consumed := i + 1

	mods := splitParams(params)

	switch final {
	case 'A':
		return applyMods(Key{Code: KeyUp}, mods), consumed, true
	case 'B':
		return applyMods(Key{Code: KeyDown}, mods), consumed, true
	case 'C':
		return applyMods(Key{Code: KeyRight}, mods), consumed, true
	case 'D':
		return applyMods(Key{Code: KeyLeft}, mods), consumed, true
	case 'H':
		return applyMods(Key{Code: KeyHome}, mods), consumed, true
	case 'F':
		return applyMods(Key{Code: KeyEnd}, mods), consumed, true
	case 'u':
		// Fixed-form CSI-u: "CSI codepoint ; modifiers u".
		if len(mods) >= 1 {
			k := Key{Code: KeyChar, Char: rune(mods[0])}
			if len(mods) >= 2 {
				k = applyModBits(k, mods[1])
			}
			return k, consumed, true
		}
	case '~':
		if len(mods) >= 1 {
			return applyMods(tildeKey(mods[0]), mods[1:]), consumed, true
		}
	}
	return Key{}, consumed, false
}

func tildeKey(code int) Key {
	switch code {
	case 1, 7:
		return Key{Code: KeyHome}
	case 2:
		return Key{Code: KeyInsert}
	case 3:
		return Key{Code: KeyDelete}
	case 4, 8:
		return Key{Code: KeyEnd}
	case 5:
		return Key{Code: KeyPageUp}
	case 6:
		return Key{Code: KeyPageDown}
	case 11:
		return Key{Code: KeyF1}
	case 12:
		return Key{Code: KeyF2}
	case 13:
		return Key{Code: KeyF3}
	case 14:
		return Key{Code: KeyF4}
	case 15:
		return Key{Code: KeyF5}
	case 17:
		return Key{Code: KeyF6}
	case 18:
		return Key{Code: KeyF7}
	case 19:
		return Key{Code: KeyF8}
	case 20:
		return Key{Code: KeyF9}
	case 21:
		return Key{Code: KeyF10}
	case 23:
		return Key{Code: KeyF11}
	case 24:
		return Key{Code: KeyF12}
	}
	return Key{}
}

// splitParams parses a ';'-separated run of decimal integers, skipping
// (rather than erroring on) anything that doesn't parse — a malformed
// param is simply dropped, consistent with the VTE parser's "never
// panic on noise" failure mode (spec.md §4.2).
func splitParams(params []byte) []int {
	var out []int
	n, has := 0, false
	flush := func() {
		if has {
			out = append(out, n)
		}
		n, has = 0, false
	}
	for _, b := range params {
		if b == ';' {
			flush()
			continue
		}
		if b < '0' || b > '9' {
			continue
		}
		n = n*10 + int(b-'0')
		has = true
	}
	flush()
	return out
}

// applyMods applies an xterm modifier parameter list (the ";N" that
// follows a no-param arrow/Home/End final byte) to k.
func applyMods(k Key, mods []int) Key {
	if len(mods) == 0 {
		return k
	}
	return applyModBits(k, mods[0])
}

// applyModBits decodes the xterm modifier encoding (value-1 as a
// bitmask: bit0 shift, bit1 alt, bit2 ctrl) onto k. Shift is folded into
// Char where it would matter for letters elsewhere in this package; for
// named keys there's no Char to adjust, so only Ctrl/Alt are tracked.
func applyModBits(k Key, mod int) Key {
	bits := mod - 1
	if bits&2 != 0 {
		k.Alt = true
	}
	if bits&4 != 0 {
		k.Ctrl = true
	}
	return k
}

func isFinalByte(b byte) bool { return b >= 0x40 && b <= 0x7e }

// isMouseReport reports whether buf (an "ESC [ ..." sequence of at
// least 3 bytes) is an SGR(1006) mouse report rather than a key.
func isMouseReport(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == esc && buf[1] == '[' && buf[2] == '<'
}
