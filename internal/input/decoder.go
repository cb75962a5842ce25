package input

import (
	"bytes"
	"sync"
	"time"
)

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
	// flushDelay is the "≤ 10 ms" re-read timeout spec.md §4.6 allows
	// before giving up on a sequence that looked incomplete and
	// decoding whatever arrived anyway.
	flushDelay = 10 * time.Millisecond
)

// Decoder reassembles one client's raw input bytes into Actions.
type Decoder struct {
	mu       sync.Mutex
	mode     func() Mode
	dispatch func([]Action)

	pending []byte
	pasting bool

	timer *time.Timer
}

// NewDecoder creates a Decoder. modeFn is consulted at the moment a key
// is actually decoded (not when bytes first arrive), so a mode change
// made by an action emitted earlier in the same Feed call is visible to
// the next key in that same buffer. dispatch receives each Feed/Flush
// call's resulting Actions in order.
func NewDecoder(modeFn func() Mode, dispatch func([]Action)) *Decoder {
	return &Decoder{mode: modeFn, dispatch: dispatch}
}

// Feed appends data to the client's input stream and decodes as much of
// it as is unambiguous. Any trailing bytes that might be an incomplete
// escape sequence are held and a flush timer is armed; a subsequent Feed
// before the timer fires simply appends to the same pending buffer.
func (d *Decoder) Feed(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, data...)
	d.drainLocked(false)
}

// Flush forces whatever is currently pending to be decoded even if it
// still looks incomplete, per the re-read timeout. Safe to call with
// nothing pending (no-op).
func (d *Decoder) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drainLocked(true)
}

func (d *Decoder) drainLocked(force bool) {
	var actions []Action
	for len(d.pending) > 0 {
		if d.pasting {
			if !d.consumePasteLocked(&actions) {
				break
			}
			continue
		}
		if !force && mightHaveMoreData(d.pending) {
			break
		}
		if bytes.HasPrefix(d.pending, []byte(pasteStart)) {
			d.pending = d.pending[len(pasteStart):]
			d.pasting = true
			continue
		}
		if isMouseReport(d.pending) {
			m, n, ok := decodeSGRMouse(d.pending)
			raw := append([]byte(nil), d.pending[:n]...)
			d.pending = d.pending[n:]
			if ok {
				actions = append(actions, Action{Kind: ActionMouse, Mouse: m, Bytes: raw})
			}
			continue
		}
		key, n, ok := decodeKey(d.pending)
		if !ok {
			// Malformed/partial-looking sequence a force-flush
			// couldn't make sense of: drop it rather than spin.
			d.pending = d.pending[n:]
			continue
		}
		raw := append([]byte(nil), d.pending[:n]...)
		d.pending = d.pending[n:]
		actions = append(actions, lookup(d.mode(), key, raw)...)
	}

	if len(d.pending) > 0 && !d.pasting {
		d.armTimerLocked()
	} else if d.timer != nil {
		d.timer.Stop()
	}

	if len(actions) > 0 {
		d.dispatch(actions)
	}
}

// consumePasteLocked emits one Write action covering everything in
// d.pending up to (and excluding) the bracketed-paste end marker, if
// the marker has fully arrived; otherwise it holds back enough trailing
// bytes that a split end marker can't be missed and returns false so
// the caller stops draining until more data arrives.
func (d *Decoder) consumePasteLocked(actions *[]Action) bool {
	if idx := bytes.Index(d.pending, []byte(pasteEnd)); idx != -1 {
		if idx > 0 {
			*actions = append(*actions, Action{Kind: ActionWrite, Bytes: append([]byte(nil), d.pending[:idx]...)})
		}
		d.pending = d.pending[idx+len(pasteEnd):]
		d.pasting = false
		return true
	}
	safe := len(d.pending) - (len(pasteEnd) - 1)
	if safe <= 0 {
		return false
	}
	*actions = append(*actions, Action{Kind: ActionWrite, Bytes: append([]byte(nil), d.pending[:safe]...)})
	d.pending = d.pending[safe:]
	return false
}

func (d *Decoder) armTimerLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(flushDelay, d.Flush)
}
