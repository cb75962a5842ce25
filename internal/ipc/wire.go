// Package ipc implements tilemux's client/server wire protocol: a
// 4-byte little-endian length prefix followed by a protobuf-shaped
// payload, in both directions, over a Unix socket (and optionally a
// websocket for remote/web clients).
package ipc

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxFrameSize guards against a corrupt or hostile length prefix turning
// into an unbounded allocation.
const maxFrameSize = 64 * 1024 * 1024

// ReadFrame reads one length-prefixed frame: 4 bytes little-endian
// length N, then exactly N bytes of payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBytes [4]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	if n > maxFrameSize {
		return nil, fmt.Errorf("ipc: frame length %d exceeds max %d", n, maxFrameSize)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes payload as one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(payload)))
	if _, err := w.Write(lenBytes[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
