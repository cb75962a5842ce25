package ipc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ClientMsgKind tags which ClientToServerMsg variant a message carries.
// This stands in for a hand-rolled `oneof`: field 1 on the wire is
// always the kind, and only the fields a given kind actually uses are
// populated (and encoded) on the rest of the struct.
type ClientMsgKind uint8

const (
	MsgFirstClientConnected ClientMsgKind = iota + 1
	MsgAttachClient
	MsgAttachWatcherClient
	MsgDetachSession
	MsgTerminalPixelDimensions
	MsgBackgroundColor
	MsgForegroundColor
	MsgColorRegisters
	MsgTerminalResize
	MsgAction
	MsgKey
	MsgClientExited
	MsgKillSession
	MsgConnStatus
	MsgWebServerStarted
	MsgFailedToStartWebServer
)

// Size is a terminal/pane size in cells.
type Size struct {
	Rows uint32
	Cols uint32
}

// PixelDimensions mirrors the original's optional text-area/cell pixel
// sizes, reported by clients that can measure their font metrics.
type PixelDimensions struct {
	TextAreaWidth, TextAreaHeight uint32
	CharCellWidth, CharCellHeight uint32
}

// ColorRegister is one entry of a terminal OSC color-register report.
type ColorRegister struct {
	Index uint32
	Color string
}

// ClientToServerMsg is the client→server wire message. Only the fields
// relevant to Kind are meaningful; see the ClientMsgKind constants.
type ClientToServerMsg struct {
	Kind ClientMsgKind

	IsWebClient        bool
	TabPositionToFocus int32
	PaneToFocus        uint32
	HasPaneToFocus     bool

	TerminalSize Size

	ClientIDs []uint32

	PixelDims PixelDimensions

	Hex string

	ColorRegisters []ColorRegister

	NewSize Size

	ActionName  string
	ActionBytes []byte
	TerminalID  uint32
	HasTerminal bool
	ClientID    uint32
	HasClient   bool
	IsCLIClient bool

	KeyName                 string
	RawBytes                []byte
	IsKittyKeyboardProtocol bool
}

// Marshal encodes m as a protobuf-shaped message. Field numbers are
// stable across the whole variant set so unknown fields on either end
// can be skipped per the wire contract's forward-compatibility rule.
func (m ClientToServerMsg) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Kind))

	b = appendBool(b, 2, m.IsWebClient)
	if m.TabPositionToFocus != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(m.TabPositionToFocus)))
	}
	if m.HasPaneToFocus {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.PaneToFocus))
	}
	b = appendSize(b, 5, m.TerminalSize)
	for _, id := range m.ClientIDs {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(id))
	}
	b = appendPixelDims(b, 7, m.PixelDims)
	if m.Hex != "" {
		b = protowire.AppendTag(b, 8, protowire.BytesType)
		b = protowire.AppendString(b, m.Hex)
	}
	for _, cr := range m.ColorRegisters {
		b = protowire.AppendTag(b, 9, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeColorRegister(cr))
	}
	b = appendSize(b, 10, m.NewSize)
	if m.ActionName != "" {
		b = protowire.AppendTag(b, 11, protowire.BytesType)
		b = protowire.AppendString(b, m.ActionName)
	}
	if len(m.ActionBytes) > 0 {
		b = protowire.AppendTag(b, 12, protowire.BytesType)
		b = protowire.AppendBytes(b, m.ActionBytes)
	}
	if m.HasTerminal {
		b = protowire.AppendTag(b, 13, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.TerminalID))
	}
	if m.HasClient {
		b = protowire.AppendTag(b, 14, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.ClientID))
	}
	b = appendBool(b, 15, m.IsCLIClient)
	if m.KeyName != "" {
		b = protowire.AppendTag(b, 16, protowire.BytesType)
		b = protowire.AppendString(b, m.KeyName)
	}
	if len(m.RawBytes) > 0 {
		b = protowire.AppendTag(b, 17, protowire.BytesType)
		b = protowire.AppendBytes(b, m.RawBytes)
	}
	b = appendBool(b, 18, m.IsKittyKeyboardProtocol)
	return b
}

// UnmarshalClientToServerMsg decodes a wire payload produced by Marshal,
// skipping any field numbers it doesn't recognize (forward compat).
func UnmarshalClientToServerMsg(data []byte) (ClientToServerMsg, error) {
	var m ClientToServerMsg
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return m, fmt.Errorf("ipc: malformed tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return m, fmt.Errorf("ipc: malformed varint: %w", protowire.ParseError(n))
			}
			data = data[n:]
			applyClientVarint(&m, num, v)
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("ipc: malformed bytes: %w", protowire.ParseError(n))
			}
			data = data[n:]
			if err := applyClientBytes(&m, num, v); err != nil {
				return m, err
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return m, fmt.Errorf("ipc: malformed field: %w", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return m, nil
}

func applyClientVarint(m *ClientToServerMsg, num protowire.Number, v uint64) {
	switch num {
	case 1:
		m.Kind = ClientMsgKind(v)
	case 2:
		m.IsWebClient = v != 0
	case 3:
		m.TabPositionToFocus = int32(int64(v))
	case 4:
		m.HasPaneToFocus = true
		m.PaneToFocus = uint32(v)
	case 6:
		m.ClientIDs = append(m.ClientIDs, uint32(v))
	case 13:
		m.HasTerminal = true
		m.TerminalID = uint32(v)
	case 14:
		m.HasClient = true
		m.ClientID = uint32(v)
	case 15:
		m.IsCLIClient = v != 0
	case 18:
		m.IsKittyKeyboardProtocol = v != 0
	}
}

func applyClientBytes(m *ClientToServerMsg, num protowire.Number, v []byte) error {
	switch num {
	case 5:
		sz, err := decodeSize(v)
		if err != nil {
			return err
		}
		m.TerminalSize = sz
	case 7:
		pd, err := decodePixelDims(v)
		if err != nil {
			return err
		}
		m.PixelDims = pd
	case 8:
		m.Hex = string(v)
	case 9:
		cr, err := decodeColorRegister(v)
		if err != nil {
			return err
		}
		m.ColorRegisters = append(m.ColorRegisters, cr)
	case 10:
		sz, err := decodeSize(v)
		if err != nil {
			return err
		}
		m.NewSize = sz
	case 11:
		m.ActionName = string(v)
	case 12:
		m.ActionBytes = append([]byte(nil), v...)
	case 16:
		m.KeyName = string(v)
	case 17:
		m.RawBytes = append([]byte(nil), v...)
	}
	return nil
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendSize(b []byte, num protowire.Number, s Size) []byte {
	if s.Rows == 0 && s.Cols == 0 {
		return b
	}
	var nested []byte
	nested = protowire.AppendTag(nested, 1, protowire.VarintType)
	nested = protowire.AppendVarint(nested, uint64(s.Rows))
	nested = protowire.AppendTag(nested, 2, protowire.VarintType)
	nested = protowire.AppendVarint(nested, uint64(s.Cols))
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, nested)
}

func decodeSize(v []byte) (Size, error) {
	var s Size
	for len(v) > 0 {
		num, typ, n := protowire.ConsumeTag(v)
		if n < 0 {
			return s, fmt.Errorf("ipc: malformed Size: %w", protowire.ParseError(n))
		}
		v = v[n:]
		val, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return s, fmt.Errorf("ipc: malformed Size field: %w", protowire.ParseError(n))
		}
		v = v[n:]
		switch num {
		case 1:
			s.Rows = uint32(val)
		case 2:
			s.Cols = uint32(val)
		}
		_ = typ
	}
	return s, nil
}

func appendPixelDims(b []byte, num protowire.Number, p PixelDimensions) []byte {
	if p == (PixelDimensions{}) {
		return b
	}
	var nested []byte
	fields := []uint32{p.TextAreaWidth, p.TextAreaHeight, p.CharCellWidth, p.CharCellHeight}
	for i, f := range fields {
		nested = protowire.AppendTag(nested, protowire.Number(i+1), protowire.VarintType)
		nested = protowire.AppendVarint(nested, uint64(f))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, nested)
}

func decodePixelDims(v []byte) (PixelDimensions, error) {
	var p PixelDimensions
	for len(v) > 0 {
		num, _, n := protowire.ConsumeTag(v)
		if n < 0 {
			return p, fmt.Errorf("ipc: malformed PixelDimensions: %w", protowire.ParseError(n))
		}
		v = v[n:]
		val, n := protowire.ConsumeVarint(v)
		if n < 0 {
			return p, fmt.Errorf("ipc: malformed PixelDimensions field: %w", protowire.ParseError(n))
		}
		v = v[n:]
		switch num {
		case 1:
			p.TextAreaWidth = uint32(val)
		case 2:
			p.TextAreaHeight = uint32(val)
		case 3:
			p.CharCellWidth = uint32(val)
		case 4:
			p.CharCellHeight = uint32(val)
		}
	}
	return p, nil
}

func encodeColorRegister(cr ColorRegister) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(cr.Index))
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, cr.Color)
	return b
}

func decodeColorRegister(v []byte) (ColorRegister, error) {
	var cr ColorRegister
	for len(v) > 0 {
		num, typ, n := protowire.ConsumeTag(v)
		if n < 0 {
			return cr, fmt.Errorf("ipc: malformed ColorRegister: %w", protowire.ParseError(n))
		}
		v = v[n:]
		switch typ {
		case protowire.VarintType:
			val, n := protowire.ConsumeVarint(v)
			if n < 0 {
				return cr, fmt.Errorf("ipc: malformed ColorRegister field: %w", protowire.ParseError(n))
			}
			v = v[n:]
			if num == 1 {
				cr.Index = uint32(val)
			}
		case protowire.BytesType:
			val, n := protowire.ConsumeBytes(v)
			if n < 0 {
				return cr, fmt.Errorf("ipc: malformed ColorRegister field: %w", protowire.ParseError(n))
			}
			v = v[n:]
			if num == 2 {
				cr.Color = string(val)
			}
		}
	}
	return cr, nil
}
