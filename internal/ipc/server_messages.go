package ipc

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ServerMsgKind tags which ServerToClientMsg variant a message carries.
type ServerMsgKind uint8

const (
	MsgRender ServerMsgKind = iota + 1
	MsgUnblockInputThread
	MsgExit
	MsgConnected
	MsgLog
	MsgLogError
	MsgSwitchSession
	MsgUnblockCliPipeInput
	MsgCliPipeOutput
	MsgQueryTerminalSize
	MsgStartWebServer
	MsgRenamedSession
	MsgConfigFileUpdated
)

// ExitReason mirrors the original's exit_reason enum.
type ExitReason uint8

const (
	ExitNormal ExitReason = iota
	ExitNormalDetached
	ExitForceDetached
	ExitCannotAttach
	ExitDisconnect
	ExitWebClientsForbidden
	ExitCustomStatus
	ExitError
)

// ServerToClientMsg is the server→client wire message.
type ServerToClientMsg struct {
	Kind ServerMsgKind

	Content string // Render

	ExitReason       ExitReason // Exit
	ExitCustomStatus int32
	ExitError        string

	Lines []string // Log / LogError

	ConnectToSession string // SwitchSession

	PipeName string // UnblockCliPipeInput / CliPipeOutput
	Output   string // CliPipeOutput

	BaseURL string // StartWebServer / WebServerStarted echo

	Name string // RenamedSession
}

// Marshal encodes m as a protobuf-shaped message.
func (m ServerToClientMsg) Marshal() []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Kind))

	if m.Content != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Content)
	}
	if m.Kind == MsgExit {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.ExitReason))
		if m.ExitReason == ExitCustomStatus {
			b = protowire.AppendTag(b, 4, protowire.VarintType)
			b = protowire.AppendVarint(b, uint64(int64(m.ExitCustomStatus)))
		}
		if m.ExitReason == ExitError && m.ExitError != "" {
			b = protowire.AppendTag(b, 5, protowire.BytesType)
			b = protowire.AppendString(b, m.ExitError)
		}
	}
	for _, line := range m.Lines {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendString(b, line)
	}
	if m.ConnectToSession != "" {
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendString(b, m.ConnectToSession)
	}
	if m.PipeName != "" {
		b = protowire.AppendTag(b, 8, protowire.BytesType)
		b = protowire.AppendString(b, m.PipeName)
	}
	if m.Output != "" {
		b = protowire.AppendTag(b, 9, protowire.BytesType)
		b = protowire.AppendString(b, m.Output)
	}
	if m.BaseURL != "" {
		b = protowire.AppendTag(b, 10, protowire.BytesType)
		b = protowire.AppendString(b, m.BaseURL)
	}
	if m.Name != "" {
		b = protowire.AppendTag(b, 11, protowire.BytesType)
		b = protowire.AppendString(b, m.Name)
	}
	return b
}

// UnmarshalServerToClientMsg decodes a wire payload produced by Marshal.
func UnmarshalServerToClientMsg(data []byte) (ServerToClientMsg, error) {
	var m ServerToClientMsg
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
			switch num {
			case 1:
				m.Kind = ServerMsgKind(v)
			case 3:
				m.ExitReason = ExitReason(v)
			case 4:
				m.ExitCustomStatus = int32(int64(v))
			}
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return m, fmt.Errorf("ipc: malformed bytes: %w", protowire.ParseError(n))
			}
			data = data[n:]
			switch num {
			case 2:
				m.Content = string(v)
			case 5:
				m.ExitError = string(v)
			case 6:
				m.Lines = append(m.Lines, string(v))
			case 7:
				m.ConnectToSession = string(v)
			case 8:
				m.PipeName = string(v)
			case 9:
				m.Output = string(v)
			case 10:
				m.BaseURL = string(v)
			case 11:
				m.Name = string(v)
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
