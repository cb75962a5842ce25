package screen

import "github.com/ambervale/tilemux/internal/input"

// Mode is a client's current input mode. It gates which Actions the
// input pipeline may dispatch and is broadcast to plugins as ModeUpdate
// on every transition.
type Mode int

const (
	ModeNormal Mode = iota
	ModePane
	ModeResize
	ModeScroll
	ModeTab
	ModeRenameTab
	ModeRenamePane
	ModeSearch
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "Normal"
	case ModePane:
		return "Pane"
	case ModeResize:
		return "Resize"
	case ModeScroll:
		return "Scroll"
	case ModeTab:
		return "Tab"
	case ModeRenameTab:
		return "RenameTab"
	case ModeRenamePane:
		return "RenamePane"
	case ModeSearch:
		return "Search"
	default:
		return "Unknown"
	}
}

// modeToInput translates a screen.Mode into the independent input.Mode
// type a client's Decoder is driven by. The two enums share the same
// variant set in the same order (see internal/input/mode.go), but the
// conversion stays an explicit switch rather than a bare int cast so a
// future divergence between the two fails loudly instead of silently.
func modeToInput(m Mode) input.Mode {
	switch m {
	case ModeNormal:
		return input.ModeNormal
	case ModePane:
		return input.ModePane
	case ModeResize:
		return input.ModeResize
	case ModeScroll:
		return input.ModeScroll
	case ModeTab:
		return input.ModeTab
	case ModeRenameTab:
		return input.ModeRenameTab
	case ModeRenamePane:
		return input.ModeRenamePane
	case ModeSearch:
		return input.ModeSearch
	default:
		return input.ModeNormal
	}
}

// modeFromInput is modeToInput's inverse, used when an ActionSwitchMode
// needs to become an InstrUpdateMode instruction.
func modeFromInput(m input.Mode) Mode {
	switch m {
	case input.ModeNormal:
		return ModeNormal
	case input.ModePane:
		return ModePane
	case input.ModeResize:
		return ModeResize
	case input.ModeScroll:
		return ModeScroll
	case input.ModeTab:
		return ModeTab
	case input.ModeRenameTab:
		return ModeRenameTab
	case input.ModeRenamePane:
		return ModeRenamePane
	case input.ModeSearch:
		return ModeSearch
	default:
		return ModeNormal
	}
}
