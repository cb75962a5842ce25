package input

// Mode mirrors screen.Mode's variant set. Kept as an independent type
// rather than importing internal/screen directly: screen is what drives
// a Decoder, and a screen→input→screen import cycle would result
// otherwise. internal/screen translates between the two with a small
// switch (see modeToInput/modeFromInput in that package).
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

// ActionKind tags which field of Action is meaningful.
type ActionKind int

const (
	// ActionWrite forwards Bytes to the focused pane's pty stdin
	// unmodified. The Normal-mode fallback for any key with no more
	// specific binding.
	ActionWrite ActionKind = iota
	// ActionNamed dispatches Name through the same named-action switch
	// ipc.MsgAction already feeds (screen.Screen.dispatchAction).
	ActionNamed
	// ActionSwitchMode transitions the client to ModeArg.
	ActionSwitchMode
	// ActionNoOp does nothing; the non-Normal-mode fallback for an
	// unbound key (mode_keybind_or_action(Action::NoOp) upstream).
	ActionNoOp
	// ActionMouse carries a decoded SGR mouse report in Mouse.
	ActionMouse
)

// Action is one decoded instruction from the keybinding lookup.
type Action struct {
	Kind    ActionKind
	Name    string
	Bytes   []byte
	ModeArg Mode
	Mouse   Mouse
}
