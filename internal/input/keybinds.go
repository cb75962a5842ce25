package input

// defaultBinds is the mode × key → []Action lookup table, grounded on
// original_source's stdin command set (ctrl-p/ctrl-r/ctrl-s/ctrl-t enter
// Pane/Resize/Scroll/Tab mode from Normal; alt-h/alt-l move focus
// directly in Normal mode) and its keybinds.rs per-mode defaults (hjkl +
// arrows inside each mode, Esc returns to Normal). Only bindings that
// correspond to an action internal/screen actually dispatches are
// included; keys with no real effect downstream aren't given a named
// binding just to look complete.
var defaultBinds = map[Mode]map[Key][]Action{
	ModeNormal: {
		{Code: KeyChar, Char: 'h', Alt: true}: {named("MoveFocusLeft")},
		{Code: KeyChar, Char: 'l', Alt: true}: {named("MoveFocusRight")},
		{Code: KeyChar, Char: 'p', Ctrl: true}: {switchMode(ModePane)},
		{Code: KeyChar, Char: 's', Ctrl: true}: {switchMode(ModeScroll)},
		{Code: KeyChar, Char: 'r', Ctrl: true}: {switchMode(ModeResize)},
		{Code: KeyChar, Char: 't', Ctrl: true}: {switchMode(ModeTab)},
	},
	ModePane: {
		{Code: KeyChar, Char: 'h'}:  {named("MoveFocusLeft")},
		{Code: KeyChar, Char: 'j'}:  {named("MoveFocusDown")},
		{Code: KeyChar, Char: 'k'}:  {named("MoveFocusUp")},
		{Code: KeyChar, Char: 'l'}:  {named("MoveFocusRight")},
		{Code: KeyLeft}:             {named("MoveFocusLeft")},
		{Code: KeyDown}:             {named("MoveFocusDown")},
		{Code: KeyUp}:               {named("MoveFocusUp")},
		{Code: KeyRight}:            {named("MoveFocusRight")},
		{Code: KeyChar, Char: 'n'}:  {named("NewPane")},
		{Code: KeyChar, Char: 'd'}:  {named("NewPaneVertical")},
		{Code: KeyChar, Char: 'r'}:  {named("NewPaneHorizontal")},
		{Code: KeyChar, Char: 'x'}:  {named("CloseFocus")},
		{Code: KeyChar, Char: 'f'}:  {named("ToggleFullscreen")},
		{Code: KeyEsc}:              {switchMode(ModeNormal)},
		{Code: KeyChar, Char: 'g', Ctrl: true}: {switchMode(ModeNormal)},
	},
	ModeResize: {
		{Code: KeyChar, Char: 'h'}:  {named("Resize::Increase::Left")},
		{Code: KeyChar, Char: 'j'}:  {named("Resize::Increase::Down")},
		{Code: KeyChar, Char: 'k'}:  {named("Resize::Increase::Up")},
		{Code: KeyChar, Char: 'l'}:  {named("Resize::Increase::Right")},
		{Code: KeyLeft}:             {named("Resize::Increase::Left")},
		{Code: KeyDown}:             {named("Resize::Increase::Down")},
		{Code: KeyUp}:               {named("Resize::Increase::Up")},
		{Code: KeyRight}:            {named("Resize::Increase::Right")},
		{Code: KeyEsc}:              {switchMode(ModeNormal)},
		{Code: KeyChar, Char: 'g', Ctrl: true}: {switchMode(ModeNormal)},
	},
	ModeTab: {
		{Code: KeyChar, Char: 'h'}:  {named("GoToPreviousTab")},
		{Code: KeyChar, Char: 'l'}:  {named("GoToNextTab")},
		{Code: KeyChar, Char: 'n'}:  {named("NewTab")},
		{Code: KeyChar, Char: 'x'}:  {named("CloseTab")},
		{Code: KeyEsc}:              {switchMode(ModeNormal)},
		{Code: KeyChar, Char: 'g', Ctrl: true}: {switchMode(ModeNormal)},
	},
	ModeScroll: {
		{Code: KeyEsc}:              {switchMode(ModeNormal)},
		{Code: KeyChar, Char: 'g', Ctrl: true}: {switchMode(ModeNormal)},
	},
}

func named(name string) Action      { return Action{Kind: ActionNamed, Name: name} }
func switchMode(m Mode) Action       { return Action{Kind: ActionSwitchMode, ModeArg: m} }

// lookup returns the actions bound to key in mode. Normal mode falls
// back to writing the key's raw bytes (Action::Write(input) upstream);
// every other mode falls back to NoOp, matching key_to_actions'
// mode_keybind_or_action default.
func lookup(mode Mode, key Key, raw []byte) []Action {
	if binds, ok := defaultBinds[mode]; ok {
		if actions, ok := binds[key]; ok {
			return actions
		}
	}
	if mode == ModeNormal {
		return []Action{{Kind: ActionWrite, Bytes: raw}}
	}
	return []Action{{Kind: ActionNoOp}}
}
