// Package input implements spec.md §4.6's client input pipeline: it
// reassembles client stdin bytes that may arrive fragmented across
// separate reads (the might_have_more_data rule), recognizes bracketed
// paste and passes its payload through uninterpreted, decodes the
// reassembled bytes into a Key or Mouse event, and looks the event up
// in a mode-keyed keybinding table to produce zero or more Actions.
//
// Decoding happens server-side, fed by the raw bytes a client forwards
// in ipc.MsgKey — internal/screen owns one Decoder per attached client
// and turns its Actions into ScreenInstructions via Screen.Enqueue.
package input
