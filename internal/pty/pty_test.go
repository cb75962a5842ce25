package pty

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ambervale/tilemux/internal/geom"
)

type fakeSink struct {
	mu     sync.Mutex
	bytes  []byte
	closed chan geom.PaneID
}

func newFakeSink() *fakeSink {
	return &fakeSink{closed: make(chan geom.PaneID, 4)}
}

func (f *fakeSink) PtyBytes(_ geom.PaneID, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bytes = append(f.bytes, data...)
}

func (f *fakeSink) Render(geom.PaneID) {}

func (f *fakeSink) ClosePane(p geom.PaneID) {
	f.closed <- p
}

func (f *fakeSink) snapshot() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.bytes)
}

func pane(id uint32) geom.PaneID { return geom.PaneID{Kind: geom.PaneKindTerminal, ID: id} }

func TestResolveCommandDefaultsToShell(t *testing.T) {
	args, err := resolveCommand(SpawnRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 1 || args[0] == "" {
		t.Errorf("expected a one-element shell argv, got %v", args)
	}
}

func TestResolveCommandUsesCommandLine(t *testing.T) {
	args, err := resolveCommand(SpawnRequest{CommandLine: []string{"/bin/echo", "hi"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 2 || args[0] != "/bin/echo" || args[1] != "hi" {
		t.Errorf("expected passthrough argv, got %v", args)
	}
}

func TestResolveCommandEditorUnsetFails(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")
	_, err := resolveCommand(SpawnRequest{FileToOpen: "/tmp/x.txt"})
	if err != ErrEditorUnset {
		t.Errorf("expected ErrEditorUnset, got %v", err)
	}
}

func TestResolveCommandFileToOpenUsesEditor(t *testing.T) {
	t.Setenv("EDITOR", "/usr/bin/vim")
	args, err := resolveCommand(SpawnRequest{FileToOpen: "/tmp/x.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 2 || args[0] != "/usr/bin/vim" || args[1] != "/tmp/x.txt" {
		t.Errorf("expected [editor file], got %v", args)
	}
}

func TestSpawnTerminalStreamsBytesAndEmitsCloseOnExit(t *testing.T) {
	sink := newFakeSink()
	m := NewManager("test-session", sink)

	p := pane(1)
	_, err := m.SpawnTerminal(p, SpawnRequest{CommandLine: []string{"/bin/echo", "hello from pty"}}, 24, 80)
	if err != nil {
		t.Fatalf("SpawnTerminal: %v", err)
	}

	select {
	case closed := <-sink.closed:
		if closed != p {
			t.Errorf("ClosePane for wrong pane: %v", closed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ClosePane after natural exit")
	}

	if !strings.Contains(sink.snapshot(), "hello from pty") {
		t.Errorf("expected streamed output to contain the echoed text, got %q", sink.snapshot())
	}
}

func TestClosePaneIsIdempotent(t *testing.T) {
	sink := newFakeSink()
	m := NewManager("test-session", sink)

	p := pane(2)
	_, err := m.SpawnTerminal(p, SpawnRequest{CommandLine: []string{"/bin/sleep", "30"}}, 24, 80)
	if err != nil {
		t.Fatalf("SpawnTerminal: %v", err)
	}

	m.ClosePane(p)
	m.ClosePane(p) // must not block or panic

	select {
	case <-sink.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ClosePane")
	}
}
