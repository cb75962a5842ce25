package ipc

import (
	"net"
	"path/filepath"
	"testing"
	"time"
)

type fakeHandler struct {
	received chan ClientToServerMsg
	gone     chan ClientID
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{received: make(chan ClientToServerMsg, 4), gone: make(chan ClientID, 4)}
}

func (f *fakeHandler) HandleClientMsg(_ ClientID, msg ClientToServerMsg) { f.received <- msg }
func (f *fakeHandler) ClientDisconnected(id ClientID)                   { f.gone <- id }

func TestServerUnixRoundTrip(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "tilemux")
	h := newFakeHandler()
	s := NewServer("test-session", h)
	if err := s.ListenUnix(sockPath); err != nil {
		t.Fatalf("ListenUnix: %v", err)
	}
	defer s.Close()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	msg := ClientToServerMsg{Kind: MsgClientExited}
	if err := WriteFrame(conn, msg.Marshal()); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	select {
	case got := <-h.received:
		if got.Kind != MsgClientExited {
			t.Errorf("Kind = %v, want MsgClientExited", got.Kind)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the server to decode the client message")
	}

	// Give addClient's registration a moment, then exercise the
	// server->client direction via Broadcast.
	time.Sleep(50 * time.Millisecond)
	s.Broadcast(ServerToClientMsg{Kind: MsgRender, Content: "frame"}, nil)

	payload, err := ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	got, err := UnmarshalServerToClientMsg(payload)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Content != "frame" {
		t.Errorf("Content = %q, want %q", got.Content, "frame")
	}
}

func TestServerForceDetach(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "tilemux")
	h := newFakeHandler()
	s := NewServer("test-session", h)
	if err := s.ListenUnix(sockPath); err != nil {
		t.Fatalf("ListenUnix: %v", err)
	}
	defer s.Close()

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)
	s.mu.Lock()
	var id ClientID
	for cid := range s.clients {
		id = cid
	}
	s.mu.Unlock()

	s.ForceDetach(id)

	select {
	case gone := <-h.gone:
		if gone != id {
			t.Errorf("ClientDisconnected id = %v, want %v", gone, id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ClientDisconnected")
	}
}
