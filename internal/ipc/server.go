package ipc

import (
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/gorilla/websocket"
)

// ClientID identifies one attached client (CLI, terminal, or web) for
// the lifetime of its connection.
type ClientID uint32

// Viewport is the fan-out key a Render is filtered against: a client
// only receives renders for the tab it's actually looking at, rendered
// at its own size/style.
type Viewport struct {
	Size  Size
	Style string
	TabID uint32
}

// Handler receives client messages as they're decoded off the wire.
// Implemented by internal/screen; kept as an interface here so this
// package never imports the orchestrator it feeds.
type Handler interface {
	HandleClientMsg(id ClientID, msg ClientToServerMsg)
	ClientDisconnected(id ClientID)
}

// frameConn abstracts the two transports a client can arrive over: a
// raw Unix socket stream (framed with our own 4-byte length prefix) or
// a websocket connection (already message-framed, so the length prefix
// is redundant and skipped).
type frameConn interface {
	ReadFrame() ([]byte, error)
	WriteFrame([]byte) error
	Close() error
}

type unixFrameConn struct{ net.Conn }

func (c unixFrameConn) ReadFrame() ([]byte, error) { return ReadFrame(c.Conn) }
func (c unixFrameConn) WriteFrame(b []byte) error  { return WriteFrame(c.Conn, b) }

type wsFrameConn struct{ *websocket.Conn }

func (c wsFrameConn) ReadFrame() ([]byte, error) {
	_, data, err := c.Conn.ReadMessage()
	return data, err
}

func (c wsFrameConn) WriteFrame(b []byte) error {
	return c.Conn.WriteMessage(websocket.BinaryMessage, b)
}

// Client is one attached client's connection and outbound queue.
type Client struct {
	ID       ClientID
	IsWeb    bool
	Viewport Viewport

	conn      frameConn
	sendQueue chan ServerToClientMsg
	done      chan struct{}
}

// sendQueueDepth bounds each client's outbound queue; Screen's renders
// are produced faster than a slow client can drain its socket, and a
// bounded queue is what turns that into backpressure instead of
// unbounded memory growth.
const sendQueueDepth = 64

// Server owns one session's client registry: the Unix socket listener,
// an optional websocket listener, and every attached Client's send
// queue and viewport.
type Server struct {
	sessionName string
	handler     Handler

	mu      sync.Mutex
	clients map[ClientID]*Client
	nextID  ClientID

	listener net.Listener
}

// NewServer creates a Server for sessionName reporting decoded messages
// to handler.
func NewServer(sessionName string, handler Handler) *Server {
	return &Server{
		sessionName: sessionName,
		handler:     handler,
		clients:     make(map[ClientID]*Client),
	}
}

// ListenUnix opens the session's control socket at path (parent
// directory must already exist with 0700 permissions) and starts
// accepting clients in the background. The socket itself is chmod'd to
// 0600 since it's a single-user control channel.
func (s *Server) ListenUnix(path string) error {
	os.Remove(path)
	l, err := net.Listen("unix", path)
	if err != nil {
		return fmt.Errorf("ipc: listen unix %s: %w", path, err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		l.Close()
		return fmt.Errorf("ipc: chmod %s: %w", path, err)
	}
	s.listener = l
	go s.acceptLoop(l, false)
	return nil
}

func (s *Server) acceptLoop(l net.Listener, isWeb bool) {
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		s.addClient(unixFrameConn{conn}, isWeb)
	}
}

// ServeWebsocket upgrades an already-accepted HTTP connection (the web
// server's own listener, out of scope here) to a websocket client
// carrying the same frame payloads.
func (s *Server) ServeWebsocket(conn *websocket.Conn) {
	s.addClient(wsFrameConn{conn}, true)
}

func (s *Server) addClient(conn frameConn, isWeb bool) *Client {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	c := &Client{
		ID:        id,
		IsWeb:     isWeb,
		conn:      conn,
		sendQueue: make(chan ServerToClientMsg, sendQueueDepth),
		done:      make(chan struct{}),
	}
	s.clients[id] = c
	s.mu.Unlock()

	go s.readLoop(c)
	go s.writeLoop(c)
	return c
}

func (s *Server) readLoop(c *Client) {
	defer s.removeClient(c)
	for {
		payload, err := c.conn.ReadFrame()
		if err != nil {
			return
		}
		msg, err := UnmarshalClientToServerMsg(payload)
		if err != nil {
			continue
		}
		s.handler.HandleClientMsg(c.ID, msg)
	}
}

func (s *Server) writeLoop(c *Client) {
	for {
		select {
		case msg, ok := <-c.sendQueue:
			if !ok {
				return
			}
			if err := c.conn.WriteFrame(msg.Marshal()); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) removeClient(c *Client) {
	s.mu.Lock()
	if _, ok := s.clients[c.ID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.clients, c.ID)
	s.mu.Unlock()

	close(c.done)
	c.conn.Close()
	s.handler.ClientDisconnected(c.ID)
}

// Send enqueues msg for one client. Blocks if that client's queue is
// full, providing the backpressure the per-client send-queue is meant
// to apply to a slow reader without starving other clients.
func (s *Server) Send(id ClientID, msg ServerToClientMsg) {
	s.mu.Lock()
	c, ok := s.clients[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case c.sendQueue <- msg:
	case <-c.done:
	}
}

// SetViewport records a client's current viewport so future Broadcast
// calls can fan renders out to only the clients looking at a given tab.
func (s *Server) SetViewport(id ClientID, vp Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[id]; ok {
		c.Viewport = vp
	}
}

// Broadcast enqueues msg for every attached client matching filter.
// Render fan-out calls this with a filter keyed on TabID so a render
// for a background tab never reaches a client looking at another one.
func (s *Server) Broadcast(msg ServerToClientMsg, filter func(Viewport) bool) {
	s.mu.Lock()
	targets := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		if filter == nil || filter(c.Viewport) {
			targets = append(targets, c)
		}
	}
	s.mu.Unlock()

	for _, c := range targets {
		select {
		case c.sendQueue <- msg:
		case <-c.done:
		}
	}
}

// ForceDetach sends the client an Exit{ForceDetached} and removes it,
// per the "second writer attaches to an occupied slot with force set"
// rule.
func (s *Server) ForceDetach(id ClientID) {
	s.mu.Lock()
	c, ok := s.clients[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case c.sendQueue <- ServerToClientMsg{Kind: MsgExit, ExitReason: ExitForceDetached}:
	default:
	}
	s.removeClient(c)
}

// Close shuts the listener and every attached client down.
func (s *Server) Close() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.removeClient(c)
	}
}
