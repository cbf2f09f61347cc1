// Package stream serves a read-only spectator feed of arena snapshots over
// websockets.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/outbreak/config"
	"github.com/pthm-cable/outbreak/telemetry"
)

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans encoded snapshots out to connected spectators. Publish never
// blocks the simulation: when a queue is full the frame is dropped.
type Hub struct {
	ticksPerFrame int32
	buffer        int
	frames        chan []byte

	mu        sync.Mutex
	clients   map[*client]struct{}
	last      []byte
	lastTick  int32
	published bool
	dropped   int
}

// NewHub creates a hub from the stream config.
func NewHub(cfg config.StreamConfig) *Hub {
	return &Hub{
		ticksPerFrame: int32(max(cfg.TicksPerFrame, 1)),
		buffer:        max(cfg.Buffer, 1),
		frames:        make(chan []byte, max(cfg.Buffer, 1)),
		clients:       make(map[*client]struct{}),
	}
}

// Wants reports whether a snapshot for tick would be published, so callers
// can skip building snapshots that would be thrown away.
func (h *Hub) Wants(tick int32) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.published || tick-h.lastTick >= h.ticksPerFrame
}

// Publish queues a snapshot for broadcast if at least TicksPerFrame ticks
// have passed since the last published one.
func (h *Hub) Publish(s *telemetry.Snapshot) {
	if !h.Wants(s.Tick) {
		return
	}
	data, err := s.Encode()
	if err != nil {
		slog.Error("failed to encode snapshot", "tick", s.Tick, "error", err)
		return
	}

	h.mu.Lock()
	h.last = data
	h.lastTick = s.Tick
	h.published = true
	h.mu.Unlock()

	select {
	case h.frames <- data:
	default:
		h.mu.Lock()
		h.dropped++
		h.mu.Unlock()
	}
}

// Run broadcasts queued frames until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case frame := <-h.frames:
			h.broadcast(frame)
		}
	}
}

func (h *Hub) broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.dropped++
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of frames dropped because a queue was full.
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// ServeHTTP upgrades the request to a websocket and streams frames to it.
// The latest frame, if any, is sent first.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.buffer)}
	h.register(c)
	slog.Info("spectator connected", "remote", conn.RemoteAddr().String(), "clients", h.Clients())

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for frame := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			slog.Debug("spectator write failed", "error", err)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// readLoop discards incoming messages; the feed is read-only. It returns
// when the connection closes.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.unregister(c)
		slog.Info("spectator disconnected", "remote", c.conn.RemoteAddr().String())
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Serve listens on addr and serves the hub at path until ctx is cancelled.
func Serve(ctx context.Context, addr, path string, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle(path, h)

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("spectator stream listening", "addr", addr, "path", path)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("stream server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stream shutdown: %w", err)
		}
		return nil
	}
}
