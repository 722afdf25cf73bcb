package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/protocol"
	"github.com/talgya/duck-sorter/internal/vec"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingEvery    = 25 * time.Second
	sseHeartbeat   = 15 * time.Second
)

// handleStream provides an SSE endpoint for round lifecycle events.
// Limits concurrent connections.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.sseConns, 1)
	if current > maxSSEConns {
		atomic.AddInt32(&s.sseConns, -1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.sseConns, -1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Eng.Subscribe(32)
	defer s.Eng.Unsubscribe(ch)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()
	slog.Info("SSE client connected", "remote", clientIP(r))

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "remote", clientIP(r))
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
}

// checkOrigin accepts clients without an Origin header (native clients),
// same-host pages and the CORS allow-list.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if allowedOrigins(s.CORSOrigins)[origin] {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

// wsClient is one WebSocket connection. Only the writer goroutine writes
// to conn.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// queue hands a message to the writer, giving up once the client is gone.
func (c *wsClient) queue(msgType string, payload any) {
	b, err := protocol.Encode(msgType, payload)
	if err != nil {
		slog.Error("encode ws message", "type", msgType, "error", err)
		return
	}
	select {
	case c.send <- b:
	case <-c.done:
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	current := atomic.AddInt32(&s.wsConns, 1)
	defer atomic.AddInt32(&s.wsConns, -1)
	if int(current) > s.MaxWSConns {
		http.Error(w, "too many websocket connections", http.StatusServiceUnavailable)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: s.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 32),
		done: make(chan struct{}),
	}
	slog.Info("websocket client connected", "client", c.id, "remote", clientIP(r))

	events := s.Eng.Subscribe(16)
	writerDone := make(chan struct{})
	go func() {
		s.wsWriter(c, events)
		close(writerDone)
	}()

	s.wsReader(c)

	close(c.done)
	s.Eng.Unsubscribe(events)
	<-writerDone
	slog.Info("websocket client disconnected", "client", c.id)
}

// wsReader handles client messages until the connection fails.
func (s *Server) wsReader(c *wsClient) {
	c.conn.SetReadLimit(1 << 16)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read", "client", c.id, "error", err)
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			c.queue(protocol.MsgError, protocol.Error{Message: err.Error()})
			continue
		}
		s.handleWSMessage(c, env)
	}
}

func (s *Server) handleWSMessage(c *wsClient, env protocol.Envelope) {
	switch env.T {
	case protocol.MsgHello:
		hello, err := protocol.DecodePayload[protocol.Hello](env)
		if err != nil {
			c.queue(protocol.MsgError, protocol.Error{Message: err.Error()})
			return
		}
		slog.Debug("websocket hello", "client", c.id, "name", hello.Name, "v", hello.V)
		c.queue(protocol.MsgWelcome, protocol.Welcome{
			ClientID:    c.id,
			TickHz:      int(s.Eng.Status().TickHz + 0.5),
			BroadcastHz: s.BroadcastHz,
			Tuning:      s.Eng.Tuning.Name,
		})

	case protocol.MsgTarget:
		t, err := protocol.DecodePayload[protocol.Target](env)
		if err != nil {
			c.queue(protocol.MsgError, protocol.Error{Message: err.Error()})
			return
		}
		s.Eng.SetTarget(vec.New(t.X, t.Y))

	case protocol.MsgStart:
		req, err := protocol.DecodePayload[protocol.Start](env)
		if err != nil {
			c.queue(protocol.MsgError, protocol.Error{Message: err.Error()})
			return
		}
		if _, err := s.startRound(req); err != nil {
			c.queue(protocol.MsgError, protocol.Error{Message: err.Error()})
		}

	case protocol.MsgStop:
		s.Eng.Stop()

	default:
		c.queue(protocol.MsgError, protocol.Error{Message: fmt.Sprintf("unknown message type %q", env.T)})
	}
}

// wsWriter owns all writes: queued replies, lifecycle events, state at the
// broadcast rate and keepalive pings.
func (s *Server) wsWriter(c *wsClient, events <-chan engine.Event) {
	broadcast := time.NewTicker(time.Second / time.Duration(s.BroadcastHz))
	defer broadcast.Stop()
	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()

	write := func(b []byte) bool {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
			slog.Debug("websocket write", "client", c.id, "error", err)
			c.conn.Close()
			return false
		}
		return true
	}

	var lastTick uint64
	var lastRound string
	for {
		select {
		case <-c.done:
			return
		case b := <-c.send:
			if !write(b) {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			b, err := protocol.Encode(protocol.MsgEvent, ev)
			if err == nil && !write(b) {
				return
			}
		case <-broadcast.C:
			snap, ok := s.Eng.Snapshot()
			if !ok || (snap.RoundID == lastRound && snap.Tick == lastTick) {
				continue
			}
			lastRound, lastTick = snap.RoundID, snap.Tick
			b, err := protocol.Encode(protocol.MsgState, snap)
			if err == nil && !write(b) {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
