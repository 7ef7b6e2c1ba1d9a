package progress

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Stage names a step of a session.
type Stage string

const (
	StageStarted Stage = "started"
	StageLoading Stage = "loading"
	StageChunk   Stage = "chunk"
	StageLoaded  Stage = "loaded"
	StageView    Stage = "view"
	StageDone    Stage = "done"
	StageFailed  Stage = "failed"
)

// Event is one progress report.
type Event struct {
	Session string    `json:"session"`
	Stage   Stage     `json:"stage"`
	View    string    `json:"view,omitempty"`
	Done    int       `json:"done,omitempty"`
	Total   int       `json:"total,omitempty"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// NewSessionID returns a fresh session id.
func NewSessionID() string {
	return uuid.NewString()
}

// ValidSessionID reports whether id looks like a session id.
func ValidSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Hub fans events out to websocket subscribers by session.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	closed bool

	upgrader     websocket.Upgrader
	pingInterval time.Duration
	writeWait    time.Duration
	bufferSize   int
	logger       *zap.Logger
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
	done chan struct{}
	once sync.Once
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithPingInterval sets how often idle sockets are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) { h.pingInterval = d }
}

// WithBufferSize sets the number of events queued per subscriber before
// further events are dropped.
func WithBufferSize(n int) Option {
	return func(h *Hub) { h.bufferSize = n }
}

// NewHub creates a hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:         make(map[string]map[*subscriber]struct{}),
		pingInterval: 30 * time.Second,
		writeWait:    5 * time.Second,
		bufferSize:   64,
		logger:       zap.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Publish queues ev for the subscribers of its session. It never blocks;
// a subscriber whose queue is full misses the event.
func (h *Hub) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.Session] {
		select {
		case s.send <- ev:
		default:
			h.logger.Debug("progress event dropped",
				zap.String("session", ev.Session),
				zap.String("stage", string(ev.Stage)))
		}
	}
}

// Subscribers returns the number of sockets subscribed to session.
func (h *Hub) Subscribers(session string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[session])
}

// ServeHTTP upgrades the request to a websocket subscribed to the session
// named by the session query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session := r.URL.Query().Get("session")
	if !ValidSessionID(session) {
		http.Error(w, "missing or malformed session id", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	s := &subscriber{
		conn: conn,
		send: make(chan Event, h.bufferSize),
		done: make(chan struct{}),
	}
	if !h.add(session, s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.writeWait))
		_ = conn.Close()
		return
	}
	h.logger.Debug("progress subscriber joined", zap.String("session", session))

	go h.writeLoop(s)
	h.readLoop(s)

	h.remove(session, s)
	s.stop()
	_ = conn.Close()
	h.logger.Debug("progress subscriber left", zap.String("session", session))
}

func (h *Hub) add(session string, s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.subs[session] == nil {
		h.subs[session] = make(map[*subscriber]struct{})
	}
	h.subs[session][s] = struct{}{}
	return true
}

func (h *Hub) remove(session string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[session], s)
	if len(h.subs[session]) == 0 {
		delete(h.subs, session)
	}
}

// readLoop discards client messages and keeps the read deadline moving
// with every pong. It returns when the socket fails or closes.
func (h *Hub) readLoop(s *subscriber) {
	pongWait := 2 * h.pingInterval
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(s *subscriber) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeWait)); err != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*subscriber
	for _, set := range h.subs {
		for s := range set {
			all = append(all, s)
		}
	}
	h.mu.Unlock()

	for _, s := range all {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(h.writeWait))
		_ = s.conn.Close()
	}
}
