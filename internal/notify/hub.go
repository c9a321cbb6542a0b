package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guttosm/tradeflow/internal/logger"
)

const (
	writeTimeout = 5 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
	sendBuffer   = 16
)

// Hub pushes events to websocket subscribers. A subscriber registers under a
// user ID and receives every event that lists that ID as a recipient.
type Hub struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]map[*subscriber]struct{}
}

type subscriber struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe upgrades the request and keeps the connection registered for
// userID until the client goes away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	sub := &subscriber{userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(sub)

	go h.writeLoop(sub)
	go h.readLoop(sub)
	return nil
}

// Subscribers returns the number of live connections for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// Notify queues ev for every connection of every recipient. Slow
// subscribers whose buffer is full miss the event instead of blocking the
// caller.
func (h *Hub) Notify(_ context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range ev.Recipients {
		for sub := range h.conns[id] {
			select {
			case sub.send <- payload:
			default:
				l := logger.For("notify.ws")
				l.Warn().Str("user_id", id).Str("event", string(ev.Type)).Msg("subscriber buffer full, event dropped")
			}
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0)
	for _, set := range h.conns {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	h.conns = make(map[string]map[*subscriber]struct{})
	h.mu.Unlock()

	for _, sub := range subs {
		sub.close()
	}
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[sub.userID] == nil {
		h.conns[sub.userID] = make(map[*subscriber]struct{})
	}
	h.conns[sub.userID][sub] = struct{}{}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if set, ok := h.conns[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.conns, sub.userID)
		}
	}
	h.mu.Unlock()
	sub.close()
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.send)
		_ = s.conn.Close()
	})
}

// readLoop drains client frames so control messages are processed, and
// unregisters the subscriber when the connection drops.
func (h *Hub) readLoop(sub *subscriber) {
	defer h.remove(sub)

	_ = sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
