package progress

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	domain "github.com/mohammadpnp/household-import/internal/domain/household"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	subscriberSend = 32
)

// Frame is the message written to websocket subscribers.
type Frame struct {
	Event string                `json:"event"`
	Data  domain.ImportProgress `json:"data"`
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket subscribers per user and delivers progress frames to
// them. A subscriber that cannot keep up is dropped.
type Hub struct {
	logger *logrus.Logger

	mu          sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
}

func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

func (h *Hub) Broadcast(userID, event string, p domain.ImportProgress) {
	payload, err := json.Marshal(Frame{Event: event, Data: p})
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Warn("encode progress frame failed")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[userID] {
		select {
		case sub.send <- payload:
		default:
			h.logger.WithField("user_id", userID).Warn("progress subscriber too slow, closing")
			_ = sub.conn.Close()
		}
	}
}

// Subscribers reports how many live connections a user has.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// Serve registers conn for userID and blocks until the peer goes away.
// initial, when set, is written first so late subscribers see the current state.
func (h *Hub) Serve(userID string, conn *websocket.Conn, initial *domain.ImportProgress) {
	sub := &subscriber{conn: conn, send: make(chan []byte, subscriberSend)}

	if initial != nil {
		payload, err := json.Marshal(Frame{Event: domain.EventImportProgress, Data: *initial})
		if err == nil {
			sub.send <- payload
		}
	}

	h.register(userID, sub)
	log := h.logger.WithField("user_id", userID)
	log.Debug("progress subscriber connected")

	done := make(chan struct{})
	go h.writePump(sub, done)
	h.readPump(sub)

	h.unregister(userID, sub)
	close(done)
	_ = conn.Close()
	log.Debug("progress subscriber disconnected")
}

func (h *Hub) register(userID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[userID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subscribers[userID] = set
	}
	set[sub] = struct{}{}
}

func (h *Hub) unregister(userID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subscribers[userID]
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subscribers, userID)
	}
}

// readPump discards client messages; it only exists to notice closes and
// answer pings.
func (h *Hub) readPump(sub *subscriber) {
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				_ = sub.conn.Close()
				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = sub.conn.Close()
				return
			}
		}
	}
}
