package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/diwise/exhibit-profiles/internal/pkg/application/queries"
	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"nhooyr.io/websocket"
)

const EventResultsUpdated string = "resultsUpdated"

type Event struct {
	Type      string              `json:"type"`
	SessionID string              `json:"sessionId"`
	Timestamp time.Time           `json:"timestamp"`
	Results   exhibit.QueryResult `json:"results"`
}

type subscriber struct {
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

func (s *subscriber) close() {
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusNormalClosure, "")
	}
}

// EventHub keeps the websocket subscribers of every session and pushes
// result updates to them
type EventHub struct {
	mu          sync.Mutex
	subscribers map[string]map[*subscriber]bool
	logger      *slog.Logger
}

func NewEventHub(logger *slog.Logger) *EventHub {
	return &EventHub{
		subscribers: make(map[string]map[*subscriber]bool),
		logger:      logger,
	}
}

// ResultsUpdated is registered as the results handler of every session
func (h *EventHub) ResultsUpdated(ctx context.Context, s *queries.Session, result exhibit.QueryResult) {
	h.Publish(Event{
		Type:      EventResultsUpdated,
		SessionID: s.ID,
		Timestamp: time.Now().UTC(),
		Results:   result,
	})
}

func (h *EventHub) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.logger.Error("failed to marshal event", "session_id", e.SessionID, "err", err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[e.SessionID] {
		select {
		case sub.send <- data:
		default:
			// slow subscribers are dropped
			h.remove(sub)
		}
	}
}

// Subscribers returns the number of subscribers to a session
func (h *EventHub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subscribers[sessionID])
}

// CloseSession disconnects every subscriber to a session
func (h *EventHub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subscribers[sessionID] {
		h.remove(sub)
		sub.close()
	}
}

// Stop disconnects all subscribers
func (h *EventHub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subscribers {
		for sub := range subs {
			h.remove(sub)
			sub.close()
		}
	}
}

func (h *EventHub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[sub.sessionID]
	if !ok {
		subs = make(map[*subscriber]bool)
		h.subscribers[sub.sessionID] = subs
	}

	subs[sub] = true
}

func (h *EventHub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.remove(sub)
}

// remove must be called with h.mu held
func (h *EventHub) remove(sub *subscriber) {
	subs, ok := h.subscribers[sub.sessionID]
	if !ok {
		return
	}

	if _, ok := subs[sub]; ok {
		delete(subs, sub)
		close(sub.send)
	}

	if len(subs) == 0 {
		delete(h.subscribers, sub.sessionID)
	}
}

func NewEventsHandler(sessions *queries.SessionStore, hub *EventHub) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFromRequest(w, r, sessions)
		if !ok {
			return
		}

		logger := logging.GetFromContext(r.Context()).With("session_id", s.ID)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket upgrade failed", "err", err.Error())
			return
		}

		sub := &subscriber{
			sessionID: s.ID,
			conn:      conn,
			send:      make(chan []byte, 16),
		}

		hub.register(sub)
		logger.Debug("events subscriber connected")

		go sub.readPump(hub)
		sub.writePump(hub, logger)
	})
}

func (s *subscriber) writePump(hub *EventHub, logger *slog.Logger) {
	defer func() {
		hub.unregister(s)
		s.close()
	}()

	for message := range s.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := s.conn.Write(ctx, websocket.MessageText, message)
		cancel()

		if err != nil {
			logger.Error("websocket write failed", "err", err.Error())
			return
		}
	}
}

// readPump drains incoming messages to detect disconnects
func (s *subscriber) readPump(hub *EventHub) {
	defer func() {
		hub.unregister(s)
		s.close()
	}()

	for {
		if _, _, err := s.conn.Read(context.Background()); err != nil {
			return
		}
	}
}
