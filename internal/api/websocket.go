/*-------------------------------------------------------------------------
 *
 * websocket.go
 *    WebSocket event stream for the KnowledgeDesk API
 *
 * Streams lifecycle events to connected clients so approval UIs can
 * react to drafted actions and execution outcomes without polling.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/api/websocket.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true /* Allow all origins in development */
	},
	HandshakeTimeout: 10 * time.Second,
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

/* EventStream fans lifecycle events out to WebSocket clients */
type EventStream struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan events.Event
}

/* NewEventStream creates an event stream attached to the broker */
func NewEventStream(broker *events.Broker) *EventStream {
	stream := &EventStream{
		clients: make(map[*websocket.Conn]chan events.Event),
	}
	broker.SubscribeAll(func(ctx context.Context, event events.Event) {
		stream.broadcast(event)
	})
	return stream
}

func (s *EventStream) broadcast(event events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.clients {
		select {
		case ch <- event:
		default:
			/* Slow clients drop events rather than block the pipeline */
		}
	}
}

func (s *EventStream) add(conn *websocket.Conn) chan events.Event {
	ch := make(chan events.Event, 64)
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()
	return ch
}

func (s *EventStream) remove(conn *websocket.Conn) {
	s.mu.Lock()
	if ch, ok := s.clients[conn]; ok {
		close(ch)
		delete(s.clients, conn)
	}
	s.mu.Unlock()
	conn.Close()
}

/* Handler upgrades the connection and streams events until the client leaves */
func (s *EventStream) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			metrics.WarnWithContext(r.Context(), "WebSocket upgrade failed", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		ch := s.add(conn)
		metrics.InfoWithContext(r.Context(), "Event stream client connected", map[string]interface{}{
			"remote_addr": r.RemoteAddr,
		})

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		/* Reader drains control frames and detects disconnects */
		go func() {
			defer s.remove(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(event); err != nil {
					s.remove(conn)
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					s.remove(conn)
					return
				}
			}
		}
	}
}
