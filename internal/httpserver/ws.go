// internal/httpserver/ws.go
//
// WebSocket change feed. Each connection observes one room: on connect the
// client receives the current document, then every subsequent write to the
// room as a full document. A JSON null is delivered when the room is
// deleted, after which the connection closes.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/fishbowlhq/go-server/internal/game"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	feedBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin is enforced by the CORS layer; the handshake itself
	// accepts any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleFeed upgrades the connection and streams room documents.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	snapshot, err := s.ctrl.Get(r.Context(), code)
	if err != nil {
		writeOpError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", code).Msg("websocket upgrade failed")
		return
	}

	// A slow consumer drops intermediate documents rather than blocking the
	// feed. Only the latest document matters to a client.
	updates := make(chan *game.Session, feedBuffer)
	cancel := s.ctrl.Subscribe(code, func(doc *game.Session) {
		select {
		case updates <- doc:
		default:
			log.Warn().Str("room", code).Msg("feed consumer lagging, dropping update")
		}
	})

	go s.writePump(conn, code, snapshot, updates, cancel)
	go readPump(conn)
}

// writePump sends the initial snapshot, then relays feed updates until the
// room is deleted or the connection drops.
func (s *Server) writePump(conn *websocket.Conn, code string, snapshot *game.Session, updates <-chan *game.Session, cancel func()) {
	defer cancel()
	defer conn.Close()

	if err := writeDoc(conn, snapshot); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case doc, ok := <-updates:
			if !ok {
				return
			}
			if err := writeDoc(conn, doc); err != nil {
				return
			}
			if doc == nil {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "room deleted")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so close frames and pongs are processed.
// Clients mutate over HTTP, not the socket; inbound payloads are ignored.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(1024)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.Close()
			return
		}
	}
}

func writeDoc(conn *websocket.Conn, doc *game.Session) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}
