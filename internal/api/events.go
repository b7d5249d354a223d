package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/logging"
)

const (
	eventBuffer  = 32
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// eventChannels maps event kinds to the stream channel they are sent on.
var eventChannels = map[casino.EventKind]string{
	casino.EventForfeit:      "sessions",
	casino.EventUsageWarning: "wellbeing",
}

// handleEvents streams forfeits and usage warnings over a websocket. The
// optional ?player= query narrows the stream to one player.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribe first so nothing published after the handshake is missed.
	events, cancel := s.casino.Subscribe(eventBuffer)
	defer cancel()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", logging.Err(err))
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug("failed to close connection", logging.Err(err))
		}
	}()

	player := r.URL.Query().Get("player")

	// The stream is write-only; reading detects the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case ev, ok := <-events:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			if player != "" && ev.PlayerID != player {
				continue
			}
			msg := EventMessage{Channel: eventChannels[ev.Kind], Event: string(ev.Kind), Data: ev.Data}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Warn("failed to write message", logging.Err(err))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
