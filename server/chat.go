package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Frame is a WebSocket chat message. Clients send {"text": ...}; the server
// answers with Type "reply" or "error".
type Frame struct {
	Type      string `json:"type,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

const (
	FrameReply = "reply"
	FrameError = "error"
)

// handleChat runs one turn per incoming frame on the session named by the
// session query parameter, or on a fresh session when it is absent.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = uuid.Must(uuid.NewV7()).String()
	}
	s.logger.Info("chat connected", "session_id", sessionID, "remote", r.RemoteAddr)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug("chat closed", "session_id", sessionID, "error", err)
			return
		}

		// Plain text frames are accepted as the message itself.
		var in Frame
		if err := json.Unmarshal(data, &in); err != nil {
			in.Text = string(data)
		}

		out := Frame{Type: FrameReply, SessionID: sessionID}
		if strings.TrimSpace(in.Text) == "" {
			out.Type, out.Text = FrameError, ErrMissingText.Error()
		} else if result, err := s.agent.Run(r.Context(), sessionID, in.Text); err != nil {
			s.logger.Warn("turn failed", "session_id", sessionID, "error", err)
			out.Type, out.Text = FrameError, err.Error()
		} else {
			out.Text = result.Response
		}

		payload, err := json.Marshal(out)
		if err != nil {
			s.logger.Error("failed to marshal frame", "error", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.logger.Debug("chat write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}
