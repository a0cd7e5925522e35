package chat

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/saudedigital/saude/internal/notifications"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type    string `json:"type"` // "message"
	Content string `json:"content"`
}

// frameType names outgoing WebSocket frames.
type frameType string

const (
	frameSession      frameType = "session"
	frameMessage      frameType = "message"
	frameTyping       frameType = "typing"
	frameNotification frameType = "notification"
	frameError        frameType = "error"
)

// chatFrame is the outgoing WebSocket message format.
type chatFrame struct {
	Type         frameType                   `json:"type"`
	SessionID    string                      `json:"session_id"`
	Messages     []Message                   `json:"messages,omitempty"`
	Message      *Message                    `json:"message,omitempty"`
	Pending      int                         `json:"pending"`
	Notification *notifications.Notification `json:"notification,omitempty"`
	Error        string                      `json:"error,omitempty"`
}

func eventFrame(sessionID string, ev Event) chatFrame {
	f := chatFrame{SessionID: sessionID, Pending: ev.Pending}
	switch ev.Type {
	case EventMessage:
		f.Type = frameMessage
		f.Message = ev.Message
	case EventTyping:
		f.Type = frameTyping
	case EventNotification:
		f.Type = frameNotification
		f.Notification = ev.Notification
	}
	return f
}

// handleWebSocket attaches a widget to a session, creating one unless
// ?session_id names a live session. The connection only carries that one
// session. All writes go through a single goroutine.
func handleWebSocket(m *Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			sess *Session
			err  error
		)
		if id := r.URL.Query().Get("session_id"); id != "" {
			if sess, err = m.Get(id); err != nil {
				http.Error(w, "session not found", http.StatusNotFound)
				return
			}
		} else {
			sess = m.Create()
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		defer conn.Close()

		log := logger.With(zap.String("session_id", sess.ID()))
		snapshot, events, unsubscribe := sess.SubscribeWithSnapshot()

		out := make(chan chatFrame, 8)
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			write := func(f chatFrame) bool {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(f); err != nil {
					log.Debug("websocket write failed", zap.Error(err))
					return false
				}
				return true
			}

			if !write(chatFrame{Type: frameSession, SessionID: sess.ID(), Messages: snapshot, Pending: sess.Pending()}) {
				return
			}
			for {
				select {
				case f := <-out:
					if !write(f) {
						return
					}
				case ev, ok := <-events:
					if !ok {
						conn.SetWriteDeadline(time.Now().Add(writeWait))
						conn.WriteMessage(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
						return
					}
					if !write(eventFrame(sess.ID(), ev)) {
						return
					}
				}
			}
		}()

		send := func(f chatFrame) {
			select {
			case out <- f:
			case <-writerDone:
			}
		}
		sendError := func(msg string) {
			send(chatFrame{Type: frameError, SessionID: sess.ID(), Error: msg})
		}

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("websocket read failed", zap.Error(err))
				}
				break
			}

			var req chatRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				sendError("invalid message format")
				continue
			}
			if req.Type != "message" {
				sendError("unknown message type: " + req.Type)
				continue
			}

			// Blank content is dropped without an error frame.
			if _, _, err := sess.Submit(req.Content); err != nil {
				sendError(err.Error())
			}
		}

		unsubscribe()
		// The idle timeout starts when the widget goes away.
		sess.Touch()
		<-writerDone
	}
}
