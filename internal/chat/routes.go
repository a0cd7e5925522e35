package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/saudedigital/saude/internal/triage"
)

// sessionView is the REST representation of a session.
type sessionView struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Pending  int       `json:"pending"`
}

func viewOf(s *Session) sessionView {
	return sessionView{ID: s.ID(), Messages: s.Messages(), Pending: s.Pending()}
}

type submitRequest struct {
	Text string `json:"text"`
}

// RegisterRoutes mounts the chat API under /api/chat, the stateless
// classifier under /api/triage and the widget websocket at /ws/chat.
func RegisterRoutes(r chi.Router, m *Manager, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	r.Route("/api/chat/sessions", func(r chi.Router) {
		r.Post("/", handleCreate(m))
		r.Get("/{id}", handleGet(m))
		r.Delete("/{id}", handleDelete(m))
		r.Post("/{id}/messages", handleSubmit(m))
		r.Get("/{id}/transcript", handleTranscript(m))
	})
	r.Post("/api/triage/classify", handleClassify(m.Engine()))
	r.Get("/ws/chat", handleWebSocket(m, logger))
}

func handleCreate(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, viewOf(m.Create()))
	}
}

func handleGet(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		s.Touch()
		writeJSON(w, http.StatusOK, viewOf(s))
	}
}

func handleDelete(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Close(chi.URLParam(r, "id")); err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSubmit(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}

		msg, ok, err := s.Submit(req.Text)
		switch {
		case errors.Is(err, ErrSessionClosed):
			http.Error(w, "session closed", http.StatusGone)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		case !ok:
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, http.StatusAccepted, msg)
	}
}

func handleTranscript(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		md := Transcript(s.Messages())
		if r.URL.Query().Get("format") != "html" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(md))
			return
		}

		html, err := RenderHTML(md)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}
}

func handleClassify(engine *triage.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, engine.Evaluate(req.Text))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
