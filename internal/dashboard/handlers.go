package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/saudedigital/saude/internal/notifications"
)

// statsResponse is the JSON response for the stats endpoint.
type statsResponse struct {
	ActiveSessions    int `json:"active_sessions"`
	PendingReplies    int `json:"pending_replies"`
	UrgentAlerts24h   int `json:"urgent_alerts_24h"`
	UndeliveredAlerts int `json:"undelivered_alerts"`
}

// recentResponse is the JSON response for the recent activity endpoint.
type recentResponse struct {
	Alerts []notifications.Notification `json:"alerts"`
}

func (d *Dashboard) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	urgent, err := d.store.List(ctx, notifications.ListFilter{
		Severity: notifications.SeverityError,
		Since:    d.now().Add(-24 * time.Hour),
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	pending, err := d.store.GetPending(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		ActiveSessions:    d.manager.Len(),
		PendingReplies:    d.manager.Pending(),
		UrgentAlerts24h:   len(urgent),
		UndeliveredAlerts: len(pending),
	})
}

func (d *Dashboard) handleRecent(w http.ResponseWriter, r *http.Request) {
	alerts, err := d.store.List(r.Context(), notifications.ListFilter{
		Severity: notifications.SeverityError,
		Limit:    recentLimit,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if alerts == nil {
		alerts = []notifications.Notification{}
	}

	writeJSON(w, http.StatusOK, recentResponse{Alerts: alerts})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
