package dashboard

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saudedigital/saude/internal/chat"
	"github.com/saudedigital/saude/internal/notifications"
)

// recentLimit caps the alerts listed by the recent endpoint.
const recentLimit = 10

// Dashboard provides the care-team overview and serves the chat widget page.
type Dashboard struct {
	manager *chat.Manager
	store   *notifications.Store
	now     func() time.Time
}

// New creates a new Dashboard.
func New(manager *chat.Manager, store *notifications.Store) *Dashboard {
	return &Dashboard{
		manager: manager,
		store:   store,
		now:     time.Now,
	}
}

// RegisterRoutes mounts all dashboard routes onto the given router.
func (d *Dashboard) RegisterRoutes(r chi.Router) {
	r.Get("/", d.ServeIndex)
	r.Get("/api/dashboard/stats", d.handleStats)
	r.Get("/api/dashboard/recent", d.handleRecent)
}
