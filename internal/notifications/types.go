package notifications

import "time"

// Severity selects the banner style a notification is shown with.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// severityLevels orders severities for webhook filtering.
var severityLevels = map[Severity]int{
	SeveritySuccess: 0,
	SeverityInfo:    0,
	SeverityWarning: 1,
	SeverityError:   2,
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	_, ok := severityLevels[s]
	return ok
}

// SourceTriage marks notifications raised by the triage chat.
const SourceTriage = "triage"

// Notification is a transient user-facing alert, kept for audit and
// redelivery.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

// Webhook is an external endpoint that receives notifications at or above
// SeverityFilter.
type Webhook struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	SeverityFilter Severity  `json:"severity_filter"`
	CreatedAt      time.Time `json:"created_at"`
}
