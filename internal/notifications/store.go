package notifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saudedigital/saude/internal/db"
)

// ErrNotFound is returned when a notification or webhook does not exist.
var ErrNotFound = errors.New("not found")

// ListFilter controls which notifications are returned by List.
type ListFilter struct {
	Severity  Severity
	SessionID string
	Delivered *bool
	Since     time.Time
	Until     time.Time
	Limit     int
	Offset    int
}

// Store provides CRUD operations for notifications and webhooks.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a new notification, filling in ID, Severity and CreatedAt
// when they are zero.
func (s *Store) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}
	if !n.Severity.Valid() {
		return fmt.Errorf("invalid severity %q", n.Severity)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	delivered := 0
	if n.Delivered {
		delivered = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, severity, title, message, source, session_id, tier, delivered, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Severity), n.Title, n.Message, n.Source, n.SessionID, n.Tier,
		delivered, n.CreatedAt.UTC().Format(db.TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// GetByID retrieves a single notification.
func (s *Store) GetByID(ctx context.Context, id string) (*Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, severity, title, message, source, session_id, tier, delivered, created_at
		FROM notifications WHERE id = ?`, id)

	n, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading notification: %w", err)
	}
	return n, nil
}

// List returns notifications matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Notification, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Delivered != nil {
		v := 0
		if *filter.Delivered {
			v = 1
		}
		clauses = append(clauses, "delivered = ?")
		args = append(args, v)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(db.TimeLayout))
	}
	if !filter.Until.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, filter.Until.UTC().Format(db.TimeLayout))
	}

	query := "SELECT id, severity, title, message, source, session_id, tier, delivered, created_at FROM notifications"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		n, err := scanInto(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		result = append(result, *n)
	}
	return result, rows.Err()
}

// MarkDelivered sets delivered=1 for the given notification.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET delivered = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification delivered: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return nil
}

// GetPending returns all undelivered notifications.
func (s *Store) GetPending(ctx context.Context) ([]Notification, error) {
	delivered := false
	return s.List(ctx, ListFilter{Delivered: &delivered})
}

// AddWebhook registers a webhook, updating the filter if the URL exists.
func (s *Store) AddWebhook(ctx context.Context, wh *Webhook) error {
	if wh.ID == "" {
		wh.ID = uuid.New().String()
	}
	if wh.SeverityFilter == "" {
		wh.SeverityFilter = SeverityInfo
	}
	if !wh.SeverityFilter.Valid() {
		return fmt.Errorf("invalid severity filter %q", wh.SeverityFilter)
	}
	if wh.CreatedAt.IsZero() {
		wh.CreatedAt = time.Now().UTC()
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO notification_webhooks (id, url, severity_filter, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET severity_filter = excluded.severity_filter
		RETURNING id`,
		wh.ID, wh.URL, string(wh.SeverityFilter), wh.CreatedAt.Format(db.TimeLayout),
	).Scan(&wh.ID)
	if err != nil {
		return fmt.Errorf("upserting webhook: %w", err)
	}
	return nil
}

// ListWebhooks returns all registered webhooks.
func (s *Store) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, severity_filter, created_at
		FROM notification_webhooks ORDER BY created_at, url`)
	if err != nil {
		return nil, fmt.Errorf("querying webhooks: %w", err)
	}
	defer rows.Close()

	var hooks []Webhook
	for rows.Next() {
		var (
			wh        Webhook
			sevFilter string
			ts        any
		)
		if err := rows.Scan(&wh.ID, &wh.URL, &sevFilter, &ts); err != nil {
			return nil, fmt.Errorf("scanning webhook: %w", err)
		}
		wh.SeverityFilter = Severity(sevFilter)
		wh.CreatedAt = parseTimestamp(ts)
		hooks = append(hooks, wh)
	}
	return hooks, rows.Err()
}

// DeleteWebhook removes a webhook by ID.
func (s *Store) DeleteWebhook(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notification_webhooks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting webhook: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("webhook %s: %w", id, ErrNotFound)
	}
	return nil
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Notification, error) {
	var (
		n         Notification
		severity  string
		delivered int
		ts        any
	)

	err := sc.Scan(&n.ID, &severity, &n.Title, &n.Message, &n.Source,
		&n.SessionID, &n.Tier, &delivered, &ts)
	if err != nil {
		return nil, err
	}

	n.Severity = Severity(severity)
	n.Delivered = delivered != 0
	n.CreatedAt = parseTimestamp(ts)
	return &n, nil
}

// parseTimestamp accepts the forms the sqlite driver hands back for
// DATETIME columns: a parsed time.Time or the stored text.
func parseTimestamp(v any) time.Time {
	var s string
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		s = t
	case []byte:
		s = string(t)
	default:
		return time.Time{}
	}
	for _, layout := range []string{db.TimeLayout, time.DateTime, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
