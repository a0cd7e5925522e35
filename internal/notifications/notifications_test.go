package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/saudedigital/saude/internal/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func testNotification(id string) Notification {
	return Notification{
		ID:        id,
		Severity:  SeverityError,
		Title:     "EMERGÊNCIA CRÍTICA - Procure atendimento imediato!",
		Message:   "tive um infarto",
		Source:    SourceTriage,
		SessionID: "sess-1",
		Tier:      "critical",
	}
}

func TestStoreCreate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n := testNotification("n-1")
	if err := store.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByID(ctx, "n-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != n.Title {
		t.Errorf("Title = %q, want %q", got.Title, n.Title)
	}
	if got.Delivered {
		t.Error("expected Delivered = false")
	}
	if got.SessionID != "sess-1" || got.Tier != "critical" || got.Source != SourceTriage {
		t.Errorf("got %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStoreCreateDefaults(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n := Notification{Title: "hello"}
	if err := store.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID == "" {
		t.Error("expected generated ID")
	}
	if n.Severity != SeverityInfo {
		t.Errorf("Severity = %q, want info", n.Severity)
	}

	bad := Notification{Title: "x", Severity: "fatal"}
	if err := store.Create(ctx, &bad); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestStoreGetByIDNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStoreListFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	notes := []Notification{
		{ID: "f-1", Severity: SeverityInfo, Title: "a", SessionID: "s-a", CreatedAt: base},
		{ID: "f-2", Severity: SeverityWarning, Title: "b", SessionID: "s-b", CreatedAt: base.Add(time.Minute)},
		{ID: "f-3", Severity: SeverityError, Title: "c", SessionID: "s-a", CreatedAt: base.Add(2 * time.Minute)},
	}
	for i := range notes {
		if err := store.Create(ctx, &notes[i]); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].ID != "f-3" || got[2].ID != "f-1" {
		t.Errorf("List order = %v, want newest first", ids(got))
	}

	got, err = store.List(ctx, ListFilter{Severity: SeverityError})
	if err != nil {
		t.Fatalf("List by severity: %v", err)
	}
	if len(got) != 1 || got[0].ID != "f-3" {
		t.Errorf("filter by severity: got %v", ids(got))
	}

	got, err = store.List(ctx, ListFilter{SessionID: "s-a"})
	if err != nil {
		t.Fatalf("List by session: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("filter by session: got %v", ids(got))
	}

	got, err = store.List(ctx, ListFilter{Since: base.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("List since: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("filter since: got %v", ids(got))
	}

	got, err = store.List(ctx, ListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List with limit: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("filter with limit: got %d results, want 2", len(got))
	}

	got, err = store.List(ctx, ListFilter{Offset: 2})
	if err != nil {
		t.Fatalf("List with offset: %v", err)
	}
	if len(got) != 1 || got[0].ID != "f-1" {
		t.Errorf("filter with offset: got %v", ids(got))
	}
}

func ids(ns []Notification) []string {
	var out []string
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestStoreMarkDelivered(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n := testNotification("d-1")
	if err := store.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.MarkDelivered(ctx, "d-1"); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}

	got, err := store.GetByID(ctx, "d-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Delivered {
		t.Error("expected Delivered = true after MarkDelivered")
	}

	if err := store.MarkDelivered(ctx, "nonexistent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkDelivered(nonexistent) = %v, want ErrNotFound", err)
	}
}

func TestStoreGetPending(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	n1 := testNotification("p-1")
	n2 := testNotification("p-2")
	if err := store.Create(ctx, &n1); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(ctx, &n2); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.MarkDelivered(ctx, "p-1"); err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}

	pending, err := store.GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "p-2" {
		t.Errorf("GetPending: got %v, want [p-2]", ids(pending))
	}
}

func TestWebhookCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	wh := Webhook{URL: "https://example.com/hook", SeverityFilter: SeverityWarning}
	if err := store.AddWebhook(ctx, &wh); err != nil {
		t.Fatalf("AddWebhook: %v", err)
	}
	firstID := wh.ID

	// Same URL updates the filter in place.
	again := Webhook{URL: "https://example.com/hook", SeverityFilter: SeverityError}
	if err := store.AddWebhook(ctx, &again); err != nil {
		t.Fatalf("AddWebhook (update): %v", err)
	}
	if again.ID != firstID {
		t.Errorf("upsert ID = %q, want %q", again.ID, firstID)
	}

	hooks, err := store.ListWebhooks(ctx)
	if err != nil {
		t.Fatalf("ListWebhooks: %v", err)
	}
	if len(hooks) != 1 || hooks[0].SeverityFilter != SeverityError {
		t.Fatalf("hooks = %+v", hooks)
	}

	if err := store.DeleteWebhook(ctx, firstID); err != nil {
		t.Fatalf("DeleteWebhook: %v", err)
	}
	if err := store.DeleteWebhook(ctx, firstID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteWebhook = %v, want ErrNotFound", err)
	}
}

type hookRecorder struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (h *hookRecorder) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		h.mu.Lock()
		h.payloads = append(h.payloads, buf.Bytes())
		h.mu.Unlock()
		w.WriteHeader(status)
	}
}

func (h *hookRecorder) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads)
}

func TestDispatcherWebhook(t *testing.T) {
	store := setupTestStore(t)
	dispatcher := NewDispatcher(store)
	ctx := context.Background()

	rec := &hookRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK))
	defer server.Close()

	if err := store.AddWebhook(ctx, &Webhook{URL: server.URL}); err != nil {
		t.Fatalf("AddWebhook: %v", err)
	}

	n := testNotification("wh-1")
	if err := dispatcher.Dispatch(ctx, n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if rec.count() != 1 {
		t.Fatalf("webhook calls = %d, want 1", rec.count())
	}
	var got Notification
	if err := json.Unmarshal(rec.payloads[0], &got); err != nil {
		t.Fatalf("unmarshalling webhook payload: %v", err)
	}
	if got.Title != n.Title || got.ID != "wh-1" {
		t.Errorf("webhook payload = %+v", got)
	}

	stored, err := store.GetByID(ctx, "wh-1")
	if err != nil {
		t.Fatalf("GetByID after dispatch: %v", err)
	}
	if stored.Title != n.Title {
		t.Errorf("stored Title = %q, want %q", stored.Title, n.Title)
	}
}

func TestDispatcherSeverityFiltering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &hookRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusOK))
	defer server.Close()

	// Only error notifications reach the configured webhook.
	dispatcher := NewDispatcher(store, WithWebhooks(Webhook{URL: server.URL, SeverityFilter: SeverityError}))

	n := testNotification("sf-1")
	n.Severity = SeverityInfo
	if err := dispatcher.Dispatch(ctx, n); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rec.count() != 0 {
		t.Error("webhook should not be called for info severity when filter is error")
	}

	n2 := testNotification("sf-2")
	if err := dispatcher.Dispatch(ctx, n2); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if rec.count() != 1 {
		t.Error("webhook should be called for error severity")
	}
}

func TestDispatcherWebhookFailureIsLogged(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rec := &hookRecorder{}
	server := httptest.NewServer(rec.handler(http.StatusBadGateway))
	defer server.Close()

	core, logs := observer.New(zap.WarnLevel)
	dispatcher := NewDispatcher(store,
		WithLogger(zap.New(core)),
		WithWebhooks(Webhook{URL: server.URL}),
	)

	if err := dispatcher.Dispatch(ctx, testNotification("fail-1")); err != nil {
		t.Fatalf("Dispatch should swallow webhook errors, got %v", err)
	}
	if logs.FilterMessage("webhook delivery failed").Len() != 1 {
		t.Errorf("expected one delivery failure log, got %v", logs.All())
	}
	if _, err := store.GetByID(ctx, "fail-1"); err != nil {
		t.Errorf("notification not persisted: %v", err)
	}
}

func TestDigestGeneration(t *testing.T) {
	store := setupTestStore(t)
	dispatcher := NewDispatcher(store)
	ctx := context.Background()

	for _, n := range []Notification{
		{ID: "dg-1", Severity: SeverityError, Title: "a"},
		{ID: "dg-2", Severity: SeverityError, Title: "b"},
		{ID: "dg-3", Severity: SeverityInfo, Title: "c"},
		{ID: "dg-old", Severity: SeverityError, Title: "old", CreatedAt: time.Now().UTC().Add(-48 * time.Hour)},
	} {
		n := n
		if err := store.Create(ctx, &n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	digest, err := dispatcher.GenerateDigest(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GenerateDigest: %v", err)
	}
	if len(digest.Notifications) != 3 {
		t.Errorf("expected 3 notifications in digest, got %d", len(digest.Notifications))
	}
	if digest.Counts[SeverityError] != 2 || digest.Counts[SeverityInfo] != 1 {
		t.Errorf("Counts = %v", digest.Counts)
	}
	if digest.Summary != "3 notification(s), 2 urgent" {
		t.Errorf("Summary = %q", digest.Summary)
	}
}

func TestHTTPHandlers(t *testing.T) {
	store := setupTestStore(t)
	dispatcher := NewDispatcher(store)
	ctx := context.Background()

	r := chi.NewRouter()
	RegisterRoutes(r, store, dispatcher)

	n := testNotification("api-1")
	if err := store.Create(ctx, &n); err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("GET /api/notifications", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications?session_id=sess-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var got []Notification
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 notification, got %d", len(got))
		}
	})

	t.Run("GET /api/notifications/{id}", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/api-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var got Notification
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if got.ID != "api-1" {
			t.Errorf("ID = %q, want api-1", got.ID)
		}
	})

	t.Run("GET /api/notifications/{id} not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/nonexistent", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("POST /api/notifications/{id}/deliver", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/notifications/api-1/deliver", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		got, err := store.GetByID(ctx, "api-1")
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if !got.Delivered {
			t.Error("expected Delivered = true")
		}
	})

	t.Run("GET /api/notifications/pending", func(t *testing.T) {
		n2 := testNotification("api-2")
		if err := store.Create(ctx, &n2); err != nil {
			t.Fatalf("Create: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/notifications/pending", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var got []Notification
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(got) != 1 || got[0].ID != "api-2" {
			t.Errorf("expected 1 pending notification (api-2), got %v", got)
		}
	})

	t.Run("PUT /api/notifications/webhooks", func(t *testing.T) {
		body, _ := json.Marshal(Webhook{URL: "https://example.com/hook", SeverityFilter: SeverityWarning})
		req := httptest.NewRequest(http.MethodPut, "/api/notifications/webhooks", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusOK, w.Body.String())
		}
	})

	t.Run("PUT /api/notifications/webhooks invalid url", func(t *testing.T) {
		body, _ := json.Marshal(Webhook{URL: "ftp://example.com"})
		req := httptest.NewRequest(http.MethodPut, "/api/notifications/webhooks", bytes.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("GET and DELETE /api/notifications/webhooks", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/webhooks", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var got []Webhook
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 webhook, got %v", got)
		}

		req = httptest.NewRequest(http.MethodDelete, "/api/notifications/webhooks/"+got[0].ID, nil)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete status = %d, want %d", w.Code, http.StatusNoContent)
		}
	})

	t.Run("GET /api/notifications/digest", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/notifications/digest", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}

		var got Digest
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(got.Notifications) != 2 {
			t.Errorf("digest notifications = %d, want 2", len(got.Notifications))
		}
	})
}

func TestSeverityMatches(t *testing.T) {
	tests := []struct {
		actual Severity
		filter Severity
		want   bool
	}{
		{SeverityInfo, SeverityInfo, true},
		{SeveritySuccess, SeverityInfo, true},
		{SeverityWarning, SeverityInfo, true},
		{SeverityError, SeverityInfo, true},
		{SeverityInfo, SeverityWarning, false},
		{SeverityWarning, SeverityWarning, true},
		{SeverityError, SeverityWarning, true},
		{SeverityInfo, SeverityError, false},
		{SeverityWarning, SeverityError, false},
		{SeverityError, SeverityError, true},
	}

	for _, tt := range tests {
		got := severityMatches(tt.actual, tt.filter)
		if got != tt.want {
			t.Errorf("severityMatches(%q, %q) = %v, want %v", tt.actual, tt.filter, got, tt.want)
		}
	}
}
