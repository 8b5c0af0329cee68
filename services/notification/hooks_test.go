package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"bookly/models"

	"github.com/bwmarrin/discordgo"
)

func testBooking() models.Booking {
	start := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	return models.Booking{
		ID:           "b-1",
		Title:        "Appointment Booking",
		StartTime:    start,
		EndTime:      start.Add(time.Hour),
		BookerEmail:  "jane@example.com",
		CustomerName: "Jane Doe",
		Status:       models.BookingStatusConfirmed,
	}
}

type fakeHook struct {
	name string
	err  error

	mu    sync.Mutex
	calls []models.Booking
}

func (h *fakeHook) Name() string { return h.name }

func (h *fakeHook) AfterCommit(_ context.Context, b models.Booking) error {
	h.mu.Lock()
	h.calls = append(h.calls, b)
	h.mu.Unlock()
	return h.err
}

func (h *fakeHook) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func TestRunAllJoinsErrors(t *testing.T) {
	ok := &fakeHook{name: "ok"}
	bad := &fakeHook{name: "calendar", err: errors.New("token expired")}

	err := RunAll(context.Background(), []Hook{bad, ok}, testBooking())

	if err == nil || !strings.Contains(err.Error(), "calendar: token expired") {
		t.Fatalf("err = %v", err)
	}
	if ok.count() != 1 {
		t.Errorf("later hook skipped after failure")
	}
}

func TestRegistryRun(t *testing.T) {
	h := &fakeHook{name: "slack"}
	r := NewRegistry(h)

	if err := r.Run(context.Background(), "slack", testBooking()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := r.Run(context.Background(), "pager", testBooking()); err == nil {
		t.Error("expected error for unknown hook")
	}
	if h.count() != 1 {
		t.Errorf("calls = %d", h.count())
	}
}

func TestInlineDispatcherSurvivesCancelledRequest(t *testing.T) {
	h := &fakeHook{name: "slow", err: errors.New("boom")}
	d := NewInlineDispatcher(nil, time.Second, h)

	ctx, cancel := context.WithCancel(context.Background())
	d.Dispatch(ctx, testBooking())
	cancel()
	d.Wait()

	if h.count() != 1 {
		t.Errorf("calls = %d, want 1", h.count())
	}
}

func TestSlackHookPostsSummary(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewSlackHook(srv.URL).AfterCommit(context.Background(), testBooking()); err != nil {
		t.Fatalf("AfterCommit: %v", err)
	}
	text, _ := body["text"].(string)
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "jane@example.com") {
		t.Errorf("text = %q", text)
	}
}

func TestSlackHookReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	if err := NewSlackHook(srv.URL).AfterCommit(context.Background(), testBooking()); err == nil {
		t.Error("expected error on non-2xx webhook response")
	}
}

type mockWebhookSession struct {
	id, token string
	params    *discordgo.WebhookParams
	err       error
}

func (m *mockWebhookSession) WebhookExecute(id, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.id, m.token, m.params = id, token, data
	return nil, m.err
}

func TestDiscordHook(t *testing.T) {
	sess := &mockWebhookSession{}
	h := &DiscordHook{sess: sess, webhookID: "123", token: "abc"}

	if err := h.AfterCommit(context.Background(), testBooking()); err != nil {
		t.Fatalf("AfterCommit: %v", err)
	}
	if sess.id != "123" || sess.token != "abc" {
		t.Errorf("webhook = %s/%s", sess.id, sess.token)
	}
	if sess.params == nil || len(sess.params.Embeds) != 1 || sess.params.Embeds[0].Title != "Appointment Booking" {
		t.Errorf("params = %+v", sess.params)
	}

	sess.err = errors.New("rate limited")
	if err := h.AfterCommit(context.Background(), testBooking()); err == nil {
		t.Error("expected error")
	}
}

func TestNewDiscordHookRequiresCredentials(t *testing.T) {
	if _, err := NewDiscordHook("", "abc"); err == nil {
		t.Error("expected error without webhook id")
	}
}
