package jobs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/services"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

type fakeCaller struct {
	calls []string
}

func (f *fakeCaller) SendSMS(context.Context, string, string) error { return nil }

func (f *fakeCaller) PlaceCall(_ context.Context, to, url string) error {
	f.calls = append(f.calls, to+" "+url)
	return nil
}

func TestCallbackTaskRoundTrip(t *testing.T) {
	task, err := NewCallbackTask(CallbackPayload{LeadID: "9", ScheduledAt: 1234})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if task.Type() != TaskCallback {
		t.Fatalf("unexpected task type %q", task.Type())
	}
	payload, err := ParseCallbackPayload(task)
	if err != nil || payload.LeadID != "9" || payload.ScheduledAt != 1234 {
		t.Fatalf("unexpected payload %+v, %v", payload, err)
	}
}

func TestRunCallback(t *testing.T) {
	at := time.Date(2026, time.October, 16, 18, 0, 0, 0, time.UTC)
	scheduled := strconv.FormatInt(at.UnixMilli(), 10)

	store := storage.NewMemoryStore()
	lead := completeLead("1", baseTime)
	lead.Properties[models.PropStatus] = string(models.StatusCallScheduled)
	lead.Properties[models.PropScheduledTime] = scheduled
	store.AddLead(lead)

	journal := services.NewJournal(store)
	voice := services.NewVoiceService(store, journal, config.VoiceConfig{}, "https://example.test")
	caller := &fakeCaller{}
	ctx := context.Background()

	stale := CallbackPayload{LeadID: "1", ScheduledAt: at.Add(-time.Hour).UnixMilli()}
	if err := RunCallback(ctx, stale, store, caller, voice, journal); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(caller.calls) != 0 {
		t.Fatalf("stale callback must not dial, got %v", caller.calls)
	}

	if err := RunCallback(ctx, CallbackPayload{LeadID: "1", ScheduledAt: at.UnixMilli()}, store, caller, voice, journal); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(caller.calls) != 1 || caller.calls[0] != "+12015550123 https://example.test/call-handler/1" {
		t.Fatalf("unexpected calls %v", caller.calls)
	}

	updated, _ := store.GetLead(ctx, "1")
	if updated.Status() != models.StatusCallRequested {
		t.Fatalf("expected status %q, got %q", models.StatusCallRequested, updated.Status())
	}

	// The lead has moved on, so a duplicate delivery does nothing.
	if err := RunCallback(ctx, CallbackPayload{LeadID: "1", ScheduledAt: at.UnixMilli()}, store, caller, voice, journal); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(caller.calls) != 1 {
		t.Fatalf("expected a single call, got %v", caller.calls)
	}
}

func TestRunCallbackWithoutStoredTime(t *testing.T) {
	store := storage.NewMemoryStore()
	lead := completeLead("1", baseTime)
	lead.Properties[models.PropStatus] = string(models.StatusCallScheduled)
	store.AddLead(lead)

	journal := services.NewJournal(store)
	voice := services.NewVoiceService(store, journal, config.VoiceConfig{}, "https://example.test")
	caller := &fakeCaller{}

	payload := CallbackPayload{LeadID: "1", ScheduledAt: baseTime.UnixMilli()}
	if err := RunCallback(context.Background(), payload, store, caller, voice, journal); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(caller.calls) != 0 {
		t.Fatalf("a lead without a stored time must not be dialed, got %v", caller.calls)
	}
}

// hubspotContacts serves one contact and, like HubSpot, returns only the
// properties named in the request.
type hubspotContacts struct {
	mu    sync.Mutex
	props map[string]string
}

func (h *hubspotContacts) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.URL.Path != "/crm/v3/objects/contacts/1" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		selected := map[string]string{}
		for _, name := range strings.Split(r.URL.Query().Get("properties"), ",") {
			if v, ok := h.props[name]; ok {
				selected[name] = v
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "1",
			"createdAt":  "2026-10-01T12:00:00Z",
			"properties": selected,
		})
	case http.MethodPatch:
		var body struct {
			Properties map[string]string `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for k, v := range body.Properties {
			h.props[k] = v
		}
		_, _ = w.Write([]byte(`{"id":"1"}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *hubspotContacts) get(name string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.props[name]
}

func TestRunCallbackAgainstHubSpot(t *testing.T) {
	at := time.Date(2026, time.October, 16, 18, 0, 0, 0, time.UTC)
	crm := &hubspotContacts{props: map[string]string{
		models.PropFirstName:      "Ana",
		models.PropPhone:          "+12015550123",
		models.PropVehicleYear:    "2022",
		models.PropVehicleMileage: "40000",
		models.PropStatus:         string(models.StatusCallScheduled),
		models.PropScheduledTime:  strconv.FormatInt(at.UnixMilli(), 10),
	}}
	server := httptest.NewServer(crm)
	defer server.Close()

	leads := services.NewHubSpotClient(server.URL, "secret",
		services.RetryPolicy{Attempts: 1, Delay: time.Millisecond},
		services.WithHTTPClient(server.Client()))
	voice := services.NewVoiceService(leads, nil, config.VoiceConfig{}, "https://example.test")
	caller := &fakeCaller{}
	ctx := context.Background()

	stale := CallbackPayload{LeadID: "1", ScheduledAt: at.Add(-time.Hour).UnixMilli()}
	if err := RunCallback(ctx, stale, leads, caller, voice, nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(caller.calls) != 0 {
		t.Fatalf("stale callback dialed, got %v", caller.calls)
	}
	if got := crm.get(models.PropStatus); got != string(models.StatusCallScheduled) {
		t.Fatalf("stale callback changed status to %q", got)
	}

	current := CallbackPayload{LeadID: "1", ScheduledAt: at.UnixMilli()}
	if err := RunCallback(ctx, current, leads, caller, voice, nil); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(caller.calls) != 1 || caller.calls[0] != "+12015550123 https://example.test/call-handler/1" {
		t.Fatalf("unexpected calls %v", caller.calls)
	}
	if got := crm.get(models.PropStatus); got != string(models.StatusCallRequested) {
		t.Fatalf("expected status %q, got %q", models.StatusCallRequested, got)
	}
}
