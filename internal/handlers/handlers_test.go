package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Changaizkhan/autopair-final/internal/config"
	"github.com/Changaizkhan/autopair-final/internal/handlers"
	"github.com/Changaizkhan/autopair-final/internal/jobs"
	"github.com/Changaizkhan/autopair-final/internal/middleware"
	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/routes"
	"github.com/Changaizkhan/autopair-final/internal/services"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

type stubMessenger struct {
	mu   sync.Mutex
	sent []string
}

func (m *stubMessenger) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+": "+body)
	return nil
}

func (m *stubMessenger) PlaceCall(context.Context, string, string) error { return nil }

type stubNotifier struct {
	mu       sync.Mutex
	notified []string
}

func (n *stubNotifier) Notify(_ context.Context, lead *models.Lead, _ models.QualificationResult) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, lead.ID)
	return nil
}

type testServer struct {
	app        *fiber.App
	store      *storage.MemoryStore
	messenger  *stubMessenger
	notifier   *stubNotifier
	dispatcher *jobs.Dispatcher
}

func newTestServer(t *testing.T, twilioAuth fiber.Handler) *testServer {
	t.Helper()

	s := &testServer{
		store:      storage.NewMemoryStore(),
		messenger:  &stubMessenger{},
		notifier:   &stubNotifier{},
		dispatcher: jobs.NewDispatcher(),
	}
	s.store.AddLead(&models.Lead{ID: "42", Properties: map[string]string{
		models.PropFirstName:      "Ana",
		models.PropPhone:          "+12015550123",
		models.PropVehicleYear:    "2022",
		models.PropVehicleMake:    "Honda",
		models.PropVehicleModel:   "Civic",
		models.PropVehicleMileage: "40000",
	}})

	journal := services.NewJournal(s.store)
	voice := services.NewVoiceService(s.store, journal, config.VoiceConfig{
		SpecialistPrimary:  "+18334268672",
		SpecialistFallback: "+12185683118",
		InboundForward:     "+12185683118",
	}, "https://example.test")
	conversation := services.NewConversationService(s.store, s.messenger, services.NewKnowledgeService(nil), voice, nil, journal)
	guard := jobs.NewDedupGuard()
	processor := jobs.NewLeadProcessor(s.store, s.notifier, guard, journal)
	poller := jobs.NewLeadPoller(s.store, processor, s.dispatcher, config.PollerConfig{})

	s.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.SetupRoutes(s.app, routes.Dependencies{
		Webhooks:   handlers.NewWebhookHandler(conversation, voice),
		Leads:      handlers.NewLeadHandler(processor, s.dispatcher, s.store),
		Health:     handlers.NewHealthHandler("test", nil, poller, guard, s.dispatcher),
		TwilioAuth: twilioAuth,
	})
	return s
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestSMSWebhookMissingPhone(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.app.Test(postForm("/sms-webhook", url.Values{"Body": {"hello"}}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decode(t, resp)
	if body["status"] != "error" || body["message"] != "Missing phone" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestSMSWebhookUnknownLead(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.app.Test(postForm("/sms-webhook", url.Values{"From": {"+14165550000"}, "Body": {"1"}}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestSMSWebhookCallsLead(t *testing.T) {
	s := newTestServer(t, nil)
	_, _ = s.store.UpdateLead(context.Background(), "42", map[string]string{models.PropStatus: string(models.StatusSMSSent)})

	resp, err := s.app.Test(postForm("/sms-webhook", url.Values{"From": {"+12015550123"}, "Body": {"1"}}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["status"] != "success" {
		t.Fatalf("unexpected body %v", body)
	}

	lead, _ := s.store.GetLead(context.Background(), "42")
	if lead.Status() != models.StatusCallRequested {
		t.Fatalf("expected %s, got %s", models.StatusCallRequested, lead.Status())
	}
	if len(s.messenger.sent) != 1 || !strings.HasPrefix(s.messenger.sent[0], "+12015550123: ") {
		t.Fatalf("expected one confirmation SMS, got %v", s.messenger.sent)
	}
}

func TestCallHandlerReturnsTwiML(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/call-handler/42", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/xml") {
		t.Fatalf("expected text/xml, got %q", ct)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "https://example.test/ivr-handler/42") {
		t.Fatalf("expected gather action in %s", raw)
	}
}

func TestIVRHandlerRecordsDigit(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.app.Test(postForm("/ivr-handler/42", url.Values{"Digits": {"2"}}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	lead, _ := s.store.GetLead(context.Background(), "42")
	if lead.Prop(models.PropLastDigitPressed) != "2" {
		t.Fatalf("expected digit 2 stored, got %v", lead.Properties)
	}
}

func TestHubSpotWebhookAcknowledges(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/hubspot-webhook", strings.NewReader(`[{"objectId":42}]`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if body := decode(t, resp); body["status"] != "received" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestProcessLeadAccepted(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodPost, "/api/leads/42/process", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	if body := decode(t, resp); body["lead_id"] != "42" {
		t.Fatalf("unexpected body %v", body)
	}

	s.dispatcher.Wait()
	if len(s.notifier.notified) != 1 || s.notifier.notified[0] != "42" {
		t.Fatalf("expected lead 42 notified, got %v", s.notifier.notified)
	}
}

func TestActivityEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	for _, body := range []string{"first", "second"} {
		_ = s.store.RecordActivity(context.Background(), &models.Activity{LeadID: "42", Body: body})
	}

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/42/activity?limit=1", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decode(t, resp)
	if body["count"] != float64(1) {
		t.Fatalf("expected one activity, got %v", body)
	}

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/api/leads/42/activity?limit=1000", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an out of range limit, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decode(t, resp)
	if body["status"] != "OK" || body["version"] != "test" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["in_flight_leads"] != float64(0) {
		t.Fatalf("expected no in-flight leads, got %v", body["in_flight_leads"])
	}
	if body["storage"] != "memory" {
		t.Fatalf("expected memory storage, got %v", body["storage"])
	}
	if _, present := body["database"]; present {
		t.Fatalf("memory mode must not report a database")
	}
}

func TestHealthReportsDatabaseStatus(t *testing.T) {
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=autopair dbname=autopair sslmode=disable connect_timeout=1"), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Discard,
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Get("/health", handlers.NewHealthHandler("test", db, nil, nil, nil).Check)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), 5000)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body := decode(t, resp)
	if body["storage"] != "database" {
		t.Fatalf("expected database storage, got %v", body["storage"])
	}
	dbInfo, ok := body["database"].(map[string]any)
	if !ok {
		t.Fatalf("expected database section, got %v", body)
	}
	status, _ := dbInfo["status"].(string)
	if !strings.HasPrefix(status, "error: ") {
		t.Fatalf("expected an error status for an unreachable database, got %q", status)
	}
}

func TestTwilioSignatureRequired(t *testing.T) {
	s := newTestServer(t, middleware.ValidateTwilioSignature("token", "https://example.test"))

	resp, err := s.app.Test(postForm("/sms-webhook", url.Values{"From": {"+12015550123"}}))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	req := postForm("/sms-webhook", url.Values{"From": {"+12015550123"}})
	req.Header.Set("X-Twilio-Signature", "bogus")
	resp, err = s.app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad signature, got %d", resp.StatusCode)
	}

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("health must stay open, got %d", resp.StatusCode)
	}
}
