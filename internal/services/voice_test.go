package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Changaizkhan/autopair-final/internal/models"
	"github.com/Changaizkhan/autopair-final/internal/storage"
)

func newTestVoice(t *testing.T) (*VoiceService, *storage.MemoryStore, *models.Lead) {
	t.Helper()
	store := storage.NewMemoryStore()
	lead := store.AddLead(&models.Lead{Properties: map[string]string{models.PropPhone: "+12015550123"}})
	voice := NewVoiceService(store, NewJournal(store), testVoiceConfig(), testBaseURL)
	voice.now = func() time.Time { return toronto(2026, time.October, 14, 10, 0) }
	return voice, store, lead
}

func assertContains(t *testing.T, xml string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(xml, p) {
			t.Fatalf("expected TwiML to contain %q, got %s", p, xml)
		}
	}
}

func TestCallPrompt(t *testing.T) {
	voice, _, lead := newTestVoice(t)

	xml, err := voice.CallPrompt(lead.ID)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	assertContains(t, xml,
		"<Gather",
		`numDigits="1"`,
		`timeout="10"`,
		`action="`+testBaseURL+"/ivr-handler/"+lead.ID+`"`,
		"Press 1 to talk to a specialist",
		"get your response",
	)
}

func TestHandleIVRDigitConnectsSpecialist(t *testing.T) {
	voice, store, lead := newTestVoice(t)

	xml, err := voice.HandleIVRDigit(context.Background(), lead.ID, "1")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	assertContains(t, xml,
		"Connecting you to a specialist, please hold.",
		"<Dial",
		`timeout="20"`,
		`record="record-from-answer"`,
		"+18334268672",
		"+12185683118",
		"could not connect you to a specialist",
		"<Hangup",
	)
	if strings.Index(xml, "+18334268672") > strings.Index(xml, "+12185683118") {
		t.Fatalf("primary number must be dialed before the fallback: %s", xml)
	}

	updated, _ := store.GetLead(context.Background(), lead.ID)
	if updated.Prop(models.PropLastDigitPressed) != "1" {
		t.Fatalf("expected digit to be recorded, got %q", updated.Prop(models.PropLastDigitPressed))
	}
	if updated.Prop(models.PropLastResponse) == "" {
		t.Fatal("expected last response to be recorded")
	}
	if updated.Status() != models.StatusNew {
		t.Fatalf("IVR must not change status, got %q", updated.Status())
	}
}

func TestHandleIVRDigitCoverageAndInvalid(t *testing.T) {
	voice, _, lead := newTestVoice(t)

	xml, err := voice.HandleIVRDigit(context.Background(), lead.ID, "2")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	assertContains(t, xml, "Our warranty plans cover engine, transmission, and drivetrain components.")

	xml, err = voice.HandleIVRDigit(context.Background(), lead.ID, "7")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	assertContains(t, xml, "Invalid option. Please try again.", "<Redirect", testBaseURL+"/call-handler/"+lead.ID)
}

func TestInboundVoice(t *testing.T) {
	voice, _, _ := newTestVoice(t)

	xml, err := voice.InboundVoice()
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	assertContains(t, xml, "Welcome to Auto Pair Warranty.", "<Dial", `record="record-from-answer"`, "+12185683118")
}
