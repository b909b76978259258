package services

import (
	"context"
	"sync"
	"time"
)

type sentSMS struct {
	to   string
	body string
}

type placedCall struct {
	to  string
	url string
}

type fakeMessenger struct {
	mu      sync.Mutex
	sms     []sentSMS
	calls   []placedCall
	smsErr  error
	callErr error
}

func (f *fakeMessenger) SendSMS(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sms = append(f.sms, sentSMS{to: to, body: body})
	return f.smsErr
}

func (f *fakeMessenger) PlaceCall(_ context.Context, to, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, placedCall{to: to, url: url})
	return f.callErr
}

func (f *fakeMessenger) lastSMS() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sms) == 0 {
		return ""
	}
	return f.sms[len(f.sms)-1].body
}

type fakeCompleter struct {
	answer       string
	err          error
	panicWith    any
	question     string
	systemPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, question, systemPrompt string) (string, error) {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.question = question
	f.systemPrompt = systemPrompt
	return f.answer, f.err
}

type scheduledCallback struct {
	leadID string
	at     time.Time
}

type fakeScheduler struct {
	scheduled []scheduledCallback
	err       error
}

func (f *fakeScheduler) ScheduleCallback(_ context.Context, leadID string, at time.Time) error {
	f.scheduled = append(f.scheduled, scheduledCallback{leadID: leadID, at: at})
	return f.err
}
