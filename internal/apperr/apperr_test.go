package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("Lead not found"), http.StatusNotFound},
		{Validation("Missing phone"), http.StatusBadRequest},
		{BadRequest("Invalid query"), http.StatusBadRequest},
		{Unauthorized("Invalid signature"), http.StatusUnauthorized},
		{Internal("Call failed", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Fatalf("StatusOf(%v): expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestWithOpAndWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Lead lookup failed", cause).WithOp("find lead by phone")

	if err.Error() != "find lead by phone: Lead lookup failed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected the cause to be unwrapped")
	}

	wrapped := fmt.Errorf("handle sms: %w", err)
	appErr, ok := As(wrapped)
	if !ok || appErr.Op != "find lead by phone" || appErr.Message != "Lead lookup failed" {
		t.Fatalf("expected to recover the typed error, got %+v", appErr)
	}
}
