package validators

import (
	"net/http/httptest"
	"testing"
	"time"

	pkgerrors "github.com/phantomos-app/phantomos-backend/pkg/errors"
)

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?limit=25", nil)
	got, err := ParseQueryInt(r, "limit", 50, 1, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(r, "limit", 50, 1, 200)
	if err != nil || got != 50 {
		t.Fatalf("expected default 50, got %d (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/?limit=999", nil)
	if _, err := ParseQueryInt(r, "limit", 50, 1, 200); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestParseQueryTime(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r := httptest.NewRequest("GET", "/?from=2026-03-15", nil)
	got, err := ParseQueryTime(r, "from", fallback)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format("2006-01-02") != "2026-03-15" {
		t.Fatalf("unexpected time %v", got)
	}

	r = httptest.NewRequest("GET", "/?from=2026-03-15T10:30:00Z", nil)
	if _, err := ParseQueryTime(r, "from", fallback); err != nil {
		t.Fatalf("rfc3339 should parse: %v", err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryTime(r, "from", fallback)
	if err != nil || !got.Equal(fallback) {
		t.Fatalf("expected fallback, got %v (%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/?from=yesterday", nil)
	_, err = ParseQueryTime(r, "from", fallback)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
