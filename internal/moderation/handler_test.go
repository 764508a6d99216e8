package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubGenerator struct {
	gotPrompt string
	text      string
	err       error
}

func (s *stubGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	s.gotPrompt = prompt
	return s.text, s.err
}

func TestHandler(t *testing.T) {
	gen := &stubGenerator{text: "1. HATE SPEECH: NO - Clean.\n\nRISK RATING: 2\n"}
	handler := Handler(gen)

	req := httptest.NewRequest("POST", "/api/moderation",
		strings.NewReader(`{"prompt":"Utterance 1 (0s - 2s): \"Test.\""}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.RiskScore != 2 {
		t.Errorf("risk score = %d, want 2", report.RiskScore)
	}
	if report.RawText != gen.text {
		t.Errorf("raw text = %q", report.RawText)
	}
	if report.Issues == nil {
		t.Error("issues is nil, want empty array")
	}

	// The transcript is wrapped in the full instruction before the model
	// sees it.
	if !strings.Contains(gen.gotPrompt, "Utterance 1 (0s - 2s)") {
		t.Error("transcript missing from prompt")
	}
	if !strings.Contains(gen.gotPrompt, "RISK RATING:") {
		t.Error("instruction missing from prompt")
	}
}

func TestHandler_MissingPrompt(t *testing.T) {
	handler := Handler(&stubGenerator{})

	req := httptest.NewRequest("POST", "/api/moderation", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_BadBody(t *testing.T) {
	handler := Handler(&stubGenerator{})

	req := httptest.NewRequest("POST", "/api/moderation", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_GeneratorError(t *testing.T) {
	handler := Handler(&stubGenerator{err: errors.New("upstream down")})

	req := httptest.NewRequest("POST", "/api/moderation", strings.NewReader(`{"prompt":"transcript"}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
