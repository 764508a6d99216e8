package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clipscreen/clipscreen/internal/auth"
	"github.com/clipscreen/clipscreen/internal/inference"
	"github.com/pashagolub/pgxmock/v4"
)

const testUserID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"

type fakeStore struct {
	stored  []string
	deleted []string
	failURL bool
}

func (f *fakeStore) StoreVideo(_ context.Context, key, _ string, body io.Reader) error {
	io.Copy(io.Discard, body)
	f.stored = append(f.stored, key)
	return nil
}

func (f *fakeStore) PlaybackURL(_ context.Context, key string, _ time.Duration) (string, error) {
	if f.failURL {
		return "", fmt.Errorf("presign failed")
	}
	return "https://bucket.example/" + key, nil
}

func (f *fakeStore) DeleteObject(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func moderationAnswer() string {
	return "OVERALL ASSESSMENT: Suitable.\n\nRISK RATING: 2\n"
}

func newTestHandler(mock pgxmock.PgxPoolIface, store ObjectStore) *Handler {
	pipeline := NewPipeline(
		&fakeAnalyzer{result: &inference.Result{Utterances: testUtterances()}},
		&fakeGenerator{text: moderationAnswer()},
	)
	return NewHandler(mock, pipeline, store, nil, 30, 1<<20)
}

func authedRequest(req *http.Request) *http.Request {
	return req.WithContext(auth.ContextWithUserID(req.Context(), testUserID))
}

func TestAnalyze_YouTube(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO api_quotas`).
		WithArgs(testUserID, 30).
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO uploads`).
		WithArgs(pgxmock.AnyArg(), testUserID, pgxmock.AnyArg(), "youtube").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	h := newTestHandler(mock, nil)

	req := authedRequest(httptest.NewRequest("POST", "/api/analyze",
		strings.NewReader(`{"youtubeUrl":"https://youtu.be/abc"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Moderation.RiskScore != 2 {
		t.Errorf("risk score = %d, want 2", result.Moderation.RiskScore)
	}
	if len(result.Analysis.Utterances) != 1 {
		t.Errorf("got %d utterances", len(result.Analysis.Utterances))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAnalyze_QuotaExceeded(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO api_quotas`).
		WithArgs(testUserID, 30).
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"})) // no row: exhausted

	h := newTestHandler(mock, nil)

	req := authedRequest(httptest.NewRequest("POST", "/api/analyze",
		strings.NewReader(`{"youtubeUrl":"https://youtu.be/abc"}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyze_Unauthenticated(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	h := newTestHandler(mock, nil)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Analyze(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUploads(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	fileKey := "videos/abc-clip.mp4"
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT key, file_key, source, analyzed, created_at FROM uploads`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"key", "file_key", "source", "analyzed", "created_at"}).
			AddRow("upload-1", &fileKey, "file", true, created).
			AddRow("upload-2", (*string)(nil), "youtube", true, created))

	h := newTestHandler(mock, &fakeStore{})

	req := authedRequest(httptest.NewRequest("GET", "/api/uploads", nil))
	rec := httptest.NewRecorder()
	h.Uploads(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Uploads []uploadItem `json:"uploads"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Uploads) != 2 {
		t.Fatalf("got %d uploads, want 2", len(resp.Uploads))
	}
	if resp.Uploads[0].PlaybackURL == nil || !strings.Contains(*resp.Uploads[0].PlaybackURL, fileKey) {
		t.Errorf("first upload playback URL = %v", resp.Uploads[0].PlaybackURL)
	}
	if resp.Uploads[1].PlaybackURL != nil {
		t.Errorf("second upload should have no playback URL")
	}
	if resp.Uploads[0].CreatedAt != "2026-03-14T12:00:00Z" {
		t.Errorf("createdAt = %q", resp.Uploads[0].CreatedAt)
	}
}

func TestUsage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT requests_used FROM api_quotas`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"requests_used"}).AddRow(12))
	mock.ExpectQuery(`SELECT browser, COUNT`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"browser", "cnt"}).
			AddRow("Chrome", int64(9)).
			AddRow("Firefox", int64(3)))
	mock.ExpectQuery(`SELECT os, COUNT`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"os", "cnt"}).
			AddRow("Linux", int64(12)))
	mock.ExpectQuery(`SELECT country, COUNT`).
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"country", "cnt"}))

	h := newTestHandler(mock, nil)

	req := authedRequest(httptest.NewRequest("GET", "/api/usage", nil))
	rec := httptest.NewRecorder()
	h.Usage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp usageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Used != 12 || resp.Remaining != 18 || resp.Limit != 30 {
		t.Errorf("quota = %+v", resp)
	}
	if len(resp.Browsers) != 2 || resp.Browsers[0].Name != "Chrome" || resp.Browsers[0].Percentage != 75 {
		t.Errorf("browsers = %+v", resp.Browsers)
	}
	if len(resp.Systems) != 1 || resp.Systems[0].Percentage != 100 {
		t.Errorf("systems = %+v", resp.Systems)
	}
	if len(resp.Countries) != 0 {
		t.Errorf("countries = %+v", resp.Countries)
	}
}
