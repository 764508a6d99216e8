package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/clipscreen/clipscreen/internal/auth"
	"github.com/clipscreen/clipscreen/internal/database"
	"github.com/clipscreen/clipscreen/internal/httputil"
	"github.com/clipscreen/clipscreen/internal/quota"
	"github.com/clipscreen/clipscreen/internal/validate"
	"github.com/google/uuid"
)

// ObjectStore is the slice of the storage layer the analysis handlers and
// the retention worker need. Satisfied by *storage.Storage; nil disables
// video archiving.
type ObjectStore interface {
	StoreVideo(ctx context.Context, key string, contentType string, body io.Reader) error
	PlaybackURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

const playbackURLExpiry = time.Hour

// Handler carries the shared dependencies of the analysis endpoints.
type Handler struct {
	db             database.DBTX
	pipeline       *Pipeline
	store          ObjectStore
	auditor        *Auditor
	monthlyLimit   int
	maxUploadBytes int64
}

func NewHandler(db database.DBTX, pipeline *Pipeline, store ObjectStore, auditor *Auditor, monthlyLimit int, maxUploadBytes int64) *Handler {
	return &Handler{
		db:             db,
		pipeline:       pipeline,
		store:          store,
		auditor:        auditor,
		monthlyLimit:   monthlyLimit,
		maxUploadBytes: maxUploadBytes,
	}
}

type analyzeURLBody struct {
	YouTubeURL string `json:"youtubeUrl"`
}

// Analyze serves POST /api/analyze: the one-shot endpoint behind the app
// page that runs the whole pipeline and returns everything the results view
// needs. Uploaded files are archived to object storage when it is
// configured, so the uploads list can replay them later.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	allowed, err := quota.CheckAndConsume(r.Context(), h.db, userID, h.monthlyLimit)
	if err != nil {
		slog.Error("quota check failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !allowed {
		httputil.WriteError(w, http.StatusTooManyRequests, "monthly quota exceeded")
		return
	}

	var (
		result  *Result
		source  string
		fileKey string
	)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		source = "youtube"
		var body analyzeURLBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := validate.YouTubeURL(body.YouTubeURL); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		result, err = h.pipeline.RunURL(r.Context(), body.YouTubeURL)
	} else {
		source = "file"
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
		file, header, ferr := r.FormFile("video")
		if ferr != nil {
			httputil.WriteError(w, http.StatusBadRequest, "video file is required")
			return
		}
		defer file.Close()
		if msg := validate.VideoFilename(header.Filename); msg != "" {
			httputil.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		fileKey = h.archiveVideo(r.Context(), file, header)
		result, err = h.pipeline.RunVideo(r.Context(), header.Filename, file)
	}
	if err != nil {
		slog.Error("analysis failed", "error", err, "source", source)
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.recordUpload(r.Context(), userID, source, fileKey)
	if h.auditor != nil {
		h.auditor.Record(r, userID, source)
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// archiveVideo stores the uploaded file and rewinds it for the inference
// stage. Returns "" when archiving is off or fails; analysis proceeds
// either way.
func (h *Handler) archiveVideo(ctx context.Context, file multipart.File, header *multipart.FileHeader) string {
	if h.store == nil {
		return ""
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := fmt.Sprintf("videos/%s-%s", uuid.NewString(), header.Filename)
	if err := h.store.StoreVideo(ctx, key, contentType, file); err != nil {
		slog.Error("failed to archive video", "error", err, "key", key)
		key = ""
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		slog.Error("failed to rewind upload", "error", err)
		return ""
	}
	return key
}

func (h *Handler) recordUpload(ctx context.Context, userID, source, fileKey string) {
	var fileKeyArg *string
	if fileKey != "" {
		fileKeyArg = &fileKey
	}
	if _, err := h.db.Exec(ctx,
		`INSERT INTO uploads (key, user_id, file_key, source, analyzed) VALUES ($1, $2, $3, $4, true)`,
		"upload-"+uuid.NewString(), userID, fileKeyArg, source,
	); err != nil {
		slog.Error("failed to record upload", "error", err, "userID", userID)
	}
}

type uploadItem struct {
	Key         string  `json:"key"`
	Source      string  `json:"source"`
	Analyzed    bool    `json:"analyzed"`
	CreatedAt   string  `json:"createdAt"`
	PlaybackURL *string `json:"playbackUrl"`
}

// Uploads serves GET /api/uploads: the caller's analysis history, newest
// first, with presigned playback URLs for archived files.
func (h *Handler) Uploads(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	rows, err := h.db.Query(r.Context(),
		`SELECT key, file_key, source, analyzed, created_at FROM uploads
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT 50`,
		userID,
	)
	if err != nil {
		slog.Error("failed to list uploads", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer rows.Close()

	items := make([]uploadItem, 0)
	for rows.Next() {
		var (
			item      uploadItem
			fileKey   *string
			createdAt time.Time
		)
		if err := rows.Scan(&item.Key, &fileKey, &item.Source, &item.Analyzed, &createdAt); err != nil {
			slog.Error("failed to scan upload", "error", err)
			continue
		}
		item.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		if fileKey != nil && h.store != nil {
			if url, err := h.store.PlaybackURL(r.Context(), *fileKey, playbackURLExpiry); err == nil {
				item.PlaybackURL = &url
			}
		}
		items = append(items, item)
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"uploads": items})
}

type breakdownItem struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
}

type usageResponse struct {
	Limit     int             `json:"limit"`
	Used      int             `json:"used"`
	Remaining int             `json:"remaining"`
	Browsers  []breakdownItem `json:"browsers"`
	Systems   []breakdownItem `json:"systems"`
	Countries []breakdownItem `json:"countries"`
}

// Usage serves GET /api/usage: this month's quota position plus breakdowns
// of where the caller's analysis requests came from.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		httputil.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	remaining, err := quota.Remaining(r.Context(), h.db, userID, h.monthlyLimit)
	if err != nil {
		slog.Error("failed to read quota", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := usageResponse{
		Limit:     h.monthlyLimit,
		Used:      h.monthlyLimit - remaining,
		Remaining: remaining,
		Browsers:  h.breakdown(r.Context(), userID, "browser"),
		Systems:   h.breakdown(r.Context(), userID, "os"),
		Countries: h.breakdown(r.Context(), userID, "country"),
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// breakdown groups the caller's audit rows by one column and returns the
// share of each value, largest first. Empty values (unknown browser,
// unresolvable country) are skipped.
func (h *Handler) breakdown(ctx context.Context, userID, column string) []breakdownItem {
	items := make([]breakdownItem, 0)

	rows, err := h.db.Query(ctx,
		`SELECT `+column+`, COUNT(*) AS cnt FROM analysis_requests
		 WHERE user_id = $1 AND `+column+` <> ''
		 GROUP BY `+column+` ORDER BY cnt DESC`,
		userID,
	)
	if err != nil {
		slog.Error("failed to read usage breakdown", "error", err, "column", column)
		return items
	}
	defer rows.Close()

	type counted struct {
		name  string
		count int64
	}
	var counts []counted
	var total int64
	for rows.Next() {
		var c counted
		if err := rows.Scan(&c.name, &c.count); err == nil {
			counts = append(counts, c)
			total += c.count
		}
	}
	if total == 0 {
		return items
	}
	for _, c := range counts {
		items = append(items, breakdownItem{
			Name:       c.name,
			Percentage: math.Round(float64(c.count)/float64(total)*1000) / 10,
		})
	}
	return items
}
