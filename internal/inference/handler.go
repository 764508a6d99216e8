package inference

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/clipscreen/clipscreen/internal/auth"
	"github.com/clipscreen/clipscreen/internal/database"
	"github.com/clipscreen/clipscreen/internal/httputil"
	"github.com/clipscreen/clipscreen/internal/quota"
	"github.com/clipscreen/clipscreen/internal/validate"
	"github.com/google/uuid"
)

// AuditFunc records one analysis request for usage reporting. A nil func
// disables auditing.
type AuditFunc func(r *http.Request, userID, source string)

type urlBody struct {
	YouTubeURL string `json:"youtubeUrl"`
}

// Handler serves POST /api/inference. The caller is identified by API key
// middleware upstream; here a monthly analysis is consumed from their quota,
// the video (YouTube URL or multipart upload) is forwarded to the inference
// service, and an upload record is written for usage history.
func Handler(db database.DBTX, analyzer Analyzer, monthlyLimit int, maxUploadBytes int64, audit AuditFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserIDFromContext(r.Context())
		if userID == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "API key required")
			return
		}

		allowed, err := quota.CheckAndConsume(r.Context(), db, userID, monthlyLimit)
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
			result *Result
			source string
		)
		if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			result, err = analyzeFromURL(w, r, analyzer)
			source = "youtube"
		} else {
			result, err = analyzeFromUpload(w, r, analyzer, maxUploadBytes)
			source = "file"
		}
		if err != nil {
			// The analyze helpers have already written the response.
			return
		}

		if _, err := db.Exec(r.Context(),
			`INSERT INTO uploads (key, user_id, source, analyzed) VALUES ($1, $2, $3, true)`,
			"upload-"+uuid.NewString(), userID, source,
		); err != nil {
			slog.Error("failed to record upload", "error", err, "userID", userID)
		}

		if audit != nil {
			audit(r, userID, source)
		}

		httputil.WriteJSON(w, http.StatusOK, Analysis{Analysis: *result})
	}
}

var errHandled = errors.New("response already written")

func analyzeFromURL(w http.ResponseWriter, r *http.Request, analyzer Analyzer) (*Result, error) {
	var body urlBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return nil, errHandled
	}
	if msg := validate.YouTubeURL(body.YouTubeURL); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return nil, errHandled
	}

	result, err := analyzer.AnalyzeURL(r.Context(), body.YouTubeURL)
	if err != nil {
		slog.Error("inference failed", "error", err, "source", "youtube")
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return nil, errHandled
	}
	return result, nil
}

func analyzeFromUpload(w http.ResponseWriter, r *http.Request, analyzer Analyzer, maxUploadBytes int64) (*Result, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "video file is required")
		return nil, errHandled
	}
	defer file.Close()

	if msg := validate.VideoFilename(header.Filename); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return nil, errHandled
	}

	result, err := analyzer.AnalyzeVideo(r.Context(), header.Filename, file)
	if err != nil {
		slog.Error("inference failed", "error", err, "source", "file")
		httputil.WriteError(w, http.StatusInternalServerError, "internal server error")
		return nil, errHandled
	}
	return result, nil
}
