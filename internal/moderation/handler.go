package moderation

import (
	"log/slog"
	"net/http"

	"github.com/clipscreen/clipscreen/internal/httputil"
	"github.com/clipscreen/clipscreen/internal/validate"
)

type moderateRequest struct {
	Prompt string `json:"prompt"`
}

// Handler serves POST /api/moderation: it wraps the caller's transcript
// block in the full moderation instruction, asks the model, and returns the
// parsed report. Parsing never fails, so the only error responses are for a
// bad request body or a model failure.
func Handler(gen TextGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moderateRequest
		if err := httputil.DecodeJSON(r, &req, validate.MaxPromptLength+1024); err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Prompt == "" {
			httputil.WriteError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		if len(req.Prompt) > validate.MaxPromptLength {
			httputil.WriteError(w, http.StatusBadRequest, "prompt is too long")
			return
		}

		text, err := gen.GenerateText(r.Context(), BuildPrompt(req.Prompt))
		if err != nil {
			slog.Error("moderation generation failed", "error", err)
			httputil.WriteError(w, http.StatusInternalServerError, "failed to process moderation request")
			return
		}

		httputil.WriteJSON(w, http.StatusOK, ParseReport(text))
	}
}
