package validate

import (
	"fmt"
	"net/url"
	"strings"
)

// Text field length limits — single source of truth for the API handlers.
const (
	MaxAPIKeyNameLength = 100
	MaxYouTubeURLLength = 500
	MaxFilenameLength   = 255
	MaxPromptLength     = 200 * 1024
)

func checkLen(value string, max int, field string) string {
	if len(value) > max {
		return fmt.Sprintf("%s must be %d characters or fewer", field, max)
	}
	return ""
}

func APIKeyName(s string) string { return checkLen(s, MaxAPIKeyNameLength, "API key name") }

// YouTubeURL returns a human-readable problem with the URL, or "" when it
// is acceptable to forward to the inference service.
func YouTubeURL(s string) string {
	if s == "" {
		return "YouTube URL is required"
	}
	if msg := checkLen(s, MaxYouTubeURLLength, "YouTube URL"); msg != "" {
		return msg
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "invalid YouTube URL format"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "invalid YouTube URL format"
	}
	return ""
}

var allowedVideoExtensions = []string{".mp4", ".mov", ".avi"}

// VideoFilename checks the uploaded file name against the formats the
// inference service accepts.
func VideoFilename(name string) string {
	if name == "" {
		return "video file is required"
	}
	if msg := checkLen(name, MaxFilenameLength, "file name"); msg != "" {
		return msg
	}
	lower := strings.ToLower(name)
	for _, ext := range allowedVideoExtensions {
		if strings.HasSuffix(lower, ext) {
			return ""
		}
	}
	return "unsupported file format, upload MP4, MOV, or AVI"
}
