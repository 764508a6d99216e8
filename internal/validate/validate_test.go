package validate

import (
	"strings"
	"testing"
)

func TestAPIKeyName(t *testing.T) {
	if msg := APIKeyName("CI pipeline"); msg != "" {
		t.Errorf("expected ok, got %q", msg)
	}
	if msg := APIKeyName(strings.Repeat("x", 101)); msg == "" {
		t.Error("expected error for long name")
	}
}

func TestYouTubeURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ok   bool
	}{
		{"valid watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"valid short url", "https://youtu.be/dQw4w9WgXcQ", true},
		{"plain http", "http://youtube.com/watch?v=abc", true},
		{"empty", "", false},
		{"no scheme", "youtube.com/watch?v=abc", false},
		{"not a url", "://///", false},
		{"ftp scheme", "ftp://youtube.com/video", false},
		{"too long", "https://youtube.com/" + strings.Repeat("a", 500), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := YouTubeURL(tt.url)
			if tt.ok && msg != "" {
				t.Errorf("YouTubeURL(%q) = %q, want ok", tt.url, msg)
			}
			if !tt.ok && msg == "" {
				t.Errorf("YouTubeURL(%q) = ok, want error", tt.url)
			}
		})
	}
}

func TestVideoFilename(t *testing.T) {
	tests := []struct {
		name string
		file string
		ok   bool
	}{
		{"mp4", "clip.mp4", true},
		{"uppercase", "CLIP.MP4", true},
		{"mov", "screen.mov", true},
		{"avi", "old.avi", true},
		{"webm", "clip.webm", false},
		{"no extension", "clip", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := VideoFilename(tt.file)
			if tt.ok && msg != "" {
				t.Errorf("VideoFilename(%q) = %q, want ok", tt.file, msg)
			}
			if !tt.ok && msg == "" {
				t.Errorf("VideoFilename(%q) = ok, want error", tt.file)
			}
		})
	}
}
