package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_AnalyzeURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %q, want /predict", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var body urlRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body.YouTubeURL != "https://youtu.be/x" {
			t.Errorf("youtubeUrl = %q", body.YouTubeURL)
		}
		json.NewEncoder(w).Encode(Result{Utterances: []Utterance{
			{Text: "hi", StartTime: 0, EndTime: 1},
		}})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	result, err := client.AnalyzeURL(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Utterances) != 1 || result.Utterances[0].Text != "hi" {
		t.Errorf("result = %+v", result)
	}
}

func TestClient_AnalyzeVideo(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("video")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "clip.mp4" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(Result{})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	if _, err := client.AnalyzeVideo(context.Background(), "clip.mp4", strings.NewReader("bytes")); err != nil {
		t.Fatal(err)
	}
}

func TestClient_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)
	if _, err := client.AnalyzeURL(context.Background(), "https://youtu.be/x"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestDemoAnalyzer(t *testing.T) {
	result, err := DemoAnalyzer{}.AnalyzeURL(context.Background(), "https://youtu.be/x")
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Utterances) == 0 {
		t.Fatal("demo returned no utterances")
	}
	for _, u := range result.Utterances {
		if len(u.Emotions) == 0 || len(u.Sentiments) == 0 {
			t.Errorf("utterance %q missing scores", u.Text)
		}
		if u.EndTime < u.StartTime {
			t.Errorf("utterance %q has end before start", u.Text)
		}
	}
}

func TestDemoAnalyzer_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := (DemoAnalyzer{}).AnalyzeVideo(ctx, "clip.mp4", strings.NewReader("")); err == nil {
		t.Fatal("expected context error")
	}
}
