package moderation

import (
	"strings"
	"testing"
)

const sampleAnswer = `1. HATE SPEECH: YES - The speaker uses hate speech against a minority group.

2. EXPLICIT CONTENT: NO - Nothing explicit was found.

3. HARASSMENT: NO - No targeted negativity was found.

4. MISINFORMATION: NO - No false claims presented as facts.

5. COMMUNITY GUIDELINES: YES - The guideline on slurs is violated.

OVERALL ASSESSMENT: This content is not suitable for social media platforms.
`

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleAnswer)

	if len(summary.Sections) != 5 {
		t.Fatalf("got %d sections, want 5", len(summary.Sections))
	}

	wantDetected := map[string]bool{
		"Hate Speech":                    true,
		"Explicit Content":               false,
		"Harassment":                     false,
		"Misinformation":                 false,
		"Community Guidelines Violation": true,
	}
	for _, s := range summary.Sections {
		want, ok := wantDetected[s.Title]
		if !ok {
			t.Errorf("unexpected section title %q", s.Title)
			continue
		}
		if s.Detected != want {
			t.Errorf("section %q detected = %v, want %v", s.Title, s.Detected, want)
		}
	}

	if !strings.Contains(summary.Overall, "not suitable for social media platforms") {
		t.Errorf("overall = %q", summary.Overall)
	}
}

func TestSummarize_SectionDescriptions(t *testing.T) {
	summary := Summarize(sampleAnswer)
	var hate SummarySection
	for _, s := range summary.Sections {
		if s.Title == "Hate Speech" {
			hate = s
		}
	}
	if !strings.Contains(hate.Description, "hate speech against a minority group") {
		t.Errorf("hate speech description = %q", hate.Description)
	}
}

func TestSummarize_NoSectionsGetsDefaults(t *testing.T) {
	summary := Summarize("Nothing resembling the requested structure.")

	if len(summary.Sections) != 2 {
		t.Fatalf("got %d sections, want 2 defaults", len(summary.Sections))
	}
	for _, s := range summary.Sections {
		if s.Detected {
			t.Errorf("default section %q marked detected", s.Title)
		}
	}
	if summary.Overall != "No overall assessment provided." {
		t.Errorf("overall = %q", summary.Overall)
	}
}

func TestSummarize_OverallFallbacks(t *testing.T) {
	// No OVERALL ASSESSMENT header, but a sentence mentioning "overall".
	text := "1. HATE SPEECH: NO - Clean. The overall tone is relaxed."
	summary := Summarize(text)
	if !strings.Contains(summary.Overall, "overall tone is relaxed") {
		t.Errorf("overall = %q", summary.Overall)
	}

	// Neither header nor "overall", but "suitable" appears.
	text = "1. HATE SPEECH: NO - Clean. This is suitable for all audiences."
	summary = Summarize(text)
	if !strings.Contains(summary.Overall, "suitable for all audiences") {
		t.Errorf("overall = %q", summary.Overall)
	}
}
