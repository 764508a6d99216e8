package moderation

import (
	"regexp"
	"strings"
)

// SummarySection is one per-category verdict for the results page.
type SummarySection struct {
	Title       string `json:"title"`
	Detected    bool   `json:"detected"`
	Description string `json:"description"`
}

type Summary struct {
	Sections []SummarySection `json:"sections"`
	Overall  string           `json:"overall"`
}

type summarySpec struct {
	title      string
	keyword    string
	presenceRe *regexp.Regexp
	detectedRe *regexp.Regexp
}

var summarySpecs = []summarySpec{
	{"Hate Speech", "hate speech",
		regexp.MustCompile(`(?i)HATE SPEECH|1\.\s+`),
		regexp.MustCompile(`(?i)HATE SPEECH.*?(YES|TRUE|DETECTED)`)},
	{"Explicit Content", "explicit",
		regexp.MustCompile(`(?i)EXPLICIT CONTENT|2\.\s+`),
		regexp.MustCompile(`(?i)EXPLICIT CONTENT.*?(YES|TRUE|DETECTED)`)},
	{"Harassment", "harass",
		regexp.MustCompile(`(?i)HARASSMENT|3\.\s+`),
		regexp.MustCompile(`(?i)HARASSMENT.*?(YES|TRUE|DETECTED)`)},
	{"Misinformation", "misinformation",
		regexp.MustCompile(`(?i)MISINFORMATION|4\.\s+`),
		regexp.MustCompile(`(?i)MISINFORMATION.*?(YES|TRUE|DETECTED)`)},
	{"Community Guidelines Violation", "guideline",
		regexp.MustCompile(`(?i)COMMUNITY GUIDELINES|5\.\s+`),
		regexp.MustCompile(`(?i)COMMUNITY GUIDELINES.*?(YES|TRUE|DETECTED)`)},
}

// Summarize condenses the model's answer into per-category verdicts and an
// overall assessment for display. Detection is keyed off the category header
// being followed by YES on the same line; descriptions are the first
// sentences mentioning the category. An answer with no recognizable sections
// gets the default all-clear sections.
func Summarize(text string) Summary {
	sections := make([]SummarySection, 0, len(summarySpecs))
	for _, spec := range summarySpecs {
		if !spec.presenceRe.MatchString(text) {
			continue
		}
		sections = append(sections, SummarySection{
			Title:       spec.title,
			Detected:    spec.detectedRe.MatchString(text),
			Description: sentencesContaining(text, spec.keyword, 2),
		})
	}
	if len(sections) == 0 {
		sections = defaultSections()
	}

	overall := sentencesContaining(text, "OVERALL ASSESSMENT", 4)
	if overall == "" {
		overall = sentencesContaining(text, "overall", 3)
	}
	if overall == "" {
		overall = sentencesContaining(text, "suitable", 3)
	}
	if overall == "" {
		overall = "No overall assessment provided."
	}

	return Summary{Sections: sections, Overall: overall}
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// sentencesContaining returns up to max sentences mentioning keyword,
// rejoined with periods, or "" when none mention it.
func sentencesContaining(text, keyword string, max int) string {
	keyword = strings.ToLower(keyword)
	var picked []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if strings.Contains(strings.ToLower(s), keyword) {
			picked = append(picked, s)
			if len(picked) == max {
				break
			}
		}
	}
	if len(picked) == 0 {
		return ""
	}
	return strings.Join(picked, ". ") + "."
}

func defaultSections() []SummarySection {
	return []SummarySection{
		{
			Title:       "Policy Violations",
			Description: "No specific policy violations detected in the content.",
		},
		{
			Title:       "Content Safety",
			Description: "The content appears to comply with general content guidelines.",
		},
	}
}
