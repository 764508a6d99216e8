package moderation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// ParseReport turns the model's free-form answer into a Report. It never
// fails: when the answer carries none of the requested structure the result
// degrades to a low default risk score and an empty issue list.
func ParseReport(text string) Report {
	return Report{
		RawText:   text,
		RiskScore: ExtractRiskScore(text),
		Issues:    ExtractIssues(text),
	}
}

var riskScorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)RISK RATING:.*?(\d+)`),
	regexp.MustCompile(`(?i)rate.*?(\d+).*?out of 10`),
	regexp.MustCompile(`(?i)(\d+)/10`),
}

// ExtractRiskScore recovers the 1-10 risk rating from the answer. Patterns
// are tried in priority order; a matched integer outside [1,10] rejects that
// pattern and extraction moves on. With no usable pattern the score is
// estimated from wording, defaulting to 2.
func ExtractRiskScore(text string) int {
	for _, re := range riskScorePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		score, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if score >= 1 && score <= 10 {
			return score
		}
	}

	lower := strings.ToLower(text)
	for _, term := range []string{"not suitable", "high risk", "severe violation"} {
		if strings.Contains(lower, term) {
			return 8
		}
	}
	for _, term := range []string{"potentially problematic", "medium risk", "borderline"} {
		if strings.Contains(lower, term) {
			return 5
		}
	}
	return 2
}

var keyTimestampsJSONRe = regexp.MustCompile(`(?is)KEY TIMESTAMPS:.*?(\[\s*\{.*?\}\s*\])`)

// looseIssue tolerates the shapes models actually emit for KEY TIMESTAMPS
// entries, like a fractional severity.
type looseIssue struct {
	Timestamp string   `json:"timestamp"`
	Issue     string   `json:"issue"`
	Category  Category `json:"category"`
	Severity  float64  `json:"severity"`
}

// ExtractIssues recovers the issue list. The KEY TIMESTAMPS JSON array is
// the fast path and its elements are trusted verbatim; when it is missing or
// malformed the per-category regex fallback runs instead.
func ExtractIssues(text string) []Issue {
	if m := keyTimestampsJSONRe.FindStringSubmatch(text); m != nil {
		var loose []looseIssue
		if err := json.Unmarshal([]byte(m[1]), &loose); err == nil {
			issues := make([]Issue, len(loose))
			for i, l := range loose {
				issues[i] = Issue{
					Timestamp: l.Timestamp,
					Issue:     l.Issue,
					Category:  l.Category,
					Severity:  int(l.Severity),
				}
			}
			return issues
		}
	}

	issues := make([]Issue, 0)
	for _, spec := range categorySpecs {
		issues = append(issues, extractCategoryIssues(text, spec)...)
	}
	return issues
}

var (
	timestampPairRe  = regexp.MustCompile(`\[(\d+\.?\d*)-(\d+\.?\d*)\]`)
	sectionEndRe     = regexp.MustCompile(`(?i)\d\.\s|OVERALL`)
	leadingDotRe     = regexp.MustCompile(`^\.\s*`)
	bracketTokenRe   = regexp.MustCompile(`\s*\[\d+\.?\d*-\d+\.?\d*\]\s*`)
	sectionHeaderRes = buildSectionHeaderRes()
)

func buildSectionHeaderRes() map[Category]*regexp.Regexp {
	res := make(map[Category]*regexp.Regexp, len(categorySpecs))
	for _, spec := range categorySpecs {
		res[spec.Code] = regexp.MustCompile(`(?i)` + spec.Header + `:\s*YES`)
	}
	return res
}

// categorySection returns the span of text belonging to one category:
// starting at the category's header marked YES and ending just before the
// next numbered list item, the OVERALL marker, or end of text. Categories
// that are absent or marked NO have no section and contribute no issues.
func categorySection(text string, code Category) (string, bool) {
	loc := sectionHeaderRes[code].FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	section := text[loc[0]:]
	headerLen := loc[1] - loc[0]
	if end := sectionEndRe.FindStringIndex(section[headerLen:]); end != nil {
		section = section[:headerLen+end[0]]
	}
	return section, true
}

func extractCategoryIssues(text string, spec categorySpec) []Issue {
	section, ok := categorySection(text, spec.Code)
	if !ok {
		return nil
	}

	var issues []Issue
	severity := EstimateSeverity(section, spec.Code)
	for _, m := range timestampPairRe.FindAllStringSubmatchIndex(section, -1) {
		issues = append(issues, Issue{
			Timestamp: section[m[2]:m[3]] + "-" + section[m[4]:m[5]],
			Issue:     deriveDescription(section, m[0], m[1]),
			Category:  spec.Code,
			Severity:  severity,
		})
	}
	return issues
}

// deriveDescription builds a short human-readable description for one
// bracketed timestamp: the text between the nearest preceding period and the
// nearest following period (or end of section), with the timestamp token
// itself removed and the whole thing capped at 100 characters.
func deriveDescription(section string, matchStart, matchEnd int) string {
	ctxStart := strings.LastIndex(section[:matchStart+1], ".")
	if ctxStart < 0 {
		ctxStart = 0
	}

	desc := section[ctxStart:]
	if rel := strings.Index(section[matchEnd:], "."); rel >= 0 {
		desc = section[ctxStart : matchEnd+rel]
	}

	desc = strings.TrimSpace(desc)
	desc = leadingDotRe.ReplaceAllString(desc, "")
	if loc := bracketTokenRe.FindStringIndex(desc); loc != nil {
		desc = desc[:loc[0]] + " " + desc[loc[1]:]
	}

	if len(desc) > 100 {
		desc = desc[:97] + "..."
	}
	return desc
}
