package moderation

import "strings"

var (
	highSeverityTerms = []string{"severe", "extreme", "very problematic", "highly"}
	midSeverityTerms  = []string{"moderate", "concerning", "problematic"}
	lowSeverityTerms  = []string{"mild", "slight", "minor", "borderline"}
)

// EstimateSeverity scores a category section's wording on the 1-10 scale.
// High-severity terms win over mid over low; with no qualifier present the
// category's default applies. Explicit content and hate speech get a bump at
// the high tier.
func EstimateSeverity(text string, c Category) int {
	lower := strings.ToLower(text)
	if containsAny(lower, highSeverityTerms) {
		if c == CategoryExplicit || c == CategoryHateSpeech {
			return 9
		}
		return 8
	}
	if containsAny(lower, midSeverityTerms) {
		return 6
	}
	if containsAny(lower, lowSeverityTerms) {
		return 4
	}
	return defaultSeverity(c)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
