package moderation

// Category is one of the five fixed moderation concern types. The set is
// closed: the parser never emits a category outside this list, although the
// JSON fast path passes the model's own category strings through untouched.
type Category string

const (
	CategoryHateSpeech     Category = "HATE_SPEECH"
	CategoryExplicit       Category = "EXPLICIT"
	CategoryHarassment     Category = "HARASSMENT"
	CategoryMisinformation Category = "MISINFORMATION"
	CategoryGuidelines     Category = "GUIDELINES"
)

type categorySpec struct {
	Code            Category
	Header          string
	DefaultSeverity int
}

// categorySpecs drives prompt construction and fallback extraction. Order
// matters: issues are emitted in this order, each category's own issues in
// text order.
var categorySpecs = []categorySpec{
	{CategoryHateSpeech, "HATE SPEECH", 7},
	{CategoryExplicit, "EXPLICIT CONTENT", 7},
	{CategoryHarassment, "HARASSMENT", 6},
	{CategoryMisinformation, "MISINFORMATION", 5},
	{CategoryGuidelines, "COMMUNITY GUIDELINES", 4},
}

func defaultSeverity(c Category) int {
	for _, spec := range categorySpecs {
		if spec.Code == c {
			return spec.DefaultSeverity
		}
	}
	return 5
}

// Label returns the human-readable name shown on the results page.
func (c Category) Label() string {
	switch c {
	case CategoryHateSpeech:
		return "Hate Speech"
	case CategoryExplicit:
		return "Explicit Content"
	case CategoryHarassment:
		return "Harassment"
	case CategoryMisinformation:
		return "Misinformation"
	case CategoryGuidelines:
		return "Policy Violation"
	default:
		return "Issue"
	}
}
