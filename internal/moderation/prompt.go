package moderation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/clipscreen/clipscreen/internal/inference"
)

// formatSeconds renders a timestamp the shortest way: no trailing zeros,
// "0" rather than "0.0".
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatTranscript renders utterances into the transcript block embedded in
// the moderation prompt: one numbered entry per utterance with its time
// range, quoted text, top two emotions and the leading sentiment.
func FormatTranscript(utterances []inference.Utterance) string {
	var b strings.Builder
	for i, u := range utterances {
		fmt.Fprintf(&b, "Utterance %d (%ss - %ss): %q\n",
			i+1, formatSeconds(u.StartTime), formatSeconds(u.EndTime), u.Text)

		emotions := u.Emotions
		if len(emotions) > 2 {
			emotions = emotions[:2]
		}
		labels := make([]string, 0, len(emotions))
		for _, e := range emotions {
			labels = append(labels, fmt.Sprintf("%s (%.1f%%)", e.Label, e.Confidence*100))
		}
		fmt.Fprintf(&b, "- Dominant emotions: %s\n", strings.Join(labels, ", "))

		if len(u.Sentiments) > 0 {
			s := u.Sentiments[0]
			fmt.Fprintf(&b, "- Sentiment: %s (%.1f%%)\n", s.Label, s.Confidence*100)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// BuildPrompt wraps a formatted transcript in the full moderation
// instruction. The answer structure it requests is exactly what the parser
// knows how to read back: numbered YES/NO category sections with bracketed
// timestamps, an overall assessment, a risk rating, and a KEY TIMESTAMPS
// JSON array.
func BuildPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString(`You are an AI content moderation expert.

Analyze the following video transcript data for policy violations and harmful content.
The transcript includes timestamps for each utterance. Your task is to identify problematic content
and associate it with the specific timestamps where it occurs.

`)
	b.WriteString(transcript)
	b.WriteString(`

Please evaluate if this content contains any of the following:
1. Hate speech or discrimination
2. Explicit or violent content
3. Harassment or bullying
4. Misinformation
5. Content that violates community guidelines

Provide a detailed analysis with the following structure:

1. HATE SPEECH: [YES/NO] - Followed by a brief explanation of why.
   If YES, include the exact timestamps where hate speech occurs in format: [start_time-end_time].

2. EXPLICIT CONTENT: [YES/NO] - Analyze for sexual, violent, or disturbing content.
   If YES, include the exact timestamps where explicit content occurs in format: [start_time-end_time].

3. HARASSMENT: [YES/NO] - Determine if there's targeted negativity, bullying, or mockery.
   If YES, include the exact timestamps where harassment occurs in format: [start_time-end_time].

4. MISINFORMATION: [YES/NO] - Check for obviously false claims presented as facts.
   If YES, include the exact timestamps where misinformation occurs in format: [start_time-end_time].

5. COMMUNITY GUIDELINES: [YES/NO] - Assess compliance with typical platform policies.
   If YES, include the exact timestamps of any violations in format: [start_time-end_time].

OVERALL ASSESSMENT: Provide a final judgment on whether this content is suitable for social media platforms.

RISK RATING: Rate the content on a scale of 1-10 (1 being completely safe, 10 being highly problematic).

KEY TIMESTAMPS: Provide a JSON-formatted list of problematic moments in the video with this format:
[
  {
    "timestamp": "start_time-end_time",
    "issue": "Brief description of the issue",
    "category": "HATE_SPEECH|EXPLICIT|HARASSMENT|MISINFORMATION|GUIDELINES",
    "severity": 1-10
  }
]
`)
	return b.String()
}
