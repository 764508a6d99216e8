package timeline

// Package timeline maps moderation issues onto video playback: seek-bar
// marker geometry, hover resolution, and the display formats the results
// page shares with its inline script.

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/clipscreen/clipscreen/internal/moderation"
)

// ParseSpan splits an issue timestamp "start-end" into seconds. Both parts
// must be non-negative numbers with start <= end; a zero-length span
// (start == end) is fine.
func ParseSpan(timestamp string) (start, end float64, ok bool) {
	parts := strings.SplitN(timestamp, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err1 := strconv.ParseFloat(parts[0], 64)
	end, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || start < 0 || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// Marker positions one issue on the seek bar, in percent of total duration.
type Marker struct {
	Issue moderation.Issue
	Start float64
	End   float64
	Left  float64
	Width float64
}

// Layout computes seek-bar geometry for every issue with a parseable span.
// With an unknown or zero duration there is nothing to place.
func Layout(issues []moderation.Issue, duration float64) []Marker {
	if duration <= 0 {
		return nil
	}
	markers := make([]Marker, 0, len(issues))
	for _, issue := range issues {
		start, end, ok := ParseSpan(issue.Timestamp)
		if !ok {
			continue
		}
		markers = append(markers, Marker{
			Issue: issue,
			Start: start,
			End:   end,
			Left:  start / duration * 100,
			Width: (end - start) / duration * 100,
		})
	}
	return markers
}

// At resolves a hover position to the first issue in list order whose span
// contains t. Overlapping issues do not stack; the first one wins.
func At(issues []moderation.Issue, t float64) *moderation.Issue {
	for i := range issues {
		start, end, ok := ParseSpan(issues[i].Timestamp)
		if !ok {
			continue
		}
		if t >= start && t <= end {
			return &issues[i]
		}
	}
	return nil
}

// FormatTime renders seconds as MM:SS for the time display under the seek
// bar. Minutes can exceed two digits for long videos.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		return "00:00"
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// RiskBand is the displayed classification of an overall risk score.
type RiskBand struct {
	Level string
	Color string
}

// RiskLevel buckets a 1-10 risk score into the three display bands.
func RiskLevel(score int) RiskBand {
	switch {
	case score <= 3:
		return RiskBand{Level: "Low Risk", Color: "green"}
	case score <= 6:
		return RiskBand{Level: "Medium Risk", Color: "orange"}
	default:
		return RiskBand{Level: "High Risk", Color: "red"}
	}
}

// Style is the presentation treatment of one issue category.
type Style struct {
	Label      string
	Color      string
	Background string
	Icon       string
}

var categoryStyles = map[moderation.Category]Style{
	moderation.CategoryHateSpeech:     {Color: "#DC2626", Background: "#FEE2E2", Icon: "⚠️"},
	moderation.CategoryExplicit:       {Color: "#DB2777", Background: "#FCE7F3", Icon: "🔞"},
	moderation.CategoryHarassment:     {Color: "#F97316", Background: "#FFEDD5", Icon: "👊"},
	moderation.CategoryMisinformation: {Color: "#EAB308", Background: "#FEF3C7", Icon: "❓"},
	moderation.CategoryGuidelines:     {Color: "#3B82F6", Background: "#DBEAFE", Icon: "📜"},
}

// CategoryStyle returns the label, colors, and icon for a category. Unknown
// categories, which the JSON fast path can produce, get a neutral treatment.
func CategoryStyle(c moderation.Category) Style {
	style, ok := categoryStyles[c]
	if !ok {
		style = Style{Color: "#6B7280", Background: "#F3F4F6", Icon: "⚠️"}
	}
	style.Label = c.Label()
	return style
}
