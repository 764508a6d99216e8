package server

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/clipscreen/clipscreen/internal/analysis"
	"github.com/clipscreen/clipscreen/internal/httputil"
	"github.com/clipscreen/clipscreen/internal/inference"
	"github.com/clipscreen/clipscreen/internal/moderation"
	"github.com/clipscreen/clipscreen/internal/timeline"
)

const maxResultsBodyBytes = 4 << 20

var resultsTemplate = template.Must(template.New("results").Parse(`<div id="analysis-pane" class="pane">
    <div class="risk-card">
        <div class="risk-head">
            <span class="risk-label">Risk Score</span>
            <span class="risk-value risk-{{.Risk.Color}}">{{.RiskScore}}/10 · {{.Risk.Level}}</span>
        </div>
        <div class="risk-track"><div class="risk-fill risk-bg-{{.Risk.Color}}" style="width: {{.RiskPercent}}%"></div></div>
    </div>
    <div class="summary-card">
        <h3>Overall Assessment</h3>
        <p>{{.Overall}}</p>
    </div>
    {{range .Sections}}
    <div class="section-card {{if .Detected}}section-flagged{{end}}">
        <div class="section-head">
            <span class="section-title">{{.Title}}</span>
            <span class="section-badge {{if .Detected}}badge-flagged{{else}}badge-clear{{end}}">{{if .Detected}}Detected{{else}}Not detected{{end}}</span>
        </div>
        <p>{{.Description}}</p>
    </div>
    {{end}}
    <h3 class="issues-heading">Flagged Moments</h3>
    {{if .Issues}}
    <ul class="issue-list">
        {{range .Issues}}
        <li class="issue-item" style="border-left: 4px solid {{.Color}}; background: {{.Background}}">
            <span class="issue-icon">{{.Icon}}</span>
            <div class="issue-body">
                <div class="issue-head">
                    <span class="issue-label" style="color: {{.Color}}">{{.Label}}</span>
                    {{if .HasSpan}}<button class="issue-time seek-to" data-start="{{.Start}}">{{.TimeRange}}</button>{{else}}<span class="issue-time">{{.TimeRange}}</span>{{end}}
                    <span class="issue-severity">Severity {{.Severity}}/10</span>
                </div>
                <p class="issue-desc">{{.Description}}</p>
            </div>
        </li>
        {{end}}
    </ul>
    {{else}}
    <p class="issues-empty">No specific moments were flagged.</p>
    {{end}}
    <details class="raw-answer">
        <summary>Full model response</summary>
        <pre>{{.RawText}}</pre>
    </details>
</div>
<div id="sentiment-pane" class="pane">
    {{range .Utterances}}
    <div class="utterance-card">
        <div class="utterance-head">
            <button class="utterance-time seek-to" data-start="{{.Start}}">{{.TimeRange}}</button>
            {{if .Flagged}}<span class="utterance-flag" style="color: {{.FlagColor}}">{{.FlagIcon}} {{.FlagLabel}}</span>{{end}}
        </div>
        <p class="utterance-text">&ldquo;{{.Text}}&rdquo;</p>
        <div class="score-row">
            {{range .Emotions}}<span class="score-chip">{{.Label}} {{.Percent}}</span>{{end}}
        </div>
        <div class="score-row">
            {{range .Sentiments}}<span class="score-chip score-sentiment">{{.Label}} {{.Percent}}</span>{{end}}
        </div>
    </div>
    {{else}}
    <p class="issues-empty">No utterances were returned by the analysis.</p>
    {{end}}
</div>
<template id="issue-markers">
    {{range .Markers}}<div class="marker" data-start="{{.Start}}" data-end="{{.End}}" data-icon="{{.Icon}}" data-label="{{.Label}}" data-severity="{{.Severity}}" data-timerange="{{.TimeRange}}" data-desc="{{.Description}}" style="background: {{.Color}}{{if .Positioned}}; left: {{.Left}}%; width: {{.Width}}%{{end}}"></div>
    {{end}}
</template>`))

type resultsRisk struct {
	Level string
	Color string
}

type resultsSection struct {
	Title       string
	Detected    bool
	Description string
}

type resultsIssue struct {
	Label       string
	Color       string
	Background  string
	Icon        string
	Severity    int
	Description string
	TimeRange   string
	Start       float64
	End         float64
	HasSpan     bool
}

type resultsScore struct {
	Label   string
	Percent string
}

type resultsUtterance struct {
	Text       string
	Start      float64
	TimeRange  string
	Flagged    bool
	FlagLabel  string
	FlagColor  string
	FlagIcon   string
	Emotions   []resultsScore
	Sentiments []resultsScore
}

// resultsMarker is one seek-bar marker. When the page reports the video
// duration the geometry is computed here; otherwise the inline script places
// the marker once metadata loads.
type resultsMarker struct {
	Start       float64
	End         float64
	Left        float64
	Width       float64
	Positioned  bool
	Color       string
	Icon        string
	Label       string
	Severity    int
	TimeRange   string
	Description string
}

type resultsData struct {
	RiskScore   int
	RiskPercent int
	Risk        resultsRisk
	Overall     string
	Sections    []resultsSection
	Issues      []resultsIssue
	Markers     []resultsMarker
	Utterances  []resultsUtterance
	RawText     string
}

// resultsRequest is the /results body: the /api/analyze response plus the
// video duration when the page already knows it.
type resultsRequest struct {
	analysis.Result
	Duration float64 `json:"duration"`
}

// handleResultsFragment turns a finished analysis back into the HTML the app
// page swaps into its tabs. The page posts the /api/analyze response here so
// category styling, risk bands, and time formatting stay in one place.
func (s *Server) handleResultsFragment(w http.ResponseWriter, r *http.Request) {
	var req resultsRequest
	if err := httputil.DecodeJSON(r, &req, maxResultsBodyBytes); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid analysis result")
		return
	}

	data := buildResultsData(req.Result, req.Duration)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := resultsTemplate.Execute(w, data); err != nil {
		slog.Error("failed to render results fragment", "error", err)
	}
}

func buildResultsData(result analysis.Result, duration float64) resultsData {
	band := timeline.RiskLevel(result.Moderation.RiskScore)

	issues := make([]resultsIssue, 0, len(result.Moderation.Issues))
	for _, issue := range result.Moderation.Issues {
		style := timeline.CategoryStyle(issue.Category)
		view := resultsIssue{
			Label:       style.Label,
			Color:       style.Color,
			Background:  style.Background,
			Icon:        style.Icon,
			Severity:    issue.Severity,
			Description: issue.Issue,
			TimeRange:   issue.Timestamp,
		}
		if start, end, ok := timeline.ParseSpan(issue.Timestamp); ok {
			view.Start = start
			view.End = end
			view.HasSpan = true
			view.TimeRange = timeline.FormatTime(start) + " - " + timeline.FormatTime(end)
		}
		issues = append(issues, view)
	}

	markers := buildMarkers(result.Moderation.Issues, duration)

	sections := make([]resultsSection, 0, len(result.Summary.Sections))
	for _, section := range result.Summary.Sections {
		sections = append(sections, resultsSection{
			Title:       section.Title,
			Detected:    section.Detected,
			Description: section.Description,
		})
	}

	utterances := make([]resultsUtterance, 0, len(result.Analysis.Utterances))
	for _, u := range result.Analysis.Utterances {
		view := resultsUtterance{
			Text:       u.Text,
			Start:      u.StartTime,
			TimeRange:  timeline.FormatTime(u.StartTime) + " - " + timeline.FormatTime(u.EndTime),
			Emotions:   scoreViews(u.Emotions),
			Sentiments: scoreViews(u.Sentiments),
		}
		if issue := timeline.At(result.Moderation.Issues, u.StartTime); issue != nil {
			style := timeline.CategoryStyle(issue.Category)
			view.Flagged = true
			view.FlagLabel = style.Label
			view.FlagColor = style.Color
			view.FlagIcon = style.Icon
		}
		utterances = append(utterances, view)
	}

	return resultsData{
		RiskScore:   result.Moderation.RiskScore,
		RiskPercent: result.Moderation.RiskScore * 10,
		Risk:        resultsRisk{Level: band.Level, Color: band.Color},
		Overall:     result.Summary.Overall,
		Sections:    sections,
		Issues:      issues,
		Markers:     markers,
		Utterances:  utterances,
		RawText:     result.Moderation.RawText,
	}
}

// buildMarkers prepares the seek-bar marker template. With a known duration
// the geometry comes from the timeline layout; without one the markers carry
// only their spans and the page positions them on loadedmetadata.
func buildMarkers(issues []moderation.Issue, duration float64) []resultsMarker {
	var markers []resultsMarker
	if duration > 0 {
		for _, m := range timeline.Layout(issues, duration) {
			style := timeline.CategoryStyle(m.Issue.Category)
			markers = append(markers, resultsMarker{
				Start:       m.Start,
				End:         m.End,
				Left:        m.Left,
				Width:       m.Width,
				Positioned:  true,
				Color:       style.Color,
				Icon:        style.Icon,
				Label:       style.Label,
				Severity:    m.Issue.Severity,
				TimeRange:   timeline.FormatTime(m.Start) + " - " + timeline.FormatTime(m.End),
				Description: m.Issue.Issue,
			})
		}
		return markers
	}
	for _, issue := range issues {
		start, end, ok := timeline.ParseSpan(issue.Timestamp)
		if !ok {
			continue
		}
		style := timeline.CategoryStyle(issue.Category)
		markers = append(markers, resultsMarker{
			Start:       start,
			End:         end,
			Color:       style.Color,
			Icon:        style.Icon,
			Label:       style.Label,
			Severity:    issue.Severity,
			TimeRange:   timeline.FormatTime(start) + " - " + timeline.FormatTime(end),
			Description: issue.Issue,
		})
	}
	return markers
}

func scoreViews(scores []inference.Score) []resultsScore {
	views := make([]resultsScore, 0, len(scores))
	for _, score := range scores {
		views = append(views, resultsScore{
			Label:   score.Label,
			Percent: fmt.Sprintf("%.1f%%", score.Confidence*100),
		})
	}
	return views
}
