package inference

import (
	"context"
	"io"
	"time"
)

const demoDelay = 2 * time.Second

// DemoAnalyzer stands in for the inference service when no INFERENCE_URL is
// configured. It waits a fixed moment so the app page's progress states are
// visible, then returns canned utterances.
type DemoAnalyzer struct{}

func (DemoAnalyzer) AnalyzeURL(ctx context.Context, _ string) (*Result, error) {
	return demoResult(ctx)
}

func (DemoAnalyzer) AnalyzeVideo(ctx context.Context, _ string, _ io.Reader) (*Result, error) {
	return demoResult(ctx)
}

func demoResult(ctx context.Context) (*Result, error) {
	select {
	case <-time.After(demoDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Result{Utterances: demoUtterances()}, nil
}

func demoUtterances() []Utterance {
	return []Utterance{
		{
			Text:      "Hey everyone, welcome back to the channel.",
			StartTime: 0,
			EndTime:   3.2,
			Emotions: []Score{
				{Label: "joy", Confidence: 0.81},
				{Label: "excitement", Confidence: 0.12},
			},
			Sentiments: []Score{{Label: "positive", Confidence: 0.93}},
		},
		{
			Text:      "Today we're reviewing the worst product I have ever used.",
			StartTime: 3.2,
			EndTime:   7.8,
			Emotions: []Score{
				{Label: "disgust", Confidence: 0.64},
				{Label: "anger", Confidence: 0.21},
			},
			Sentiments: []Score{{Label: "negative", Confidence: 0.77}},
		},
		{
			Text:      "Honestly, whoever designed this should be embarrassed.",
			StartTime: 7.8,
			EndTime:   11.5,
			Emotions: []Score{
				{Label: "anger", Confidence: 0.58},
				{Label: "contempt", Confidence: 0.3},
			},
			Sentiments: []Score{{Label: "negative", Confidence: 0.85}},
		},
		{
			Text:      "That said, the packaging was genuinely nice.",
			StartTime: 11.5,
			EndTime:   14.9,
			Emotions: []Score{
				{Label: "neutral", Confidence: 0.55},
				{Label: "joy", Confidence: 0.25},
			},
			Sentiments: []Score{{Label: "positive", Confidence: 0.6}},
		},
	}
}
