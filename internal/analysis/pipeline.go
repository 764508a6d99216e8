package analysis

import (
	"context"
	"fmt"
	"io"

	"github.com/clipscreen/clipscreen/internal/inference"
	"github.com/clipscreen/clipscreen/internal/moderation"
)

// Result is the outcome of a full analysis: the raw sentiment utterances,
// the parsed moderation report, and the display summary.
type Result struct {
	Analysis   inference.Result  `json:"analysis"`
	Moderation moderation.Report `json:"moderation"`
	Summary    moderation.Summary `json:"summary"`
}

// Pipeline runs the two analysis stages in order: sentiment inference first,
// then moderation over the transcript the inference produced. The stages are
// strictly sequential because the moderation prompt is built from the
// inference output.
type Pipeline struct {
	analyzer inference.Analyzer
	gen      moderation.TextGenerator
}

func NewPipeline(analyzer inference.Analyzer, gen moderation.TextGenerator) *Pipeline {
	return &Pipeline{analyzer: analyzer, gen: gen}
}

// RunURL analyzes a YouTube video by URL.
func (p *Pipeline) RunURL(ctx context.Context, youtubeURL string) (*Result, error) {
	inferred, err := p.analyzer.AnalyzeURL(ctx, youtubeURL)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	return p.moderate(ctx, inferred)
}

// RunVideo analyzes an uploaded video file.
func (p *Pipeline) RunVideo(ctx context.Context, filename string, video io.Reader) (*Result, error) {
	inferred, err := p.analyzer.AnalyzeVideo(ctx, filename, video)
	if err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}
	return p.moderate(ctx, inferred)
}

func (p *Pipeline) moderate(ctx context.Context, inferred *inference.Result) (*Result, error) {
	transcript := moderation.FormatTranscript(inferred.Utterances)
	text, err := p.gen.GenerateText(ctx, moderation.BuildPrompt(transcript))
	if err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}

	return &Result{
		Analysis:   *inferred,
		Moderation: moderation.ParseReport(text),
		Summary:    moderation.Summarize(text),
	}, nil
}
