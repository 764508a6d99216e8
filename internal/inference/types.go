package inference

// Score is one labeled classifier output with its confidence in [0,1].
type Score struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Utterance is one transcribed span of speech with the classifier's emotion
// and sentiment rankings, most confident first.
type Utterance struct {
	Text       string  `json:"text"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Emotions   []Score `json:"emotions"`
	Sentiments []Score `json:"sentiments"`
}

type Result struct {
	Utterances []Utterance `json:"utterances"`
}

// Analysis is the sentiment service's response envelope.
type Analysis struct {
	Analysis Result `json:"analysis"`
}
