package moderation

// Issue is one timestamped moderation finding recovered from the model's
// response. Timestamp is "<start>-<end>" in seconds.
type Issue struct {
	Timestamp string   `json:"timestamp"`
	Issue     string   `json:"issue"`
	Category  Category `json:"category"`
	Severity  int      `json:"severity"`
}

// Report is the structured view of one moderation response. RiskScore and
// Issues are derived, best-effort reconstructions of structure the model was
// asked, but not guaranteed, to produce; RawText is always the full answer.
type Report struct {
	RawText   string  `json:"text"`
	RiskScore int     `json:"moderationScore"`
	Issues    []Issue `json:"keyTimestamps"`
}
