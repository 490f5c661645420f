package align

// Word is a single recognized word with its timing.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Span is one transcript segment produced by the speech recognizer:
// a time range, its text, and optional word-level timings. Spans are
// immutable inputs to alignment.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// LabeledSegment is a diarized time range whose cluster has already been
// resolved to a speaker label (an enrolled identity or a placeholder).
type LabeledSegment struct {
	Start float64
	End   float64
	Label string
}

// Utterance is the final output unit: a labeled, time-bounded piece of the
// conversation, ordered by start time.
type Utterance struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Duration returns the utterance length in seconds.
func (u Utterance) Duration() float64 {
	return u.End - u.Start
}
