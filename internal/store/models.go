package store

import "time"

// Status records how a run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is one processed recording.
type Run struct {
	ID             string
	Source         string
	Status         Status
	Error          string
	SpeakerCount   int
	UtteranceCount int
	TotalDuration  float64
	CreatedAt      time.Time
}
