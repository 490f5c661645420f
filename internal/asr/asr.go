package asr

import (
	"context"

	"voicetag/internal/align"
	"voicetag/internal/diarize"
)

// Transcriber produces time-aligned transcript spans for an audio file,
// ordered by start time.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]align.Span, error)
}

// SegmentAnalyzer detects voiced segments in an audio file and attaches the
// extracted descriptors to each. A segment may come back with either vector
// missing when extraction failed for it; that reduces which matching tier
// is available and is never an error.
type SegmentAnalyzer interface {
	AnalyzeFile(ctx context.Context, audioPath string) ([]diarize.Segment, error)
}

// FileExtractor produces whole-file reference vectors, used when loading
// the enrollment gallery.
type FileExtractor interface {
	ExtractFile(ctx context.Context, audioPath string) (embedding, features []float64, err error)
}
