package align

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"voicetag/internal/logging"
)

// UnknownSpeaker labels spans that overlap no diarized segment. Keeping the
// text under a sentinel label is preferred over dropping it: silent loss of
// transcript content is worse than an imprecise label.
const UnknownSpeaker = "Unknown"

// ErrUnorderedInput indicates transcript spans were not sorted by
// non-decreasing start time. This is a caller contract violation.
var ErrUnorderedInput = errors.New("transcript spans out of order")

// Config holds the alignment tuning values.
type Config struct {
	// MergeGap is the maximum silence, in seconds, between two adjacent
	// same-speaker utterances that still merges them into one.
	MergeGap float64
	// MinUtterance is the duration, in seconds, under which an utterance
	// counts as short. Short utterances are never dropped; the count is
	// only reported so callers can flag choppy alignments.
	MinUtterance float64
}

// Aligner combines transcript spans with labeled diarized segments.
type Aligner struct {
	cfg    Config
	logger *slog.Logger
}

// NewAligner builds an aligner with the provided tuning values.
func NewAligner(cfg Config, logger *slog.Logger) *Aligner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aligner{cfg: cfg, logger: logger.With(logging.String(logging.FieldComponent, "align"))}
}

// Align labels each span with the speaker of the diarized segment it
// overlaps most, then merges adjacent same-speaker utterances separated by
// less than the merge gap. Spans must be ordered by non-decreasing start
// time; segments may arrive in any order. No span text is ever discarded.
func (a *Aligner) Align(spans []Span, segments []LabeledSegment) ([]Utterance, error) {
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].Start {
			return nil, fmt.Errorf("%w: span %d starts at %.3f before %.3f", ErrUnorderedInput, i, spans[i].Start, spans[i-1].Start)
		}
	}

	utterances := make([]Utterance, 0, len(spans))
	unknown := 0
	for _, span := range spans {
		label := bestLabel(span, segments)
		if label == UnknownSpeaker {
			unknown++
		}
		utterances = append(utterances, Utterance{
			Speaker: label,
			Start:   span.Start,
			End:     span.End,
			Text:    strings.TrimSpace(span.Text),
		})
	}

	merged := a.Merge(utterances)

	short := 0
	for _, u := range merged {
		if u.Duration() < a.cfg.MinUtterance {
			short++
		}
	}
	a.logger.Debug("alignment complete",
		logging.Int("spans", len(spans)),
		logging.Int("utterances", len(merged)),
		logging.Int("unlabeled", unknown),
		logging.Int("short_retained", short))
	return merged, nil
}

// bestLabel picks the label of the segment with the greatest temporal
// overlap. Ties go to the segment with the earliest start time; a span
// overlapping nothing gets the Unknown sentinel.
func bestLabel(span Span, segments []LabeledSegment) string {
	bestLabel := UnknownSpeaker
	bestOverlap := 0.0
	bestStart := 0.0
	for _, seg := range segments {
		overlap := overlapSeconds(span.Start, span.End, seg.Start, seg.End)
		if overlap <= 0 {
			continue
		}
		if overlap > bestOverlap || (overlap == bestOverlap && bestLabel != UnknownSpeaker && seg.Start < bestStart) {
			bestOverlap = overlap
			bestStart = seg.Start
			bestLabel = seg.Label
		}
	}
	return bestLabel
}

// overlapSeconds returns the duration shared by two time ranges, never
// negative.
func overlapSeconds(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}

// Merge collapses adjacent utterances that share a speaker label and are
// separated by less than the merge gap. Text is joined with a single space
// in original order and the time range becomes the union. The operation is
// idempotent: after one pass every surviving same-speaker gap is at least
// the merge gap.
func (a *Aligner) Merge(utterances []Utterance) []Utterance {
	if len(utterances) == 0 {
		return nil
	}
	merged := make([]Utterance, 0, len(utterances))
	current := utterances[0]
	for _, next := range utterances[1:] {
		gap := next.Start - current.End
		if next.Speaker == current.Speaker && gap < a.cfg.MergeGap {
			if next.End > current.End {
				current.End = next.End
			}
			current.Text = joinText(current.Text, next.Text)
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)
	return merged
}

func joinText(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
