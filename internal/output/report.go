package output

import (
	"sort"
	"time"

	"voicetag/internal/align"
	"voicetag/internal/match"
)

// SpeakerStat aggregates one speaker's contribution to a recording.
type SpeakerStat struct {
	Speaker    string  `json:"speaker"`
	Utterances int     `json:"utterances"`
	Words      int     `json:"words"`
	Duration   float64 `json:"duration"`
	// Share is the fraction of total speaking time, in [0, 1].
	Share float64 `json:"share"`
}

// Identification records how one cluster was resolved.
type Identification struct {
	Cluster    int     `json:"cluster"`
	Speaker    string  `json:"speaker"`
	MatchedVia string  `json:"matched_via"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Report is the complete result of labeling one recording.
type Report struct {
	RunID           string            `json:"run_id"`
	Source          string            `json:"source"`
	GeneratedAt     time.Time         `json:"generated_at"`
	Utterances      []align.Utterance `json:"utterances"`
	Speakers        []SpeakerStat     `json:"speakers"`
	Identifications []Identification  `json:"identifications"`
	TotalDuration   float64           `json:"total_duration"`
	TotalWords      int               `json:"total_words"`
}

// BuildReport assembles a report from the pipeline's outputs. Speaker stats
// are sorted by speaking time, longest first, with name as a stable
// tie-break.
func BuildReport(runID, source string, utterances []align.Utterance, matches []match.Result, labels map[int]string) Report {
	report := Report{
		RunID:       runID,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Utterances:  utterances,
	}

	stats := make(map[string]*SpeakerStat)
	order := make([]string, 0, 4)
	for _, u := range utterances {
		stat, ok := stats[u.Speaker]
		if !ok {
			stat = &SpeakerStat{Speaker: u.Speaker}
			stats[u.Speaker] = stat
			order = append(order, u.Speaker)
		}
		words := countWords(u.Text)
		stat.Utterances++
		stat.Words += words
		stat.Duration += u.Duration()
		report.TotalDuration += u.Duration()
		report.TotalWords += words
	}
	for _, name := range order {
		stat := stats[name]
		if report.TotalDuration > 0 {
			stat.Share = stat.Duration / report.TotalDuration
		}
		report.Speakers = append(report.Speakers, *stat)
	}
	sort.SliceStable(report.Speakers, func(i, j int) bool {
		if report.Speakers[i].Duration != report.Speakers[j].Duration {
			return report.Speakers[i].Duration > report.Speakers[j].Duration
		}
		return report.Speakers[i].Speaker < report.Speakers[j].Speaker
	})

	for _, m := range matches {
		report.Identifications = append(report.Identifications, Identification{
			Cluster:    m.ClusterID,
			Speaker:    labels[m.ClusterID],
			MatchedVia: string(m.Via),
			Confidence: m.Confidence,
		})
	}

	return report
}

func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}
