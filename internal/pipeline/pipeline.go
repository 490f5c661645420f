package pipeline

import (
	"fmt"
	"log/slog"

	"voicetag/internal/align"
	"voicetag/internal/config"
	"voicetag/internal/diarize"
	"voicetag/internal/gallery"
	"voicetag/internal/logging"
	"voicetag/internal/match"
)

// Options is the explicit configuration value object for one pipeline run.
// Engines receive their thresholds from here; there is no process-wide
// mutable state anywhere in the core.
type Options struct {
	ClusteringThreshold float64
	EmbeddingThreshold  float64
	FeaturesThreshold   float64
	MergeGap            float64
	MinUtterance        float64
}

// OptionsFromConfig projects the application config onto pipeline options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ClusteringThreshold: cfg.Speaker.ClusteringThreshold,
		EmbeddingThreshold:  cfg.Speaker.EmbeddingThreshold,
		FeaturesThreshold:   cfg.Speaker.FeaturesThreshold,
		MergeGap:            cfg.Alignment.MergeGap,
		MinUtterance:        cfg.Alignment.MinUtterance,
	}
}

// Result is the outcome of labeling one recording.
type Result struct {
	Utterances []align.Utterance
	Matches    []match.Result
	// Labels maps cluster ID to the final speaker label: an enrolled
	// identity name or a generated placeholder.
	Labels map[int]string
	// Speakers is the number of distinct clusters detected.
	Speakers int
}

// DiarizeAndLabel runs the full core over one recording's observations:
// segments are clustered into anonymous speakers, clusters are resolved
// against the gallery, and transcript spans are aligned with the labeled
// segments. The stages run strictly in sequence; each consumes the complete
// output of the previous one. The operation is pure: identical inputs
// produce identical outputs, and a failed run exposes no partial state.
func DiarizeAndLabel(segments []diarize.Segment, spans []align.Span, g *gallery.Gallery, opts Options, logger *slog.Logger) (Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	clusterer := diarize.NewClusterer(opts.ClusteringThreshold, logger)
	clusters, err := clusterer.Cluster(segments)
	if err != nil {
		return Result{}, fmt.Errorf("cluster segments: %w", err)
	}

	matcher := match.NewMatcher(match.Config{
		EmbeddingThreshold: opts.EmbeddingThreshold,
		FeaturesThreshold:  opts.FeaturesThreshold,
	}, g, logger)
	matches, err := matcher.MatchAll(clusters)
	if err != nil {
		return Result{}, fmt.Errorf("match clusters: %w", err)
	}

	labels := resolveLabels(clusters, matches)

	labeled := make([]align.LabeledSegment, 0, len(segments))
	for _, cluster := range clusters {
		label := labels[cluster.ID]
		for _, seg := range cluster.Segments {
			labeled = append(labeled, align.LabeledSegment{Start: seg.Start, End: seg.End, Label: label})
		}
	}

	aligner := align.NewAligner(align.Config{MergeGap: opts.MergeGap, MinUtterance: opts.MinUtterance}, logger)
	utterances, err := aligner.Align(spans, labeled)
	if err != nil {
		return Result{}, fmt.Errorf("align transcript: %w", err)
	}

	return Result{
		Utterances: utterances,
		Matches:    matches,
		Labels:     labels,
		Speakers:   len(clusters),
	}, nil
}

// resolveLabels assigns each cluster its final speaker label. Matched
// clusters take the enrolled identity name; unmatched clusters receive
// placeholder names numbered sequentially in cluster-creation order, so the
// first unmatched speaker in a recording is always User1.
func resolveLabels(clusters []*diarize.Cluster, matches []match.Result) map[int]string {
	byCluster := make(map[int]match.Result, len(matches))
	for _, m := range matches {
		byCluster[m.ClusterID] = m
	}
	labels := make(map[int]string, len(clusters))
	next := 1
	for _, cluster := range clusters {
		if m, ok := byCluster[cluster.ID]; ok && m.Matched() {
			labels[cluster.ID] = m.Identity
			continue
		}
		labels[cluster.ID] = fmt.Sprintf("User%d", next)
		next++
	}
	return labels
}
