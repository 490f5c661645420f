package diarize

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"voicetag/internal/logging"
	"voicetag/internal/similarity"
)

// ErrEmptySegmentSet indicates clustering was invoked with no segments.
// This is a caller error and is never retried.
var ErrEmptySegmentSet = errors.New("no segments to cluster")

// Clusterer performs greedy incremental speaker clustering. It owns
// exclusive write access to all cluster centroids for the duration of a run;
// callers only see the finished partition.
type Clusterer struct {
	threshold float64
	logger    *slog.Logger
}

// NewClusterer builds a clusterer that admits a segment into the closest
// existing cluster when the similarity meets threshold, and opens a new
// cluster otherwise.
func NewClusterer(threshold float64, logger *slog.Logger) *Clusterer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Clusterer{threshold: threshold, logger: logger.With(logging.String(logging.FieldComponent, "diarize"))}
}

// Cluster partitions segments into speaker clusters. Every input segment
// lands in exactly one cluster. Segments are processed in chronological
// order, so results are reproducible for a fixed input. The input slice is
// not mutated.
func (c *Clusterer) Cluster(segments []Segment) ([]*Cluster, error) {
	if len(segments) == 0 {
		return nil, ErrEmptySegmentSet
	}

	ordered := make([]Segment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	var clusters []*Cluster
	for _, seg := range ordered {
		target, err := c.closest(seg, clusters)
		if err != nil {
			return nil, err
		}
		if target == nil {
			target = &Cluster{ID: len(clusters)}
			clusters = append(clusters, target)
		}
		if err := target.add(seg); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("clustering complete",
		logging.Int("segments", len(ordered)),
		logging.Int("clusters", len(clusters)),
		logging.Float64("threshold", c.threshold))
	return clusters, nil
}

// closest scans existing clusters read-only and returns the one the segment
// should join, or nil when no cluster scores at or above the threshold.
// Clusters are scanned in creation order and ties keep the earliest-created
// cluster, matching the BestMatch tie policy.
func (c *Clusterer) closest(seg Segment, clusters []*Cluster) (*Cluster, error) {
	query, kind := scanVector(seg)
	if query == nil {
		return nil, nil
	}

	candidates := make([]similarity.Candidate, 0, len(clusters))
	byIndex := make([]*Cluster, 0, len(clusters))
	for _, cluster := range clusters {
		centroid := cluster.centroidOf(kind)
		if centroid == nil {
			continue
		}
		candidates = append(candidates, similarity.Candidate{Key: fmt.Sprintf("cluster-%d", cluster.ID), Vector: centroid})
		byIndex = append(byIndex, cluster)
	}

	best, ok, err := similarity.BestMatch(query, candidates)
	if err != nil {
		return nil, fmt.Errorf("segment %.2f-%.2f: %w", seg.Start, seg.End, err)
	}
	if !ok || best.Score < c.threshold {
		return nil, nil
	}
	for i, candidate := range candidates {
		if candidate.Key == best.Key {
			return byIndex[i], nil
		}
	}
	return nil, nil
}

type vectorKind int

const (
	kindEmbedding vectorKind = iota
	kindFeatures
)

// scanVector picks the descriptor used to place the segment: the neural
// embedding when present, the fallback features otherwise.
func scanVector(seg Segment) ([]float64, vectorKind) {
	if len(seg.Embedding) > 0 {
		return seg.Embedding, kindEmbedding
	}
	if len(seg.Features) > 0 {
		return seg.Features, kindFeatures
	}
	return nil, kindEmbedding
}

func (c *Cluster) centroidOf(kind vectorKind) []float64 {
	if kind == kindEmbedding {
		return c.embedCentroid
	}
	return c.featCentroid
}
