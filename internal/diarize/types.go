package diarize

import (
	"fmt"

	"voicetag/internal/similarity"
)

// Segment is one voiced slice of a recording together with the descriptors
// the feature extractor produced for it. Either vector may be nil when
// extraction failed for the slice; a segment missing one kind is still
// clusterable through the other.
type Segment struct {
	Start     float64
	End       float64
	Embedding []float64
	Features  []float64
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Cluster groups the segments attributed to a single anonymous speaker.
// IDs are assigned sequentially at creation time and are local to one
// clustering run.
type Cluster struct {
	ID       int
	Segments []Segment

	embedCentroid []float64
	embedSum      []float64
	embedCount    int

	featCentroid []float64
	featSum      []float64
	featCount    int
}

// EmbeddingCentroid returns the running mean of member embeddings, or nil
// when no member carried one. The returned slice is an immutable snapshot:
// membership changes install a fresh slice rather than mutating it, so
// readers never observe a torn update.
func (c *Cluster) EmbeddingCentroid() []float64 {
	return c.embedCentroid
}

// FeatureCentroid returns the running mean of member fallback features, or
// nil when no member carried any. Snapshot semantics match EmbeddingCentroid.
func (c *Cluster) FeatureCentroid() []float64 {
	return c.featCentroid
}

// add appends the segment and commits fresh centroid snapshots. The running
// sums keep each update O(D) regardless of membership size.
func (c *Cluster) add(seg Segment) error {
	if len(seg.Embedding) > 0 && c.embedSum != nil && len(seg.Embedding) != len(c.embedSum) {
		return fmt.Errorf("cluster %d embedding: %w: %d vs %d", c.ID, similarity.ErrDimensionMismatch, len(seg.Embedding), len(c.embedSum))
	}
	if len(seg.Features) > 0 && c.featSum != nil && len(seg.Features) != len(c.featSum) {
		return fmt.Errorf("cluster %d features: %w: %d vs %d", c.ID, similarity.ErrDimensionMismatch, len(seg.Features), len(c.featSum))
	}
	c.Segments = append(c.Segments, seg)
	if len(seg.Embedding) > 0 {
		if c.embedSum == nil {
			c.embedSum = make([]float64, len(seg.Embedding))
		}
		for i, v := range seg.Embedding {
			c.embedSum[i] += v
		}
		c.embedCount++
		c.embedCentroid = meanOf(c.embedSum, c.embedCount)
	}
	if len(seg.Features) > 0 {
		if c.featSum == nil {
			c.featSum = make([]float64, len(seg.Features))
		}
		for i, v := range seg.Features {
			c.featSum[i] += v
		}
		c.featCount++
		c.featCentroid = meanOf(c.featSum, c.featCount)
	}
	return nil
}

func meanOf(sum []float64, count int) []float64 {
	mean := make([]float64, len(sum))
	for i, v := range sum {
		mean[i] = v / float64(count)
	}
	return mean
}
