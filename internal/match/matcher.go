package match

import (
	"fmt"
	"log/slog"

	"voicetag/internal/diarize"
	"voicetag/internal/gallery"
	"voicetag/internal/logging"
	"voicetag/internal/similarity"
)

// Via records which tier produced a match.
type Via string

const (
	ViaEmbedding Via = "embedding"
	ViaFeature   Via = "feature"
	ViaNone      Via = "none"
)

// Result is the outcome of matching one cluster against the gallery.
// Identity is empty when no tier accepted; the cluster then keeps an
// anonymous placeholder label downstream.
type Result struct {
	ClusterID  int
	Identity   string
	Via        Via
	Confidence float64
}

// Matched reports whether the cluster resolved to an enrolled identity.
func (r Result) Matched() bool {
	return r.Identity != ""
}

// Config holds the acceptance thresholds for the two matching tiers. The
// feature threshold is deliberately lower: the fallback space is less
// discriminative, trading precision for robustness.
type Config struct {
	EmbeddingThreshold float64
	FeaturesThreshold  float64
}

// Matcher scores cluster centroids against a read-only gallery.
type Matcher struct {
	cfg     Config
	gallery *gallery.Gallery
	logger  *slog.Logger
}

// NewMatcher builds a matcher over the provided gallery.
func NewMatcher(cfg Config, g *gallery.Gallery, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{
		cfg:     cfg,
		gallery: g,
		logger:  logger.With(logging.String(logging.FieldComponent, "match")),
	}
}

// MatchCluster resolves one cluster. The embedding pass scans every
// reference embedding of every profile and accepts the single best score at
// or above the embedding threshold. Only when it does not accept is the
// feature pass attempted, against every reference feature vector at the
// feature threshold. Ties keep the first-seen reference, so results are
// deterministic for a fixed gallery order.
func (m *Matcher) MatchCluster(cluster *diarize.Cluster) (Result, error) {
	result := Result{ClusterID: cluster.ID, Via: ViaNone}

	if centroid := cluster.EmbeddingCentroid(); centroid != nil {
		best, ok, err := similarity.BestMatch(centroid, m.gallery.EmbeddingCandidates())
		if err != nil {
			return Result{}, fmt.Errorf("cluster %d embedding pass: %w", cluster.ID, err)
		}
		if ok && best.Score >= m.cfg.EmbeddingThreshold {
			result.Identity = best.Key
			result.Via = ViaEmbedding
			result.Confidence = best.Score
			return result, nil
		}
	}

	if centroid := cluster.FeatureCentroid(); centroid != nil {
		best, ok, err := similarity.BestMatch(centroid, m.gallery.FeatureCandidates())
		if err != nil {
			return Result{}, fmt.Errorf("cluster %d feature pass: %w", cluster.ID, err)
		}
		if ok && best.Score >= m.cfg.FeaturesThreshold {
			result.Identity = best.Key
			result.Via = ViaFeature
			result.Confidence = best.Score
		}
	}

	return result, nil
}

// MatchAll resolves every cluster independently. Two clusters may map to
// the same identity; the matcher does not enforce exclusivity.
func (m *Matcher) MatchAll(clusters []*diarize.Cluster) ([]Result, error) {
	results := make([]Result, 0, len(clusters))
	for _, cluster := range clusters {
		result, err := m.MatchCluster(cluster)
		if err != nil {
			return nil, err
		}
		if result.Matched() {
			m.logger.Debug("cluster matched",
				logging.Int("cluster", result.ClusterID),
				logging.String("identity", result.Identity),
				logging.String("via", string(result.Via)),
				logging.Float64("confidence", result.Confidence))
		}
		results = append(results, result)
	}
	return results, nil
}
