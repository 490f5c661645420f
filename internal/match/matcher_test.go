package match

import (
	"math"
	"testing"

	"voicetag/internal/diarize"
	"voicetag/internal/gallery"
)

func testGallery(t *testing.T, profiles ...gallery.Profile) *gallery.Gallery {
	t.Helper()
	return gallery.New(profiles, nil)
}

func clusterWith(t *testing.T, id int, segments ...diarize.Segment) *diarize.Cluster {
	t.Helper()
	c := diarize.NewClusterer(0, nil)
	clusters, err := c.Cluster(segments)
	if err != nil {
		t.Fatalf("Cluster: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("fixture expected one cluster, got %d", len(clusters))
	}
	clusters[0].ID = id
	return clusters[0]
}

func defaultThresholds() Config {
	return Config{EmbeddingThreshold: 0.65, FeaturesThreshold: 0.40}
}

func TestMatchClusterViaEmbedding(t *testing.T) {
	g := testGallery(t,
		gallery.Profile{Name: "john", Embeddings: [][]float64{{1, 0, 0}}},
		gallery.Profile{Name: "mary", Embeddings: [][]float64{{0, 1, 0}}},
	)
	cluster := clusterWith(t, 0, diarize.Segment{Start: 0, End: 1, Embedding: []float64{0.95, 0.05, 0}})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Identity != "john" || result.Via != ViaEmbedding {
		t.Fatalf("got identity=%q via=%q, want john via embedding", result.Identity, result.Via)
	}
	if result.Confidence < 0.65 {
		t.Errorf("confidence %.3f below acceptance threshold", result.Confidence)
	}
}

func TestMatchClusterFeatureFallback(t *testing.T) {
	// The identity has embeddings too far from the cluster; the feature
	// pass resolves it instead.
	g := testGallery(t,
		gallery.Profile{
			Name:       "mike",
			Embeddings: [][]float64{{0, 0, 1}},
			Features:   [][]float64{{1, 0.2}},
		},
	)
	cluster := clusterWith(t, 3, diarize.Segment{
		Start: 0, End: 1,
		Embedding: []float64{1, 0, 0},
		Features:  []float64{0.9, 0.3},
	})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Identity != "mike" || result.Via != ViaFeature {
		t.Fatalf("got identity=%q via=%q, want mike via feature", result.Identity, result.Via)
	}
	if result.ClusterID != 3 {
		t.Errorf("ClusterID = %d, want 3", result.ClusterID)
	}
}

func TestMatchClusterFeatureOnlyCluster(t *testing.T) {
	// The cluster has no embedding centroid at all, so the embedding pass
	// is skipped entirely and the feature tier resolves it.
	g := testGallery(t,
		gallery.Profile{
			Name:       "mike",
			Embeddings: [][]float64{{1, 0, 0}},
			Features:   [][]float64{{0.55, math.Sqrt(1 - 0.55*0.55)}},
		},
	)
	cluster := clusterWith(t, 0, diarize.Segment{
		Start: 0, End: 2,
		Features: []float64{1, 0},
	})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Identity != "mike" || result.Via != ViaFeature {
		t.Fatalf("got identity=%q via=%q, want mike via feature", result.Identity, result.Via)
	}
	if math.Abs(result.Confidence-0.55) > 1e-9 {
		t.Errorf("confidence = %.6f, want 0.55", result.Confidence)
	}
}

func TestMatchClusterEmbeddingTakesPrecedence(t *testing.T) {
	// Both tiers would accept; the embedding pass wins and the feature
	// pass never runs.
	g := testGallery(t,
		gallery.Profile{
			Name:       "john",
			Embeddings: [][]float64{{1, 0}},
			Features:   [][]float64{{0, 1}},
		},
		gallery.Profile{
			Name:     "mary",
			Features: [][]float64{{0.1, 1}},
		},
	)
	cluster := clusterWith(t, 0, diarize.Segment{
		Start: 0, End: 1,
		Embedding: []float64{1, 0.1},
		Features:  []float64{0.05, 1},
	})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Via != ViaEmbedding || result.Identity != "john" {
		t.Fatalf("got identity=%q via=%q, want john via embedding", result.Identity, result.Via)
	}
}

func TestMatchClusterBelowThresholds(t *testing.T) {
	g := testGallery(t,
		gallery.Profile{
			Name:       "john",
			Embeddings: [][]float64{{1, 0}},
			Features:   [][]float64{{1, 0}},
		},
	)
	cluster := clusterWith(t, 0, diarize.Segment{
		Start: 0, End: 1,
		Embedding: []float64{0, 1},
		Features:  []float64{0, 1},
	})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Matched() {
		t.Fatalf("orthogonal vectors must not match, got %+v", result)
	}
	if result.Via != ViaNone || result.Confidence != 0 {
		t.Errorf("unmatched result should be via none with zero confidence, got %+v", result)
	}
}

func TestMatchClusterBestSampleWins(t *testing.T) {
	// Per-sample references: the identity whose single closest sample
	// scores highest wins, even if its other samples are poor.
	g := testGallery(t,
		gallery.Profile{Name: "john", Embeddings: [][]float64{{0, 1}, {1, 0.05}}},
		gallery.Profile{Name: "mary", Embeddings: [][]float64{{0.8, 0.6}}},
	)
	cluster := clusterWith(t, 0, diarize.Segment{Start: 0, End: 1, Embedding: []float64{1, 0}})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Identity != "john" {
		t.Fatalf("expected john's close sample to win, got %q (%.3f)", result.Identity, result.Confidence)
	}
	if want := 1 / math.Sqrt(1+0.05*0.05); math.Abs(result.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %.6f, want %.6f", result.Confidence, want)
	}
}

func TestMatchClusterEmptyGallery(t *testing.T) {
	g := testGallery(t)
	cluster := clusterWith(t, 0, diarize.Segment{Start: 0, End: 1, Embedding: []float64{1, 0}})

	m := NewMatcher(defaultThresholds(), g, nil)
	result, err := m.MatchCluster(cluster)
	if err != nil {
		t.Fatalf("MatchCluster: %v", err)
	}
	if result.Matched() {
		t.Fatalf("empty gallery must not match, got %+v", result)
	}
}

func TestMatchAllIndependent(t *testing.T) {
	// Two clusters both resolve to the same identity; no exclusivity is
	// enforced.
	g := testGallery(t,
		gallery.Profile{Name: "john", Embeddings: [][]float64{{1, 0}}},
	)
	first := clusterWith(t, 0, diarize.Segment{Start: 0, End: 1, Embedding: []float64{1, 0.01}})
	second := clusterWith(t, 1, diarize.Segment{Start: 2, End: 3, Embedding: []float64{1, 0.02}})

	m := NewMatcher(defaultThresholds(), g, nil)
	results, err := m.MatchAll([]*diarize.Cluster{first, second})
	if err != nil {
		t.Fatalf("MatchAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, result := range results {
		if result.Identity != "john" {
			t.Errorf("result %d identity = %q, want john", i, result.Identity)
		}
	}
}
