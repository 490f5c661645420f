package gallery

import (
	"testing"
)

func TestNewDropsDegradedProfiles(t *testing.T) {
	profiles := []Profile{
		{Name: "john", Embeddings: [][]float64{{1, 0}}},
		{Name: "ghost"}, // every sample failed extraction
		{Name: "mary", Features: [][]float64{{0.5, 0.5}}},
	}
	g := New(profiles, nil)
	if g.Len() != 2 {
		t.Fatalf("expected 2 usable profiles, got %d", g.Len())
	}
	for _, name := range g.Names() {
		if name == "ghost" {
			t.Fatal("degraded profile must be excluded")
		}
	}
}

func TestProfileValidate(t *testing.T) {
	if err := (Profile{Name: "empty"}).Validate(); err == nil {
		t.Error("profile without vectors should be invalid")
	}
	if err := (Profile{Name: "ok", Features: [][]float64{{1}}}).Validate(); err != nil {
		t.Errorf("feature-only profile should be valid: %v", err)
	}
}

func TestEmbeddingCandidatesFlattened(t *testing.T) {
	g := New([]Profile{
		{Name: "john", Embeddings: [][]float64{{1, 0}, {0.9, 0.1}}},
		{Name: "mary", Embeddings: [][]float64{{0, 1}}},
	}, nil)

	candidates := g.EmbeddingCandidates()
	if len(candidates) != 3 {
		t.Fatalf("expected 3 flattened candidates, got %d", len(candidates))
	}
	// Samples stay distinct per identity; they are never averaged.
	if candidates[0].Key != "john" || candidates[1].Key != "john" || candidates[2].Key != "mary" {
		t.Errorf("candidate keys = %q, %q, %q", candidates[0].Key, candidates[1].Key, candidates[2].Key)
	}
	if candidates[0].Vector[0] != 1 || candidates[1].Vector[0] != 0.9 {
		t.Error("candidate vectors must preserve per-sample values")
	}
}

func TestFeatureCandidatesExcludeEmbeddingOnlyProfiles(t *testing.T) {
	g := New([]Profile{
		{Name: "john", Embeddings: [][]float64{{1, 0}}},
		{Name: "mary", Features: [][]float64{{0, 1}}},
	}, nil)

	feats := g.FeatureCandidates()
	if len(feats) != 1 || feats[0].Key != "mary" {
		t.Fatalf("expected only mary's feature candidate, got %+v", feats)
	}
	// john stays usable through the embedding tier.
	embeds := g.EmbeddingCandidates()
	if len(embeds) != 1 || embeds[0].Key != "john" {
		t.Fatalf("expected only john's embedding candidate, got %+v", embeds)
	}
}

func TestNilGallery(t *testing.T) {
	var g *Gallery
	if g.Len() != 0 {
		t.Error("nil gallery should have zero length")
	}
	if g.Profiles() != nil {
		t.Error("nil gallery should have no profiles")
	}
}
