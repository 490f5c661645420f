package gallery

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"voicetag/internal/logging"
	"voicetag/internal/similarity"
)

// ErrIncompleteProfile indicates an enrolled identity has no usable
// reference vectors of either kind. Such profiles are excluded from
// matching and logged as degraded; they never fail a run.
var ErrIncompleteProfile = errors.New("enrollment profile has no usable vectors")

// Profile is one enrolled identity. Reference vectors are kept distinct per
// sample rather than averaged, so matching can score a cluster against the
// single closest sample of an identity's voice.
type Profile struct {
	Name       string
	Embeddings [][]float64
	Features   [][]float64
}

// Validate reports whether the profile carries at least one reference
// vector of either kind.
func (p Profile) Validate() error {
	if len(p.Embeddings) == 0 && len(p.Features) == 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteProfile, p.Name)
	}
	return nil
}

// Gallery is an immutable set of enrolled profiles.
type Gallery struct {
	profiles []Profile
}

// New builds a gallery from the provided profiles. Profiles without any
// usable vectors are dropped with a warning rather than failing the load.
func New(profiles []Profile, logger *slog.Logger) *Gallery {
	if logger == nil {
		logger = logging.NewNop()
	}
	kept := make([]Profile, 0, len(profiles))
	for _, profile := range profiles {
		if err := profile.Validate(); err != nil {
			logger.Warn("excluding degraded enrollment profile",
				logging.String(logging.FieldComponent, "gallery"),
				logging.String("identity", profile.Name),
				logging.Error(err))
			continue
		}
		kept = append(kept, profile)
	}
	return &Gallery{profiles: kept}
}

// Profiles returns the enrolled profiles in load order.
func (g *Gallery) Profiles() []Profile {
	if g == nil {
		return nil
	}
	return g.profiles
}

// Len returns the number of usable profiles.
func (g *Gallery) Len() int {
	if g == nil {
		return 0
	}
	return len(g.profiles)
}

// Names returns the enrolled identity names, sorted for stable display.
func (g *Gallery) Names() []string {
	names := make([]string, 0, g.Len())
	for _, profile := range g.Profiles() {
		names = append(names, profile.Name)
	}
	sort.Strings(names)
	return names
}

// EmbeddingCandidates flattens every reference embedding of every profile
// into a single candidate list, keyed by identity name and ordered by load
// order. Profiles without embeddings contribute nothing.
func (g *Gallery) EmbeddingCandidates() []similarity.Candidate {
	var candidates []similarity.Candidate
	for _, profile := range g.Profiles() {
		for _, vec := range profile.Embeddings {
			candidates = append(candidates, similarity.Candidate{Key: profile.Name, Vector: vec})
		}
	}
	return candidates
}

// FeatureCandidates is the fallback-feature analogue of EmbeddingCandidates.
func (g *Gallery) FeatureCandidates() []similarity.Candidate {
	var candidates []similarity.Candidate
	for _, profile := range g.Profiles() {
		for _, vec := range profile.Features {
			candidates = append(candidates, similarity.Candidate{Key: profile.Name, Vector: vec})
		}
	}
	return candidates
}
