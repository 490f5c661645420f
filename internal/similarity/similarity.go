package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates two vectors of different lengths were
// compared. This is a collaborator contract violation and is never retried.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Cosine returns the cosine similarity of two equal-length vectors in the
// range [-1, 1]. A zero-magnitude vector carries no directional information,
// so comparisons against one return 0 rather than an error.
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Candidate pairs a key with the vector it should be scored by.
type Candidate struct {
	Key    string
	Vector []float64
}

// Match reports the winning candidate of a BestMatch scan.
type Match struct {
	Key   string
	Score float64
}

// BestMatch scans candidates in order and returns the one with the highest
// cosine similarity to query. Ties keep the first-seen candidate so repeated
// runs over the same input are deterministic. The second return value is
// false when candidates is empty.
func BestMatch(query []float64, candidates []Candidate) (Match, bool, error) {
	var best Match
	found := false
	for _, candidate := range candidates {
		score, err := Cosine(query, candidate.Vector)
		if err != nil {
			return Match{}, false, fmt.Errorf("candidate %q: %w", candidate.Key, err)
		}
		if !found || score > best.Score {
			best = Match{Key: candidate.Key, Score: score}
			found = true
		}
	}
	return best, found, nil
}
