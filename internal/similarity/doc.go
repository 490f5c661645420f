// Package similarity provides the vector-math primitives used by speaker
// clustering and enrollment matching: cosine similarity and a linear
// best-match scan over keyed candidate vectors.
package similarity
