// Package diarize partitions a recording's voiced segments into anonymous
// speaker clusters. Clustering is greedy and incremental: segments are
// processed in chronological order and either join the most similar existing
// cluster or start a new one. The algorithm is deterministic for a fixed
// segment order and needs no prior knowledge of the speaker count.
package diarize
