// Package match resolves anonymous speaker clusters to enrolled identities.
// Matching is two-tiered: neural embeddings are the primary signal, with
// handcrafted fallback features tried at a lower threshold only when the
// embedding pass does not accept.
package match
