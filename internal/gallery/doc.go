// Package gallery holds the enrolled speaker identities and their reference
// vectors. A gallery is loaded once from a reference directory and is
// read-only afterwards, so it can be shared across concurrently processed
// recordings.
package gallery
