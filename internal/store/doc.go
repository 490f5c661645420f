// Package store persists run history backed by SQLite: one row per
// processed recording plus its final utterances, so past results can be
// listed and re-inspected without reprocessing audio.
package store
