// Package pipeline sequences the diarization engines over one recording:
// clustering, enrollment matching, speaker label resolution, and transcript
// alignment. It owns no algorithmic logic of its own. The package also
// provides the file-level runner and batch directory mode that wire the
// external transcription and feature-extraction collaborators to the pure
// core.
package pipeline
