// Package asr defines the interfaces the pipeline consumes from its
// external collaborators (speech recognition and feature extraction) and
// provides exec-backed clients that drive the corresponding command-line
// tools over JSON. The core never depends on the concrete clients; it only
// consumes (timestamp, text, vector) observations.
package asr
