// Package logging provides the shared slog construction and attribute
// helpers used across voicetag. It offers a human-oriented console handler
// and a machine-oriented JSON handler, selected by configuration.
package logging
