// Package output renders a labeled recording into its on-disk artifacts:
// a JSON report, a readable conversation transcript, CSV rows for analysis,
// and a per-speaker summary.
package output
