// Package config loads, normalizes, and validates voicetag configuration
// from TOML. All path fields are expanded (including ~) before use and the
// zero configuration is fully usable through Default.
package config
