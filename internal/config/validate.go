package config

import (
	"errors"
	"fmt"
	"strings"
)

var validFormats = map[string]struct{}{
	"json":    {},
	"txt":     {},
	"csv":     {},
	"summary": {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSpeaker(); err != nil {
		return err
	}
	if err := c.validateAlignment(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateFeatures(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSpeaker() error {
	thresholds := map[string]float64{
		"speaker.clustering_threshold": c.Speaker.ClusteringThreshold,
		"speaker.embedding_threshold":  c.Speaker.EmbeddingThreshold,
		"speaker.features_threshold":   c.Speaker.FeaturesThreshold,
	}
	for name, value := range thresholds {
		if value < -1 || value > 1 {
			return fmt.Errorf("%s must be between -1 and 1", name)
		}
	}
	if c.Speaker.EmbeddingDim < 0 {
		return errors.New("speaker.embedding_dim must not be negative")
	}
	if c.Speaker.FeatureDim < 0 {
		return errors.New("speaker.feature_dim must not be negative")
	}
	return nil
}

func (c *Config) validateAlignment() error {
	if c.Alignment.MergeGap < 0 {
		return errors.New("alignment.merge_gap must not be negative")
	}
	if c.Alignment.MinUtterance < 0 {
		return errors.New("alignment.min_utterance must not be negative")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if strings.TrimSpace(c.Transcription.Binary) == "" {
		return errors.New("transcription.binary must be set")
	}
	if c.Transcription.BeamSize <= 0 {
		return errors.New("transcription.beam_size must be positive")
	}
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateFeatures() error {
	if strings.TrimSpace(c.Features.Binary) == "" {
		return errors.New("features.binary must be set")
	}
	if c.Features.MFCC <= 0 {
		return errors.New("features.mfcc_coefficients must be positive")
	}
	if c.Features.TimeoutSeconds <= 0 {
		return errors.New("features.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateOutput() error {
	for _, format := range c.Output.Formats {
		if _, ok := validFormats[format]; !ok {
			return fmt.Errorf("output.formats: unsupported format %q", format)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
