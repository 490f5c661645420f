package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	ReferenceDir string `toml:"reference_dir"`
	LogDir       string `toml:"log_dir"`
	WorkDir      string `toml:"work_dir"`
}

// Audio contains input handling configuration.
type Audio struct {
	Extensions []string `toml:"extensions"`
	SampleRate int      `toml:"sample_rate"`
}

// Speaker contains clustering and identification thresholds.
type Speaker struct {
	ClusteringThreshold float64 `toml:"clustering_threshold"`
	EmbeddingThreshold  float64 `toml:"embedding_threshold"`
	FeaturesThreshold   float64 `toml:"features_threshold"`
	// EmbeddingDim and FeatureDim pin the expected vector sizes from the
	// feature extractor. Zero disables the check.
	EmbeddingDim int `toml:"embedding_dim"`
	FeatureDim   int `toml:"feature_dim"`
}

// Alignment contains transcript alignment tuning.
type Alignment struct {
	MergeGap     float64 `toml:"merge_gap"`
	MinUtterance float64 `toml:"min_utterance"`
}

// Transcription contains settings for the external speech recognizer.
type Transcription struct {
	Binary         string `toml:"binary"`
	Model          string `toml:"model"`
	BeamSize       int    `toml:"beam_size"`
	WordTimestamps bool   `toml:"word_timestamps"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Features contains settings for the external feature extractor.
type Features struct {
	Binary         string `toml:"binary"`
	MFCC           int    `toml:"mfcc_coefficients"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Output contains output format selection.
type Output struct {
	Formats []string `toml:"formats"`
}

// Batch contains directory processing settings.
type Batch struct {
	Workers int `toml:"workers"`
}

// History contains the run-history store settings.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for voicetag.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Audio         Audio         `toml:"audio"`
	Speaker       Speaker       `toml:"speaker"`
	Alignment     Alignment     `toml:"alignment"`
	Transcription Transcription `toml:"transcription"`
	Features      Features      `toml:"features"`
	Output        Output        `toml:"output"`
	Batch         Batch         `toml:"batch"`
	History       History       `toml:"history"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/voicetag/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. When no file exists
// the defaults are returned; the second return value reports the resolved
// path and the third whether a file was found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("voicetag.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The
// reference directory is deliberately not created: its absence means
// "no enrollment", which is a valid mode.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.WorkDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.History.Path), 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
