package testsupport

import (
	"path/filepath"
	"testing"

	"voicetag/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.ReferenceDir = filepath.Join(base, "reference")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.History.Path = filepath.Join(base, "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithHistoryDisabled turns off run-history recording on the test config.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithThresholds overrides the identification thresholds on the test config.
func WithThresholds(clustering, embedding, features float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Speaker.ClusteringThreshold = clustering
		b.cfg.Speaker.EmbeddingThreshold = embedding
		b.cfg.Speaker.FeaturesThreshold = features
	}
}

// WithBatchWorkers overrides the batch worker count on the test config.
func WithBatchWorkers(workers int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Batch.Workers = workers
	}
}
