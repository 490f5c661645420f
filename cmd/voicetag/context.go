package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"voicetag/internal/asr"
	"voicetag/internal/config"
	"voicetag/internal/gallery"
	"voicetag/internal/logging"
	"voicetag/internal/output"
	"voicetag/internal/pipeline"
	"voicetag/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// loadGallery builds the enrollment gallery from the configured reference
// directory. A missing directory yields an empty gallery.
func (c *commandContext) loadGallery(ctx context.Context) (*gallery.Gallery, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	extractor := asr.NewExtractorCommand(cfg)
	loader := gallery.NewLoader(extractor, cfg.Audio.Extensions, logger)
	return loader.Load(ctx, cfg.Paths.ReferenceDir)
}

// newRunner assembles the processing runner with the configured external
// tools, gallery, writer, and optional run-history store. The caller owns
// closing the returned store.
func (c *commandContext) newRunner(ctx context.Context, formats []string, outputDir string) (*pipeline.Runner, *store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	g, err := c.loadGallery(ctx)
	if err != nil {
		return nil, nil, err
	}

	if len(formats) == 0 {
		formats = cfg.Output.Formats
	}
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}
	writer := output.NewWriter(outputDir, formats, logger)

	var history *store.Store
	if cfg.History.Enabled {
		history, err = store.Open(ctx, cfg.History.Path)
		if err != nil {
			return nil, nil, err
		}
	}

	runner := pipeline.NewRunner(
		cfg,
		asr.NewWhisperCommand(cfg),
		asr.NewExtractorCommand(cfg),
		g,
		writer,
		history,
		logger,
	)
	return runner, history, nil
}
