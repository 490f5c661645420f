package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voicetag/internal/align"
	"voicetag/internal/asr"
	"voicetag/internal/config"
	"voicetag/internal/gallery"
	"voicetag/internal/logging"
	"voicetag/internal/output"
	"voicetag/internal/store"
)

// Runner drives the full per-recording workflow: transcription and segment
// analysis through the external tools, the core labeling pass, report
// writing, and run-history recording.
type Runner struct {
	cfg         *config.Config
	opts        Options
	transcriber asr.Transcriber
	analyzer    asr.SegmentAnalyzer
	gallery     *gallery.Gallery
	writer      *output.Writer
	history     *store.Store
	logger      *slog.Logger
}

// NewRunner assembles a runner. gallery must be non-nil (an empty gallery is
// valid and means every speaker gets a placeholder label). history may be
// nil to disable run recording.
func NewRunner(
	cfg *config.Config,
	transcriber asr.Transcriber,
	analyzer asr.SegmentAnalyzer,
	g *gallery.Gallery,
	writer *output.Writer,
	history *store.Store,
	logger *slog.Logger,
) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		opts:        OptionsFromConfig(cfg),
		transcriber: transcriber,
		analyzer:    analyzer,
		gallery:     g,
		writer:      writer,
		history:     history,
		logger:      logger.With(logging.String(logging.FieldComponent, "pipeline")),
	}
}

// RunSummary describes one completed recording.
type RunSummary struct {
	RunID       string
	Source      string
	Speakers    int
	Utterances  []align.Utterance
	Matches     int
	OutputPaths map[string]string
}

// ProcessFile runs the workflow for a single recording and returns its
// summary. On failure the error carries the failing stage; if run history is
// enabled the failure is recorded there too.
func (r *Runner) ProcessFile(ctx context.Context, audioPath string) (RunSummary, error) {
	runID := uuid.NewString()
	started := time.Now()
	logger := r.logger.With(
		logging.String(logging.FieldRunID, runID),
		logging.String(logging.FieldRecording, audioPath),
	)
	logger.Info("processing recording")

	summary, err := r.process(ctx, runID, audioPath, logger)
	if err != nil {
		logger.Error("recording failed", logging.Error(err))
		r.recordFailure(ctx, runID, audioPath, err, logger)
		return RunSummary{}, err
	}

	logger.Info("recording complete",
		logging.Int("speakers", summary.Speakers),
		logging.Int("utterances", len(summary.Utterances)),
		logging.Duration("elapsed", time.Since(started)))
	return summary, nil
}

func (r *Runner) process(ctx context.Context, runID, audioPath string, logger *slog.Logger) (RunSummary, error) {
	spans, err := r.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return RunSummary{}, fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	logger.Debug("transcription complete", logging.Int("spans", len(spans)))

	segments, err := r.analyzer.AnalyzeFile(ctx, audioPath)
	if err != nil {
		return RunSummary{}, fmt.Errorf("analyze %s: %w", audioPath, err)
	}
	logger.Debug("segment analysis complete", logging.Int("segments", len(segments)))

	result, err := DiarizeAndLabel(segments, spans, r.gallery, r.opts, logger)
	if err != nil {
		return RunSummary{}, fmt.Errorf("label %s: %w", audioPath, err)
	}

	report := output.BuildReport(runID, audioPath, result.Utterances, result.Matches, result.Labels)
	paths, err := r.writer.Write(report)
	if err != nil {
		return RunSummary{}, fmt.Errorf("write reports for %s: %w", audioPath, err)
	}

	matched := 0
	for _, m := range result.Matches {
		if m.Matched() {
			matched++
		}
	}

	summary := RunSummary{
		RunID:       runID,
		Source:      audioPath,
		Speakers:    result.Speakers,
		Utterances:  result.Utterances,
		Matches:     matched,
		OutputPaths: paths,
	}
	r.recordSuccess(ctx, summary, report, logger)
	return summary, nil
}

func (r *Runner) recordSuccess(ctx context.Context, summary RunSummary, report output.Report, logger *slog.Logger) {
	if r.history == nil {
		return
	}
	run := store.Run{
		ID:             summary.RunID,
		Source:         summary.Source,
		Status:         store.StatusCompleted,
		SpeakerCount:   summary.Speakers,
		UtteranceCount: len(summary.Utterances),
		TotalDuration:  report.TotalDuration,
	}
	if err := r.history.RecordRun(ctx, run, summary.Utterances); err != nil {
		// History is supporting metadata; a write failure never fails
		// the run itself.
		logger.Warn("failed to record run history", logging.Error(err))
	}
}

func (r *Runner) recordFailure(ctx context.Context, runID, audioPath string, cause error, logger *slog.Logger) {
	if r.history == nil {
		return
	}
	run := store.Run{
		ID:     runID,
		Source: audioPath,
		Status: store.StatusFailed,
		Error:  cause.Error(),
	}
	if err := r.history.RecordRun(ctx, run, nil); err != nil {
		logger.Warn("failed to record run failure", logging.Error(err))
	}
}
