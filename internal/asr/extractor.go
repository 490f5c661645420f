package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicetag/internal/config"
	"voicetag/internal/diarize"
)

// ExtractorCommand drives the external voice-analysis tool that performs
// voice activity detection and descriptor extraction. Two modes are used:
//
//	<binary> analyze --mfcc <n> --sample-rate <r> --json <out> <audio>
//	<binary> reference --mfcc <n> --sample-rate <r> --json <out> <audio>
//
// "analyze" emits per-segment vectors for diarization; "reference" emits a
// single whole-file vector pair for enrollment.
type ExtractorCommand struct {
	binary       string
	mfcc         int
	sampleRate   int
	embeddingDim int
	featureDim   int
	timeout      time.Duration
	workDir      string

	runner func(ctx context.Context, name string, args ...string) error
}

// NewExtractorCommand builds an extractor client from configuration.
func NewExtractorCommand(cfg *config.Config) *ExtractorCommand {
	return &ExtractorCommand{
		binary:       cfg.Features.Binary,
		mfcc:         cfg.Features.MFCC,
		sampleRate:   cfg.Audio.SampleRate,
		embeddingDim: cfg.Speaker.EmbeddingDim,
		featureDim:   cfg.Speaker.FeatureDim,
		timeout:      time.Duration(cfg.Features.TimeoutSeconds) * time.Second,
		workDir:      cfg.Paths.WorkDir,
	}
}

// WithRunner sets a custom command runner (for testing).
func (e *ExtractorCommand) WithRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.runner = runner
}

type extractorSegment struct {
	Start     float64   `json:"start"`
	End       float64   `json:"end"`
	Embedding []float64 `json:"embedding"`
	Features  []float64 `json:"features"`
}

type analyzePayload struct {
	Segments []extractorSegment `json:"segments"`
}

type referencePayload struct {
	Embedding []float64 `json:"embedding"`
	Features  []float64 `json:"features"`
}

// AnalyzeFile detects voiced segments and their descriptors.
func (e *ExtractorCommand) AnalyzeFile(ctx context.Context, audioPath string) ([]diarize.Segment, error) {
	var payload analyzePayload
	if err := e.invoke(ctx, "analyze", audioPath, &payload); err != nil {
		return nil, err
	}

	segments := make([]diarize.Segment, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		if seg.End <= seg.Start {
			continue
		}
		segments = append(segments, diarize.Segment{
			Start:     seg.Start,
			End:       seg.End,
			Embedding: e.checkedVector(seg.Embedding, e.embeddingDim),
			Features:  e.checkedVector(seg.Features, e.featureDim),
		})
	}
	return segments, nil
}

// ExtractFile produces whole-file reference vectors for one enrollment
// sample.
func (e *ExtractorCommand) ExtractFile(ctx context.Context, audioPath string) ([]float64, []float64, error) {
	var payload referencePayload
	if err := e.invoke(ctx, "reference", audioPath, &payload); err != nil {
		return nil, nil, err
	}
	return e.checkedVector(payload.Embedding, e.embeddingDim), e.checkedVector(payload.Features, e.featureDim), nil
}

// checkedVector drops vectors that disagree with the configured dimension.
// A dropped vector behaves exactly like a failed extraction: the segment or
// sample simply lacks that descriptor kind.
func (e *ExtractorCommand) checkedVector(vec []float64, wantDim int) []float64 {
	if len(vec) == 0 {
		return nil
	}
	if wantDim > 0 && len(vec) != wantDim {
		return nil
	}
	return vec
}

func (e *ExtractorCommand) invoke(ctx context.Context, mode, audioPath string, out any) error {
	if strings.TrimSpace(audioPath) == "" {
		return fmt.Errorf("%s: audio path required", mode)
	}

	outDir := filepath.Join(e.workDir, mode+"-"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("%s: ensure work dir: %w", mode, err)
	}
	defer os.RemoveAll(outDir)

	payloadPath := filepath.Join(outDir, "vectors.json")
	args := []string{
		mode,
		"--mfcc", strconv.Itoa(e.mfcc),
		"--sample-rate", strconv.Itoa(e.sampleRate),
		"--json", payloadPath,
		audioPath,
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.run(runCtx, e.binary, args...); err != nil {
		return fmt.Errorf("%s %s: %w", mode, filepath.Base(audioPath), err)
	}

	data, err := os.ReadFile(payloadPath)
	if err != nil {
		return fmt.Errorf("%s %s: read vectors: %w", mode, filepath.Base(audioPath), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: parse vectors json: %w", mode, filepath.Base(audioPath), err)
	}
	return nil
}

func (e *ExtractorCommand) run(ctx context.Context, name string, args ...string) error {
	if e.runner != nil {
		return e.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
