package asr

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"voicetag/internal/align"
	"voicetag/internal/config"
)

// WhisperCommand transcribes audio by invoking a faster-whisper style CLI
// and parsing the JSON it writes. The tool is expected to accept
//
//	<binary> --model <m> --beam-size <n> [--word-timestamps] \
//	         --output-format json --output-dir <dir> <audio>
//
// and to produce <dir>/<stem>.json with a {"segments": [...]} payload.
type WhisperCommand struct {
	binary         string
	model          string
	beamSize       int
	wordTimestamps bool
	timeout        time.Duration
	workDir        string

	// runner is a test seam; production use shells out.
	runner func(ctx context.Context, name string, args ...string) error
}

// NewWhisperCommand builds a transcriber from configuration.
func NewWhisperCommand(cfg *config.Config) *WhisperCommand {
	return &WhisperCommand{
		binary:         cfg.Transcription.Binary,
		model:          cfg.Transcription.Model,
		beamSize:       cfg.Transcription.BeamSize,
		wordTimestamps: cfg.Transcription.WordTimestamps,
		timeout:        time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
		workDir:        cfg.Paths.WorkDir,
	}
}

// WithRunner sets a custom command runner (for testing).
func (w *WhisperCommand) WithRunner(runner func(ctx context.Context, name string, args ...string) error) {
	w.runner = runner
}

type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type whisperSegment struct {
	Text  string        `json:"text"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Words []whisperWord `json:"words"`
}

type whisperPayload struct {
	Segments []whisperSegment `json:"segments"`
}

// Transcribe runs the recognizer and returns its spans ordered by start
// time.
func (w *WhisperCommand) Transcribe(ctx context.Context, audioPath string) ([]align.Span, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, fmt.Errorf("transcribe: audio path required")
	}

	outDir := filepath.Join(w.workDir, "transcribe-"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: ensure work dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		"--model", w.model,
		"--beam-size", strconv.Itoa(w.beamSize),
		"--output-format", "json",
		"--output-dir", outDir,
	}
	if w.wordTimestamps {
		args = append(args, "--word-timestamps")
	}
	args = append(args, audioPath)

	runCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	if err := w.run(runCtx, w.binary, args...); err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	payloadPath := filepath.Join(outDir, stem+".json")
	spans, err := loadWhisperSpans(payloadPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}
	return spans, nil
}

func (w *WhisperCommand) run(ctx context.Context, name string, args ...string) error {
	if w.runner != nil {
		return w.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// loadWhisperSpans parses the recognizer's JSON output into spans. Segments
// are sorted by start time so downstream alignment always sees ordered
// input, whatever the tool emitted.
func loadWhisperSpans(path string) ([]align.Span, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcription: %w", err)
	}
	var payload whisperPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse transcription json: %w", err)
	}

	spans := make([]align.Span, 0, len(payload.Segments))
	for _, seg := range payload.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		span := align.Span{Start: seg.Start, End: seg.End, Text: text}
		for _, word := range seg.Words {
			span.Words = append(span.Words, align.Word{Text: strings.TrimSpace(word.Word), Start: word.Start, End: word.End})
		}
		spans = append(spans, span)
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans, nil
}
