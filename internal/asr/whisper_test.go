package asr

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicetag/internal/testsupport"
)

// stubWhisperRunner writes the canned payload to the --output-dir the
// client passed, mimicking the real tool's file contract.
func stubWhisperRunner(t *testing.T, stem string, payload whisperPayload) func(ctx context.Context, name string, args ...string) error {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) error {
		outDir := ""
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "--output-dir" {
				outDir = args[i+1]
			}
		}
		if outDir == "" {
			t.Fatal("runner invoked without --output-dir")
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(outDir, stem+".json"), data, 0o644)
	}
}

func TestTranscribeParsesAndOrdersSpans(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	w := NewWhisperCommand(cfg)
	w.WithRunner(stubWhisperRunner(t, "meeting", whisperPayload{
		Segments: []whisperSegment{
			{Text: " second ", Start: 2.0, End: 3.5},
			{Text: "first", Start: 0.0, End: 1.5, Words: []whisperWord{
				{Word: " first", Start: 0.0, End: 1.5},
			}},
			{Text: "   ", Start: 4.0, End: 5.0}, // blank text is dropped
		},
	}))

	spans, err := w.Transcribe(context.Background(), "/audio/meeting.wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Text != "first" || spans[1].Text != "second" {
		t.Errorf("spans out of order or untrimmed: %q, %q", spans[0].Text, spans[1].Text)
	}
	if len(spans[0].Words) != 1 || spans[0].Words[0].Text != "first" {
		t.Errorf("word timings not preserved: %+v", spans[0].Words)
	}
}

func TestTranscribeCommandArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcription.Model = "small"
	cfg.Transcription.BeamSize = 3
	cfg.Transcription.WordTimestamps = true

	var gotName string
	var gotArgs []string
	w := NewWhisperCommand(cfg)
	w.WithRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		// Satisfy the payload read.
		outDir := ""
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "--output-dir" {
				outDir = args[i+1]
			}
		}
		return os.WriteFile(filepath.Join(outDir, "a.json"), []byte(`{"segments":[]}`), 0o644)
	})

	if _, err := w.Transcribe(context.Background(), "a.wav"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotName != cfg.Transcription.Binary {
		t.Errorf("binary = %q, want %q", gotName, cfg.Transcription.Binary)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--model small", "--beam-size 3", "--word-timestamps", "--output-format json", "a.wav"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestTranscribeEmptyPathRejected(t *testing.T) {
	w := NewWhisperCommand(testsupport.NewConfig(t))
	if _, err := w.Transcribe(context.Background(), "  "); err == nil {
		t.Fatal("expected an error for an empty audio path")
	}
}

func TestTranscribeRunnerFailure(t *testing.T) {
	w := NewWhisperCommand(testsupport.NewConfig(t))
	w.WithRunner(func(context.Context, string, ...string) error {
		return os.ErrPermission
	})
	if _, err := w.Transcribe(context.Background(), "a.wav"); err == nil {
		t.Fatal("expected the tool failure to propagate")
	}
}
