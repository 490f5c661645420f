package asr

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"voicetag/internal/testsupport"
)

// stubExtractorRunner writes the canned payload to the --json path the
// client passed.
func stubExtractorRunner(t *testing.T, payload any) func(ctx context.Context, name string, args ...string) error {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) error {
		jsonPath := ""
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "--json" {
				jsonPath = args[i+1]
			}
		}
		if jsonPath == "" {
			t.Fatal("runner invoked without --json")
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		return os.WriteFile(jsonPath, data, 0o644)
	}
}

func TestAnalyzeFileParsesSegments(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Speaker.EmbeddingDim = 3
	cfg.Speaker.FeatureDim = 2

	e := NewExtractorCommand(cfg)
	e.WithRunner(stubExtractorRunner(t, analyzePayload{
		Segments: []extractorSegment{
			{Start: 0, End: 1.5, Embedding: []float64{1, 0, 0}, Features: []float64{0.5, 0.5}},
			{Start: 2, End: 2, Embedding: []float64{0, 1, 0}}, // zero-length, dropped
			{Start: 3, End: 4, Embedding: []float64{1, 0}},    // wrong dim, vector dropped
		},
	}))

	segments, err := e.AnalyzeFile(context.Background(), "a.wav")
	if err != nil {
		t.Fatalf("AnalyzeFile: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Embedding == nil || segments[0].Features == nil {
		t.Errorf("first segment lost its vectors: %+v", segments[0])
	}
	// The mismatched embedding behaves like a failed extraction.
	if segments[1].Embedding != nil {
		t.Errorf("wrong-dimension embedding should be dropped, got %v", segments[1].Embedding)
	}
}

func TestExtractFileReferenceVectors(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Speaker.EmbeddingDim = 0
	cfg.Speaker.FeatureDim = 0

	e := NewExtractorCommand(cfg)
	e.WithRunner(stubExtractorRunner(t, referencePayload{
		Embedding: []float64{1, 0, 0},
		Features:  []float64{0.4, 0.6},
	}))

	embedding, features, err := e.ExtractFile(context.Background(), "john_01.wav")
	if err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if len(embedding) != 3 || len(features) != 2 {
		t.Errorf("vectors = %v, %v", embedding, features)
	}
}

func TestExtractorModeArgs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Features.MFCC = 13
	cfg.Audio.SampleRate = 16000

	var gotArgs []string
	e := NewExtractorCommand(cfg)
	e.WithRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		return stubExtractorRunner(t, referencePayload{Embedding: []float64{1}})(context.Background(), "", args...)
	})

	if _, _, err := e.ExtractFile(context.Background(), "a.wav"); err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if len(gotArgs) == 0 || gotArgs[0] != "reference" {
		t.Fatalf("expected reference mode first, got %v", gotArgs)
	}
}

func TestExtractorRunnerFailure(t *testing.T) {
	e := NewExtractorCommand(testsupport.NewConfig(t))
	e.WithRunner(func(context.Context, string, ...string) error {
		return os.ErrNotExist
	})
	if _, err := e.AnalyzeFile(context.Background(), "a.wav"); err == nil {
		t.Fatal("expected the tool failure to propagate")
	}
}
