package store

import (
	"context"
	"path/filepath"
	"testing"

	"voicetag/internal/align"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runs := []Run{
		{ID: "run-1", Source: "a.wav", Status: StatusCompleted, SpeakerCount: 2, UtteranceCount: 3, TotalDuration: 12.5},
		{ID: "run-2", Source: "b.wav", Status: StatusFailed, Error: "transcription failed"},
	}
	for _, run := range runs {
		if err := s.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("RecordRun(%s): %v", run.ID, err)
		}
	}

	listed, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(listed))
	}

	byID := make(map[string]Run, len(listed))
	for _, run := range listed {
		byID[run.ID] = run
	}
	got := byID["run-1"]
	if got.Status != StatusCompleted || got.SpeakerCount != 2 || got.UtteranceCount != 3 {
		t.Errorf("run-1 roundtrip mismatch: %+v", got)
	}
	if byID["run-2"].Error != "transcription failed" {
		t.Errorf("run-2 error not preserved: %+v", byID["run-2"])
	}
}

func TestListRunsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		run := Run{ID: id, Source: id + ".wav", Status: StatusCompleted}
		if err := s.RecordRun(ctx, run, nil); err != nil {
			t.Fatalf("RecordRun(%s): %v", id, err)
		}
	}

	listed, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(listed))
	}
}

func TestUtterancesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := []align.Utterance{
		{Speaker: "John", Start: 0.0, End: 2.4, Text: "hello there"},
		{Speaker: "Unknown", Start: 2.6, End: 4.1, Text: "general greeting"},
	}
	run := Run{ID: "run-1", Source: "a.wav", Status: StatusCompleted, UtteranceCount: len(want)}
	if err := s.RecordRun(ctx, run, want); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := s.Utterances(ctx, "run-1")
	if err != nil {
		t.Fatalf("Utterances: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d utterances, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("utterance %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSchemaVersionGuard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("force version: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := Open(ctx, path); err == nil {
		t.Fatal("expected schema mismatch error")
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	run := Run{ID: "run-1", Source: "a.wav", Status: StatusCompleted}
	if err := s.RecordRun(ctx, run, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	listed, err := s2.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != "run-1" {
		t.Errorf("persisted run not found: %+v", listed)
	}
}
