package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fixtureReport() Report {
	return BuildReport("run-1", "/audio/meeting.wav", fixtureUtterances(), nil, nil)
}

func TestWriterAllFormats(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, []string{"json", "txt", "csv", "summary"}, nil)

	paths, err := w.Write(fixtureReport())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 outputs, got %d", len(paths))
	}

	want := map[string]string{
		"json":    "meeting.json",
		"txt":     "meeting.txt",
		"csv":     "meeting.csv",
		"summary": "meeting_summary.txt",
	}
	for format, base := range want {
		path, ok := paths[format]
		if !ok {
			t.Errorf("missing %s output", format)
			continue
		}
		if filepath.Base(path) != base {
			t.Errorf("%s output named %s, want %s", format, filepath.Base(path), base)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s output not written: %v", format, err)
		}
	}
}

func TestWriterJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, []string{"json"}, nil)

	paths, err := w.Write(fixtureReport())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(paths["json"])
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var got Report
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.RunID != "run-1" || len(got.Utterances) != 3 {
		t.Errorf("roundtrip mismatch: run=%q utterances=%d", got.RunID, len(got.Utterances))
	}
	if got.Utterances[0].Speaker != "John" {
		t.Errorf("first speaker = %q, want John", got.Utterances[0].Speaker)
	}
}

func TestWriterCSVParses(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, []string{"csv"}, nil)

	paths, err := w.Write(fixtureReport())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	file, err := os.Open(paths["csv"])
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 4 { // header + 3 utterances
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0][4] != "speaker" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "John" || rows[1][5] != "hello there everyone" {
		t.Errorf("first data row = %v", rows[1])
	}
}

func TestWriterTextTranscript(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, []string{"txt"}, nil)

	paths, err := w.Write(fixtureReport())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(paths["txt"])
	if err != nil {
		t.Fatalf("read txt: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "Conversation: meeting.wav") {
		t.Errorf("missing header in transcript:\n%s", text)
	}
	if !strings.Contains(text, "| John") || !strings.Contains(text, "hello there everyone") {
		t.Errorf("missing utterance content:\n%s", text)
	}
}

func TestWriterUnsupportedFormat(t *testing.T) {
	w := NewWriter(t.TempDir(), []string{"xml"}, nil)
	if _, err := w.Write(fixtureReport()); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}
