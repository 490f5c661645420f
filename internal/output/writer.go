package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"voicetag/internal/logging"
)

// Writer renders reports into a directory in the configured formats.
type Writer struct {
	dir     string
	formats []string
	logger  *slog.Logger
}

// NewWriter builds a writer for the given output directory and formats
// (any of json, txt, csv, summary).
func NewWriter(dir string, formats []string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Writer{
		dir:     dir,
		formats: formats,
		logger:  logger.With(logging.String(logging.FieldComponent, "output")),
	}
}

// Write renders the report and returns the written paths keyed by format.
func (w *Writer) Write(report Report) (map[string]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure output dir: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(report.Source), filepath.Ext(report.Source))
	if stem == "" {
		stem = report.RunID
	}

	paths := make(map[string]string, len(w.formats))
	for _, format := range w.formats {
		var path string
		var err error
		switch format {
		case "json":
			path, err = w.writeJSON(report, stem)
		case "txt":
			path, err = w.writeText(report, stem)
		case "csv":
			path, err = w.writeCSV(report, stem)
		case "summary":
			path, err = w.writeSummary(report, stem)
		default:
			err = fmt.Errorf("unsupported output format %q", format)
		}
		if err != nil {
			return nil, err
		}
		paths[format] = path
	}

	w.logger.Debug("outputs written",
		logging.String(logging.FieldRunID, report.RunID),
		logging.Int("formats", len(paths)))
	return paths, nil
}

func (w *Writer) writeJSON(report Report, stem string) (string, error) {
	path := filepath.Join(w.dir, stem+".json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write json report: %w", err)
	}
	return path, nil
}

func (w *Writer) writeText(report Report, stem string) (string, error) {
	path := filepath.Join(w.dir, stem+".txt")
	var b strings.Builder
	fmt.Fprintf(&b, "Conversation: %s\n", filepath.Base(report.Source))
	fmt.Fprintf(&b, "Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Utterances: %d  Speakers: %d  Speech: %.2fs\n\n",
		len(report.Utterances), len(report.Speakers), report.TotalDuration)

	for i, u := range report.Utterances {
		fmt.Fprintf(&b, "[%03d] %07.2fs - %07.2fs | %s\n", i+1, u.Start, u.End, u.Speaker)
		fmt.Fprintf(&b, "      %s\n\n", u.Text)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write text transcript: %w", err)
	}
	return path, nil
}

func (w *Writer) writeCSV(report Report, stem string) (string, error) {
	path := filepath.Join(w.dir, stem+".csv")
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create csv: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write([]string{"index", "start", "end", "duration", "speaker", "text"}); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for i, u := range report.Utterances {
		row := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(u.Start, 'f', 3, 64),
			strconv.FormatFloat(u.End, 'f', 3, 64),
			strconv.FormatFloat(u.Duration(), 'f', 3, 64),
			u.Speaker,
			u.Text,
		}
		if err := cw.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}

func (w *Writer) writeSummary(report Report, stem string) (string, error) {
	path := filepath.Join(w.dir, stem+"_summary.txt")
	var b strings.Builder
	fmt.Fprintf(&b, "Speaker summary: %s\n\n", filepath.Base(report.Source))
	fmt.Fprintf(&b, "Total speech: %.2fs  Words: %d  Speakers: %d\n\n",
		report.TotalDuration, report.TotalWords, len(report.Speakers))

	for _, stat := range report.Speakers {
		fmt.Fprintf(&b, "%s:\n", stat.Speaker)
		fmt.Fprintf(&b, "  Duration: %.2fs (%.1f%%)\n", stat.Duration, stat.Share*100)
		fmt.Fprintf(&b, "  Utterances: %d\n", stat.Utterances)
		fmt.Fprintf(&b, "  Words: %d\n\n", stat.Words)
	}

	for _, id := range report.Identifications {
		if id.MatchedVia == "none" {
			fmt.Fprintf(&b, "Cluster %d unresolved, labeled %s\n", id.Cluster, id.Speaker)
			continue
		}
		fmt.Fprintf(&b, "Cluster %d identified as %s via %s (%.3f)\n", id.Cluster, id.Speaker, id.MatchedVia, id.Confidence)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}
