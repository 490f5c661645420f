package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"voicetag/internal/logging"
)

// BatchResult aggregates the outcome of processing a directory.
type BatchResult struct {
	Summaries []RunSummary
	// Failed maps recording path to the error that stopped it. Failures
	// are isolated: one bad recording never aborts the batch.
	Failed map[string]error
}

// ProcessDirectory processes every audio file directly under dir with a
// bounded worker pool. Recordings are discovered non-recursively and
// dispatched in name order; the shared gallery is read-only so the workers
// need no coordination beyond the result collector.
func (r *Runner) ProcessDirectory(ctx context.Context, dir string) (BatchResult, error) {
	files, err := r.discoverRecordings(dir)
	if err != nil {
		return BatchResult{}, err
	}
	if len(files) == 0 {
		return BatchResult{}, fmt.Errorf("no audio files found in %s", dir)
	}

	workers := r.cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}
	r.logger.Info("processing directory",
		logging.String("dir", dir),
		logging.Int("recordings", len(files)),
		logging.Int("workers", workers))

	type outcome struct {
		path    string
		summary RunSummary
		err     error
	}

	jobs := make(chan string)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				summary, err := r.ProcessFile(ctx, path)
				results <- outcome{path: path, summary: summary, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	batch := BatchResult{Failed: make(map[string]error)}
	for res := range results {
		if res.err != nil {
			batch.Failed[res.path] = res.err
			continue
		}
		batch.Summaries = append(batch.Summaries, res.summary)
	}

	// Keep output order stable regardless of worker scheduling.
	sort.Slice(batch.Summaries, func(i, j int) bool {
		return batch.Summaries[i].Source < batch.Summaries[j].Source
	})

	if err := ctx.Err(); err != nil {
		return batch, err
	}
	return batch, nil
}

func (r *Runner) discoverRecordings(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	allowed := make(map[string]struct{}, len(r.cfg.Audio.Extensions))
	for _, ext := range r.cfg.Audio.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
