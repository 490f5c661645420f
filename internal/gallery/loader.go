package gallery

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"voicetag/internal/logging"
)

// Extractor produces the reference vectors for one enrollment sample file.
// A nil vector means extraction of that kind failed for the sample; a sample
// missing both vectors is skipped.
type Extractor interface {
	ExtractFile(ctx context.Context, audioPath string) (embedding, features []float64, err error)
}

// Loader assembles enrollment profiles from a reference directory. Two
// layouts are supported:
//
//	Reference/alice/sample1.wav      (one subdirectory per identity)
//	Reference/alice_01.wav           (flat, identity is the stem before "_")
type Loader struct {
	extractor  Extractor
	extensions map[string]struct{}
	logger     *slog.Logger
}

// NewLoader builds a loader restricted to the given audio file extensions
// (e.g. ".wav", ".flac"); extensions are matched case-insensitively.
func NewLoader(extractor Extractor, extensions []string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNop()
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return &Loader{
		extractor:  extractor,
		extensions: set,
		logger:     logger.With(logging.String(logging.FieldComponent, "gallery")),
	}
}

// Load walks the reference directory and returns a gallery of profiles. A
// missing directory yields an empty gallery rather than an error so that
// running without enrollment is a first-class mode. Individual sample
// failures are logged and skipped; an identity whose every sample fails is
// dropped as degraded by New.
func (l *Loader) Load(ctx context.Context, referenceDir string) (*Gallery, error) {
	entries, err := l.collectSamples(referenceDir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return New(nil, l.logger), nil
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]Profile, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		profile := Profile{Name: name}
		for _, samplePath := range entries[name] {
			embedding, features, err := l.extractor.ExtractFile(ctx, samplePath)
			if err != nil {
				l.logger.Warn("skipping enrollment sample",
					logging.String("identity", name),
					logging.String("sample", samplePath),
					logging.Error(err))
				continue
			}
			if len(embedding) > 0 {
				profile.Embeddings = append(profile.Embeddings, embedding)
			}
			if len(features) > 0 {
				profile.Features = append(profile.Features, features)
			}
		}
		profiles = append(profiles, profile)
	}

	g := New(profiles, l.logger)
	l.logger.Info("enrollment gallery loaded",
		logging.String("reference_dir", referenceDir),
		logging.Int("identities", g.Len()))
	return g, nil
}

// collectSamples groups sample file paths by identity name.
func (l *Loader) collectSamples(referenceDir string) (map[string][]string, error) {
	root := strings.TrimSpace(referenceDir)
	if root == "" {
		return nil, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat reference dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference path %s is not a directory", root)
	}

	samples := make(map[string][]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := l.extensions[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		name := identityFor(root, path)
		if name == "" {
			return nil
		}
		samples[name] = append(samples[name], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk reference dir: %w", err)
	}
	for name := range samples {
		sort.Strings(samples[name])
	}
	return samples, nil
}

// identityFor derives the identity name from a sample path: the immediate
// subdirectory name in the hierarchical layout, or the filename stem up to
// the first underscore in the flat layout.
func identityFor(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) > 1 {
		return parts[0]
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if idx := strings.Index(stem, "_"); idx > 0 {
		return stem[:idx]
	}
	return stem
}
