package pipeline

import (
	"testing"

	"voicetag/internal/align"
	"voicetag/internal/diarize"
	"voicetag/internal/gallery"
	"voicetag/internal/testsupport"
)

func defaultOptions(t *testing.T) Options {
	t.Helper()
	return OptionsFromConfig(testsupport.NewConfig(t))
}

func TestDiarizeAndLabelEndToEnd(t *testing.T) {
	g := gallery.New([]gallery.Profile{
		{Name: "John", Embeddings: [][]float64{{1, 0, 0}}},
	}, nil)

	segments := []diarize.Segment{
		{Start: 0, End: 2, Embedding: []float64{0.98, 0.02, 0}},
		{Start: 2, End: 4, Embedding: []float64{0, 0, 1}},
		{Start: 4, End: 6, Embedding: []float64{0.97, 0.03, 0}},
	}
	spans := []align.Span{
		{Start: 0.2, End: 1.8, Text: "hello everyone"},
		{Start: 2.2, End: 3.8, Text: "hi John"},
		{Start: 4.2, End: 5.8, Text: "how are you"},
	}

	result, err := DiarizeAndLabel(segments, spans, g, defaultOptions(t), nil)
	if err != nil {
		t.Fatalf("DiarizeAndLabel: %v", err)
	}
	if result.Speakers != 2 {
		t.Fatalf("expected 2 speakers, got %d", result.Speakers)
	}
	if len(result.Utterances) != 3 {
		t.Fatalf("expected 3 utterances, got %d", len(result.Utterances))
	}
	want := []string{"John", "User1", "John"}
	for i, u := range result.Utterances {
		if u.Speaker != want[i] {
			t.Errorf("utterance %d speaker = %q, want %q", i, u.Speaker, want[i])
		}
	}
}

func TestDiarizeAndLabelDeterministic(t *testing.T) {
	g := gallery.New(nil, nil)
	segments := []diarize.Segment{
		{Start: 0, End: 1, Embedding: []float64{1, 0}},
		{Start: 1, End: 2, Embedding: []float64{0, 1}},
	}
	spans := []align.Span{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
	}
	opts := defaultOptions(t)

	first, err := DiarizeAndLabel(segments, spans, g, opts, nil)
	if err != nil {
		t.Fatalf("DiarizeAndLabel: %v", err)
	}
	second, err := DiarizeAndLabel(segments, spans, g, opts, nil)
	if err != nil {
		t.Fatalf("DiarizeAndLabel: %v", err)
	}
	if len(first.Utterances) != len(second.Utterances) {
		t.Fatal("runs over identical input diverged")
	}
	for i := range first.Utterances {
		if first.Utterances[i] != second.Utterances[i] {
			t.Errorf("utterance %d differs across runs", i)
		}
	}
}

func TestPlaceholderNumberingFollowsClusterOrder(t *testing.T) {
	// Three distinct unmatched speakers: placeholders number 1..3 in
	// cluster creation order, independent of matching.
	g := gallery.New(nil, nil)
	segments := []diarize.Segment{
		{Start: 0, End: 1, Embedding: []float64{1, 0, 0}},
		{Start: 1, End: 2, Embedding: []float64{0, 1, 0}},
		{Start: 2, End: 3, Embedding: []float64{0, 0, 1}},
	}
	spans := []align.Span{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 2, End: 3, Text: "c"},
	}

	result, err := DiarizeAndLabel(segments, spans, g, defaultOptions(t), nil)
	if err != nil {
		t.Fatalf("DiarizeAndLabel: %v", err)
	}
	want := []string{"User1", "User2", "User3"}
	for i, u := range result.Utterances {
		if u.Speaker != want[i] {
			t.Errorf("utterance %d speaker = %q, want %q", i, u.Speaker, want[i])
		}
	}
}

func TestPlaceholderNumberingSkipsMatchedClusters(t *testing.T) {
	// The matched cluster in the middle does not consume a placeholder
	// number: the unmatched speakers are User1 and User2.
	g := gallery.New([]gallery.Profile{
		{Name: "Mary", Embeddings: [][]float64{{0, 1, 0}}},
	}, nil)
	segments := []diarize.Segment{
		{Start: 0, End: 1, Embedding: []float64{1, 0, 0}},
		{Start: 1, End: 2, Embedding: []float64{0, 1, 0}},
		{Start: 2, End: 3, Embedding: []float64{0, 0, 1}},
	}
	spans := []align.Span{
		{Start: 0, End: 1, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
		{Start: 2, End: 3, Text: "c"},
	}

	result, err := DiarizeAndLabel(segments, spans, g, defaultOptions(t), nil)
	if err != nil {
		t.Fatalf("DiarizeAndLabel: %v", err)
	}
	want := []string{"User1", "Mary", "User2"}
	for i, u := range result.Utterances {
		if u.Speaker != want[i] {
			t.Errorf("utterance %d speaker = %q, want %q", i, u.Speaker, want[i])
		}
	}
}

func TestDiarizeAndLabelEmptySegments(t *testing.T) {
	g := gallery.New(nil, nil)
	if _, err := DiarizeAndLabel(nil, nil, g, defaultOptions(t), nil); err == nil {
		t.Fatal("expected an error for an empty segment set")
	}
}
