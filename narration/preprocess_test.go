package narration

import (
	"testing"

	"github.com/andrewarrow/scenecast/encode"
)

// TestAlignSegmentsMatchesS5 reproduces the spec's literal S5 scenario:
// three texts, 6000ms of audio, silences at (1800,2100) and (3900,4200),
// expecting segment windows [0,1950), [1950,4050), [4050,6000).
func TestAlignSegmentsMatchesS5(t *testing.T) {
	texts := []string{"Alpha", "Bravo", "Charlie"}
	silences := []encode.Silence{
		{StartMs: 1800, EndMs: 2100},
		{StartMs: 3900, EndMs: 4200},
	}

	segments := alignSegments(texts, silences, 6000)

	want := []Segment{
		{Index: 0, Text: "Alpha", StartMs: 0, EndMs: 1950, DurationMs: 1950},
		{Index: 1, Text: "Bravo", StartMs: 1950, EndMs: 4050, DurationMs: 2100},
		{Index: 2, Text: "Charlie", StartMs: 4050, EndMs: 6000, DurationMs: 1950},
	}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segments), segments)
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Errorf("segment[%d] = %+v, want %+v", i, segments[i], want[i])
		}
	}
}

func TestAlignSegmentsFallsBackProportionallyWhenTooFewSilences(t *testing.T) {
	texts := []string{"short", "a much longer piece of narration text"}
	segments := alignSegments(texts, nil, 4000)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].StartMs != 0 {
		t.Errorf("first segment should start at 0, got %d", segments[0].StartMs)
	}
	if segments[len(segments)-1].EndMs != 4000 {
		t.Errorf("last segment should end at totalMs, got %d", segments[len(segments)-1].EndMs)
	}
	if segments[1].DurationMs <= segments[0].DurationMs {
		t.Errorf("longer text should get a longer proportional window: %+v", segments)
	}
}

func TestAlignSegmentsSingleText(t *testing.T) {
	segments := alignSegments([]string{"only one"}, nil, 2500)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0].StartMs != 0 || segments[0].EndMs != 2500 {
		t.Errorf("expected [0,2500), got %+v", segments[0])
	}
}

func TestCheckDivergence(t *testing.T) {
	if err := CheckDivergence(3, 3); err != nil {
		t.Errorf("matching counts should not error: %v", err)
	}
	if err := CheckDivergence(3, 2); err == nil {
		t.Error("expected NarrationMismatch error for diverging counts")
	}
}

func TestToQueueOnlyFirstSegmentCarriesAudioFile(t *testing.T) {
	m := Manifest{Segments: []Segment{
		{Index: 0, Text: "a", DurationMs: 100},
		{Index: 1, Text: "b", DurationMs: 200},
	}}
	queue := ToQueue(m, "narration-full.wav")

	if queue[0].AudioFile == nil || *queue[0].AudioFile != "narration-full.wav" {
		t.Errorf("expected first segment to carry the audio file, got %+v", queue[0])
	}
	if queue[1].AudioFile != nil {
		t.Errorf("expected second segment to have no audio file reference, got %+v", queue[1])
	}
}
