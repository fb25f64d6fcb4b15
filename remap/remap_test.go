package remap

import (
	"testing"

	"github.com/andrewarrow/scenecast/timeline"
)

func frame(file string) timeline.ManifestEntry {
	return timeline.ManifestEntry{Kind: timeline.EntryFrame, File: file}
}

func hold(file string, count int) timeline.ManifestEntry {
	return timeline.ManifestEntry{Kind: timeline.EntryHold, File: file, Count: count}
}

// TestS1OneSceneTwoClick reproduces spec §8's S1: three distinct frames, no
// transitions; totalOutputFrames equals the expanded frame count exactly.
func TestS1OneSceneTwoClick(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b"), frame("c")}

	if got := ExpandedFrameCount(manifest); got != 3 {
		t.Errorf("expandedFrameCount = %d, want 3", got)
	}
	if got := TotalOutputFrames(manifest, nil); got != 3 {
		t.Errorf("totalOutputFrames = %d, want 3", got)
	}
	if got := EntryToFirstExpandedFrame(manifest, 1); got != 1 {
		t.Errorf("entryToFirstExpandedFrame(1) = %d, want 1", got)
	}
	if got := LastExpandedFrameOfEntry(manifest, 1); got != 1 {
		t.Errorf("lastExpandedFrameOfEntry(1) = %d, want 1", got)
	}
}

// TestS2OneTransitionTotalFrames reproduces spec §8's S2 frame-count math:
// 3 expanded frames plus one transition of duration 3 consuming 1 = 5.
func TestS2OneTransitionTotalFrames(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b"), frame("c")}
	transitions := []timeline.TransitionMarker{
		{AfterEntryIndex: 0, Kind: timeline.TransitionFade, DurationFrames: 3, ConsumedFrames: 1},
	}

	if got := TotalOutputFrames(manifest, transitions); got != 5 {
		t.Errorf("totalOutputFrames = %d, want 5", got)
	}
}

// TestS3HoldTransitionExpandedFrames reproduces spec §8's S3: manifest
// [Frame(a), Hold(b,3), Frame(c)] expands to 5 virtual frames, with entry 1
// (the hold) spanning expanded frames 1-3.
func TestS3HoldTransitionExpandedFrames(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), hold("b", 3), frame("c")}

	if got := ExpandedFrameCount(manifest); got != 5 {
		t.Errorf("expandedFrameCount = %d, want 5", got)
	}
	if got := EntryToFirstExpandedFrame(manifest, 1); got != 1 {
		t.Errorf("entryToFirstExpandedFrame(1) = %d, want 1", got)
	}
	if got := LastExpandedFrameOfEntry(manifest, 1); got != 3 {
		t.Errorf("lastExpandedFrameOfEntry(1) = %d, want 3", got)
	}
	if got := EntryToFirstExpandedFrame(manifest, 2); got != 4 {
		t.Errorf("entryToFirstExpandedFrame(2) = %d, want 4", got)
	}
}

// TestS4SlideInsertion reproduces spec §8's S4: a slide of duration 2000ms
// at fps=30 occupies output frames 0-59 frozen at source t=0; output frame
// 60 (t=2000ms) maps back to source t=0, the first real content frame.
func TestS4SlideInsertion(t *testing.T) {
	slides := []Slide{{SceneTimestampMs: 0, DurationMs: 2000}}

	if got := SourceTimeMs(0, slides); got != 0 {
		t.Errorf("sourceTimeMs(0) = %d, want 0 (frozen)", got)
	}
	if got := SourceTimeMs(1999, slides); got != 0 {
		t.Errorf("sourceTimeMs(1999) = %d, want 0 (still frozen)", got)
	}
	if got := SourceTimeMs(2000, slides); got != 0 {
		t.Errorf("sourceTimeMs(2000) = %d, want 0 (first real content)", got)
	}
}

func TestSourceTimeMsBeforeAnySlide(t *testing.T) {
	slides := []Slide{{SceneTimestampMs: 5000, DurationMs: 2000}}
	if got := SourceTimeMs(1000, slides); got != 1000 {
		t.Errorf("sourceTimeMs(1000) = %d, want 1000 (no shift yet)", got)
	}
}

func TestSourceTimeMsAfterSlideShiftsByDuration(t *testing.T) {
	slides := []Slide{{SceneTimestampMs: 0, DurationMs: 2000}}
	// Output 2500 is 500ms past the slide window; real content resumes
	// at source time output-2000 = 500.
	if got := SourceTimeMs(2500, slides); got != 500 {
		t.Errorf("sourceTimeMs(2500) = %d, want 500", got)
	}
}

func TestSourceTimeMsClampsDeadZone(t *testing.T) {
	slides := []Slide{{SceneTimestampMs: 0, DurationMs: 2000, DeadAfterMs: 300}}
	// Output 2100 maps to source 100 before clamping; dead zone
	// [0,300) pushes it forward to 300.
	if got := SourceTimeMs(2100, slides); got != 300 {
		t.Errorf("sourceTimeMs(2100) = %d, want 300 (clamped past dead zone)", got)
	}
}

func TestRemapEventsShiftsOnlyEventsAtOrAfterSlide(t *testing.T) {
	events := []timeline.Event{
		{ID: "ev-001", TimestampMs: 0, Kind: timeline.KindScene, Scene: &timeline.SceneEvent{Title: "Intro"}},
		{ID: "ev-002", TimestampMs: 1000, Kind: timeline.KindWait, Wait: &timeline.WaitEvent{DurationMs: 500, Reason: timeline.WaitPacing}},
	}
	slides := []Slide{{SceneTimestampMs: 0, DurationMs: 2000}}

	remapped := RemapEvents(events, slides)
	if remapped[0].TimestampMs != 2000 {
		t.Errorf("scene event shifted to %d, want 2000", remapped[0].TimestampMs)
	}
	if remapped[1].TimestampMs != 3000 {
		t.Errorf("wait event shifted to %d, want 3000", remapped[1].TimestampMs)
	}
	// Original slice must be untouched (events are append-only/immutable).
	if events[0].TimestampMs != 0 || events[1].TimestampMs != 1000 {
		t.Errorf("RemapEvents mutated its input slice: %+v", events)
	}
}
