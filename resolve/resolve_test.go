package resolve

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

// TestS1NoTransitionsResolvesSource reproduces spec §8's S1.
func TestS1NoTransitionsResolvesSource(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b"), frame("c")}

	got := ResolveOutputFrame(1, manifest, nil)
	if got.Source == nil || got.Source.File != "b" {
		t.Fatalf("resolve(1) = %+v, want Source(b)", got)
	}
}

// TestS2OneTransition reproduces spec §8's S2 exactly: progress 1/3, 2/3, 1
// across the transition window, with plain source frames on either side.
func TestS2OneTransition(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b"), frame("c")}
	transitions := []timeline.TransitionMarker{
		{AfterEntryIndex: 0, Kind: timeline.TransitionFade, DurationFrames: 3, ConsumedFrames: 1},
	}

	if got := ResolveOutputFrame(0, manifest, transitions); got.Source == nil || got.Source.File != "a" {
		t.Errorf("resolve(0) = %+v, want Source(a)", got)
	}

	tr1 := ResolveOutputFrame(1, manifest, transitions)
	assertTransition(t, tr1, "a", "b", 1.0/3.0)

	tr2 := ResolveOutputFrame(2, manifest, transitions)
	assertTransition(t, tr2, "a", "b", 2.0/3.0)

	tr3 := ResolveOutputFrame(3, manifest, transitions)
	assertTransition(t, tr3, "a", "b", 1.0)

	if got := ResolveOutputFrame(4, manifest, transitions); got.Source == nil || got.Source.File != "c" {
		t.Errorf("resolve(4) = %+v, want Source(c)", got)
	}
}

// TestS3HoldPlusTransition reproduces spec §8's S3.
func TestS3HoldPlusTransition(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), hold("b", 3), frame("c")}
	transitions := []timeline.TransitionMarker{
		{AfterEntryIndex: 1, Kind: timeline.TransitionFade, DurationFrames: 2, ConsumedFrames: 1},
	}

	if got := ResolveOutputFrame(3, manifest, transitions); got.Source == nil || got.Source.File != "b" {
		t.Errorf("resolve(3) = %+v, want Source(b)", got)
	}

	tr4 := ResolveOutputFrame(4, manifest, transitions)
	assertTransition(t, tr4, "b", "c", 0.5)

	tr5 := ResolveOutputFrame(5, manifest, transitions)
	assertTransition(t, tr5, "b", "c", 1.0)
}

// TestS9BoundaryDurationOneFrame covers a one-frame-long transition: exactly
// one output frame at progress 1.0, with plain source frames immediately
// before and after.
func TestS9BoundaryDurationOneFrame(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b")}
	transitions := []timeline.TransitionMarker{
		{AfterEntryIndex: 0, Kind: timeline.TransitionWipe, DurationFrames: 1, ConsumedFrames: 1},
	}

	if got := ResolveOutputFrame(0, manifest, transitions); got.Source == nil || got.Source.File != "a" {
		t.Errorf("resolve(0) = %+v, want Source(a)", got)
	}
	tr := ResolveOutputFrame(1, manifest, transitions)
	assertTransition(t, tr, "a", "b", 1.0)
	if got := ResolveOutputFrame(2, manifest, transitions); got.Source == nil || got.Source.File != "b" {
		t.Errorf("resolve(2) = %+v, want Source(b)", got)
	}
}

func TestResolveClampsOutOfRangeFrames(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b")}

	if got := ResolveOutputFrame(-5, manifest, nil); got.Source == nil || got.Source.File != "a" {
		t.Errorf("resolve(-5) = %+v, want clamped Source(a)", got)
	}
	if got := ResolveOutputFrame(50, manifest, nil); got.Source == nil || got.Source.File != "b" {
		t.Errorf("resolve(50) = %+v, want clamped Source(b)", got)
	}
}

func TestExplicitBeforeAfterFileOverrideDefaults(t *testing.T) {
	manifest := []timeline.ManifestEntry{frame("a"), frame("b")}
	transitions := []timeline.TransitionMarker{
		{AfterEntryIndex: 0, Kind: timeline.TransitionCube, DurationFrames: 2, ConsumedFrames: 1,
			BeforeFile: "custom-before.png", AfterFile: "custom-after.png"},
	}

	tr := ResolveOutputFrame(1, manifest, transitions)
	assertTransition(t, tr, "custom-before.png", "custom-after.png", 0.5)
}

func assertTransition(t *testing.T, f Frame, wantBefore, wantAfter string, wantProgress float64) {
	t.Helper()
	if f.Transition == nil {
		t.Fatalf("got %+v, want a Transition", f)
	}
	if f.Transition.BeforeFile != wantBefore || f.Transition.AfterFile != wantAfter {
		t.Errorf("transition faces = (%s -> %s), want (%s -> %s)",
			f.Transition.BeforeFile, f.Transition.AfterFile, wantBefore, wantAfter)
	}
	if diff := f.Transition.Progress - wantProgress; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("progress = %v, want %v", f.Transition.Progress, wantProgress)
	}
}
