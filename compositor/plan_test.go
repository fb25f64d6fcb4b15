package compositor

import (
	"testing"

	"github.com/andrewarrow/scenecast/remap"
	"github.com/andrewarrow/scenecast/timeline"
)

func sampleTimeline() timeline.Timeline {
	bb := &timeline.BoundingBox{X: 100, Y: 100, Width: 40, Height: 20}
	return timeline.Timeline{
		Version: timeline.SchemaVersion,
		Metadata: timeline.Metadata{
			Fps: 30,
			FrameManifest: []timeline.ManifestEntry{
				{Kind: timeline.EntryFrame, File: "f0.png"},
				{Kind: timeline.EntryFrame, File: "f1.png"},
				{Kind: timeline.EntryFrame, File: "f2.png"},
			},
		},
		Events: []timeline.Event{
			{ID: "ev-001", TimestampMs: 0, Kind: timeline.KindScene, Scene: &timeline.SceneEvent{Title: "Intro"}},
			{ID: "ev-002", TimestampMs: 0, Kind: timeline.KindAction, Action: &timeline.ActionEvent{
				Kind: timeline.ActionNavigate, Selector: "https://example.com/docs?x=1", DurationMs: 10,
			}},
			{ID: "ev-003", TimestampMs: 33, Kind: timeline.KindCursorTarget, CursorTarget: &timeline.CursorTargetEvent{
				FromX: 0, FromY: 0, ToX: 100, ToY: 100, MoveDurationMs: 33, Easing: "bezier",
			}},
			{ID: "ev-004", TimestampMs: 66, Kind: timeline.KindAction, Action: &timeline.ActionEvent{
				Kind: timeline.ActionClick, Selector: "#cta", DurationMs: 5, BoundingBox: bb,
			}},
		},
	}
}

func TestBuildPlanIsDeterministicAcrossRuns(t *testing.T) {
	tl := sampleTimeline()

	p1 := BuildPlan(tl, nil)
	p2 := BuildPlan(tl, nil)

	if len(p1) != len(p2) {
		t.Fatalf("plan lengths differ: %d vs %d", len(p1), len(p2))
	}
	for i := range p1 {
		a, b := p1[i], p2[i]
		if a.OutputMs != b.OutputMs || a.ChromeVisible != b.ChromeVisible || a.ActiveURL != b.ActiveURL || a.Cursor != b.Cursor {
			t.Fatalf("frame %d differs between runs: %+v vs %+v", i, a, b)
		}
		if (a.Base.Source == nil) != (b.Base.Source == nil) || (a.Base.Transition == nil) != (b.Base.Transition == nil) {
			t.Fatalf("frame %d base kind differs: %+v vs %+v", i, a.Base, b.Base)
		}
		if a.Base.Source != nil && *a.Base.Source != *b.Base.Source {
			t.Fatalf("frame %d source differs: %+v vs %+v", i, *a.Base.Source, *b.Base.Source)
		}
		if a.Base.Transition != nil && *a.Base.Transition != *b.Base.Transition {
			t.Fatalf("frame %d transition differs: %+v vs %+v", i, *a.Base.Transition, *b.Base.Transition)
		}
		if len(a.Ripples) != len(b.Ripples) {
			t.Fatalf("frame %d ripple count differs: %+v vs %+v", i, a.Ripples, b.Ripples)
		}
		for j := range a.Ripples {
			if a.Ripples[j] != b.Ripples[j] {
				t.Fatalf("frame %d ripple %d differs: %+v vs %+v", i, j, a.Ripples[j], b.Ripples[j])
			}
		}
	}
}

func TestBuildPlanChromeSuppressedDuringSlide(t *testing.T) {
	tl := sampleTimeline()
	slides := []remap.Slide{{SceneTimestampMs: 0, DurationMs: 2000}}

	plans := BuildPlan(tl, slides)
	if len(plans) == 0 {
		t.Fatal("expected at least one frame")
	}
	if plans[0].ChromeVisible {
		t.Errorf("chrome should be suppressed during the slide window, got visible at frame 0")
	}
	if plans[0].Cursor.Visible {
		t.Errorf("cursor should be suppressed during the slide window")
	}
}

func TestMostRecentNavigateURLStripsSchemeAndQuery(t *testing.T) {
	tl := sampleTimeline()
	url := mostRecentNavigateURL(tl.Events, 1000)
	if url != "example.com/docs" {
		t.Errorf("hostAndPath = %q, want %q", url, "example.com/docs")
	}
}

func TestCursorPositionInterpolatesWithinMoveWindow(t *testing.T) {
	tl := sampleTimeline()

	start := cursorPosition(tl.Events, 33)
	if start.X != 0 || start.Y != 0 {
		t.Errorf("cursor at move start = (%d,%d), want (0,0)", start.X, start.Y)
	}

	end := cursorPosition(tl.Events, 66)
	if end.X != 100 || end.Y != 100 {
		t.Errorf("cursor at move end = (%d,%d), want (100,100)", end.X, end.Y)
	}
}

func TestActiveRipplesOnlyWithinWindow(t *testing.T) {
	tl := sampleTimeline()

	before := activeRipples(tl.Events, 10)
	if len(before) != 0 {
		t.Errorf("expected no ripples before the click event, got %+v", before)
	}

	during := activeRipples(tl.Events, 66)
	if len(during) != 1 {
		t.Fatalf("expected one ripple at the click event, got %+v", during)
	}
	if during[0].X != 120 || during[0].Y != 110 {
		t.Errorf("ripple center = (%d,%d), want bounding-box center (120,110)", during[0].X, during[0].Y)
	}

	after := activeRipples(tl.Events, 66+rippleWindowMs+100)
	if len(after) != 0 {
		t.Errorf("expected no ripples after the ripple window closes, got %+v", after)
	}
}
