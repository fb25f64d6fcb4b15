package compositor

import (
	"strings"

	"github.com/andrewarrow/scenecast/remap"
	"github.com/andrewarrow/scenecast/resolve"
	"github.com/andrewarrow/scenecast/timeline"
)

// rippleWindowMs is how long a click ripple remains visible around its
// triggering Action event (spec §4.7 step 4: "a short window around the
// event time").
const rippleWindowMs = 420

// CursorState is the resolved cursor position and visibility for one
// output frame.
type CursorState struct {
	X, Y    int
	Visible bool
}

// Ripple is one click ripple to draw, with its progress through its
// display window (0 = just triggered, 1 = about to vanish).
type Ripple struct {
	X, Y     int
	Progress float64
}

// FramePlan is the fully-resolved, deterministic description of one output
// frame: everything the Renderer needs to draw it, with no further
// reference to the timeline.
type FramePlan struct {
	OutputFrame int64
	OutputMs    int64
	Base        resolve.Frame
	Cursor      CursorState
	ChromeVisible bool
	ActiveURL   string
	Ripples     []Ripple
}

// BuildPlan implements spec §4.7's per-frame resolution as a pure function
// of the timeline: resolving the base layer, cursor position, chrome
// visibility, active URL, and click ripples for every output frame. Two
// calls with an identical timeline produce an identical plan (the
// Determinism requirement), since every step here is pure arithmetic over
// already-remapped (output-time) events.
func BuildPlan(tl timeline.Timeline, slides []remap.Slide) []FramePlan {
	manifest := tl.Metadata.FrameManifest
	transitions := tl.Metadata.TransitionMarkers
	fps := timeline.FPS(tl.Metadata.Fps)

	total := remap.TotalOutputFrames(manifest, transitions)
	slideWindows := remap.SlideOutputWindows(slides)

	plans := make([]FramePlan, 0, total)
	for f := int64(0); f < total; f++ {
		outputMs := fps.FramesToMs(f)
		base := resolve.ResolveOutputFrame(f, manifest, transitions)
		inSlide := withinAnyWindow(outputMs, slideWindows)
		inTransition := base.Transition != nil

		plan := FramePlan{
			OutputFrame:   f,
			OutputMs:      outputMs,
			Base:          base,
			ChromeVisible: !inSlide && !inTransition,
			ActiveURL:     mostRecentNavigateURL(tl.Events, outputMs),
		}
		if !inSlide && !inTransition {
			plan.Cursor = cursorPosition(tl.Events, outputMs)
			plan.Ripples = activeRipples(tl.Events, outputMs)
		}
		plans = append(plans, plan)
	}
	return plans
}

func withinAnyWindow(ms int64, windows []remap.OutputWindow) bool {
	for _, w := range windows {
		if ms >= w.StartMs && ms < w.EndMs {
			return true
		}
	}
	return false
}

// cursorPosition finds the most recent CursorTarget event at or before ms
// and interpolates its move with an eased progress, clamping to the
// endpoints outside the move window (spec §4.7 step 3).
func cursorPosition(events []timeline.Event, ms int64) CursorState {
	var active *timeline.Event
	for i := range events {
		ev := &events[i]
		if ev.Kind != timeline.KindCursorTarget {
			continue
		}
		if int64(ev.TimestampMs) > ms {
			break
		}
		active = ev
	}
	if active == nil {
		return CursorState{Visible: false}
	}

	ct := active.CursorTarget
	elapsed := ms - int64(active.TimestampMs)
	progress := 1.0
	if ct.MoveDurationMs > 0 {
		progress = clamp01(float64(elapsed) / float64(ct.MoveDurationMs))
	}
	eased := easeInOutCubic(progress)

	return CursorState{
		X:       int(lerp(float64(ct.FromX), float64(ct.ToX), eased)),
		Y:       int(lerp(float64(ct.FromY), float64(ct.ToY), eased)),
		Visible: true,
	}
}

// activeRipples returns a ripple for every click Action event whose window
// contains ms.
func activeRipples(events []timeline.Event, ms int64) []Ripple {
	var ripples []Ripple
	for _, ev := range events {
		if ev.Kind != timeline.KindAction || ev.Action == nil {
			continue
		}
		if ev.Action.Kind != timeline.ActionClick && ev.Action.Kind != timeline.ActionDblclick {
			continue
		}
		if ev.Action.BoundingBox == nil {
			continue
		}
		start := int64(ev.TimestampMs)
		end := start + rippleWindowMs
		if ms < start || ms >= end {
			continue
		}
		box := ev.Action.BoundingBox
		ripples = append(ripples, Ripple{
			X:        box.X + box.Width/2,
			Y:        box.Y + box.Height/2,
			Progress: clamp01(float64(ms-start) / float64(rippleWindowMs)),
		})
	}
	return ripples
}

// mostRecentNavigateURL returns host+path of the latest navigate Action at
// or before ms, for the address bar the chrome overlay draws.
func mostRecentNavigateURL(events []timeline.Event, ms int64) string {
	var url string
	for _, ev := range events {
		if ev.Kind != timeline.KindAction || ev.Action == nil {
			continue
		}
		if ev.Action.Kind != timeline.ActionNavigate {
			continue
		}
		if int64(ev.TimestampMs) > ms {
			break
		}
		url = hostAndPath(ev.Action.Selector)
	}
	return url
}

// hostAndPath strips the scheme and any query/fragment from a URL, leaving
// just host+path for the chrome address bar (spec §4.7 step 2).
func hostAndPath(rawURL string) string {
	s := rawURL
	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	if idx := strings.IndexAny(s, "?#"); idx >= 0 {
		s = s[:idx]
	}
	return s
}
