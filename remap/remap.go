// Package remap implements the Time Remapper (spec §4.5): pure functions
// translating between scenario source time, captured virtual time, and
// final output time once slides and transitions have been inserted.
package remap

import (
	"github.com/andrewarrow/scenecast/timeline"
)

// EntryFrames returns frames(entry) per spec's tagged-union rule:
// Frame -> 1, Hold(count) -> count.
func EntryFrames(entry timeline.ManifestEntry) int64 {
	return entry.Frames()
}

// ExpandedFrameCount is Σ frames per entry.
func ExpandedFrameCount(manifest []timeline.ManifestEntry) int64 {
	var total int64
	for _, e := range manifest {
		total += EntryFrames(e)
	}
	return total
}

// EntryToFirstExpandedFrame is Σ_{k<i} frames(entry_k).
func EntryToFirstExpandedFrame(manifest []timeline.ManifestEntry, i int) int64 {
	var total int64
	for k := 0; k < i && k < len(manifest); k++ {
		total += EntryFrames(manifest[k])
	}
	return total
}

// LastExpandedFrameOfEntry is entryToFirstExpandedFrame(i) + frames(i) - 1.
func LastExpandedFrameOfEntry(manifest []timeline.ManifestEntry, i int) int64 {
	if i < 0 || i >= len(manifest) {
		return -1
	}
	return EntryToFirstExpandedFrame(manifest, i) + EntryFrames(manifest[i]) - 1
}

// TotalOutputFrames is expandedFrameCount + Σ(durationFrames - consumedFrames).
func TotalOutputFrames(manifest []timeline.ManifestEntry, transitions []timeline.TransitionMarker) int64 {
	total := ExpandedFrameCount(manifest)
	for _, t := range transitions {
		total += int64(t.DurationFrames - t.EffectiveConsumedFrames())
	}
	return total
}

// Slide is a resolved slide-bearing scene: its source-time position, the
// duration it occupies on the output timeline, and an optional dead zone
// immediately after it during which captured frames are known to be stale.
type Slide struct {
	SceneTimestampMs timeline.SourceMs
	DurationMs       int64
	DeadAfterMs      int64
}

// SourceTimeMs implements spec §4.5's sourceTimeMs: walk slides in
// source-time order, shifting output by the cumulative slide duration seen
// so far; freeze inside a slide's own window; clamp out of any slide's dead
// zone afterwards.
func SourceTimeMs(output timeline.OutputMs, slides []Slide) timeline.SourceMs {
	var accumulated int64
	for _, s := range slides {
		slideStart := int64(s.SceneTimestampMs) + accumulated
		slideEnd := slideStart + s.DurationMs
		if int64(output) < slideStart {
			return timeline.SourceMs(int64(output) - accumulated)
		}
		if int64(output) < slideEnd {
			return s.SceneTimestampMs
		}
		accumulated += s.DurationMs
	}

	result := timeline.SourceMs(int64(output) - accumulated)
	return clampDeadZones(result, slides)
}

func clampDeadZones(t timeline.SourceMs, slides []Slide) timeline.SourceMs {
	for _, s := range slides {
		if s.DeadAfterMs <= 0 {
			continue
		}
		zoneStart := s.SceneTimestampMs
		zoneEnd := timeline.SourceMs(int64(s.SceneTimestampMs) + s.DeadAfterMs)
		if t >= zoneStart && t < zoneEnd {
			return zoneEnd
		}
	}
	return t
}

// RemapEvents shifts each event's timestamp forward by the sum of all slide
// durations whose scene timestamp is <= the event's timestamp. Returns a
// new slice; events are never mutated in place (spec §3 lifecycle).
func RemapEvents(events []timeline.Event, slides []Slide) []timeline.Event {
	out := make([]timeline.Event, len(events))
	for i, ev := range events {
		shift := shiftForTimestamp(ev.TimestampMs, slides)
		shifted := ev
		shifted.TimestampMs = ev.TimestampMs + timeline.SourceMs(shift)
		out[i] = shifted
	}
	return out
}

// OutputWindow is a [StartMs, EndMs) span in output time.
type OutputWindow struct {
	StartMs int64
	EndMs   int64
}

// SlideOutputWindows returns each slide's occupied span on the output
// timeline, in the same source-time order as they were passed in. Used by
// the Compositor to suppress browser chrome and the cursor while a slide
// is showing (spec §4.7 steps 2-3).
func SlideOutputWindows(slides []Slide) []OutputWindow {
	windows := make([]OutputWindow, len(slides))
	var accumulated int64
	for i, s := range slides {
		start := int64(s.SceneTimestampMs) + accumulated
		windows[i] = OutputWindow{StartMs: start, EndMs: start + s.DurationMs}
		accumulated += s.DurationMs
	}
	return windows
}

func shiftForTimestamp(ts timeline.SourceMs, slides []Slide) int64 {
	var shift int64
	for _, s := range slides {
		if s.SceneTimestampMs <= ts {
			shift += s.DurationMs
		}
	}
	return shift
}
