package timeline

import (
	"fmt"
	"regexp"
)

// hexColorRe matches the CSS short/long hex colour forms #RGB, #RGBA,
// #RRGGBB, #RRGGBBAA.
var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)

func validHexColor(s string) bool {
	if !hexColorRe.MatchString(s) {
		return false
	}
	n := len(s) - 1
	return n == 3 || n == 4 || n == 6 || n == 8
}

// ValidationError describes why a Timeline was rejected. It implements
// error so callers can match it with errors.As; it carries no errs.Kind.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Validate is the single source of truth for timeline wire-format
// invariants. It is invoked both before persistence and before rendering;
// no other code path may write or render an unvalidated Timeline.
func Validate(t Timeline) (Timeline, error) {
	if t.Version != SchemaVersion {
		return Timeline{}, invalid("unsupported timeline version %d, want %d", t.Version, SchemaVersion)
	}

	if len(t.Metadata.FrameManifest) == 0 {
		return Timeline{}, invalid("frameManifest must be non-empty")
	}
	for i, entry := range t.Metadata.FrameManifest {
		switch entry.Kind {
		case EntryFrame:
			if entry.File == "" {
				return Timeline{}, invalid("frameManifest[%d]: frame entry missing file", i)
			}
		case EntryHold:
			if entry.File == "" {
				return Timeline{}, invalid("frameManifest[%d]: hold entry missing file", i)
			}
			if entry.Count <= 0 {
				return Timeline{}, invalid("frameManifest[%d]: hold count must be >= 1, got %d", i, entry.Count)
			}
		default:
			return Timeline{}, invalid("frameManifest[%d]: unknown entry kind %q", i, entry.Kind)
		}
	}

	numEntries := len(t.Metadata.FrameManifest)
	lastAfterIndex := -1
	for i, marker := range t.Metadata.TransitionMarkers {
		if marker.AfterEntryIndex < 0 || marker.AfterEntryIndex >= numEntries {
			return Timeline{}, invalid("transitionMarkers[%d]: afterEntryIndex %d out of range [0,%d)", i, marker.AfterEntryIndex, numEntries)
		}
		if !marker.Kind.valid() {
			return Timeline{}, invalid("transitionMarkers[%d]: unknown transition kind %q", i, marker.Kind)
		}
		if marker.DurationFrames <= 0 {
			return Timeline{}, invalid("transitionMarkers[%d]: durationFrames must be >= 1, got %d", i, marker.DurationFrames)
		}
		if marker.ConsumedFrames != 0 && marker.ConsumedFrames < 1 {
			return Timeline{}, invalid("transitionMarkers[%d]: consumedFrames must be >= 1, got %d", i, marker.ConsumedFrames)
		}
		if marker.AfterEntryIndex < lastAfterIndex {
			return Timeline{}, invalid("transitionMarkers[%d]: markers must be sorted by afterEntryIndex", i)
		}
		lastAfterIndex = marker.AfterEntryIndex
	}

	var lastTimestamp SourceMs
	for i, ev := range t.Events {
		if ev.ID == "" {
			return Timeline{}, invalid("events[%d]: missing id", i)
		}
		if ev.TimestampMs < 0 {
			return Timeline{}, invalid("events[%d] (%s): negative timestampMs %d", i, ev.ID, ev.TimestampMs)
		}
		if i > 0 && ev.TimestampMs < lastTimestamp {
			return Timeline{}, invalid("events[%d] (%s): non-monotonic timestamp %d after %d", i, ev.ID, ev.TimestampMs, lastTimestamp)
		}
		lastTimestamp = ev.TimestampMs

		if err := validateEventPayload(i, ev); err != nil {
			return Timeline{}, err
		}
	}

	return t, nil
}

func validateEventPayload(i int, ev Event) error {
	switch ev.Kind {
	case KindScene:
		if ev.Scene == nil {
			return invalid("events[%d] (%s): scene event missing payload", i, ev.ID)
		}
		if ev.Scene.Title == "" {
			return invalid("events[%d] (%s): scene missing title", i, ev.ID)
		}
		if s := ev.Scene.Slide; s != nil {
			if s.DurationMs != nil && *s.DurationMs <= 0 {
				return invalid("events[%d] (%s): slide duration must be positive", i, ev.ID)
			}
			if s.BrandColor != "" && !validHexColor(s.BrandColor) {
				return invalid("events[%d] (%s): slide brandColor %q is not a valid hex colour", i, ev.ID, s.BrandColor)
			}
			if s.TextColor != "" && !validHexColor(s.TextColor) {
				return invalid("events[%d] (%s): slide textColor %q is not a valid hex colour", i, ev.ID, s.TextColor)
			}
		}

	case KindAction:
		if ev.Action == nil {
			return invalid("events[%d] (%s): action event missing payload", i, ev.ID)
		}
		if !ev.Action.Kind.valid() {
			return invalid("events[%d] (%s): unknown action kind %q", i, ev.ID, ev.Action.Kind)
		}
		if ev.Action.Selector == "" {
			return invalid("events[%d] (%s): action missing selector", i, ev.ID)
		}
		if ev.Action.SettledAtMs != nil && SourceMs(*ev.Action.SettledAtMs) < ev.TimestampMs {
			return invalid("events[%d] (%s): settledAtMs %d precedes timestampMs %d", i, ev.ID, *ev.Action.SettledAtMs, ev.TimestampMs)
		}

	case KindCursorTarget:
		if ev.CursorTarget == nil {
			return invalid("events[%d] (%s): cursorTarget event missing payload", i, ev.ID)
		}
		if ev.CursorTarget.MoveDurationMs <= 0 {
			return invalid("events[%d] (%s): cursorTarget moveDurationMs must be > 0, got %d", i, ev.ID, ev.CursorTarget.MoveDurationMs)
		}

	case KindNarration:
		if ev.Narration == nil {
			return invalid("events[%d] (%s): narration event missing payload", i, ev.ID)
		}
		if ev.Narration.Text == "" {
			return invalid("events[%d] (%s): narration text must be non-empty", i, ev.ID)
		}

	case KindWait:
		if ev.Wait == nil {
			return invalid("events[%d] (%s): wait event missing payload", i, ev.ID)
		}
		if ev.Wait.DurationMs <= 0 {
			return invalid("events[%d] (%s): wait durationMs must be > 0, got %d", i, ev.ID, ev.Wait.DurationMs)
		}
		switch ev.Wait.Reason {
		case WaitPacing, WaitNarrationSync, WaitPageLoad:
		default:
			return invalid("events[%d] (%s): unknown wait reason %q", i, ev.ID, ev.Wait.Reason)
		}

	default:
		return invalid("events[%d] (%s): unknown event kind %q", i, ev.ID, ev.Kind)
	}
	return nil
}
