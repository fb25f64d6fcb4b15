// Package timeline defines the wire-format entities shared by every stage of
// the pipeline — the Scenario Runner that appends to them, the Time Remapper
// and Frame Resolver that read them, and the Compositor that renders them —
// plus the schema validator that is the single source of truth for their
// invariants.
package timeline

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the only timeline wire-format version this build accepts.
const SchemaVersion = 1

// ActionKind enumerates the browser actions a Scenario may emit.
type ActionKind string

const (
	ActionClick      ActionKind = "click"
	ActionFill       ActionKind = "fill"
	ActionHover      ActionKind = "hover"
	ActionPress      ActionKind = "press"
	ActionNavigate   ActionKind = "navigate"
	ActionDblclick   ActionKind = "dblclick"
)

func (k ActionKind) valid() bool {
	switch k {
	case ActionClick, ActionFill, ActionHover, ActionPress, ActionNavigate, ActionDblclick:
		return true
	}
	return false
}

// WaitReason enumerates why a Wait event was emitted.
type WaitReason string

const (
	WaitPacing        WaitReason = "pacing"
	WaitNarrationSync WaitReason = "narrationSync"
	WaitPageLoad      WaitReason = "pageLoad"
)

// TransitionKind enumerates the inter-scene transitions the Compositor knows
// how to render.
type TransitionKind string

const (
	TransitionFade     TransitionKind = "fade"
	TransitionWipe     TransitionKind = "wipe"
	TransitionSlideUp  TransitionKind = "slide-up"
	TransitionSlideLeft TransitionKind = "slide-left"
	TransitionZoom     TransitionKind = "zoom"
	TransitionDoorway  TransitionKind = "doorway"
	TransitionSwap     TransitionKind = "swap"
	TransitionCube     TransitionKind = "cube"
)

func (k TransitionKind) valid() bool {
	switch k {
	case TransitionFade, TransitionWipe, TransitionSlideUp, TransitionSlideLeft,
		TransitionZoom, TransitionDoorway, TransitionSwap, TransitionCube:
		return true
	}
	return false
}

// BoundingBox is a pixel rectangle in the captured viewport.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport is the captured browser viewport size in pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SlideConfig describes a title slide injected for a Scene event.
type SlideConfig struct {
	DurationMs    *int64 `json:"duration,omitempty"`
	BrandColor    string `json:"brandColor,omitempty"`
	TextColor     string `json:"textColor,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
	TitleFontSize int    `json:"titleFontSize,omitempty"`
	Narrate       string `json:"narrate,omitempty"`
}

// DefaultSlideDurationMs is used when a SlideConfig omits a duration.
const DefaultSlideDurationMs = 2000

// EffectiveDurationMs returns the slide's configured duration, or the default
// when DurationMs is omitted (nil).
func (s SlideConfig) EffectiveDurationMs() int64 {
	if s.DurationMs != nil && *s.DurationMs > 0 {
		return *s.DurationMs
	}
	return DefaultSlideDurationMs
}

// SceneEvent marks the start of a logical scene, optionally with a title slide.
type SceneEvent struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Slide       *SlideConfig `json:"slide,omitempty"`
}

// ActionEvent records a browser action the Scenario Runner performed.
type ActionEvent struct {
	Kind        ActionKind   `json:"kind"`
	Selector    string       `json:"selector"`
	Value       string       `json:"value,omitempty"`
	DurationMs  int64        `json:"durationMs"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
	SettledAtMs *int64       `json:"settledAtMs,omitempty"`
}

// CursorTargetEvent records a cursor move the Compositor must animate.
type CursorTargetEvent struct {
	FromX           int    `json:"fromX"`
	FromY           int    `json:"fromY"`
	ToX             int    `json:"toX"`
	ToY             int    `json:"toY"`
	MoveDurationMs  int64  `json:"moveDurationMs"`
	Easing          string `json:"easing"`
}

// NarrationEvent records one narration segment's placement on the timeline.
// Only the first narration event in a finalized timeline carries AudioFile;
// the rest are holds that drive per-segment dwell during capture.
type NarrationEvent struct {
	Text            string  `json:"text"`
	AudioDurationMs *int64  `json:"audioDurationMs,omitempty"`
	AudioFile       *string `json:"audioFile,omitempty"`
}

// WaitEvent records an explicit pacing pause.
type WaitEvent struct {
	DurationMs int64      `json:"durationMs"`
	Reason     WaitReason `json:"reason"`
}

// EventKind discriminates the Event tagged union.
type EventKind string

const (
	KindScene        EventKind = "scene"
	KindAction       EventKind = "action"
	KindCursorTarget EventKind = "cursorTarget"
	KindNarration    EventKind = "narration"
	KindWait         EventKind = "wait"
)

// Event is a tagged union over the five event variants. Every variant
// carries an opaque id (format "ev-NNN") and a timestamp in scenario source
// time. Exactly one of the payload pointers is non-nil and must match Kind.
type Event struct {
	ID          string    `json:"id"`
	TimestampMs SourceMs  `json:"timestampMs"`
	Kind        EventKind `json:"kind"`

	Scene        *SceneEvent        `json:"scene,omitempty"`
	Action       *ActionEvent       `json:"action,omitempty"`
	CursorTarget *CursorTargetEvent `json:"cursorTarget,omitempty"`
	Narration    *NarrationEvent    `json:"narration,omitempty"`
	Wait         *WaitEvent         `json:"wait,omitempty"`
}

// eventWire is the flattened JSON shape: common fields plus whichever
// variant's fields are present, all at the top level rather than nested
// under a "scene"/"action"/... key. This mirrors the wire format other
// discriminated-union timeline tools in the pack use (one flat object per
// array element, disambiguated by a "kind"/"type" string).
type eventWire struct {
	ID          string    `json:"id"`
	TimestampMs SourceMs  `json:"timestampMs"`
	Kind        EventKind `json:"kind"`

	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Slide       *SlideConfig `json:"slide,omitempty"`

	ActionKind  ActionKind   `json:"actionKind,omitempty"`
	Selector    string       `json:"selector,omitempty"`
	Value       string       `json:"value,omitempty"`
	DurationMs  int64        `json:"durationMs,omitempty"`
	BoundingBox *BoundingBox `json:"boundingBox,omitempty"`
	SettledAtMs *int64       `json:"settledAtMs,omitempty"`

	FromX          int    `json:"fromX,omitempty"`
	FromY          int    `json:"fromY,omitempty"`
	ToX            int    `json:"toX,omitempty"`
	ToY            int    `json:"toY,omitempty"`
	MoveDurationMs int64  `json:"moveDurationMs,omitempty"`
	Easing         string `json:"easing,omitempty"`

	Text            string  `json:"text,omitempty"`
	AudioDurationMs *int64  `json:"audioDurationMs,omitempty"`
	AudioFile       *string `json:"audioFile,omitempty"`

	Reason WaitReason `json:"reason,omitempty"`
}

// MarshalJSON flattens the Event into its wire shape.
func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{ID: e.ID, TimestampMs: e.TimestampMs, Kind: e.Kind}
	switch e.Kind {
	case KindScene:
		if e.Scene != nil {
			w.Title = e.Scene.Title
			w.Description = e.Scene.Description
			w.Slide = e.Scene.Slide
		}
	case KindAction:
		if e.Action != nil {
			w.ActionKind = e.Action.Kind
			w.Selector = e.Action.Selector
			w.Value = e.Action.Value
			w.DurationMs = e.Action.DurationMs
			w.BoundingBox = e.Action.BoundingBox
			w.SettledAtMs = e.Action.SettledAtMs
		}
	case KindCursorTarget:
		if e.CursorTarget != nil {
			w.FromX = e.CursorTarget.FromX
			w.FromY = e.CursorTarget.FromY
			w.ToX = e.CursorTarget.ToX
			w.ToY = e.CursorTarget.ToY
			w.MoveDurationMs = e.CursorTarget.MoveDurationMs
			w.Easing = e.CursorTarget.Easing
		}
	case KindNarration:
		if e.Narration != nil {
			w.Text = e.Narration.Text
			w.AudioDurationMs = e.Narration.AudioDurationMs
			w.AudioFile = e.Narration.AudioFile
		}
	case KindWait:
		if e.Wait != nil {
			w.DurationMs = e.Wait.DurationMs
			w.Reason = e.Wait.Reason
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON dispatches on Kind to populate the matching payload.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.ID = w.ID
	e.TimestampMs = w.TimestampMs
	e.Kind = w.Kind
	switch w.Kind {
	case KindScene:
		e.Scene = &SceneEvent{Title: w.Title, Description: w.Description, Slide: w.Slide}
	case KindAction:
		e.Action = &ActionEvent{
			Kind: w.ActionKind, Selector: w.Selector, Value: w.Value,
			DurationMs: w.DurationMs, BoundingBox: w.BoundingBox, SettledAtMs: w.SettledAtMs,
		}
	case KindCursorTarget:
		e.CursorTarget = &CursorTargetEvent{
			FromX: w.FromX, FromY: w.FromY, ToX: w.ToX, ToY: w.ToY,
			MoveDurationMs: w.MoveDurationMs, Easing: w.Easing,
		}
	case KindNarration:
		e.Narration = &NarrationEvent{Text: w.Text, AudioDurationMs: w.AudioDurationMs, AudioFile: w.AudioFile}
	case KindWait:
		e.Wait = &WaitEvent{DurationMs: w.DurationMs, Reason: w.Reason}
	default:
		return fmt.Errorf("timeline: unknown event kind %q", w.Kind)
	}
	return nil
}

// ManifestEntryKind discriminates the ManifestEntry tagged union.
type ManifestEntryKind string

const (
	EntryFrame ManifestEntryKind = "frame"
	EntryHold  ManifestEntryKind = "hold"
)

// ManifestEntry is one unit in the frame manifest: either a distinct
// captured frame, or a hold of a repeated frame spanning Count virtual
// frames (produced by dedup or an explicit dwell).
type ManifestEntry struct {
	Kind  ManifestEntryKind `json:"kind"`
	File  string            `json:"file"`
	Count int               `json:"count,omitempty"`
}

// Frames returns the number of expanded virtual frames this entry covers.
func (m ManifestEntry) Frames() int64 {
	if m.Kind == EntryHold {
		if m.Count < 1 {
			return 0
		}
		return int64(m.Count)
	}
	return 1
}

// TransitionMarker directs the Frame Resolver to insert a kind-specific
// animation after the manifest entry at AfterEntryIndex.
type TransitionMarker struct {
	AfterEntryIndex int            `json:"afterEntryIndex"`
	Kind            TransitionKind `json:"kind"`
	DurationFrames  int            `json:"durationFrames"`
	ConsumedFrames  int            `json:"consumedFrames"`
	BeforeFile      string         `json:"beforeFile,omitempty"`
	AfterFile       string         `json:"afterFile,omitempty"`
}

// EffectiveConsumedFrames returns ConsumedFrames, defaulting to 1.
func (t TransitionMarker) EffectiveConsumedFrames() int {
	if t.ConsumedFrames < 1 {
		return 1
	}
	return t.ConsumedFrames
}

// Metadata carries the recording's fixed parameters and the append-only
// frame manifest and transition-marker list built up during capture.
type Metadata struct {
	TestFile          string             `json:"testFile"`
	ScenarioFile      string             `json:"scenarioFile"`
	RecordedAt        string             `json:"recordedAt"`
	Viewport          Viewport           `json:"viewport"`
	Fps               int                `json:"fps"`
	FrameManifest     []ManifestEntry    `json:"frameManifest"`
	TransitionMarkers []TransitionMarker `json:"transitionMarkers"`
}

// Timeline is the root wire-format value: a version tag, metadata, and an
// ordered sequence of events. Only Validate'd timelines may be persisted or
// rendered.
type Timeline struct {
	Version  int      `json:"version"`
	Metadata Metadata `json:"metadata"`
	Events   []Event  `json:"events"`
}
