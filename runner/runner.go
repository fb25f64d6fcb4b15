// Package runner implements the Scenario Runner (spec §4.3): the
// instrumentation API a scenario script calls against, which turns browser
// actions into timestamped timeline events while cooperatively pausing and
// resuming the Capture Loop around narration, slides, and transitions.
//
// Cursor position, the pending-transition flag, and the narration queue
// cursor are process state owned by a Runner value (Design Notes §9: "pass
// them through an owning context rather than module-level statics") — never
// package-level globals, so multiple recordings can run without aliasing
// each other's state.
package runner

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/andrewarrow/scenecast/capture"
	"github.com/andrewarrow/scenecast/driver"
	"github.com/andrewarrow/scenecast/errs"
	"github.com/andrewarrow/scenecast/timeline"
)

// NarrationSegment is one pre-generated narration window the preprocessor
// produced, consumed in FIFO order during the recording pass. Only the
// first segment carries an AudioFile reference; the compositor plays one
// continuous track starting there.
type NarrationSegment struct {
	Text       string
	DurationMs int64
	AudioFile  *string
}

// Runner accumulates timeline events and transition markers while driving a
// Driver and a capture.Loop. Methods that pause capture resume it on their
// own error paths, and Finalize resumes capture left paused by a pending
// transition.
type Runner struct {
	drv  driver.Driver
	loop *capture.Loop
	fps  timeline.FPS
	log  zerolog.Logger

	cursorX, cursorY  int
	transitionPending bool
	pendingMarkerAt   int // index into transitions of the marker set by the last unconsumed transition() call, or -1
	pausedForSlide    bool

	narrationQueue    []NarrationSegment
	narrationIdx      int
	voiceoverDisabled bool

	events      []timeline.Event
	transitions []timeline.TransitionMarker
	eventSeq    int

	lastNavigateURL string
}

// New returns a Runner seeded with the viewport centre as the initial
// cursor position (spec §4.3: "seeded to viewport centre").
func New(drv driver.Driver, loop *capture.Loop, fps int, viewportW, viewportH int, log zerolog.Logger) *Runner {
	return &Runner{
		drv:             drv,
		loop:            loop,
		fps:             timeline.FPS(fps),
		log:             log,
		cursorX:         viewportW / 2,
		cursorY:         viewportH / 2,
		pendingMarkerAt: -1,
	}
}

// SetNarrationQueue installs the preprocessor's segments before the
// recording pass begins.
func (r *Runner) SetNarrationQueue(segments []NarrationSegment) {
	r.narrationQueue = segments
	r.narrationIdx = 0
}

// DisableVoiceover marks this recording as silent: Narrate and any
// slide.narrate text become no-ops instead of popping a (nonexistent)
// pre-generated segment, and the post-recording divergence check is skipped
// by the caller. Used for --no-voiceover and for the TtsFailure downgrade
// path (spec §7: "if --no-voiceover or a flag permits, the pipeline
// continues without audio").
func (r *Runner) DisableVoiceover() {
	r.voiceoverDisabled = true
}

// NarrationConsumed reports how many narration segments Narrate (directly,
// or via the narration-first option on an action) and scene slide narration
// have popped so far, used
// for the post-recording divergence check (spec §4.4).
func (r *Runner) NarrationConsumed() int {
	return r.narrationIdx
}

// Events returns the accumulated event sequence. Call only after the
// scenario has finished; the slice is owned by the caller afterwards.
func (r *Runner) Events() []timeline.Event {
	return r.events
}

// Transitions returns the accumulated transition markers.
func (r *Runner) Transitions() []timeline.TransitionMarker {
	return r.transitions
}

func (r *Runner) currentTimeMs() timeline.SourceMs {
	return r.loop.CurrentTimeMs()
}

func (r *Runner) nextEventID() string {
	r.eventSeq++
	return fmt.Sprintf("ev-%03d", r.eventSeq)
}

func (r *Runner) appendEvent(ev timeline.Event) {
	r.events = append(r.events, ev)
}

// beginAction is called by every action-like method before it does its own
// work: it resumes capture if a scene() slide left it paused, and resolves
// any transition() left pending by capturing its "after" frame. Either
// condition clears before the caller proceeds.
func (r *Runner) beginAction(ctx context.Context) error {
	if r.pausedForSlide && !r.transitionPending {
		r.loop.ResumeCapture()
		r.pausedForSlide = false
	}
	return r.finishPendingTransition(ctx)
}

// finishPendingTransition is called by any action that resolves a pending
// transition: it captures the explicit "after" frame and resumes capture.
// beginAction calls it, so Scene, Navigate, Click, Fill, Hover and Press
// complete a transition set up by a prior transition() call before their own
// event is recorded; Wait and Narrate do not call it.
func (r *Runner) finishPendingTransition(ctx context.Context) error {
	if !r.transitionPending {
		return nil
	}
	if _, err := r.loop.CaptureOneFrame(ctx); err != nil {
		return errs.Wrap(errs.DriverFailure, err, "capturing transition boundary frame")
	}
	r.loop.ResumeCapture()
	r.transitionPending = false
	r.pendingMarkerAt = -1
	return nil
}

// Finalize discards a transition left pending at the end of the scenario,
// with a warning, per spec §4.3.
func (r *Runner) Finalize() {
	if r.transitionPending {
		r.log.Warn().Msg("runner: transition left pending at end of scenario, discarded")
		r.transitions = r.transitions[:r.pendingMarkerAt]
		r.loop.ResumeCapture()
		r.transitionPending = false
		r.pendingMarkerAt = -1
	}
}

// cursorMoveDurationMs is a monotone function of Euclidean distance clamped
// to [200, 800] ms (spec §4.3).
func cursorMoveDurationMs(fromX, fromY, toX, toY int) int64 {
	dx := float64(toX - fromX)
	dy := float64(toY - fromY)
	dist := math.Hypot(dx, dy)
	const (
		minMs      = 200.0
		maxMs      = 800.0
		pxPerMs    = 2.5 // distance-to-duration scale before clamping
	)
	ms := minMs + dist/pxPerMs
	if ms < minMs {
		ms = minMs
	}
	if ms > maxMs {
		ms = maxMs
	}
	return int64(ms)
}
