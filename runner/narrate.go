package runner

import (
	"context"

	"github.com/andrewarrow/scenecast/errs"
	"github.com/andrewarrow/scenecast/timeline"
)

// Narrate pauses capture, pops the next pre-generated narration segment,
// takes one explicit frame, holds for the segment's audio duration, emits a
// Narration event referencing that segment's audio file (only the first
// segment in the whole recording carries one), and resumes capture. A no-op
// when voiceover is disabled: no audio was ever generated for it to consume.
func (r *Runner) Narrate(ctx context.Context, text string) error {
	if r.voiceoverDisabled {
		return nil
	}
	if r.narrationIdx >= len(r.narrationQueue) {
		return errs.New(errs.NarrationMismatch, "narrate() called with no remaining pre-generated narration segments")
	}
	segment := r.narrationQueue[r.narrationIdx]
	r.narrationIdx++

	r.loop.PauseCapture()

	ts := r.currentTimeMs()
	file, err := r.loop.CaptureOneFrame(ctx)
	if err != nil {
		r.loop.ResumeCapture()
		return errs.Wrap(errs.DriverFailure, err, "capturing narration frame")
	}

	durationFrames := int(r.fps.MsToFrames(segment.DurationMs))
	r.loop.AddHold(file, durationFrames)

	audioDur := segment.DurationMs
	r.appendEvent(timeline.Event{
		ID: r.nextEventID(), TimestampMs: ts, Kind: timeline.KindNarration,
		Narration: &timeline.NarrationEvent{Text: text, AudioDurationMs: &audioDur, AudioFile: segment.AudioFile},
	})

	r.loop.ResumeCapture()
	return nil
}

// consumeSlideNarration pops the next pre-generated narration segment for a
// scene's slide.narrate text and emits a Narration event referencing it,
// without narrate()'s own independent capture+hold cycle — the slide's own
// hold (driven by Scene itself) already covers this window. Keeping this as
// a queue pop rather than a no-op is what keeps the FIFO narration queue in
// the same order the preprocessor collected it in (slide.narrate is one of
// its three text sources).
func (r *Runner) consumeSlideNarration(ts timeline.SourceMs, text string) error {
	if r.voiceoverDisabled {
		return nil
	}
	if r.narrationIdx >= len(r.narrationQueue) {
		return errs.New(errs.NarrationMismatch, "scene slide narration with no remaining pre-generated narration segments")
	}
	segment := r.narrationQueue[r.narrationIdx]
	r.narrationIdx++

	audioDur := segment.DurationMs
	r.appendEvent(timeline.Event{
		ID: r.nextEventID(), TimestampMs: ts, Kind: timeline.KindNarration,
		Narration: &timeline.NarrationEvent{Text: text, AudioDurationMs: &audioDur, AudioFile: segment.AudioFile},
	})
	return nil
}
