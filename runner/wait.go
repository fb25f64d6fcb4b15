package runner

import (
	"context"

	"github.com/andrewarrow/scenecast/timeline"
)

// Wait emits a Wait{reason=pacing} event; the virtual clock advances via
// either real capture awaited with WaitForDuration (if running) or an
// AddHold of the same length (if paused).
func (r *Runner) Wait(ctx context.Context, ms int64) error {
	ts := r.currentTimeMs()
	r.appendEvent(timeline.Event{
		ID: r.nextEventID(), TimestampMs: ts, Kind: timeline.KindWait,
		Wait: &timeline.WaitEvent{DurationMs: ms, Reason: timeline.WaitPacing},
	})

	if r.capturePaused() {
		frames := int(r.fps.MsToFrames(ms))
		r.loop.AddHold(r.lastFrameFile(), frames)
		return nil
	}
	r.loop.WaitForDuration(ms)
	return nil
}

func (r *Runner) capturePaused() bool {
	return r.pausedForSlide || r.transitionPending
}

func (r *Runner) lastFrameFile() string {
	m := r.loop.Manifest()
	if len(m) == 0 {
		return ""
	}
	return m[len(m)-1].File
}
