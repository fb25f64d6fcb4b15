package runner

import (
	"context"
	"math"

	"github.com/andrewarrow/scenecast/errs"
	"github.com/andrewarrow/scenecast/timeline"
)

// TransitionOptions customises a transition() call.
type TransitionOptions struct {
	Kind       timeline.TransitionKind
	DurationMs int64
}

// Transition pauses capture and records a TransitionMarker referencing the
// current tail manifest entry. The next resolving action captures an
// explicit "after" frame and resumes capture (via beginAction). Calling
// Transition twice without an intervening action warns and replaces the
// previous marker; one left pending at scenario end is discarded (see
// Finalize).
func (r *Runner) Transition(ctx context.Context, opts TransitionOptions) error {
	if opts.DurationMs <= 0 || math.IsNaN(float64(opts.DurationMs)) || math.IsInf(float64(opts.DurationMs), 0) {
		return errs.New(errs.InvalidArgument, "transition duration must be positive and finite")
	}
	kind := opts.Kind
	if kind == "" {
		kind = timeline.TransitionFade
	}

	durationFrames := int(r.fps.MsToFrames(opts.DurationMs))
	if durationFrames < 1 {
		durationFrames = 1
	}

	if r.transitionPending {
		r.log.Warn().Msg("runner: transition() called again before an intervening action; replacing previous marker")
		r.transitions[r.pendingMarkerAt] = timeline.TransitionMarker{
			AfterEntryIndex: r.tailEntryIndex(),
			Kind:            kind,
			DurationFrames:  durationFrames,
		}
		return nil
	}

	r.loop.PauseCapture()
	r.transitions = append(r.transitions, timeline.TransitionMarker{
		AfterEntryIndex: r.tailEntryIndex(),
		Kind:            kind,
		DurationFrames:  durationFrames,
	})
	r.pendingMarkerAt = len(r.transitions) - 1
	r.transitionPending = true
	return nil
}

func (r *Runner) tailEntryIndex() int {
	n := len(r.loop.Manifest())
	if n == 0 {
		return 0
	}
	return n - 1
}
