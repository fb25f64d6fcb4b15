package runner

import (
	"context"
	"fmt"

	"github.com/andrewarrow/scenecast/errs"
	"github.com/andrewarrow/scenecast/timeline"
)

// ActionOptions customises an action call; Narration, if non-empty, is
// emitted before the action itself (spec §4.3: "If narration present, emit
// narration first").
type ActionOptions struct {
	Narration string
}

// Navigate drives the browser to url, emitting narration first if
// requested, then an Action{kind=navigate} event.
func (r *Runner) Navigate(ctx context.Context, url string, opts ActionOptions) error {
	if err := r.beginAction(ctx); err != nil {
		return err
	}
	if opts.Narration != "" {
		if err := r.Narrate(ctx, opts.Narration); err != nil {
			return err
		}
	}

	start := r.currentTimeMs()
	if err := r.drv.Goto(ctx, url); err != nil {
		return errs.WrapDriver(err, "navigate", url, "")
	}
	r.lastNavigateURL = url

	r.appendEvent(timeline.Event{
		ID: r.nextEventID(), TimestampMs: start, Kind: timeline.KindAction,
		Action: &timeline.ActionEvent{Kind: timeline.ActionNavigate, Selector: url, DurationMs: int64(r.currentTimeMs() - start)},
	})
	return nil
}

// Click moves the cursor to selector's centre and clicks it.
func (r *Runner) Click(ctx context.Context, selector string, opts ActionOptions) error {
	return r.targetedAction(ctx, timeline.ActionClick, selector, "", opts)
}

// Fill moves the cursor to selector's centre and types value one character
// at a time (the per-character delay lives in the driver implementation).
func (r *Runner) Fill(ctx context.Context, selector, value string, opts ActionOptions) error {
	return r.targetedAction(ctx, timeline.ActionFill, selector, value, opts)
}

// Hover moves the cursor to selector's centre.
func (r *Runner) Hover(ctx context.Context, selector string, opts ActionOptions) error {
	return r.targetedAction(ctx, timeline.ActionHover, selector, "", opts)
}

// Press moves the cursor to selector's centre and sends key.
func (r *Runner) Press(ctx context.Context, selector, key string, opts ActionOptions) error {
	return r.targetedAction(ctx, timeline.ActionPress, selector, key, opts)
}

func (r *Runner) targetedAction(ctx context.Context, kind timeline.ActionKind, selector, value string, opts ActionOptions) error {
	if err := r.beginAction(ctx); err != nil {
		return err
	}
	if opts.Narration != "" {
		if err := r.Narrate(ctx, opts.Narration); err != nil {
			return err
		}
	}

	box, err := r.drv.BoundingBox(ctx, selector)
	if err != nil {
		return errs.WrapDriver(err, string(kind), "", selector)
	}

	start := r.currentTimeMs()
	if box != nil {
		toX, toY := box.X+box.Width/2, box.Y+box.Height/2
		moveMs := cursorMoveDurationMs(r.cursorX, r.cursorY, toX, toY)
		r.appendEvent(timeline.Event{
			ID: r.nextEventID(), TimestampMs: start, Kind: timeline.KindCursorTarget,
			CursorTarget: &timeline.CursorTargetEvent{
				FromX: r.cursorX, FromY: r.cursorY, ToX: toX, ToY: toY,
				MoveDurationMs: moveMs, Easing: "bezier",
			},
		})
		r.cursorX, r.cursorY = toX, toY
	}

	if err := r.dispatch(ctx, kind, selector, value); err != nil {
		return errs.WrapDriver(err, string(kind), "", selector)
	}

	var boxPtr *timeline.BoundingBox
	if box != nil {
		boxPtr = &timeline.BoundingBox{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height}
	}
	settled := int64(r.currentTimeMs())
	r.appendEvent(timeline.Event{
		ID: r.nextEventID(), TimestampMs: start, Kind: timeline.KindAction,
		Action: &timeline.ActionEvent{
			Kind: kind, Selector: selector, Value: value,
			DurationMs: int64(r.currentTimeMs() - start), BoundingBox: boxPtr, SettledAtMs: &settled,
		},
	})
	return nil
}

func (r *Runner) dispatch(ctx context.Context, kind timeline.ActionKind, selector, value string) error {
	switch kind {
	case timeline.ActionClick, timeline.ActionDblclick:
		return r.drv.Click(ctx, selector)
	case timeline.ActionFill:
		return r.drv.Fill(ctx, selector, value)
	case timeline.ActionHover:
		return r.drv.Hover(ctx, selector)
	case timeline.ActionPress:
		return r.drv.Press(ctx, selector, value)
	default:
		return fmt.Errorf("runner: action kind %q has no driver dispatch", kind)
	}
}
