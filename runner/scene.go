package runner

import (
	"context"

	"github.com/andrewarrow/scenecast/errs"
	"github.com/andrewarrow/scenecast/timeline"
)

// SceneOptions customises a scene() call.
type SceneOptions struct {
	Description string
	Slide       *timeline.SlideConfig
}

// sceneOverlaySelector identifies the DOM overlay injected over the page
// while a title slide is shown. The compositor draws no slide layer of its
// own: the one explicit frame taken with this overlay in place, held for the
// slide's duration, is what the rendered video shows.
const sceneOverlaySelector = "#__scenecast_slide_overlay"

// Scene emits a Scene event at the current time. If Slide is present, it
// pauses capture, injects a slide overlay, takes one explicit frame, holds
// for the slide's duration, removes the overlay, and leaves capture paused
// — the next action resumes it.
func (r *Runner) Scene(ctx context.Context, title string, opts SceneOptions) error {
	if err := r.beginAction(ctx); err != nil {
		return err
	}

	ts := r.currentTimeMs()
	r.appendEvent(timeline.Event{
		ID: r.nextEventID(), TimestampMs: ts, Kind: timeline.KindScene,
		Scene: &timeline.SceneEvent{Title: title, Description: opts.Description, Slide: opts.Slide},
	})

	if opts.Slide == nil {
		return nil
	}

	if opts.Slide.Narrate != "" {
		if err := r.consumeSlideNarration(ts, opts.Slide.Narrate); err != nil {
			return err
		}
	}

	r.loop.PauseCapture()
	if err := r.drv.Inject(ctx, sceneOverlayMarkup(title, *opts.Slide)); err != nil {
		r.loop.ResumeCapture()
		return errs.WrapDriver(err, "scene-slide-inject", "", sceneOverlaySelector)
	}
	file, err := r.loop.CaptureOneFrame(ctx)
	if err != nil {
		r.loop.ResumeCapture()
		return errs.Wrap(errs.DriverFailure, err, "capturing slide frame")
	}

	durationFrames := int(r.fps.MsToFrames(opts.Slide.EffectiveDurationMs()))
	r.loop.AddHold(file, durationFrames)

	if err := r.drv.Inject(ctx, removeOverlayScript()); err != nil {
		r.log.Warn().Err(err).Msg("runner: failed to remove slide overlay, leaving it for the next navigate")
	}

	// Capture stays paused; the next action's beginAction resumes it.
	r.pausedForSlide = true
	return nil
}

func sceneOverlayMarkup(title string, slide timeline.SlideConfig) string {
	return `(() => {
  let el = document.getElementById('__scenecast_slide_overlay');
  if (!el) { el = document.createElement('div'); el.id = '__scenecast_slide_overlay'; document.body.appendChild(el); }
  el.style.cssText = 'position:fixed;inset:0;z-index:2147483647;display:flex;align-items:center;justify-content:center;';
  el.innerText = ` + jsString(title) + `;
})();`
}

func removeOverlayScript() string {
	return `(() => { const el = document.getElementById('__scenecast_slide_overlay'); if (el) el.remove(); })();`
}

func jsString(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for _, r := range s {
		if r == '\'' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, string(r)...)
	}
	out = append(out, '\'')
	return string(out)
}
