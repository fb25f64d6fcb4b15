// Package scenarios holds the recording scripts compiled into this binary.
// Each file registers one scenario by name in its init(), the same pattern
// database/sql drivers use, so `compose <name>` can look it up without any
// dynamic code loading.
package scenarios

import (
	"context"

	"github.com/andrewarrow/scenecast/runner"
	"github.com/andrewarrow/scenecast/scenario"
	"github.com/andrewarrow/scenecast/timeline"
)

func init() {
	scenario.Register("product-tour", productTour)
}

// productTour is a representative demo-video script: a title slide, a
// narrated navigation, two narrated interactions, a transition, and a
// closing slide.
func productTour(ctx context.Context, api scenario.API) error {
	introDurationMs := int64(2500)
	if err := api.Scene(ctx, "Welcome", runner.SceneOptions{
		Slide: &timeline.SlideConfig{
			DurationMs: &introDurationMs,
			BrandColor: "#1d4ed8",
			TextColor:  "#ffffff",
			Narrate:    "Welcome to the product tour.",
		},
	}); err != nil {
		return err
	}

	if err := api.Navigate(ctx, "https://example.com/dashboard", runner.ActionOptions{
		Narration: "Let's start on the dashboard.",
	}); err != nil {
		return err
	}

	if err := api.Click(ctx, "#new-project", runner.ActionOptions{
		Narration: "Creating a new project takes one click.",
	}); err != nil {
		return err
	}

	if err := api.Fill(ctx, "#project-name", "Launch Plan", runner.ActionOptions{
		Narration: "Give it a name, and you're ready to go.",
	}); err != nil {
		return err
	}

	if err := api.Transition(ctx, runner.TransitionOptions{Kind: timeline.TransitionFade, DurationMs: 600}); err != nil {
		return err
	}

	closingDurationMs := int64(2000)
	return api.Scene(ctx, "That's it", runner.SceneOptions{
		Slide: &timeline.SlideConfig{
			DurationMs: &closingDurationMs,
			BrandColor: "#1d4ed8",
			TextColor:  "#ffffff",
			Narrate:    "That's all it takes to get started.",
		},
	})
}
