// Package scenario defines the instrumentation API surface a recording
// script is written against (spec §4.3), as a narrow interface rather than
// a concrete type, so the narration preprocessor can run the exact same
// script against a text-collecting stub instead of a live browser (Design
// Notes §9: "a narrow, total interface that both backends satisfy").
package scenario

import (
	"context"

	"github.com/andrewarrow/scenecast/runner"
)

// API is every capability a scenario script may call. *runner.Runner
// implements it for the recording pass; narration.Collector implements it
// for the preprocessing pass.
type API interface {
	Scene(ctx context.Context, title string, opts runner.SceneOptions) error
	Navigate(ctx context.Context, url string, opts runner.ActionOptions) error
	Click(ctx context.Context, selector string, opts runner.ActionOptions) error
	Fill(ctx context.Context, selector, value string, opts runner.ActionOptions) error
	Hover(ctx context.Context, selector string, opts runner.ActionOptions) error
	Press(ctx context.Context, selector, key string, opts runner.ActionOptions) error
	Wait(ctx context.Context, ms int64) error
	Narrate(ctx context.Context, text string) error
	Transition(ctx context.Context, opts runner.TransitionOptions) error
}

// Func is the shape of a recording script: it drives api to completion, or
// returns an error that aborts the recording.
type Func func(ctx context.Context, api API) error
