// Package narration implements the Narration Preprocessor (spec §4.4): a
// dry run of the scenario against a text-collecting stub, followed by a
// synthesize -> probe -> silence-detect -> align pipeline that turns the
// collected texts into per-segment timing windows over one concatenated
// audio file.
package narration

import (
	"context"

	"github.com/andrewarrow/scenecast/runner"
)

// Collector is the stub instrumentation the preprocessor runs a scenario
// against. Every browser-facing operation is a no-op; Scene, Navigate,
// Click, Fill, Hover, and Press only look at their narration-bearing
// option, and Narrate always just appends — the scenario runs to
// completion without ever touching a browser (Design Notes §9).
type Collector struct {
	texts []string
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

// Texts returns the narration texts collected, in call order.
func (c *Collector) Texts() []string { return c.texts }

func (c *Collector) Scene(_ context.Context, _ string, opts runner.SceneOptions) error {
	if opts.Slide != nil && opts.Slide.Narrate != "" {
		c.texts = append(c.texts, opts.Slide.Narrate)
	}
	return nil
}

func (c *Collector) Navigate(_ context.Context, _ string, opts runner.ActionOptions) error {
	return c.collectOption(opts)
}

func (c *Collector) Click(_ context.Context, _ string, opts runner.ActionOptions) error {
	return c.collectOption(opts)
}

func (c *Collector) Fill(_ context.Context, _, _ string, opts runner.ActionOptions) error {
	return c.collectOption(opts)
}

func (c *Collector) Hover(_ context.Context, _ string, opts runner.ActionOptions) error {
	return c.collectOption(opts)
}

func (c *Collector) Press(_ context.Context, _, _ string, opts runner.ActionOptions) error {
	return c.collectOption(opts)
}

func (c *Collector) Wait(context.Context, int64) error { return nil }

func (c *Collector) Narrate(_ context.Context, text string) error {
	c.texts = append(c.texts, text)
	return nil
}

func (c *Collector) Transition(context.Context, runner.TransitionOptions) error { return nil }

func (c *Collector) collectOption(opts runner.ActionOptions) error {
	if opts.Narration != "" {
		c.texts = append(c.texts, opts.Narration)
	}
	return nil
}
