// Package driver defines the narrow browser-driver contract the Capture
// Loop and Scenario Runner depend on (§6), plus the two implementations:
// driver/rod (a real headless-browser session) and driver/noop (a no-op
// stub selected by SCENECAST_NOOP_DRIVER and used by tests).
package driver

import "context"

// LaunchOptions configures a new session. DPR is fixed to 1 during capture;
// upscaling is deferred to the encoder.
type LaunchOptions struct {
	Viewport    Viewport
	DPR         float64
	Locale      string
	Timezone    string
	ColorScheme string
}

// Viewport is the captured browser viewport size in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Box is a pixel bounding rectangle, or absence when a selector resolves to
// nothing.
type Box struct {
	X, Y, Width, Height int
}

// Driver is the minimal surface the core needs from a browser automation
// backend. Every method that can suspend takes a context so a caller-side
// timeout always has somewhere to attach.
type Driver interface {
	Launch(ctx context.Context, opts LaunchOptions) error
	Goto(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	Hover(ctx context.Context, selector string) error
	Press(ctx context.Context, selector, key string) error
	BoundingBox(ctx context.Context, selector string) (*Box, error)
	Inject(ctx context.Context, cssOrDOM string) error
	Close() error
}
