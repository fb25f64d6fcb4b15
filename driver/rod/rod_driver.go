// Package rod adapts github.com/go-rod/rod into the driver.Driver contract.
// It is the generalisation of the teacher's single-shot BrowserSession
// (launch once, navigate once, screenshot once) into a long-lived session
// the Capture Loop and Scenario Runner share across an entire recording.
package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/andrewarrow/scenecast/driver"
)

// Session is a long-lived headless-browser driver backed by go-rod.
type Session struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

// New returns an unlaunched Session. Call Launch before use.
func New() *Session {
	return &Session{timeout: 60 * time.Second}
}

func (s *Session) Launch(ctx context.Context, opts driver.LaunchOptions) error {
	l := launcher.New().Headless(true)
	url, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(url).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		l.Cleanup()
		return fmt.Errorf("opening page: %w", err)
	}

	dpr := opts.DPR
	if dpr <= 0 {
		dpr = 1
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Viewport.Width,
		Height:            opts.Viewport.Height,
		DeviceScaleFactor: dpr,
	}); err != nil {
		browser.Close()
		l.Cleanup()
		return fmt.Errorf("setting viewport: %w", err)
	}

	s.launcher = l
	s.browser = browser
	s.page = page.Timeout(s.timeout)
	return nil
}

func (s *Session) Goto(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for page load at %s: %w", url, err)
	}
	waitIdle := page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	waitIdle()
	return nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	return s.page.Context(ctx).Screenshot(false, nil)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("resolving selector %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("resolving selector %s: %w", selector, err)
	}
	for _, r := range value {
		if err := el.Input(string(r)); err != nil {
			return fmt.Errorf("filling %s: %w", selector, err)
		}
		time.Sleep(30 * time.Millisecond)
	}
	return nil
}

func (s *Session) Hover(ctx context.Context, selector string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("resolving selector %s: %w", selector, err)
	}
	if err := el.Hover(); err != nil {
		return fmt.Errorf("hovering %s: %w", selector, err)
	}
	return nil
}

func (s *Session) Press(ctx context.Context, selector, key string) error {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("resolving selector %s: %w", selector, err)
	}
	k, ok := keyByName[key]
	if !ok {
		return fmt.Errorf("pressing %s: unknown key %q", selector, key)
	}
	if err := el.Type(k); err != nil {
		return fmt.Errorf("pressing %s on %s: %w", key, selector, err)
	}
	return nil
}

func (s *Session) BoundingBox(ctx context.Context, selector string) (*driver.Box, error) {
	el, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return nil, nil
	}
	shape, err := el.Shape()
	if err != nil || len(shape.Quads) == 0 {
		return nil, nil
	}
	box := shape.Box()
	return &driver.Box{
		X:      int(box.X),
		Y:      int(box.Y),
		Width:  int(box.Width),
		Height: int(box.Height),
	}, nil
}

func (s *Session) Inject(ctx context.Context, cssOrDOM string) error {
	_, err := s.page.Context(ctx).Eval(cssOrDOM)
	if err != nil {
		return fmt.Errorf("injecting overlay: %w", err)
	}
	return nil
}

func (s *Session) Close() error {
	if s.page != nil {
		s.page.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	return nil
}

var keyByName = map[string]input.Key{
	"Enter":     input.Enter,
	"Tab":       input.Tab,
	"Escape":    input.Escape,
	"Backspace": input.Backspace,
	"ArrowUp":   input.ArrowUp,
	"ArrowDown": input.ArrowDown,
}
