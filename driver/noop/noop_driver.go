// Package noop implements a stub driver.Driver: every browser-facing
// operation is a no-op, so a scenario can execute to completion without ever
// touching a browser. compose selects it when SCENECAST_NOOP_DRIVER=1, and
// tests use it; the narration preprocessor runs against narration.Collector
// instead.
package noop

import (
	"context"

	"github.com/andrewarrow/scenecast/driver"
)

// Driver satisfies driver.Driver with no-op methods that never fail and
// never block. BoundingBox returns a zero box rather than nil so scenario
// code that immediately reads fields off the result (rather than checking
// for nil first) does not panic.
type Driver struct{}

// New returns a stub driver instance.
func New() *Driver { return &Driver{} }

func (*Driver) Launch(context.Context, driver.LaunchOptions) error { return nil }
func (*Driver) Goto(context.Context, string) error                 { return nil }
func (*Driver) Screenshot(context.Context) ([]byte, error)         { return nil, nil }
func (*Driver) Click(context.Context, string) error                { return nil }
func (*Driver) Fill(context.Context, string, string) error         { return nil }
func (*Driver) Hover(context.Context, string) error                { return nil }
func (*Driver) Press(context.Context, string, string) error        { return nil }
func (*Driver) Inject(context.Context, string) error                { return nil }
func (*Driver) Close() error                                        { return nil }

func (*Driver) BoundingBox(context.Context, string) (*driver.Box, error) {
	return &driver.Box{}, nil
}
