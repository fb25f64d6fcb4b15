package compositor

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/andrewarrow/scenecast/encode"
	"github.com/andrewarrow/scenecast/errs"
)

// WorkerCount returns a pool size of ~75% of available CPUs, at least 2, per
// spec §5's rendering concurrency guidance ("a render implementation may
// use a worker pool sized to ~75% of available CPU cores; concurrency ≥ 2").
func WorkerCount() int {
	n := runtime.NumCPU() * 3 / 4
	if n < 2 {
		n = 2
	}
	return n
}

// RenderAll draws every plan concurrently across a worker pool (the
// resolver and renderer are pure, so this is embarrassingly parallel), then
// returns an encode.FrameFunc that serves the results back out in order for
// the Encoder to stream into ffmpeg.
func RenderAll(ctx context.Context, r *Renderer, plans []FramePlan, workers int) (encode.FrameFunc, error) {
	if workers <= 0 {
		workers = WorkerCount()
	}

	frames := make([]*image.RGBA, len(plans))
	errsCh := make(chan error, 1)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)

	var once sync.Once
	fail := func(err error) {
		once.Do(func() { errsCh <- err })
	}

	for i, plan := range plans {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, plan FramePlan) {
			defer wg.Done()
			defer func() { <-sem }()

			img, err := r.Draw(plan)
			if err != nil {
				fail(errs.Wrap(errs.RenderFailure, err, fmt.Sprintf("rendering output frame %d", plan.OutputFrame)))
				return
			}
			frames[i] = img
		}(i, plan)
	}

	wg.Wait()
	select {
	case err := <-errsCh:
		return nil, err
	default:
	}

	return func(f int) (*image.RGBA, error) {
		if f < 0 || f >= len(frames) {
			return nil, fmt.Errorf("compositor: output frame %d out of range [0,%d)", f, len(frames))
		}
		return frames[f], nil
	}, nil
}
