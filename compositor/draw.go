package compositor

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/andrewarrow/scenecast/resolve"
	"github.com/andrewarrow/scenecast/timeline"
)

const (
	chromeBarHeight = 36
	cursorRadius    = 7
)

// Renderer draws one FramePlan at a time into an RGBA image, grounded on
// the base/entry/exit face compositing and overlay steps of spec §4.7.
// It caches decoded source images since the same file backs many frames
// (holds, and the unchanged face of a transition).
type Renderer struct {
	frameDir string
	width    int
	height   int

	mu    sync.Mutex
	cache map[string]image.Image
}

// NewRenderer returns a Renderer that resolves manifest filenames relative
// to frameDir and draws into a width x height canvas (the encoder's output
// resolution, not necessarily the captured viewport).
func NewRenderer(frameDir string, width, height int) *Renderer {
	return &Renderer{frameDir: frameDir, width: width, height: height, cache: make(map[string]image.Image)}
}

func (r *Renderer) loadImage(file string) (image.Image, error) {
	r.mu.Lock()
	if im, ok := r.cache[file]; ok {
		r.mu.Unlock()
		return im, nil
	}
	r.mu.Unlock()

	im, err := gg.LoadImage(filepath.Join(r.frameDir, file))
	if err != nil {
		return nil, fmt.Errorf("compositor: loading frame %q: %w", file, err)
	}

	r.mu.Lock()
	r.cache[file] = im
	r.mu.Unlock()
	return im, nil
}

// Draw renders one FramePlan to an RGBA frame at the Renderer's output
// resolution.
func (r *Renderer) Draw(plan FramePlan) (*image.RGBA, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	if plan.Base.Source != nil {
		im, err := r.loadImage(plan.Base.Source.File)
		if err != nil {
			return nil, err
		}
		r.drawFit(dc, im)
	} else if plan.Base.Transition != nil {
		before, err := r.loadImage(plan.Base.Transition.BeforeFile)
		if err != nil {
			return nil, err
		}
		after, err := r.loadImage(plan.Base.Transition.AfterFile)
		if err != nil {
			return nil, err
		}
		r.drawTransition(dc, before, after, plan.Base.Transition)
	}

	if plan.ChromeVisible {
		r.drawChrome(dc, plan.ActiveURL)
	}
	for _, ripple := range plan.Ripples {
		drawRipple(dc, ripple)
	}
	if plan.Cursor.Visible {
		drawCursor(dc, plan.Cursor)
	}

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		converted := image.NewRGBA(dc.Image().Bounds())
		drawInto(converted, dc.Image())
		return converted, nil
	}
	return img, nil
}

func drawInto(dst *image.RGBA, src image.Image) {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
}

// drawFit draws im scaled to fill the canvas, preserving aspect ratio and
// centering any letterbox. Scaling goes through x/image/draw's CatmullRom
// resampler rather than gg's own affine DrawImage, since captured frames are
// frequently scaled up to the output resolution and nearest/bilinear affine
// scaling leaves visible blockiness on browser chrome and text.
func (r *Renderer) drawFit(dc *gg.Context, im image.Image) {
	b := im.Bounds()
	sw, sh := float64(b.Dx()), float64(b.Dy())
	scale := math.Min(float64(r.width)/sw, float64(r.height)/sh)
	dw, dh := int(sw*scale), int(sh*scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dx := (r.width - dw) / 2
	dy := (r.height - dh) / 2

	scaled := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), im, b, draw.Over, nil)
	dc.DrawImage(scaled, dx, dy)
}

// drawTransition applies the per-kind style described in spec §4.7 step 1
// to the entry (after) and exit (before) faces, after easing progress.
func (r *Renderer) drawTransition(dc *gg.Context, before, after image.Image, t *resolve.Transition) {
	progress := easeInOutCubic(t.Progress)
	w, h := float64(r.width), float64(r.height)

	switch t.Kind {
	case timeline.TransitionFade:
		r.drawFit(dc, before)
		dc.Push()
		r.drawFitWithAlpha(dc, after, progress)
		dc.Pop()

	case timeline.TransitionWipe:
		r.drawFit(dc, before)
		dc.Push()
		dc.DrawRectangle(0, 0, w*progress, h)
		dc.Clip()
		r.drawFit(dc, after)
		dc.ResetClip()
		dc.Pop()

	case timeline.TransitionSlideUp:
		r.drawFit(dc, before)
		dc.Push()
		dc.Translate(0, h*(1-progress))
		r.drawFit(dc, after)
		dc.Pop()

	case timeline.TransitionSlideLeft:
		r.drawFit(dc, before)
		dc.Push()
		dc.Translate(w*(1-progress), 0)
		r.drawFit(dc, after)
		dc.Pop()

	case timeline.TransitionZoom:
		r.drawFit(dc, before)
		dc.Push()
		cx, cy := w/2, h/2
		scale := 0.85 + 0.15*progress
		dc.Translate(cx, cy)
		dc.Scale(scale, scale)
		dc.Translate(-cx, -cy)
		r.drawFitWithAlpha(dc, after, progress)
		dc.Pop()

	case timeline.TransitionDoorway:
		r.drawFit(dc, before)
		dc.Push()
		half := w / 2
		dc.DrawRectangle(0, 0, half*(1-progress), h)
		dc.DrawRectangle(w-half*(1-progress), 0, half*(1-progress), h)
		dc.Clip()
		r.drawFit(dc, after)
		dc.ResetClip()
		dc.Pop()

	case timeline.TransitionSwap, timeline.TransitionCube:
		// Approximate the 3D rotate/translate with a horizontal squeeze
		// crossfade: the exiting face compresses away as the entering
		// face expands in, which reads as a simple perspective swap on a
		// 2D canvas.
		if progress < 1 {
			dc.Push()
			dc.Translate(w/2, 0)
			dc.Scale(1-progress, 1)
			dc.Translate(-w/2, 0)
			r.drawFit(dc, before)
			dc.Pop()
		}
		dc.Push()
		squeeze := progress
		dc.Translate(w/2, 0)
		dc.Scale(squeeze, 1)
		dc.Translate(-w/2, 0)
		r.drawFitWithAlpha(dc, after, progress)
		dc.Pop()

	default:
		r.drawFit(dc, after)
	}
}

// drawFitWithAlpha draws im scaled to fill the canvas at the given opacity,
// used by transition styles that crossfade their entering face.
func (r *Renderer) drawFitWithAlpha(dc *gg.Context, im image.Image, alpha float64) {
	layer := gg.NewContext(r.width, r.height)
	sub := &Renderer{width: r.width, height: r.height}
	sub.drawFit(layer, im)
	faded := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(alpha)*255 + 0.5)})
	draw.DrawMask(faded, faded.Bounds(), layer.Image(), image.Point{}, mask, image.Point{}, draw.Over)
	dc.DrawImage(faded, 0, 0)
}

func (r *Renderer) drawChrome(dc *gg.Context, url string) {
	dc.Push()
	dc.SetRGBA(0.12, 0.12, 0.14, 0.92)
	dc.DrawRectangle(0, 0, float64(r.width), chromeBarHeight)
	dc.Fill()

	for i, c := range []color.Color{
		color.RGBA{R: 255, G: 95, B: 86, A: 255},
		color.RGBA{R: 255, G: 189, B: 46, A: 255},
		color.RGBA{R: 39, G: 201, B: 63, A: 255},
	} {
		dc.SetColor(c)
		dc.DrawCircle(20+float64(i)*18, chromeBarHeight/2, 6)
		dc.Fill()
	}

	dc.SetRGBA(0.85, 0.85, 0.88, 1)
	dc.DrawRoundedRectangle(90, 7, float64(r.width)-110, chromeBarHeight-14, 6)
	dc.Fill()

	if url != "" {
		dc.SetRGBA(0.15, 0.15, 0.18, 1)
		dc.DrawStringAnchored(url, 100, chromeBarHeight/2, 0, 0.35)
	}
	dc.Pop()
}

func drawRipple(dc *gg.Context, ripple Ripple) {
	radius := 8 + 26*ripple.Progress
	alpha := clamp01(1 - ripple.Progress)

	dc.Push()
	dc.SetRGBA(0.25, 0.55, 1, alpha*0.6)
	dc.SetLineWidth(2)
	dc.DrawCircle(float64(ripple.X), float64(ripple.Y), radius)
	dc.Stroke()
	dc.Pop()
}

func drawCursor(dc *gg.Context, cursor CursorState) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.35)
	dc.DrawCircle(float64(cursor.X)+1, float64(cursor.Y)+1, cursorRadius)
	dc.Fill()
	dc.SetRGBA(1, 1, 1, 1)
	dc.DrawCircle(float64(cursor.X), float64(cursor.Y), cursorRadius)
	dc.Fill()
	dc.SetRGBA(0.1, 0.1, 0.1, 1)
	dc.SetLineWidth(1.5)
	dc.DrawCircle(float64(cursor.X), float64(cursor.Y), cursorRadius)
	dc.Stroke()
	dc.Pop()
}
