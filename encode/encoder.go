package encode

import (
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// FrameFunc returns the RGBA image for output frame index f, or an error if
// resolution/compositing failed. The encoder calls it once per frame in
// order.
type FrameFunc func(f int) (*image.RGBA, error)

// Options configures the final container write (§6's encoder contract).
type Options struct {
	Binary          string
	Width, Height   int
	Fps             int
	FrameCount      int
	Codec           string
	CRF             int
	PixelFormat     string
	ScaleWidth      int
	ScaleHeight     int
	AudioFile       string
	AudioOffsetMs   int64
	Output          string
}

// Encoder writes rendered frames and a single audio track to a container
// file via ffmpeg, fed raw RGBA frames over stdin (pipe:0) rather than a
// JPEG-per-frame intermediate, avoiding an extra encode/decode round trip.
type Encoder struct {
	binary string
}

// New returns an Encoder invoking the given ffmpeg binary ("" defaults to
// "ffmpeg" resolved via PATH).
func New(binary string) *Encoder {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Encoder{binary: binary}
}

// Encode pulls frames from next until it returns an error or FrameCount
// frames have been written, streaming each as rawvideo into ffmpeg.
func (e *Encoder) Encode(ctx context.Context, opts Options, next FrameFunc) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("encode: invalid frame dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.Fps <= 0 {
		return fmt.Errorf("encode: invalid fps %d", opts.Fps)
	}

	b := NewCommandBuilder(e.binary).Overwrite().HideBanner()
	b.InputArgs("-f", "rawvideo", "-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%d", opts.Fps))
	b.Input("pipe:0")

	if opts.AudioFile != "" {
		b.AudioOffset(opts.AudioOffsetMs)
		b.Input(opts.AudioFile)
	}

	if opts.ScaleWidth > 0 && opts.ScaleHeight > 0 {
		b.Scale(opts.ScaleWidth, opts.ScaleHeight)
	}

	codec := opts.Codec
	if codec == "" {
		codec = "libx264"
	}
	crf := opts.CRF
	if crf <= 0 {
		crf = 20
	}
	pixFmt := opts.PixelFormat
	if pixFmt == "" {
		pixFmt = "yuv420p"
	}
	b.VideoCodec(codec).CRF(crf).PixelFormat(pixFmt)
	if opts.AudioFile != "" {
		b.AudioCodec("aac").OutputArgs("-shortest")
	}
	b.OutputArgs("-movflags", "+faststart")
	b.Output(opts.Output)

	cmd := b.Build()
	execCmd := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	stdin, err := execCmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("encode: opening ffmpeg stdin: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- execCmd.Run()
	}()

	for f := 0; f < opts.FrameCount; f++ {
		img, err := next(f)
		if err != nil {
			stdin.Close()
			<-errCh
			return fmt.Errorf("encode: resolving frame %d: %w", f, err)
		}
		if err := writeRGBA(stdin, img); err != nil {
			stdin.Close()
			<-errCh
			return fmt.Errorf("encode: writing frame %d: %w", f, err)
		}
	}
	stdin.Close()

	if err := <-errCh; err != nil {
		return fmt.Errorf("encode: %s: %w", cmd.String(), err)
	}
	return nil
}

func writeRGBA(w io.Writer, img *image.RGBA) error {
	if img.Stride == img.Bounds().Dx()*4 {
		_, err := w.Write(img.Pix)
		return err
	}
	bounds := img.Bounds()
	row := make([]byte, bounds.Dx()*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		copy(row, img.Pix[(y-bounds.Min.Y)*img.Stride:])
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
