package timeline

import "fmt"

// SourceMs is a millisecond timestamp in scenario source time: the clock the
// Scenario Runner and Capture Loop advance while a scenario executes.
type SourceMs int64

// OutputMs is a millisecond timestamp in the final rendered timeline, after
// slides and transitions have been inserted ahead of it.
type OutputMs int64

// ExpandedFrame is an index into the fully expanded frame sequence, i.e. the
// frame manifest with every Hold entry unrolled to its individual frames.
type ExpandedFrame int64

// FPS is a frames-per-second rate used to convert between frame counts and
// millisecond durations.
type FPS int

// FrameIntervalMs is the duration of one virtual frame at this rate.
func (f FPS) FrameIntervalMs() int64 {
	if f <= 0 {
		return 0
	}
	return 1000 / int64(f)
}

// MsToFrames converts a millisecond duration to a frame count, rounding up
// so that a partial frame still counts as one full frame of coverage.
func (f FPS) MsToFrames(ms int64) int64 {
	if f <= 0 {
		return 0
	}
	if ms <= 0 {
		return 0
	}
	num := ms * int64(f)
	frames := num / 1000
	if num%1000 != 0 {
		frames++
	}
	return frames
}

// FramesToMs converts a frame count at this rate to milliseconds.
func (f FPS) FramesToMs(frames int64) int64 {
	if f <= 0 {
		return 0
	}
	return frames * 1000 / int64(f)
}

func (t SourceMs) String() string   { return fmt.Sprintf("%dms(src)", int64(t)) }
func (t OutputMs) String() string   { return fmt.Sprintf("%dms(out)", int64(t)) }
func (f ExpandedFrame) String() string { return fmt.Sprintf("frame#%d", int64(f)) }
