// Package capture implements the Virtual Clock & Capture Loop (spec §4.2):
// a single monotonic virtual clock and an append-only frame manifest, driven
// cooperatively by pause/resume calls from the Scenario Runner. The teacher
// has no equivalent of this component (cutlass is single-shot, not a
// recording loop); its shape is grounded on the pack's capture.Run
// goroutine-plus-channel lifecycle (subsystemRunner in
// august-villagegames-limitless-context's pkg/capture), adapted from N
// parallel subsystems down to the single cooperative task this spec
// requires.
package capture

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrewarrow/scenecast/driver"
	"github.com/andrewarrow/scenecast/timeline"
)

// Loop owns the virtual clock, the append-only frame manifest, and the
// cooperative pause/resume protocol the Scenario Runner drives it through.
// Run's goroutine takes the periodic screenshots and CaptureOneFrame takes
// explicit ones; every other method just mutates shared state under mu and
// wakes waiters via cond.
type Loop struct {
	drv    driver.Driver
	fps    timeline.FPS
	outDir string
	log    zerolog.Logger

	mu            sync.Mutex
	cond          *sync.Cond
	manifest      []timeline.ManifestEntry
	frameIndex    int64
	paused        bool
	observedPause bool
	stopped       bool
	hasHash       bool
	lastHash      [md5.Size]byte
	fileSeq       int
	failures      int64
	ticks         int64

	writeSem chan struct{}
	writeWG  sync.WaitGroup
}

// NewLoop returns a Loop that will write captured frames under outDir.
func NewLoop(drv driver.Driver, fps int, outDir string, log zerolog.Logger) *Loop {
	l := &Loop{
		drv:      drv,
		fps:      timeline.FPS(fps),
		outDir:   outDir,
		log:      log,
		writeSem: make(chan struct{}, 1),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Manifest returns a snapshot of the append-only frame manifest built so
// far. Safe to call at any time; the returned slice is a copy.
func (l *Loop) Manifest() []timeline.ManifestEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]timeline.ManifestEntry, len(l.manifest))
	copy(out, l.manifest)
	return out
}

// CurrentTimeMs returns virtualFrameIndex * 1000/fps.
func (l *Loop) CurrentTimeMs() timeline.SourceMs {
	l.mu.Lock()
	defer l.mu.Unlock()
	return timeline.SourceMs(l.fps.FramesToMs(l.frameIndex))
}

// Run drives the capture loop until ctx is cancelled or Stop is called. It
// must run on its own goroutine; every other exported method is safe to
// call concurrently from the Scenario Runner's goroutine.
func (l *Loop) Run(ctx context.Context) error {
	interval := time.Duration(l.fps.FrameIntervalMs()) * time.Millisecond
	if interval <= 0 {
		return fmt.Errorf("capture: invalid fps %d", l.fps)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	started := time.Now()
	var achievedTicks int64

	for {
		select {
		case <-ctx.Done():
			l.writeWG.Wait()
			l.reportDrift(started, achievedTicks)
			return ctx.Err()
		case <-ticker.C:
			l.mu.Lock()
			if l.stopped {
				l.mu.Unlock()
				l.writeWG.Wait()
				l.reportDrift(started, achievedTicks)
				return nil
			}
			if l.paused {
				l.observedPause = true
				l.cond.Broadcast()
				l.mu.Unlock()
				continue
			}
			l.mu.Unlock()

			if err := l.tick(ctx); err != nil {
				l.mu.Lock()
				l.failures++
				l.mu.Unlock()
				l.log.Warn().Err(err).Msg("capture: screenshot failed, skipping tick")
				continue
			}
			achievedTicks++
		}
	}
}

// Stop ends Run after its current tick.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

func (l *Loop) tick(ctx context.Context) error {
	buf, err := l.drv.Screenshot(ctx)
	if err != nil {
		return err
	}
	hash := md5.Sum(buf)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.ticks++
	if l.hasHash && hash == l.lastHash {
		l.appendHoldLocked(l.lastEntryFileLocked(), 1)
		l.frameIndex++
		l.cond.Broadcast()
		return nil
	}

	l.hasHash = true
	l.lastHash = hash
	file := l.nextFilenameLocked()
	l.queueWriteLocked(file, buf)
	l.manifest = append(l.manifest, timeline.ManifestEntry{Kind: timeline.EntryFrame, File: file})
	l.frameIndex++
	l.cond.Broadcast()
	return nil
}

// CaptureOneFrame always writes a new frame file, ignoring dedup, and
// increments the virtual-frame index by exactly one. Used for sharp
// before/after boundaries around slides and transitions.
func (l *Loop) CaptureOneFrame(ctx context.Context) (string, error) {
	buf, err := l.drv.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("capture: explicit frame screenshot: %w", err)
	}

	l.mu.Lock()
	file := l.nextFilenameLocked()
	l.mu.Unlock()

	if err := l.writeFile(file, buf); err != nil {
		return "", fmt.Errorf("capture: writing explicit frame: %w", err)
	}

	l.mu.Lock()
	hash := md5.Sum(buf)
	l.hasHash = true
	l.lastHash = hash
	l.manifest = append(l.manifest, timeline.ManifestEntry{Kind: timeline.EntryFrame, File: file})
	l.frameIndex++
	l.cond.Broadcast()
	l.mu.Unlock()
	return file, nil
}

// AddHold extends the tail of the manifest by count virtual frames without
// any new disk I/O, used to implement explicit dwell (slides, narration
// playback, waits while capture is paused).
func (l *Loop) AddHold(file string, count int) {
	if count <= 0 {
		return
	}
	l.mu.Lock()
	l.appendHoldLocked(file, count)
	l.frameIndex += int64(count)
	l.cond.Broadcast()
	l.mu.Unlock()
}

func (l *Loop) appendHoldLocked(file string, count int) {
	if n := len(l.manifest); n > 0 {
		tail := &l.manifest[n-1]
		if tail.File == file {
			if tail.Kind == timeline.EntryHold {
				tail.Count += count
				return
			}
			l.manifest[n-1] = timeline.ManifestEntry{Kind: timeline.EntryHold, File: file, Count: 1 + count}
			return
		}
	}
	l.manifest = append(l.manifest, timeline.ManifestEntry{Kind: timeline.EntryHold, File: file, Count: count})
}

func (l *Loop) lastEntryFileLocked() string {
	if n := len(l.manifest); n > 0 {
		return l.manifest[n-1].File
	}
	return ""
}

// PauseCapture returns only once the loop has observed the pause flag and
// any write it had in flight has completed.
func (l *Loop) PauseCapture() {
	l.mu.Lock()
	l.paused = true
	l.observedPause = false
	for !l.observedPause && !l.stopped {
		l.cond.Wait()
	}
	l.mu.Unlock()
	l.writeWG.Wait()
}

// ResumeCapture is idempotent if capture is already running.
func (l *Loop) ResumeCapture() {
	l.mu.Lock()
	l.paused = false
	l.observedPause = false
	l.cond.Broadcast()
	l.mu.Unlock()
}

// WaitForDuration blocks until the virtual clock has advanced by at least
// ceil(ms*fps/1000) frames, coupling real waits to captured frames.
func (l *Loop) WaitForDuration(ms int64) {
	target := l.fps.MsToFrames(ms)
	l.mu.Lock()
	defer l.mu.Unlock()
	deadline := l.frameIndex + target
	for l.frameIndex < deadline && !l.stopped {
		l.cond.Wait()
	}
}

// FailureCount reports how many ticks were skipped due to screenshot
// failures.
func (l *Loop) FailureCount() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

func (l *Loop) nextFilenameLocked() string {
	l.fileSeq++
	return fmt.Sprintf("frame-%06d.jpg", l.fileSeq)
}

// queueWriteLocked schedules file to be written in the background,
// overlapping the next screenshot with the previous frame's disk write (at
// most one write outstanding — enforced by the capacity-1 semaphore).
func (l *Loop) queueWriteLocked(file string, buf []byte) {
	l.writeSem <- struct{}{}
	l.writeWG.Add(1)
	go func() {
		defer l.writeWG.Done()
		defer func() { <-l.writeSem }()
		if err := l.writeFile(file, buf); err != nil {
			l.log.Warn().Err(err).Str("file", file).Msg("capture: background frame write failed")
		}
	}()
}

func (l *Loop) writeFile(name string, buf []byte) error {
	if err := os.MkdirAll(l.outDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(l.outDir, name), buf, 0o644)
}

// driftThreshold is the fraction of target fps below which a run is
// considered to have drifted (spec §4.2: "below 85% of target over the
// whole run").
const driftThreshold = 0.85

func (l *Loop) reportDrift(started time.Time, achievedTicks int64) {
	elapsed := time.Since(started).Seconds()
	if elapsed <= 0 {
		return
	}
	achievedFps := float64(achievedTicks) / elapsed
	target := float64(l.fps)
	if target <= 0 {
		return
	}
	if achievedFps < driftThreshold*target {
		l.log.Warn().
			Float64("achievedFps", achievedFps).
			Float64("targetFps", target).
			Msg("capture: drift detected, achieved fps below 85% of target")
	}
}
