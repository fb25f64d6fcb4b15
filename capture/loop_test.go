package capture

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrewarrow/scenecast/driver"
	"github.com/andrewarrow/scenecast/timeline"
)

// scriptedDriver returns a fixed sequence of screenshot buffers, repeating
// the last one once exhausted, so a test can force specific dedup/hold
// behaviour deterministically.
type scriptedDriver struct {
	driver.Driver
	frames [][]byte
	calls  int
}

func (d *scriptedDriver) Screenshot(ctx context.Context) ([]byte, error) {
	i := d.calls
	if i >= len(d.frames) {
		i = len(d.frames) - 1
	}
	d.calls++
	return d.frames[i], nil
}

func TestAddHoldExtendsMatchingTailFrame(t *testing.T) {
	l := NewLoop(&scriptedDriver{}, 30, t.TempDir(), zerolog.Nop())
	l.manifest = []timeline.ManifestEntry{{Kind: timeline.EntryFrame, File: "frame-000001.jpg"}}
	l.frameIndex = 1

	l.AddHold("frame-000001.jpg", 3)

	if len(l.manifest) != 1 {
		t.Fatalf("expected tail to be extended in place, got %d entries", len(l.manifest))
	}
	entry := l.manifest[0]
	if entry.Kind != timeline.EntryHold || entry.Count != 4 {
		t.Errorf("expected Hold{frame-000001.jpg,4}, got %+v", entry)
	}
	if l.frameIndex != 4 {
		t.Errorf("expected frameIndex 4, got %d", l.frameIndex)
	}
}

func TestAddHoldAppendsNewEntryForDifferentFile(t *testing.T) {
	l := NewLoop(&scriptedDriver{}, 30, t.TempDir(), zerolog.Nop())
	l.manifest = []timeline.ManifestEntry{{Kind: timeline.EntryFrame, File: "frame-000001.jpg"}}

	l.AddHold("frame-000002.jpg", 2)

	if len(l.manifest) != 2 {
		t.Fatalf("expected a new entry appended, got %d entries", len(l.manifest))
	}
	if l.manifest[1].Kind != timeline.EntryHold || l.manifest[1].Count != 2 {
		t.Errorf("expected Hold{frame-000002.jpg,2}, got %+v", l.manifest[1])
	}
}

func TestCurrentTimeMsTracksFrameIndex(t *testing.T) {
	l := NewLoop(&scriptedDriver{}, 30, t.TempDir(), zerolog.Nop())
	l.frameIndex = 30
	if got, want := l.CurrentTimeMs(), timeline.SourceMs(1000); got != want {
		t.Errorf("CurrentTimeMs() = %v, want %v", got, want)
	}
}

func TestCaptureOneFrameAlwaysAppendsNewEntry(t *testing.T) {
	d := &scriptedDriver{frames: [][]byte{[]byte("same"), []byte("same")}}
	l := NewLoop(d, 30, t.TempDir(), zerolog.Nop())

	ctx := context.Background()
	if _, err := l.CaptureOneFrame(ctx); err != nil {
		t.Fatalf("CaptureOneFrame: %v", err)
	}
	if _, err := l.CaptureOneFrame(ctx); err != nil {
		t.Fatalf("CaptureOneFrame: %v", err)
	}

	m := l.Manifest()
	if len(m) != 2 {
		t.Fatalf("expected 2 distinct frame entries despite identical content, got %d", len(m))
	}
	for _, e := range m {
		if e.Kind != timeline.EntryFrame {
			t.Errorf("expected Frame entry, got %+v", e)
		}
	}
	if l.frameIndex != 2 {
		t.Errorf("expected frameIndex 2, got %d", l.frameIndex)
	}
}

func TestRunDedupsIdenticalConsecutiveFrames(t *testing.T) {
	d := &scriptedDriver{frames: [][]byte{[]byte("a"), []byte("a"), []byte("b")}}
	l := NewLoop(d, 200, t.TempDir(), zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	_ = l.Run(ctx)

	m := l.Manifest()
	if len(m) == 0 {
		t.Fatal("expected at least one manifest entry")
	}
	if m[0].Kind != timeline.EntryHold || m[0].File != "frame-000001.jpg" || m[0].Count != 2 {
		t.Errorf("expected the two identical leading screenshots deduplicated into Hold{frame-000001.jpg, 2}, got %+v", m[0])
	}
}
