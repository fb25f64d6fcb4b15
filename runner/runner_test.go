package runner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andrewarrow/scenecast/capture"
	"github.com/andrewarrow/scenecast/driver/noop"
	"github.com/andrewarrow/scenecast/timeline"
)

// newTestRunner wires a Runner against a noop driver and a live capture
// loop, the same shape cmd/compose.go assembles for a real recording.
func newTestRunner(t *testing.T) (*Runner, *capture.Loop, func()) {
	t.Helper()
	drv := noop.New()
	loop := capture.NewLoop(drv, 30, filepath.Join(t.TempDir(), "frames"), zerolog.Nop())
	rn := New(drv, loop, 30, 1280, 720, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	cleanup := func() {
		cancel()
		<-errCh
	}
	return rn, loop, cleanup
}

func audioFile(s string) *string { return &s }

func TestSceneEmitsEventAtCurrentTime(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()

	if err := rn.Scene(context.Background(), "Intro", SceneOptions{}); err != nil {
		t.Fatalf("Scene: %v", err)
	}

	events := rn.Events()
	if len(events) != 1 || events[0].Kind != timeline.KindScene {
		t.Fatalf("events = %+v, want one Scene event", events)
	}
	if events[0].Scene.Title != "Intro" {
		t.Errorf("title = %q, want Intro", events[0].Scene.Title)
	}
}

func TestSceneWithSlideNarrationConsumesQueueInOrder(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()

	rn.SetNarrationQueue([]NarrationSegment{
		{Text: "welcome", DurationMs: 1500, AudioFile: audioFile("narration-full.wav")},
		{Text: "click it", DurationMs: 800},
	})

	slideDurationMs := int64(2000)
	if err := rn.Scene(context.Background(), "Welcome", SceneOptions{
		Slide: &timeline.SlideConfig{DurationMs: &slideDurationMs, Narrate: "welcome"},
	}); err != nil {
		t.Fatalf("Scene: %v", err)
	}
	if err := rn.Click(context.Background(), "#go", ActionOptions{Narration: "click it"}); err != nil {
		t.Fatalf("Click: %v", err)
	}

	if got := rn.NarrationConsumed(); got != 2 {
		t.Fatalf("NarrationConsumed() = %d, want 2", got)
	}

	var narrationEvents []timeline.Event
	for _, ev := range rn.Events() {
		if ev.Kind == timeline.KindNarration {
			narrationEvents = append(narrationEvents, ev)
		}
	}
	if len(narrationEvents) != 2 {
		t.Fatalf("got %d narration events, want 2", len(narrationEvents))
	}
	if narrationEvents[0].Narration.Text != "welcome" {
		t.Errorf("first narration text = %q, want welcome", narrationEvents[0].Narration.Text)
	}
	if narrationEvents[0].Narration.AudioFile == nil || *narrationEvents[0].Narration.AudioFile != "narration-full.wav" {
		t.Errorf("first narration event should carry the audio file reference")
	}
	if narrationEvents[1].Narration.AudioFile != nil {
		t.Errorf("second narration event should not carry its own audio file reference")
	}
}

func TestSceneSlideNarrationWithoutQueueIsMismatch(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()

	slideDurationMs := int64(2000)
	err := rn.Scene(context.Background(), "Welcome", SceneOptions{
		Slide: &timeline.SlideConfig{DurationMs: &slideDurationMs, Narrate: "welcome"},
	})
	if err == nil {
		t.Fatal("expected a NarrationMismatch error with an empty queue")
	}
}

func TestDisableVoiceoverSkipsNarrationWithoutError(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()
	rn.DisableVoiceover()

	slideDurationMs := int64(2000)
	if err := rn.Scene(context.Background(), "Welcome", SceneOptions{
		Slide: &timeline.SlideConfig{DurationMs: &slideDurationMs, Narrate: "welcome"},
	}); err != nil {
		t.Fatalf("Scene with voiceover disabled: %v", err)
	}
	if err := rn.Navigate(context.Background(), "https://example.com", ActionOptions{Narration: "go"}); err != nil {
		t.Fatalf("Navigate with voiceover disabled: %v", err)
	}

	for _, ev := range rn.Events() {
		if ev.Kind == timeline.KindNarration {
			t.Errorf("no narration events should be emitted while voiceover is disabled, got %+v", ev)
		}
	}
	if rn.NarrationConsumed() != 0 {
		t.Errorf("NarrationConsumed() = %d, want 0", rn.NarrationConsumed())
	}
}

func TestTransitionPendingResolvedByNextAction(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()

	if err := rn.Navigate(context.Background(), "https://example.com", ActionOptions{}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := rn.Transition(context.Background(), TransitionOptions{Kind: timeline.TransitionFade, DurationMs: 500}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if err := rn.Click(context.Background(), "#next", ActionOptions{}); err != nil {
		t.Fatalf("Click: %v", err)
	}

	transitions := rn.Transitions()
	if len(transitions) != 1 {
		t.Fatalf("got %d transition markers, want 1", len(transitions))
	}
}

func TestFinalizeDiscardsPendingTransition(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()

	if err := rn.Navigate(context.Background(), "https://example.com", ActionOptions{}); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := rn.Transition(context.Background(), TransitionOptions{Kind: timeline.TransitionFade, DurationMs: 500}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	rn.Finalize()

	if n := len(rn.Transitions()); n != 0 {
		t.Fatalf("Transitions() = %d markers after Finalize, want 0 (pending marker must be discarded)", n)
	}

	// Finalize should have resumed capture rather than leaving it paused
	// forever; a following PauseCapture/ResumeCapture pair should not hang.
	done2 := make(chan struct{})
	go func() {
		rn.loop.PauseCapture()
		rn.loop.ResumeCapture()
		close(done2)
	}()
	select {
	case <-done2:
	case <-time.After(2 * time.Second):
		t.Fatal("capture loop appears stuck paused after Finalize")
	}
}

func TestCursorSeededToViewportCentre(t *testing.T) {
	rn, _, done := newTestRunner(t)
	defer done()

	if rn.cursorX != 640 || rn.cursorY != 360 {
		t.Errorf("initial cursor = (%d,%d), want (640,360)", rn.cursorX, rn.cursorY)
	}
}
