package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/andrewarrow/scenecast/capture"
	"github.com/andrewarrow/scenecast/compositor"
	"github.com/andrewarrow/scenecast/config"
	"github.com/andrewarrow/scenecast/driver"
	"github.com/andrewarrow/scenecast/driver/noop"
	"github.com/andrewarrow/scenecast/driver/rod"
	"github.com/andrewarrow/scenecast/encode"
	"github.com/andrewarrow/scenecast/narration"
	"github.com/andrewarrow/scenecast/remap"
	"github.com/andrewarrow/scenecast/runner"
	"github.com/andrewarrow/scenecast/scenario"
	"github.com/andrewarrow/scenecast/timeline"
	"github.com/andrewarrow/scenecast/tts"
)

var (
	outFlag          string
	resolutionFlag   string
	noVoiceoverFlag  bool
	noCursorFlag     bool
	reuseAudioFlag   string
	outputRootFlag   string
	allowNoAudioFlag bool
)

var composeCmd = &cobra.Command{
	Use:   "compose <scenario>",
	Short: "Record a registered scenario and render it to a video file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompose,
}

func init() {
	flags := composeCmd.Flags()
	flags.StringVar(&outFlag, "out", "", "output video path (default: <version dir>/render.mp4)")
	flags.StringVar(&resolutionFlag, "resolution", "", "output resolution WIDTHxHEIGHT")
	flags.BoolVar(&noVoiceoverFlag, "no-voiceover", false, "skip TTS narration and render silent")
	flags.BoolVar(&noCursorFlag, "no-cursor", false, "suppress the cursor overlay")
	flags.StringVar(&reuseAudioFlag, "reuse-audio", "", "reuse narration audio from a prior version directory")
	flags.Lookup("reuse-audio").NoOptDefVal = "auto"
	flags.StringVar(&outputRootFlag, "output-root", "", "root directory recordings are written under")
	flags.BoolVar(&allowNoAudioFlag, "allow-no-audio", false, "continue rendering silent if TTS fails instead of aborting")
}

func runCompose(cmd *cobra.Command, args []string) error {
	scenarioName := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if resolutionFlag != "" {
		cfg.Resolution = resolutionFlag
	}
	if outputRootFlag != "" {
		cfg.OutputRoot = outputRootFlag
	}
	cfg.NoVoiceover = cfg.NoVoiceover || noVoiceoverFlag
	cfg.NoCursor = cfg.NoCursor || noCursorFlag

	runID := uuid.New().String()[:8]
	log := config.NewLogger(cfg.LogLevel).With().Str("runID", runID).Str("scenario", scenarioName).Logger()
	width, height, err := config.ParseResolution(cfg.Resolution)
	if err != nil {
		return fail("config", err)
	}

	fn, err := scenario.Get(scenarioName)
	if err != nil {
		return fail("scenario-lookup", err)
	}

	// Resolve any --reuse-audio source before creating this run's version
	// directory, since that creation would otherwise make this run's own
	// (still-empty) directory look like the latest version to reuse from.
	resolvedReuseDir := reuseAudioDir(reuseAudioFlag, cfg.OutputRoot, scenarioName)

	versionDir, err := nextVersionDir(cfg.OutputRoot, scenarioName)
	if err != nil {
		return fail("version-dir", err)
	}
	// Captured frames and synthesized audio are scratch: by default they
	// live under the version directory alongside the persisted timeline and
	// render, but the workDir config key (or SCENECAST_WORKDIR) can point them at faster
	// or ephemeral storage, keyed by this run's id so concurrent runs never
	// collide.
	scratchBase := versionDir
	if cfg.WorkDir != "" {
		scratchBase = filepath.Join(cfg.WorkDir, runID)
	}
	audioDir := filepath.Join(scratchBase, "audio")
	framesDir := filepath.Join(scratchBase, "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return fail("workspace", err)
	}

	var narrationQueue []runner.NarrationSegment
	var preprocessedCount int
	voiceoverDisabled := cfg.NoVoiceover
	if !cfg.NoVoiceover {
		texts, err := collectNarration(ctx, fn)
		if err != nil {
			return fail("narration-collect", err)
		}
		preprocessedCount = len(texts)
		if len(texts) > 0 {
			provider, ttsErr := ttsProvider(cfg)
			if ttsErr == nil {
				var manifest narration.Manifest
				var audioFile string
				manifest, audioFile, ttsErr = narration.Run(ctx, texts, narration.Config{
					Provider:     provider,
					Voice:        cfg.TtsVoice,
					AudioDir:     audioDir,
					ReuseDir:     resolvedReuseDir,
					FfmpegBinary: cfg.FfmpegBinary,
				})
				if ttsErr == nil {
					narrationQueue = narration.ToQueue(manifest, audioFile)
				}
			}
			if ttsErr != nil {
				if !allowNoAudioFlag {
					return fail("tts", ttsErr)
				}
				log.Warn().Err(ttsErr).Msg("tts failed, continuing without audio (--allow-no-audio)")
				voiceoverDisabled = true
			}
		}
	}

	drv, err := launchDriver(ctx, width, height)
	if err != nil {
		return fail("driver-launch", err)
	}
	defer drv.Close()

	loop := capture.NewLoop(drv, cfg.Fps, framesDir, log)
	rn := runner.New(drv, loop, cfg.Fps, width, height, log)
	rn.SetNarrationQueue(narrationQueue)
	if voiceoverDisabled {
		rn.DisableVoiceover()
	}

	recordCtx, cancelRecord := context.WithCancel(ctx)
	loopErrCh := make(chan error, 1)
	go func() { loopErrCh <- loop.Run(recordCtx) }()

	scenarioErr := fn(ctx, rn)
	rn.Finalize()
	cancelRecord()
	<-loopErrCh

	if scenarioErr != nil {
		return fail("scenario", scenarioErr)
	}

	if !voiceoverDisabled {
		if err := narration.CheckDivergence(preprocessedCount, rn.NarrationConsumed()); err != nil {
			return fail("narration-divergence", err)
		}
	}

	tl := timeline.Timeline{
		Version: timeline.SchemaVersion,
		Metadata: timeline.Metadata{
			TestFile:          scenarioName,
			ScenarioFile:      scenarioName,
			RecordedAt:        time.Now().UTC().Format(time.RFC3339),
			Viewport:          timeline.Viewport{Width: width, Height: height},
			Fps:               cfg.Fps,
			FrameManifest:     loop.Manifest(),
			TransitionMarkers: rn.Transitions(),
		},
		Events: rn.Events(),
	}

	validated, err := timeline.Validate(tl)
	if err != nil {
		return fail("schema-validation", err)
	}

	if err := persistTimeline(filepath.Join(versionDir, "timeline.json"), validated); err != nil {
		return fail("timeline-persist", err)
	}

	slides := slidesFromEvents(validated.Events)
	outputEvents := remap.RemapEvents(validated.Events, slides)
	rendered := validated
	rendered.Events = outputEvents

	plans := compositor.BuildPlan(rendered, slides)
	if cfg.NoCursor {
		for i := range plans {
			plans[i].Cursor = compositor.CursorState{}
		}
	}

	renderer := compositor.NewRenderer(framesDir, width, height)
	frameFunc, err := compositor.RenderAll(ctx, renderer, plans, 0)
	if err != nil {
		return fail("render", err)
	}

	outPath := cfg.OutputPath
	if outFlag != "" {
		outPath = outFlag
	} else {
		outPath = filepath.Join(versionDir, "render.mp4")
	}

	enc := encode.New(cfg.FfmpegBinary)
	encodeOpts := encode.Options{
		Binary:     cfg.FfmpegBinary,
		Width:      width,
		Height:     height,
		Fps:        cfg.Fps,
		FrameCount: len(plans),
		Output:     outPath,
	}
	if len(narrationQueue) > 0 && narrationQueue[0].AudioFile != nil {
		encodeOpts.AudioFile = *narrationQueue[0].AudioFile
		encodeOpts.AudioOffsetMs = int64(firstNarrationOutputMs(outputEvents))
	}
	if err := enc.Encode(ctx, encodeOpts, frameFunc); err != nil {
		return fail("encode", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
	return nil
}

func fail(step string, err error) error {
	return fmt.Errorf("%s: %v", step, err)
}

func collectNarration(ctx context.Context, fn scenario.Func) ([]string, error) {
	c := narration.NewCollector()
	if err := fn(ctx, c); err != nil {
		return nil, err
	}
	return c.Texts(), nil
}

func ttsProvider(cfg config.Config) (tts.Provider, error) {
	kind := tts.Kind(cfg.TtsKind)
	ttsCfg := tts.Config{
		GoogleCredentialsFile: cfg.TtsCredentials,
		RestEndpoint:          cfg.TtsEndpoint,
		RestAPIKey:            cfg.TtsAPIKey,
		OfflineBinary:         cfg.TtsOfflineBinary,
		OfflineScriptPath:     cfg.TtsScriptPath,
		FfprobeBinary:         cfg.FfmpegBinary,
	}
	if err := tts.ValidateCredentials(kind, ttsCfg); err != nil {
		return nil, err
	}
	return tts.New(kind, ttsCfg)
}

func launchDriver(ctx context.Context, width, height int) (driver.Driver, error) {
	if os.Getenv("SCENECAST_NOOP_DRIVER") == "1" {
		d := noop.New()
		return d, d.Launch(ctx, driver.LaunchOptions{Viewport: driver.Viewport{Width: width, Height: height}, DPR: 1})
	}
	d := rod.New()
	if err := d.Launch(ctx, driver.LaunchOptions{Viewport: driver.Viewport{Width: width, Height: height}, DPR: 1}); err != nil {
		return nil, err
	}
	return d, nil
}

// slidesFromEvents derives the remap.Slide list the Time Remapper and
// Compositor need from the finalized Scene events, rather than tracking it
// separately during recording (events are the single source of truth once
// capture finishes).
func slidesFromEvents(events []timeline.Event) []remap.Slide {
	var slides []remap.Slide
	for _, ev := range events {
		if ev.Kind != timeline.KindScene || ev.Scene == nil || ev.Scene.Slide == nil {
			continue
		}
		slides = append(slides, remap.Slide{
			SceneTimestampMs: ev.TimestampMs,
			DurationMs:       ev.Scene.Slide.EffectiveDurationMs(),
		})
	}
	return slides
}

func firstNarrationOutputMs(events []timeline.Event) int64 {
	for _, ev := range events {
		if ev.Kind == timeline.KindNarration {
			return int64(ev.TimestampMs)
		}
	}
	return 0
}

func persistTimeline(path string, tl timeline.Timeline) error {
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

var versionDirRe = regexp.MustCompile(`^v(\d+)$`)

// nextVersionDir creates and returns <outputRoot>/<scenarioName>/v<N>, where
// N auto-increments from the largest existing version (spec §6).
func nextVersionDir(outputRoot, scenarioName string) (string, error) {
	base := filepath.Join(outputRoot, scenarioName)
	entries, err := os.ReadDir(base)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	max := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := versionDirRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}

	dir := filepath.Join(base, fmt.Sprintf("v%d", max+1))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// reuseAudioDir resolves --reuse-audio's value: an explicit directory, or
// "auto" to reuse the immediately preceding version's audio directory.
func reuseAudioDir(flagValue, outputRoot, scenarioName string) string {
	if flagValue == "" {
		return ""
	}
	if flagValue != "auto" {
		return flagValue
	}
	base := filepath.Join(outputRoot, scenarioName)
	entries, err := os.ReadDir(base)
	if err != nil {
		return ""
	}
	max := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m := versionDirRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	if max == 0 {
		return ""
	}
	return filepath.Join(base, fmt.Sprintf("v%d", max), "audio")
}
