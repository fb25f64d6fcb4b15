package tts

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/andrewarrow/scenecast/encode"
)

// offlineProvider invokes a local synthesizer binary as a subprocess,
// adapted from the teacher's own callChatterbox helper: same shape (binary
// path + script path + text + output file as argv), generalized so the
// binary and script paths are configured rather than hardcoded to one
// developer's machine.
type offlineProvider struct {
	binary        string
	scriptPath    string
	ffprobeBinary string
}

func newOfflineProvider(cfg Config) (Provider, error) {
	if cfg.OfflineBinary == "" {
		return nil, fmt.Errorf("tts: offline provider requires OfflineBinary")
	}
	return &offlineProvider{
		binary:        cfg.OfflineBinary,
		scriptPath:    cfg.OfflineScriptPath,
		ffprobeBinary: cfg.FfprobeBinary,
	}, nil
}

func (p *offlineProvider) Name() string { return "offline-local-synth" }

func (p *offlineProvider) Synthesize(ctx context.Context, text, outputPath string, opts Options) (int64, error) {
	var args []string
	if p.scriptPath != "" {
		args = append(args, p.scriptPath)
	}
	args = append(args, text, outputPath)
	if opts.Voice != "" {
		args = append(args, "--voice", opts.Voice)
	}

	cmd := exec.CommandContext(ctx, p.binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("tts(offline): %s failed: %w: %s", p.binary, err, out)
	}

	durationMs, err := encode.DurationMs(ctx, p.ffprobeBinary, outputPath)
	if err != nil {
		return 0, fmt.Errorf("tts(offline): probing duration: %w", err)
	}
	return durationMs, nil
}
