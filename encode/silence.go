package encode

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Silence is a detected silent interval in milliseconds.
type Silence struct {
	StartMs int64
	EndMs   int64
}

func (s Silence) DurationMs() int64 { return s.EndMs - s.StartMs }

// DetectSilences runs ffmpeg's silencedetect filter over audioFile and
// parses the silence_start/silence_end pairs it logs to stderr, rather than
// hand-rolling PCM amplitude analysis a second time alongside the encoder.
func DetectSilences(ctx context.Context, binary, audioFile string, thresholdDb float64, minDurationSec float64) ([]Silence, error) {
	b := NewCommandBuilder(binary).HideBanner()
	b.Input(audioFile)
	b.VideoFilter(fmt.Sprintf("silencedetect=noise=%gdB:d=%g", thresholdDb, minDurationSec))
	b.OutputArgs("-map", "0:a", "-f", "null")
	b.Output("-")
	cmd := b.Build()
	// silencedetect is an audio filter; ffmpeg accepts -af for it directly
	// on audio-only input rather than -vf.
	cmd.Args = replaceVfWithAf(cmd.Args)

	out, _ := cmd.RunCapture(ctx)
	return parseSilenceLog(out)
}

func replaceVfWithAf(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, a := range out {
		if a == "-vf" {
			out[i] = "-af"
		}
	}
	return out
}

func parseSilenceLog(log string) ([]Silence, error) {
	var silences []Silence
	var pendingStart *int64

	scanner := bufio.NewScanner(strings.NewReader(log))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.Contains(line, "silence_start:"):
			v, err := floatField(line, "silence_start:")
			if err != nil {
				continue
			}
			ms := int64(v * 1000)
			pendingStart = &ms
		case strings.Contains(line, "silence_end:"):
			v, err := floatField(line, "silence_end:")
			if err != nil {
				continue
			}
			endMs := int64(v * 1000)
			if pendingStart != nil {
				silences = append(silences, Silence{StartMs: *pendingStart, EndMs: endMs})
				pendingStart = nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parsing silencedetect output: %w", err)
	}
	return silences, nil
}

func floatField(line, marker string) (float64, error) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, fmt.Errorf("marker %q not found", marker)
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0, fmt.Errorf("no value after %q", marker)
	}
	return strconv.ParseFloat(strings.TrimSuffix(fields[0], "|"), 64)
}
