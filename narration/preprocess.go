package narration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/andrewarrow/scenecast/encode"
	"github.com/andrewarrow/scenecast/errs"
	"github.com/andrewarrow/scenecast/runner"
	"github.com/andrewarrow/scenecast/tts"
)

// separator is the pause-inducing join between concatenated narration
// texts: two newlines, an ellipsis, two newlines (spec §4.4 step 1).
const separator = "\n\n...\n\n"

// Segment is one narration-text window within the single concatenated
// audio file.
type Segment struct {
	Index      int    `json:"index"`
	Text       string `json:"text"`
	StartMs    int64  `json:"startMs"`
	EndMs      int64  `json:"endMs"`
	DurationMs int64  `json:"durationMs"`
}

// Manifest is the persisted record of one preprocessing pass.
type Manifest struct {
	Provider         string    `json:"provider"`
	Voice            string    `json:"voice"`
	FullScript       string    `json:"fullScript"`
	ScriptHash       string    `json:"scriptHash"`
	TotalDurationMs  int64     `json:"totalDurationMs"`
	SilencesDetected int       `json:"silencesDetected"`
	Segments         []Segment `json:"segments"`
}

// Config configures one preprocessing run.
type Config struct {
	Provider       tts.Provider
	Voice          string
	AudioDir       string
	ReuseDir       string
	FfmpegBinary   string
	ThresholdDb    float64
	MinDurationSec float64
}

const (
	defaultThresholdDb    = -30.0
	defaultMinDurationSec = 0.3
)

// Run executes the full preprocessing pipeline for texts (spec §4.4 steps
// 1-7): build the script, reuse or synthesize its audio, detect silences,
// select the N-1 longest as segment boundaries (falling back to
// proportional splitting if too few were found), and persist a manifest.
func Run(ctx context.Context, texts []string, cfg Config) (Manifest, string, error) {
	if len(texts) == 0 {
		return Manifest{}, "", errs.New(errs.InvalidArgument, "narration preprocessing requires at least one text")
	}

	script := strings.Join(texts, separator)
	hash := sha256.Sum256([]byte(script))
	hashHex := hex.EncodeToString(hash[:])

	threshold := cfg.ThresholdDb
	if threshold == 0 {
		threshold = defaultThresholdDb
	}
	minDur := cfg.MinDurationSec
	if minDur == 0 {
		minDur = defaultMinDurationSec
	}

	audioPath := filepath.Join(cfg.AudioDir, "narration-full.wav")
	manifestPath := filepath.Join(cfg.AudioDir, "narration-manifest.json")

	if m, ok := tryReuse(hashHex, cfg.AudioDir, audioPath, manifestPath); ok {
		return m, audioPath, nil
	}
	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		return Manifest{}, "", errs.Wrap(errs.TtsFailure, err, "creating audio directory")
	}

	if cfg.ReuseDir != "" {
		reuseAudio := filepath.Join(cfg.ReuseDir, "narration-full.wav")
		reuseManifest := filepath.Join(cfg.ReuseDir, "narration-manifest.json")
		if m, ok := tryReuse(hashHex, cfg.ReuseDir, reuseAudio, reuseManifest); ok {
			if err := copyFile(reuseAudio, audioPath); err == nil {
				return m, audioPath, nil
			}
		}
	}

	totalMs, err := cfg.Provider.Synthesize(ctx, script, audioPath, tts.Options{Voice: cfg.Voice})
	if err != nil {
		return Manifest{}, "", errs.Wrap(errs.TtsFailure, err, "synthesizing narration script")
	}

	silences, err := encode.DetectSilences(ctx, cfg.FfmpegBinary, audioPath, threshold, minDur)
	if err != nil {
		return Manifest{}, "", errs.Wrap(errs.TtsFailure, err, "detecting silences in narration audio")
	}

	segments := alignSegments(texts, silences, totalMs)

	m := Manifest{
		Provider:         cfg.Provider.Name(),
		Voice:            cfg.Voice,
		FullScript:       script,
		ScriptHash:       hashHex,
		TotalDurationMs:  totalMs,
		SilencesDetected: len(silences),
		Segments:         segments,
	}
	if err := persist(manifestPath, m); err != nil {
		return Manifest{}, "", errs.Wrap(errs.TtsFailure, err, "persisting narration manifest")
	}
	return m, audioPath, nil
}

// alignSegments implements spec §4.4 steps 5-6: select the N-1 longest
// silences, re-sort by start time, use midpoints as boundaries; fall back
// to proportional splitting by text length if too few silences were found.
func alignSegments(texts []string, silences []encode.Silence, totalMs int64) []Segment {
	n := len(texts)
	if n == 1 {
		return []Segment{{Index: 0, Text: texts[0], StartMs: 0, EndMs: totalMs, DurationMs: totalMs}}
	}

	need := n - 1
	if len(silences) < need {
		return proportionalSegments(texts, totalMs)
	}

	longest := append([]encode.Silence(nil), silences...)
	sort.Slice(longest, func(i, j int) bool { return longest[i].DurationMs() > longest[j].DurationMs() })
	longest = longest[:need]
	sort.Slice(longest, func(i, j int) bool { return longest[i].StartMs < longest[j].StartMs })

	boundaries := make([]int64, need)
	for i, s := range longest {
		boundaries[i] = (s.StartMs + s.EndMs) / 2
	}

	segments := make([]Segment, 0, n)
	prev := int64(0)
	for i := 0; i < n; i++ {
		end := totalMs
		if i < need {
			end = boundaries[i]
		}
		segments = append(segments, Segment{Index: i, Text: texts[i], StartMs: prev, EndMs: end, DurationMs: end - prev})
		prev = end
	}
	return segments
}

func proportionalSegments(texts []string, totalMs int64) []Segment {
	totalLen := 0
	for _, t := range texts {
		totalLen += len(t)
	}
	if totalLen == 0 {
		totalLen = len(texts)
	}

	segments := make([]Segment, 0, len(texts))
	prev := int64(0)
	for i, t := range texts {
		var end int64
		if i == len(texts)-1 {
			end = totalMs
		} else {
			share := float64(len(t)) / float64(totalLen)
			end = prev + int64(share*float64(totalMs))
		}
		segments = append(segments, Segment{Index: i, Text: t, StartMs: prev, EndMs: end, DurationMs: end - prev})
		prev = end
	}
	return segments
}

// ToQueue converts a manifest's segments into the runner's narration queue:
// only the first segment carries an audio file reference.
func ToQueue(m Manifest, audioFile string) []runner.NarrationSegment {
	queue := make([]runner.NarrationSegment, len(m.Segments))
	for i, seg := range m.Segments {
		q := runner.NarrationSegment{Text: seg.Text, DurationMs: seg.DurationMs}
		if i == 0 {
			file := audioFile
			q.AudioFile = &file
		}
		queue[i] = q
	}
	return queue
}

func tryReuse(hashHex, dir, audioPath, manifestPath string) (Manifest, bool) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return Manifest{}, false
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, false
	}
	if m.ScriptHash != hashHex {
		return Manifest{}, false
	}
	if _, err := os.Stat(audioPath); err != nil {
		return Manifest{}, false
	}
	return m, true
}

func persist(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
