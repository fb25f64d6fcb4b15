package encode

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DurationMs probes an audio file's duration via ffprobe, the same
// exec.Command("ffprobe", ...) invocation the teacher uses to measure
// synthesised narration clips. It falls back to a WAV-header estimate (§6:
// "fallback allowed via known PCM parameters and file size") when ffprobe
// itself is unavailable or fails.
func DurationMs(ctx context.Context, binary, audioFile string) (int64, error) {
	if binary == "" {
		binary = "ffprobe"
	}
	cmd := exec.CommandContext(ctx, binary, "-v", "quiet",
		"-show_entries", "format=duration", "-of", "csv=p=0", audioFile)
	out, err := cmd.Output()
	if err == nil {
		if seconds, perr := strconv.ParseFloat(strings.TrimSpace(string(out)), 64); perr == nil {
			return int64(seconds * 1000), nil
		}
	}

	ms, werr := wavDurationMs(audioFile)
	if werr != nil {
		return 0, fmt.Errorf("probing duration of %s: ffprobe failed (%v), wav fallback failed (%v)", audioFile, err, werr)
	}
	return ms, nil
}

// wavHeader is the subset of a canonical 44-byte PCM WAV header needed to
// estimate duration from file size alone, adapted from the teacher's own
// manual RIFF/WAVE header parser.
type wavHeader struct {
	numChannels   uint16
	sampleRate    uint32
	blockAlign    uint16
	bitsPerSample uint16
	dataSize      uint32
}

func wavDurationMs(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	header := make([]byte, 44)
	if _, err := f.Read(header); err != nil {
		return 0, fmt.Errorf("reading wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, fmt.Errorf("%s is not a RIFF/WAVE file", path)
	}

	h := wavHeader{
		numChannels:   binary.LittleEndian.Uint16(header[22:24]),
		sampleRate:    binary.LittleEndian.Uint32(header[24:28]),
		blockAlign:    binary.LittleEndian.Uint16(header[32:34]),
		bitsPerSample: binary.LittleEndian.Uint16(header[34:36]),
		dataSize:      binary.LittleEndian.Uint32(header[40:44]),
	}
	if h.blockAlign == 0 || h.sampleRate == 0 {
		return 0, fmt.Errorf("%s: malformed wav header (blockAlign=%d sampleRate=%d)", path, h.blockAlign, h.sampleRate)
	}

	totalSamples := h.dataSize / uint32(h.blockAlign)
	seconds := float64(totalSamples) / float64(h.sampleRate)
	return int64(seconds * 1000), nil
}
