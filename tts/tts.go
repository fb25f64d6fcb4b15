// Package tts defines the TTS provider contract (§6) and its backends: a
// first-party cloud SDK, a generic REST cloud API, and an offline/local
// synthesizer invoked as a subprocess.
package tts

import (
	"context"
	"fmt"
)

// Options customises one synthesize call. Which fields a backend honours
// varies; unset fields fall back to the backend's own default voice/style.
type Options struct {
	Voice            string
	LanguageCode     string
	StyleInstruction string
	SpeakingRate     float64
}

// Provider is the minimal synthesize contract every TTS backend satisfies.
type Provider interface {
	// Synthesize turns text into an audio file at outputPath and reports its
	// duration. Implementations probe the duration themselves (via
	// encode.DurationMs) since a provider's own API response does not always
	// carry one.
	Synthesize(ctx context.Context, text, outputPath string, opts Options) (durationMs int64, err error)
	// Name identifies the backend for logging and manifest persistence.
	Name() string
}

// Kind selects which Provider backend a Config resolves to.
type Kind string

const (
	KindCloud   Kind = "cloud"
	KindRest    Kind = "rest"
	KindOffline Kind = "offline"
)

// ValidateCredentials checks that a backend has what it needs to run before
// the narration preprocessor starts synthesising, per §6 ("API credentials
// for a cloud TTS are... validated before TTS starts"). It is a config-only
// check: it does not perform a network call.
func ValidateCredentials(kind Kind, cfg Config) error {
	switch kind {
	case KindCloud:
		if cfg.GoogleCredentialsFile == "" {
			return fmt.Errorf("tts: cloud provider selected but googleCredentialsFile is not configured")
		}
	case KindRest:
		if cfg.RestEndpoint == "" {
			return fmt.Errorf("tts: rest provider selected but restEndpoint is not configured")
		}
		if cfg.RestAPIKey == "" {
			return fmt.Errorf("tts: rest provider selected but restApiKey is not configured")
		}
	case KindOffline:
		if cfg.OfflineBinary == "" {
			return fmt.Errorf("tts: offline provider selected but offlineBinary is not configured")
		}
	default:
		return fmt.Errorf("tts: unknown provider kind %q", kind)
	}
	return nil
}

// Config carries every backend's settings; only the fields for the selected
// Kind need be populated.
type Config struct {
	GoogleCredentialsFile string
	RestEndpoint          string
	RestAPIKey            string
	OfflineBinary         string
	OfflineScriptPath     string
	FfprobeBinary         string
}

// New constructs the Provider for kind from cfg.
func New(kind Kind, cfg Config) (Provider, error) {
	switch kind {
	case KindCloud:
		return newCloudProvider(cfg)
	case KindRest:
		return newRestProvider(cfg)
	case KindOffline:
		return newOfflineProvider(cfg)
	default:
		return nil, fmt.Errorf("tts: unknown provider kind %q", kind)
	}
}
