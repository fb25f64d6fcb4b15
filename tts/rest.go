package tts

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-resty/resty/v2"

	"github.com/andrewarrow/scenecast/encode"
)

// restProvider models an alternative cloud TTS vendor that only exposes a
// generic HTTP API rather than a first-party Go SDK — grounded on the
// go-resty client used for exactly this shape of integration in the
// retrieval pack.
type restProvider struct {
	client        *resty.Client
	ffprobeBinary string
}

func newRestProvider(cfg Config) (Provider, error) {
	if cfg.RestEndpoint == "" {
		return nil, fmt.Errorf("tts: rest provider requires RestEndpoint")
	}
	if cfg.RestAPIKey == "" {
		return nil, fmt.Errorf("tts: rest provider requires RestAPIKey")
	}
	client := resty.New().
		SetBaseURL(cfg.RestEndpoint).
		SetHeader("Authorization", "Bearer "+cfg.RestAPIKey).
		SetRetryCount(2)
	return &restProvider{client: client, ffprobeBinary: cfg.FfprobeBinary}, nil
}

func (p *restProvider) Name() string { return "rest-tts" }

type restSynthesizeRequest struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice,omitempty"`
	Locale string  `json:"locale,omitempty"`
	Rate   float64 `json:"rate,omitempty"`
}

func (p *restProvider) Synthesize(ctx context.Context, text, outputPath string, opts Options) (int64, error) {
	rate := opts.SpeakingRate
	if rate == 0 {
		rate = 1.0
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(restSynthesizeRequest{
			Text:   text,
			Voice:  opts.Voice,
			Locale: opts.LanguageCode,
			Rate:   rate,
		}).
		SetDoNotParseResponse(true).
		Post("/v1/synthesize")
	if err != nil {
		return 0, fmt.Errorf("tts(rest): request failed: %w", err)
	}
	defer resp.RawBody().Close()

	if resp.StatusCode() >= 300 {
		return 0, fmt.Errorf("tts(rest): unexpected status %d", resp.StatusCode())
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return 0, fmt.Errorf("tts(rest): creating %s: %w", outputPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.RawBody()); err != nil {
		return 0, fmt.Errorf("tts(rest): writing %s: %w", outputPath, err)
	}

	durationMs, err := encode.DurationMs(ctx, p.ffprobeBinary, outputPath)
	if err != nil {
		return 0, fmt.Errorf("tts(rest): probing duration: %w", err)
	}
	return durationMs, nil
}
