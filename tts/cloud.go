package tts

import (
	"context"
	"fmt"
	"os"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/andrewarrow/scenecast/encode"
)

// cloudProvider synthesises narration via Google Cloud Text-to-Speech,
// grounded on the same SDK wired up for a speech pipeline elsewhere in the
// retrieval pack.
type cloudProvider struct {
	credentialsFile string
	ffprobeBinary   string
}

func newCloudProvider(cfg Config) (Provider, error) {
	if cfg.GoogleCredentialsFile == "" {
		return nil, fmt.Errorf("tts: cloud provider requires GoogleCredentialsFile")
	}
	return &cloudProvider{credentialsFile: cfg.GoogleCredentialsFile, ffprobeBinary: cfg.FfprobeBinary}, nil
}

func (p *cloudProvider) Name() string { return "google-cloud-texttospeech" }

func (p *cloudProvider) Synthesize(ctx context.Context, text, outputPath string, opts Options) (int64, error) {
	client, err := texttospeech.NewClient(ctx, withCredentialsFile(p.credentialsFile)...)
	if err != nil {
		return 0, fmt.Errorf("tts(cloud): creating client: %w", err)
	}
	defer client.Close()

	voice := opts.Voice
	if voice == "" {
		voice = "en-US-Neural2-C"
	}
	lang := opts.LanguageCode
	if lang == "" {
		lang = "en-US"
	}
	rate := opts.SpeakingRate
	if rate == 0 {
		rate = 1.0
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_LINEAR16,
			SpeakingRate:  rate,
		},
	}

	resp, err := client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("tts(cloud): synthesizing: %w", err)
	}
	if err := os.WriteFile(outputPath, resp.AudioContent, 0o644); err != nil {
		return 0, fmt.Errorf("tts(cloud): writing %s: %w", outputPath, err)
	}

	durationMs, err := encode.DurationMs(ctx, p.ffprobeBinary, outputPath)
	if err != nil {
		return 0, fmt.Errorf("tts(cloud): probing duration: %w", err)
	}
	return durationMs, nil
}
