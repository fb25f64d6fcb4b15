package config

import "testing"

func TestParseResolution(t *testing.T) {
	w, h, err := ParseResolution("1920x1080")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 1920 || h != 1080 {
		t.Errorf("got %dx%d, want 1920x1080", w, h)
	}
}

func TestParseResolutionUppercase(t *testing.T) {
	w, h, err := ParseResolution("1280X720")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 1280 || h != 720 {
		t.Errorf("got %dx%d, want 1280x720", w, h)
	}
}

func TestParseResolutionRejectsMalformed(t *testing.T) {
	for _, s := range []string{"1920", "1920x", "axb", ""} {
		if _, _, err := ParseResolution(s); err == nil {
			t.Errorf("ParseResolution(%q) should have failed", s)
		}
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Fps != 30 {
		t.Errorf("default fps = %d, want 30", cfg.Fps)
	}
	if cfg.Resolution != "1920x1080" {
		t.Errorf("default resolution = %q", cfg.Resolution)
	}
	if cfg.TtsKind != "offline" {
		t.Errorf("default tts kind = %q, want offline", cfg.TtsKind)
	}
}
