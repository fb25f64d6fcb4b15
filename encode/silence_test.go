package encode

import "testing"

const sampleSilenceLog = `
[silencedetect @ 0x1] silence_start: 1.8
[silencedetect @ 0x1] silence_end: 2.1 | silence_duration: 0.3
[silencedetect @ 0x1] silence_start: 3.9
[silencedetect @ 0x1] silence_end: 4.2 | silence_duration: 0.3
`

func TestParseSilenceLog(t *testing.T) {
	silences, err := parseSilenceLog(sampleSilenceLog)
	if err != nil {
		t.Fatalf("parseSilenceLog: %v", err)
	}
	if len(silences) != 2 {
		t.Fatalf("expected 2 silences, got %d: %+v", len(silences), silences)
	}
	if silences[0].StartMs != 1800 || silences[0].EndMs != 2100 {
		t.Errorf("silence[0] = %+v, want {1800 2100}", silences[0])
	}
	if silences[1].StartMs != 3900 || silences[1].EndMs != 4200 {
		t.Errorf("silence[1] = %+v, want {3900 4200}", silences[1])
	}
}

func TestParseSilenceLogIgnoresUnmatchedStart(t *testing.T) {
	log := "[silencedetect] silence_start: 5.0\n"
	silences, err := parseSilenceLog(log)
	if err != nil {
		t.Fatalf("parseSilenceLog: %v", err)
	}
	if len(silences) != 0 {
		t.Errorf("expected no completed silences, got %+v", silences)
	}
}

func TestReplaceVfWithAf(t *testing.T) {
	args := []string{"-loglevel", "error", "-i", "in.wav", "-vf", "silencedetect=noise=-30dB:d=0.3", "-f", "null", "-"}
	got := replaceVfWithAf(args)
	if got[4] != "-af" {
		t.Errorf("expected -vf replaced with -af, got %q", got[4])
	}
	if args[4] != "-vf" {
		t.Errorf("replaceVfWithAf mutated its input slice")
	}
}
