// Package config loads and validates the compose pipeline's configuration:
// defaults, an optional config file, and environment/flag overrides, all
// merged through viper the way the rest of this codebase's CLI ecosystem
// does it.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved set of knobs the compose pipeline needs,
// after defaults, config file, env vars, and flags have all been merged.
type Config struct {
	Fps              int
	Resolution       string
	OutputPath       string
	NoVoiceover      bool
	NoCursor         bool
	FfmpegBinary     string
	TtsKind          string
	TtsVoice         string
	TtsCredentials   string
	TtsEndpoint      string
	TtsAPIKey        string
	TtsOfflineBinary string
	TtsScriptPath    string
	LogLevel         string
	WorkDir          string
	OutputRoot       string
}

const envPrefix = "SCENECAST"

// Defaults registers every config key's default value before any file,
// env, or flag source is layered on top.
func Defaults(v *viper.Viper) {
	v.SetDefault("fps", 30)
	v.SetDefault("resolution", "1920x1080")
	v.SetDefault("output", "out.mp4")
	v.SetDefault("noVoiceover", false)
	v.SetDefault("noCursor", false)
	v.SetDefault("ffmpegBinary", "ffmpeg")
	v.SetDefault("tts.kind", "offline")
	v.SetDefault("tts.voice", "")
	v.SetDefault("tts.credentials", "")
	v.SetDefault("tts.endpoint", "")
	v.SetDefault("tts.apiKey", "")
	v.SetDefault("tts.offlineBinary", "chatterbox")
	v.SetDefault("tts.scriptPath", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("workDir", "")
	v.SetDefault("outputRoot", "recordings")
}

// Load builds a viper instance from, in increasing priority: compiled-in
// defaults, an optional config file (if cfgFile is non-empty, or a
// "scenecast.yaml" discovered on the search path), SCENECAST_-prefixed
// environment variables, and the command's own flags.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	Defaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("scenecast")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			return Config{}, fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	cfg := Config{
		Fps:              v.GetInt("fps"),
		Resolution:       v.GetString("resolution"),
		OutputPath:       v.GetString("output"),
		NoVoiceover:      v.GetBool("noVoiceover"),
		NoCursor:         v.GetBool("noCursor"),
		FfmpegBinary:     v.GetString("ffmpegBinary"),
		TtsKind:          v.GetString("tts.kind"),
		TtsVoice:         v.GetString("tts.voice"),
		TtsCredentials:   v.GetString("tts.credentials"),
		TtsEndpoint:      v.GetString("tts.endpoint"),
		TtsAPIKey:        v.GetString("tts.apiKey"),
		TtsOfflineBinary: v.GetString("tts.offlineBinary"),
		TtsScriptPath:    v.GetString("tts.scriptPath"),
		LogLevel:         v.GetString("logLevel"),
		WorkDir:          v.GetString("workDir"),
		OutputRoot:       v.GetString("outputRoot"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Fps <= 0 {
		return fmt.Errorf("config: fps must be positive, got %d", c.Fps)
	}
	w, h, err := ParseResolution(c.Resolution)
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("config: resolution must be positive, got %dx%d", w, h)
	}
	return nil
}

// ParseResolution parses a "WIDTHxHEIGHT" string as used by --resolution.
func ParseResolution(s string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("config: invalid resolution %q, expected WIDTHxHEIGHT", s)
	}
	if _, err := fmt.Sscanf(parts[0], "%d", &width); err != nil {
		return 0, 0, fmt.Errorf("config: invalid resolution width %q", parts[0])
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &height); err != nil {
		return 0, 0, fmt.Errorf("config: invalid resolution height %q", parts[1])
	}
	return width, height, nil
}

// NewLogger builds the zerolog logger used throughout the pipeline, at the
// configured level, writing to stderr so stdout stays free for any piped
// output.
func NewLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(lvl).
		With().Timestamp().Logger()
}
