// Package config loads quietcut settings from defaults, an optional TOML
// file, a .env file and QUIETCUT_* environment variables, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/sethvargo/go-envconfig"

	"github.com/mgpai22/quietcut/internal/silence"
)

// Detect configures the ffmpeg silencedetect pass.
type Detect struct {
	// noise floor in dB below which audio counts as silence
	Threshold float64 `toml:"threshold" env:"QUIETCUT_THRESHOLD, overwrite" validate:"gte=-100,lte=0"`
	// shortest silence the detector reports, in seconds
	MinSilence float64 `toml:"min_silence" env:"QUIETCUT_MIN_SILENCE, overwrite" validate:"gte=1"`
}

// Rescale configures how long pauses are shortened.
type Rescale struct {
	MinPause float64 `toml:"min_pause" env:"QUIETCUT_MIN_PAUSE, overwrite" validate:"gte=0.5"`
	MaxPause float64 `toml:"max_pause" env:"QUIETCUT_MAX_PAUSE, overwrite" validate:"gtfield=MinPause"`
}

// Export configures clip extraction and the final encode.
type Export struct {
	VideoCodec    string `toml:"video_codec" env:"QUIETCUT_VIDEO_CODEC, overwrite" validate:"required"`
	AudioCodec    string `toml:"audio_codec" env:"QUIETCUT_AUDIO_CODEC, overwrite" validate:"required"`
	Preset        string `toml:"preset" env:"QUIETCUT_PRESET, overwrite" validate:"required"`
	Threads       int    `toml:"threads" env:"QUIETCUT_THREADS, overwrite" validate:"gte=0"`
	Concurrency   int    `toml:"concurrency" env:"QUIETCUT_CONCURRENCY, overwrite" validate:"gte=1,lte=64"`
	CopyWhenEmpty bool   `toml:"copy_when_empty" env:"QUIETCUT_COPY_WHEN_EMPTY, overwrite"`
	KeepTemp      bool   `toml:"keep_temp" env:"QUIETCUT_KEEP_TEMP, overwrite"`
}

type Config struct {
	Detect  Detect  `toml:"detect"`
	Rescale Rescale `toml:"rescale"`
	Export  Export  `toml:"export"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Detect: Detect{
			Threshold:  -30,
			MinSilence: 2.0,
		},
		Rescale: Rescale{
			MinPause: silence.DefaultMinDuration,
			MaxPause: silence.DefaultMaxDuration,
		},
		Export: Export{
			VideoCodec:  "libx264",
			AudioCodec:  "aac",
			Preset:      "ultrafast",
			Concurrency: 4,
		},
	}
}

// DefaultConfigPath returns ~/.config/quietcut/config.toml.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/quietcut/config.toml")
}

// Load builds the effective configuration. An explicit path must exist;
// without one the default locations are tried. The resolved path is returned
// along with whether a file was read.
func Load(ctx context.Context, path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, "", false, err
	}

	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, "", false, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	name := strings.ToLower(strings.TrimPrefix(fe.Namespace(), "Config."))
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", name, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", name, fe.Param(), fe.Value())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s (got %v)", name, strings.ToLower(fe.Param()), fe.Value())
	default:
		return fe.Error()
	}
}

// RescaleConfig converts the rescale section for the silence planner.
func (c *Config) RescaleConfig() (silence.RescaleConfig, error) {
	return silence.NewRescaleConfig(c.Rescale.MinPause, c.Rescale.MaxPause)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("quietcut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
