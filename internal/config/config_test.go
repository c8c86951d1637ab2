package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at a fresh temp dir so no
// user config or .env file leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	for _, key := range []string{
		"QUIETCUT_THRESHOLD",
		"QUIETCUT_MIN_SILENCE",
		"QUIETCUT_MIN_PAUSE",
		"QUIETCUT_MAX_PAUSE",
		"QUIETCUT_VIDEO_CODEC",
		"QUIETCUT_AUDIO_CODEC",
		"QUIETCUT_PRESET",
		"QUIETCUT_THREADS",
		"QUIETCUT_CONCURRENCY",
		"QUIETCUT_COPY_WHEN_EMPTY",
		"QUIETCUT_KEEP_TEMP",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, path, exists, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, path, filepath.Join(".config", "quietcut", "config.toml"))

	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, -30.0, cfg.Detect.Threshold)
	assert.Equal(t, 2.0, cfg.Detect.MinSilence)
	assert.Equal(t, 0.5, cfg.Rescale.MinPause)
	assert.Equal(t, 20.0, cfg.Rescale.MaxPause)
	assert.Equal(t, "libx264", cfg.Export.VideoCodec)
	assert.Equal(t, "ultrafast", cfg.Export.Preset)
}

func TestLoad_TOMLFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	content := `
[detect]
threshold = -42.5
min_silence = 1.5

[rescale]
min_pause = 0.75
max_pause = 8

[export]
preset = "veryfast"
concurrency = 2
copy_when_empty = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, resolved, exists, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, path, resolved)

	assert.Equal(t, -42.5, cfg.Detect.Threshold)
	assert.Equal(t, 1.5, cfg.Detect.MinSilence)
	assert.Equal(t, 0.75, cfg.Rescale.MinPause)
	assert.Equal(t, 8.0, cfg.Rescale.MaxPause)
	assert.Equal(t, "veryfast", cfg.Export.Preset)
	assert.Equal(t, "libx264", cfg.Export.VideoCodec)
	assert.Equal(t, 2, cfg.Export.Concurrency)
	assert.True(t, cfg.Export.CopyWhenEmpty)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := isolate(t)
	content := "[rescale]\nmax_pause = 12\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quietcut.toml"), []byte(content), 0o644))

	cfg, _, exists, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 12.0, cfg.Rescale.MaxPause)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rescale]\nmax_pause = 8\n"), 0o644))
	t.Setenv("QUIETCUT_MAX_PAUSE", "14")
	t.Setenv("QUIETCUT_CONCURRENCY", "6")

	cfg, _, _, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 14.0, cfg.Rescale.MaxPause)
	assert.Equal(t, 6, cfg.Export.Concurrency)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, ".env"),
		[]byte("QUIETCUT_THRESHOLD=-55\nQUIETCUT_PRESET=medium\n"),
		0o644,
	))
	t.Cleanup(func() {
		os.Unsetenv("QUIETCUT_THRESHOLD")
		os.Unsetenv("QUIETCUT_PRESET")
	})

	cfg, _, _, err := Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, -55.0, cfg.Detect.Threshold)
	assert.Equal(t, "medium", cfg.Export.Preset)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, _, _, err := Load(context.Background(), filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rescale]\nmax_paws = 3\n"), 0o644))

	_, _, _, err := Load(context.Background(), path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"threshold too high", func(c *Config) { c.Detect.Threshold = 3 }, "detect.threshold must be <= 0"},
		{"threshold too low", func(c *Config) { c.Detect.Threshold = -101 }, "detect.threshold must be >= -100"},
		{"short detector duration", func(c *Config) { c.Detect.MinSilence = 0.5 }, "detect.minsilence must be >= 1"},
		{"min pause floor", func(c *Config) { c.Rescale.MinPause = 0.25 }, "rescale.minpause must be >= 0.5"},
		{"max below min", func(c *Config) { c.Rescale.MaxPause = 0.5 }, "rescale.maxpause must be greater than minpause"},
		{"no codec", func(c *Config) { c.Export.VideoCodec = "" }, "export.videocodec is required"},
		{"zero workers", func(c *Config) { c.Export.Concurrency = 0 }, "export.concurrency must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRescaleConfig(t *testing.T) {
	cfg := Default()
	rc, err := cfg.RescaleConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.5, rc.MinDuration)
	assert.Equal(t, 20.0, rc.MaxDuration)
}
