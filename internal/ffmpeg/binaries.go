// Package ffmpeg locates the ffmpeg and ffprobe executables, fetching a
// static build into the user cache when neither the environment nor PATH
// provides them.
package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	releaseVersion = "6.1"
	releaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	EnvFFmpegPath  = "QUIETCUT_FFMPEG_PATH"
	EnvFFprobePath = "QUIETCUT_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves both binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = defaultLocator().locate()
	})
	return ensurePath, ensureErr
}

func FFmpegPath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// locator holds everything resolution depends on so tests can fake it.
type locator struct {
	goos     string
	goarch   string
	getenv   func(string) string
	lookPath func(string) (string, error)
	cacheDir string
	fetch    func(asset, installDir string) error
}

func defaultLocator() *locator {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return &locator{
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		cacheDir: cacheDir,
		fetch:    installAsset,
	}
}

func (l *locator) locate() (BinaryPaths, error) {
	paths := BinaryPaths{
		FFmpeg:  l.getenv(EnvFFmpegPath),
		FFprobe: l.getenv(EnvFFprobePath),
	}

	if paths.FFmpeg == "" {
		if found, err := l.lookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := l.lookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	asset, err := assetForPlatform(l.goos, l.goarch)
	if err != nil {
		return BinaryPaths{}, err
	}

	installDir := filepath.Join(l.cacheDir, "quietcut", "ffmpeg", releaseVersion, l.goos, l.goarch)
	suffix := executableSuffix(l.goos)
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+suffix),
		FFprobe: filepath.Join(installDir, "ffprobe"+suffix),
	}
	if cached.exist() {
		return cached, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}
	if err := l.fetch(asset, installDir); err != nil {
		return BinaryPaths{}, err
	}
	if !cached.exist() {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}

	if l.goos != "windows" {
		for _, p := range []string{cached.FFmpeg, cached.FFprobe} {
			if err := os.Chmod(p, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", filepath.Base(p), err)
			}
		}
	}

	return cached, nil
}

func (p BinaryPaths) exist() bool {
	return fileExists(p.FFmpeg) && fileExists(p.FFprobe)
}

func assetForPlatform(goos, goarch string) (string, error) {
	var platform string
	switch goos + "/" + goarch {
	case "linux/amd64":
		platform = "linux-64"
	case "linux/arm64":
		platform = "linux-arm-64"
	case "darwin/amd64":
		platform = "macos-64"
	case "windows/amd64":
		platform = "win-64"
	default:
		return "", fmt.Errorf("unsupported platform for bundled ffmpeg: %s/%s", goos, goarch)
	}
	return "ffmpeg-" + releaseVersion + "-" + platform + ".zip", nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func binaryName(name string) string {
	return strings.TrimSuffix(strings.ToLower(filepath.Base(name)), ".exe")
}

func executableSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
