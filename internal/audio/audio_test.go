package audio

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/quietcut/internal/silence"
)

// checkFFmpeg skips test if ffmpeg is not available.
func checkFFmpeg(t *testing.T) {
	t.Helper()
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not found in PATH, skipping test", bin)
		}
	}
}

func TestDetectOptionsFilter(t *testing.T) {
	assert.Equal(t, "silencedetect=n=-30dB:d=2", DefaultDetectOptions().Filter())
	assert.Equal(t, "silencedetect=n=-42.5dB:d=1.25",
		DetectOptions{Threshold: -42.5, MinSilence: 1.25}.Filter())
}

func TestDetectOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    DetectOptions
		wantErr bool
	}{
		{"defaults", DefaultDetectOptions(), false},
		{"loudest threshold", DetectOptions{Threshold: 0, MinSilence: 1}, false},
		{"positive threshold", DetectOptions{Threshold: 3, MinSilence: 2}, true},
		{"threshold below floor", DetectOptions{Threshold: -120, MinSilence: 2}, true},
		{"short silence", DetectOptions{Threshold: -30, MinSilence: 0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDetectOptions)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDetectStreamArgs(t *testing.T) {
	args := DetectStream("talk.mp4", DefaultDetectOptions()).GetArgs()
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-vn -i talk.mp4")
	assert.Contains(t, joined, "-af silencedetect=n=-30dB:d=2")
	assert.Contains(t, joined, "-f null")
	assert.Contains(t, args, "-nostats")
	assert.Equal(t, "-", args[len(args)-1])
}

func TestDetectSilenceMissingInput(t *testing.T) {
	_, err := DetectSilence(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"), DefaultDetectOptions())
	assert.Error(t, err)
}

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration([]byte(`{"format": {"duration": "70.050000"}}`))
	require.NoError(t, err)
	assert.Equal(t, 70050*time.Millisecond, d)

	_, err = parseProbeDuration([]byte(`{"format": {}}`))
	assert.Error(t, err)
}

func TestIsMediaFile(t *testing.T) {
	tests := []struct {
		path  string
		video bool
		audio bool
	}{
		{"talk.mp4", true, false},
		{"TALK.MKV", true, false},
		{"voice.wav", false, true},
		{"voice.m4a", false, true},
		{"notes.txt", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.video, IsVideoFile(tt.path))
			assert.Equal(t, tt.audio, IsAudioFile(tt.path))
			assert.Equal(t, tt.video || tt.audio, IsMediaFile(tt.path))
		})
	}
}

func TestDetectSilenceIntegration(t *testing.T) {
	checkFFmpeg(t)

	// tone 3s, silence 3s, tone 3s, silence 3s, tone 3s
	input := filepath.Join(t.TempDir(), "tones.wav")
	tone := "sine=frequency=440:duration=3"
	quiet := "anullsrc=channel_layout=mono:sample_rate=16000:duration=3"
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", tone,
		"-f", "lavfi", "-i", quiet,
		"-f", "lavfi", "-i", tone,
		"-f", "lavfi", "-i", quiet,
		"-f", "lavfi", "-i", tone,
		"-filter_complex", "[0:a][1:a][2:a][3:a][4:a]concat=n=5:v=0:a=1[out]",
		"-map", "[out]", "-ar", "16000", "-ac", "1",
		input,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	report, err := DetectSilence(context.Background(), input, DefaultDetectOptions())
	require.NoError(t, err)

	intervals, err := silence.ParseReport(strings.NewReader(report), nil)
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.InDelta(t, 3.0, intervals[0].Start, 0.1)
	assert.InDelta(t, 3.0, intervals[0].Duration, 0.1)
	assert.InDelta(t, 9.0, intervals[1].Start, 0.1)

	d, err := GetDuration(context.Background(), input)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, d.Seconds(), 0.1)
}
