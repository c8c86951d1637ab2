package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/quietcut/internal/ffmpeg"
)

var ErrInvalidDetectOptions = errors.New("invalid silence detection options")

// settings for the silencedetect filter
type DetectOptions struct {
	Threshold  float64 // noise floor in dB, between -100 and 0
	MinSilence float64 // shortest reported silence in seconds
}

func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		Threshold:  -30,
		MinSilence: 2.0,
	}
}

func (o DetectOptions) validate() error {
	if o.Threshold < -100 || o.Threshold > 0 {
		return fmt.Errorf("%w: threshold %gdB outside [-100, 0]", ErrInvalidDetectOptions, o.Threshold)
	}
	if o.MinSilence < 1 {
		return fmt.Errorf("%w: minimum silence %gs is below 1s", ErrInvalidDetectOptions, o.MinSilence)
	}
	return nil
}

// Filter renders the ffmpeg audio filter, e.g. silencedetect=n=-30dB:d=2.
func (o DetectOptions) Filter() string {
	return "silencedetect=n=" + formatFloat(o.Threshold) + "dB:d=" + formatFloat(o.MinSilence)
}

// DetectSilence runs ffmpeg's silencedetect over the audio of inputPath and
// returns the raw report ffmpeg wrote to stderr.
func DetectSilence(ctx context.Context, inputPath string, opts DetectOptions) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file not found: %s", inputPath)
	}

	var stderr bytes.Buffer
	stream := DetectStream(inputPath, opts).WithErrorOutput(&stderr)

	if err := ffmpegbin.Run(ctx, stream); err != nil {
		if ffmpegbin.IsCanceled(err) {
			return "", err
		}
		return "", fmt.Errorf("silencedetect failed: %w\n%s", err, ffmpegbin.Tail(stderr.String(), 10))
	}

	return stderr.String(), nil
}

// DetectStream builds
// ffmpeg -vn -i <in> -af silencedetect=... -f null -hide_banner -nostats -
//
// -nostats keeps the '\r'-redrawn progress line out of the report.
func DetectStream(inputPath string, opts DetectOptions) *ffmpeg.Stream {
	return ffmpeg.Input(inputPath, ffmpeg.KwArgs{"vn": ""}).
		Output("-", ffmpeg.KwArgs{
			"af":          opts.Filter(),
			"f":           "null",
			"hide_banner": "",
			"nostats":     "",
		})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
