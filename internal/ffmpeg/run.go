package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// Run compiles stream with the resolved ffmpeg binary and runs it, killing
// the process if ctx is cancelled first.
func Run(ctx context.Context, stream *ffmpeggo.Stream) error {
	ffmpegPath, err := FFmpegPath()
	if err != nil {
		return err
	}

	cmd := stream.SetFfmpegPath(ffmpegPath).Compile()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

// Tail returns the last n lines of ffmpeg's stderr for error messages.
func Tail(stderr string, n int) string {
	lines := strings.Split(strings.TrimRight(stderr, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
