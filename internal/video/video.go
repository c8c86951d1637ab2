package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/mgpai22/quietcut/internal/silence"
)

var (
	// ErrNothingToTrim is returned by Export for an empty segment list when
	// CopyWhenEmpty is off. Nothing is written, not even the output
	// directory; callers treat it as a successful no-op.
	ErrNothingToTrim = errors.New("no segments to keep, nothing to trim")
	ErrOutputLocked  = errors.New("output is being written by another quietcut run")
	ErrSameFile      = errors.New("output path must differ from input path")
)

// one extracted sub-range of the source
type Clip struct {
	Index int
	Path  string
	Start float64
	End   float64
}

// defines interface for the extraction/export driver
type Processor interface {
	// cuts every segment out of src into its own file under workDir
	ExtractClips(
		ctx context.Context,
		src string,
		segments []silence.Segment,
		workDir string,
		opts ExportOptions,
	) ([]Clip, error)

	// joins clips, in order, into output
	Concat(ctx context.Context, clips []Clip, output string) error

	// extract + concat with output locking and temp dir handling
	Export(
		ctx context.Context,
		src, output string,
		segments []silence.Segment,
		opts ExportOptions,
	) (*ExportResult, error)
}

// holds options for clip extraction and encoding
type ExportOptions struct {
	VideoCodec    string // e.g. libx264
	AudioCodec    string // e.g. aac
	Preset        string // encoder speed preset
	Threads       int    // 0 lets ffmpeg decide
	Concurrency   int    // parallel extraction workers
	CopyWhenEmpty bool   // stream copy src when nothing is kept
	KeepTemp      bool   // leave the work directory behind

	// called after each clip finishes; may be nil
	Progress func(done, total int)
}

// returns the encode settings used for trimmed output
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		VideoCodec:  "libx264",
		AudioCodec:  "aac",
		Preset:      "ultrafast",
		Concurrency: 4,
	}
}

type ExportResult struct {
	Output  string
	WorkDir string
	Clips   int
	Kept    float64 // seconds of source material kept
	Copied  bool    // output is a pass-through copy of src
	Bytes   int64
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	tempDir string
}

// tempDir is the parent of per-run work directories; empty uses os.TempDir.
func NewProcessor(tempDir string) *DefaultProcessor {
	return &DefaultProcessor{
		tempDir: tempDir,
	}
}

var _ Processor = (*DefaultProcessor)(nil)

func (p *DefaultProcessor) Export(
	ctx context.Context,
	src, output string,
	segments []silence.Segment,
	opts ExportOptions,
) (*ExportResult, error) {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", src)
	}
	if same, err := samePath(src, output); err != nil {
		return nil, err
	} else if same {
		return nil, ErrSameFile
	}

	if len(segments) == 0 && !opts.CopyWhenEmpty {
		return nil, ErrNothingToTrim
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	lockPath := output + ".lock"
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, output)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lockPath)
	}()

	result := &ExportResult{Output: output}

	if len(segments) == 0 {
		if err := p.copyStreams(ctx, src, output); err != nil {
			return nil, err
		}
		result.Copied = true
		return p.finish(result)
	}

	workDir := filepath.Join(p.baseTempDir(), "quietcut-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if opts.KeepTemp {
		result.WorkDir = workDir
	} else {
		defer os.RemoveAll(workDir)
	}

	clips, err := p.ExtractClips(ctx, src, segments, workDir, opts)
	if err != nil {
		return nil, err
	}

	if err := p.Concat(ctx, clips, output); err != nil {
		return nil, err
	}

	result.Clips = len(clips)
	result.Kept = silence.TotalLength(segments)
	return p.finish(result)
}

func (p *DefaultProcessor) finish(result *ExportResult) (*ExportResult, error) {
	info, err := os.Stat(result.Output)
	if err != nil {
		return nil, fmt.Errorf("stat output: %w", err)
	}
	result.Bytes = info.Size()
	return result, nil
}

func (p *DefaultProcessor) baseTempDir() string {
	if p.tempDir != "" {
		return p.tempDir
	}
	return os.TempDir()
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
