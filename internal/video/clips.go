package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/quietcut/internal/audio"
	ffmpegbin "github.com/mgpai22/quietcut/internal/ffmpeg"
	"github.com/mgpai22/quietcut/internal/silence"
)

type clipJob struct {
	index    int
	segment  silence.Segment
	clipPath string
}

func (p *DefaultProcessor) ExtractClips(
	ctx context.Context,
	src string,
	segments []silence.Segment,
	workDir string,
	opts ExportOptions,
) ([]Clip, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	ext := filepath.Ext(src)
	jobs := make([]clipJob, 0, len(segments))
	for i, seg := range segments {
		jobs = append(jobs, clipJob{
			index:    i,
			segment:  seg,
			clipPath: filepath.Join(workDir, fmt.Sprintf("clip_%05d%s", i, ext)),
		})
	}

	var (
		mu       sync.Mutex
		clips    []Clip
		firstErr error
		wg       sync.WaitGroup
		done     int
	)

	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		mu.Lock()
		hasErr := firstErr != nil
		mu.Unlock()
		if hasErr {
			break
		}

		wg.Add(1)
		go func(j clipJob) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			mu.Lock()
			hasErr := firstErr != nil
			mu.Unlock()
			if hasErr {
				return
			}

			var stderr bytes.Buffer
			stream := ClipStream(src, j.clipPath, j.segment, opts).WithErrorOutput(&stderr)
			err := ffmpegbin.Run(ctx, stream)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					if ffmpegbin.IsCanceled(err) {
						firstErr = err
					} else {
						firstErr = fmt.Errorf(
							"failed to extract clip %d (%s): %w\n%s",
							j.index, j.segment, err, ffmpegbin.Tail(stderr.String(), 10),
						)
					}
				}
				return
			}

			clips = append(clips, Clip{
				Index: j.index,
				Path:  j.clipPath,
				Start: j.segment.Start,
				End:   j.segment.End,
			})
			done++
			if opts.Progress != nil {
				opts.Progress(done, len(jobs))
			}
		}(job)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// sort clips by index to maintain timeline order
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Index < clips[j].Index
	})

	return clips, nil
}

// ClipStream builds the ffmpeg invocation cutting seg out of src. Video
// sources are re-encoded so every clip starts on a keyframe; audio-only
// sources keep the container's default encoder.
func ClipStream(src, clipPath string, seg silence.Segment, opts ExportOptions) *ffmpeg.Stream {
	out := ffmpeg.KwArgs{
		"t": formatSeconds(seg.Length),
	}
	if audio.IsVideoFile(src) {
		if opts.VideoCodec != "" {
			out["c:v"] = opts.VideoCodec
		}
		if opts.Preset != "" {
			out["preset"] = opts.Preset
		}
		if opts.AudioCodec != "" {
			out["c:a"] = opts.AudioCodec
		}
	}
	if opts.Threads > 0 {
		out["threads"] = strconv.Itoa(opts.Threads)
	}

	return ffmpeg.Input(src, ffmpeg.KwArgs{"ss": formatSeconds(seg.Start)}).
		Output(clipPath, out).
		OverWriteOutput()
}

func (p *DefaultProcessor) Concat(ctx context.Context, clips []Clip, output string) error {
	if len(clips) == 0 {
		return ErrNothingToTrim
	}

	listPath := filepath.Join(filepath.Dir(clips[0].Path), "concat.txt")
	if err := writeConcatList(listPath, clips); err != nil {
		return err
	}

	var stderr bytes.Buffer
	stream := ConcatStream(listPath, output).WithErrorOutput(&stderr)
	if err := ffmpegbin.Run(ctx, stream); err != nil {
		if ffmpegbin.IsCanceled(err) {
			return err
		}
		return fmt.Errorf("failed to concatenate %d clips: %w\n%s", len(clips), err, ffmpegbin.Tail(stderr.String(), 10))
	}
	return nil
}

// ConcatStream joins the files named in a concat demuxer list without
// re-encoding.
func ConcatStream(listPath, output string) *ffmpeg.Stream {
	return ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": "0"}).
		Output(output, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput()
}

func (p *DefaultProcessor) copyStreams(ctx context.Context, src, output string) error {
	var stderr bytes.Buffer
	stream := ffmpeg.Input(src).
		Output(output, ffmpeg.KwArgs{"c": "copy"}).
		OverWriteOutput().
		WithErrorOutput(&stderr)

	if err := ffmpegbin.Run(ctx, stream); err != nil {
		if ffmpegbin.IsCanceled(err) {
			return err
		}
		return fmt.Errorf("failed to copy %s: %w\n%s", src, err, ffmpegbin.Tail(stderr.String(), 10))
	}
	return nil
}

// writes one "file '<abs path>'" line per clip
func writeConcatList(listPath string, clips []Clip) error {
	var b strings.Builder
	for _, c := range clips {
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			return err
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	if err := os.WriteFile(listPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	return nil
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
