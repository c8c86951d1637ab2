package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mgpai22/quietcut/internal/audio"
	"github.com/mgpai22/quietcut/internal/config"
	"github.com/mgpai22/quietcut/internal/logging"
	"github.com/mgpai22/quietcut/internal/silence"
	"github.com/mgpai22/quietcut/internal/video"
)

func addDetectFlags(cmd *cobra.Command) {
	d := config.Default().Detect
	cmd.Flags().
		Float64P("threshold", "t", d.Threshold, "Noise floor in dB below which audio counts as silence")
	cmd.Flags().
		Float64P("min-silence", "d", d.MinSilence, "Shortest silence to detect, in seconds (>= 1)")
}

func addRescaleFlags(cmd *cobra.Command) {
	r := config.Default().Rescale
	cmd.Flags().
		Float64("min-pause", r.MinPause, "Shortest pause kept after rescaling, in seconds")
	cmd.Flags().
		Float64("max-pause", r.MaxPause, "Pause length at which the easing curve saturates, in seconds")
}

func addExportFlags(cmd *cobra.Command) {
	e := config.Default().Export
	cmd.Flags().String("video-codec", e.VideoCodec, "Video encoder for extracted clips")
	cmd.Flags().String("audio-codec", e.AudioCodec, "Audio encoder for extracted clips")
	cmd.Flags().String("preset", e.Preset, "Encoder preset")
	cmd.Flags().Int("threads", e.Threads, "ffmpeg threads per clip (0 = auto)")
	cmd.Flags().IntP("concurrency", "c", e.Concurrency, "Number of parallel clip extraction workers")
	cmd.Flags().Bool("copy-when-empty", e.CopyWhenEmpty, "Copy the input unchanged when nothing would be kept")
	cmd.Flags().Bool("keep-temp", e.KeepTemp, "Keep the extracted clips after export")
}

// applyFlags copies explicitly set flags over the loaded config and
// revalidates it. Flags a command does not define are ignored.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	floats := map[string]*float64{
		"threshold":   &c.Detect.Threshold,
		"min-silence": &c.Detect.MinSilence,
		"min-pause":   &c.Rescale.MinPause,
		"max-pause":   &c.Rescale.MaxPause,
	}
	for name, dst := range floats {
		if changed(name) {
			*dst, _ = flags.GetFloat64(name)
		}
	}

	strs := map[string]*string{
		"video-codec": &c.Export.VideoCodec,
		"audio-codec": &c.Export.AudioCodec,
		"preset":      &c.Export.Preset,
	}
	for name, dst := range strs {
		if changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	ints := map[string]*int{
		"threads":     &c.Export.Threads,
		"concurrency": &c.Export.Concurrency,
	}
	for name, dst := range ints {
		if changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	bools := map[string]*bool{
		"copy-when-empty": &c.Export.CopyWhenEmpty,
		"keep-temp":       &c.Export.KeepTemp,
	}
	for name, dst := range bools {
		if changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	return c.Validate()
}

func detectOptions(c *config.Config) audio.DetectOptions {
	return audio.DetectOptions{
		Threshold:  c.Detect.Threshold,
		MinSilence: c.Detect.MinSilence,
	}
}

func exportOptions(c *config.Config) video.ExportOptions {
	return video.ExportOptions{
		VideoCodec:    c.Export.VideoCodec,
		AudioCodec:    c.Export.AudioCodec,
		Preset:        c.Export.Preset,
		Threads:       c.Export.Threads,
		Concurrency:   c.Export.Concurrency,
		CopyWhenEmpty: c.Export.CopyWhenEmpty,
		KeepTemp:      c.Export.KeepTemp,
	}
}

func newPlanner(c *config.Config, log *logging.Logger) (*silence.Planner, error) {
	rc, err := c.RescaleConfig()
	if err != nil {
		return nil, err
	}
	return silence.NewPlanner(rc, silence.WithHook(traceHook(log)))
}

// traceHook forwards planner events to the logger. Malformed report lines
// are warnings; everything else is debug output.
func traceHook(log *logging.Logger) silence.Hook {
	return func(e silence.Event) {
		switch e.Kind {
		case silence.EventMalformedLine:
			log.Warnw("Skipping malformed silencedetect line", "line", e.Line, "text", e.Text, "error", e.Err)
		case silence.EventParsed:
			log.Debugw("Parsed silence", "line", e.Line, "silence", e.After.String())
		case silence.EventRescaled:
			log.Debugw("Rescaled silence", "before", e.Before.String(), "after", e.After.String())
		case silence.EventSegmentKept:
			log.Debugw("Keeping segment", "segment", e.Segment.String())
		case silence.EventSegmentDropped:
			log.Debugw("Dropping short segment", "segment", e.Segment.String())
		}
	}
}

// checks the path exists and looks like audio or video
func checkMediaFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	if !audio.IsMediaFile(path) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(path))
	}
	return nil
}

// <name>_NOSILENCE_<min silence>s<ext> next to the input
func defaultOutputPath(mediaPath string, minSilence float64) string {
	ext := filepath.Ext(mediaPath)
	base := strings.TrimSuffix(mediaPath, ext)
	return fmt.Sprintf("%s_NOSILENCE_%ss%s", base, strconv.FormatFloat(minSilence, 'f', -1, 64), ext)
}

func runDetection(ctx context.Context, mediaPath string, c *config.Config) (string, error) {
	opts := detectOptions(c)
	logger.Infow("Detecting silence",
		"input", mediaPath,
		"filter", opts.Filter(),
	)
	report, err := audio.DetectSilence(ctx, mediaPath, opts)
	if err != nil {
		return "", fmt.Errorf("failed to detect silence: %w", err)
	}
	return report, nil
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(w io.Writer, headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}
