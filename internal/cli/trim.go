package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mgpai22/quietcut/internal/audio"
	"github.com/mgpai22/quietcut/internal/silence"
	"github.com/mgpai22/quietcut/internal/subtitle"
	"github.com/mgpai22/quietcut/internal/video"
)

var trimCmd = &cobra.Command{
	Use:   "trim [media_file]",
	Short: "Write a copy of a media file with its silences shortened",
	Long: `Detect silences, rescale them and export the kept segments as one file.

By default the result is written next to the input as
<name>_NOSILENCE_<min-silence>s<ext>. Clips are extracted in parallel and
joined without re-encoding a second time.

Examples:
  quietcut trim talk.mp4
  quietcut trim talk.mp4 -o short.mp4 --max-pause 8
  quietcut trim talk.mp4 --subtitles talk.srt
  quietcut trim lecture.mkv --threshold -35 --concurrency 8 --preset veryfast`,
	Args: cobra.ExactArgs(1),
	RunE: runTrim,
}

func init() {
	rootCmd.AddCommand(trimCmd)

	addDetectFlags(trimCmd)
	addRescaleFlags(trimCmd)
	addExportFlags(trimCmd)
	trimCmd.Flags().
		StringP("subtitles", "s", "", "SRT or VTT file to retime to the trimmed output")
	trimCmd.Flags().
		String("subtitles-output", "", "Where to write retimed subtitles (default: next to the output)")
}

func runTrim(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()
	start := time.Now()

	if err := checkMediaFile(mediaPath); err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	subsPath, _ := cmd.Flags().GetString("subtitles")
	subsOutput, _ := cmd.Flags().GetString("subtitles-output")

	if outputPath == "" {
		outputPath = defaultOutputPath(mediaPath, cfg.Detect.MinSilence)
	}

	// open subtitles up front so a bad file fails before any encoding
	var subs subtitle.File
	if subsPath != "" {
		var err error
		subs, err = subtitle.Open(subsPath)
		if err != nil {
			return err
		}
		if subsOutput == "" {
			subsOutput = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) +
				subtitle.GetExtensionForFormat(subs.Format())
		}
	}

	planner, err := newPlanner(cfg, logger)
	if err != nil {
		return err
	}

	logger.Infow("Starting trim",
		"input", mediaPath,
		"output", outputPath,
		"threshold", cfg.Detect.Threshold,
		"min_silence", cfg.Detect.MinSilence,
		"min_pause", cfg.Rescale.MinPause,
		"max_pause", cfg.Rescale.MaxPause,
	)

	report, err := runDetection(ctx, mediaPath, cfg)
	if err != nil {
		return err
	}

	plan, err := planner.Plan(strings.NewReader(report))
	if err != nil {
		return err
	}

	logger.Infow("Planned cut",
		"silences", len(plan.Detected),
		"segments", len(plan.Segments),
		"kept_seconds", formatSeconds(silence.TotalLength(plan.Segments)),
	)

	opts := exportOptions(cfg)
	bar := newProgressBar(len(plan.Segments))
	opts.Progress = func(done, total int) {
		_ = bar.Set(done)
	}

	result, err := exportPlan(ctx, video.NewProcessor(""), mediaPath, outputPath, plan.Segments, opts)
	_ = bar.Finish()
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	if result.WorkDir != "" {
		logger.Infow("Kept extracted clips", "dir", result.WorkDir)
	}

	if subs != nil {
		kept, dropped := subtitle.RetimeFile(subs, plan.Segments)
		if err := subs.Write(subsOutput); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
		logger.Infow("Retimed subtitles",
			"output", subsOutput,
			"kept", kept,
			"dropped", dropped,
		)
	}

	fields := []interface{}{
		"output", result.Output,
		"size", humanize.Bytes(uint64(result.Bytes)),
		"clips", result.Clips,
		"elapsed", time.Since(start).Round(time.Millisecond),
	}
	if result.Copied {
		fields = append(fields, "copied", true)
	} else if before, err := audio.GetDuration(ctx, mediaPath); err == nil {
		fields = append(fields,
			"original", before.Round(time.Second),
			"trimmed", audio.SecondsToDuration(result.Kept).Round(time.Second),
		)
	}
	logger.Infow("Trim complete", fields...)

	return nil
}

// exportPlan runs the export. An empty plan is not a failure: it is logged
// and a nil result is returned with no output written.
func exportPlan(
	ctx context.Context,
	p video.Processor,
	src, output string,
	segments []silence.Segment,
	opts video.ExportOptions,
) (*video.ExportResult, error) {
	result, err := p.Export(ctx, src, output, segments, opts)
	if errors.Is(err, video.ErrNothingToTrim) {
		logger.Infow("Nothing to trim",
			"input", src,
			"reason", "no segment of at least 1s between two silences",
			"hint", "use --copy-when-empty to copy the input instead",
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to export: %w", err)
	}
	return result, nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Extracting clips"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetVisibility(isTerminal(os.Stderr) && total > 0),
	)
}
