package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/quietcut/internal/audio"
	"github.com/mgpai22/quietcut/internal/silence"
)

var detectCmd = &cobra.Command{
	Use:   "detect [media_file]",
	Short: "List the silent passages of an audio or video file",
	Long: `Run ffmpeg's silencedetect filter over the file's audio and print every
silence it reports. Nothing is written.

Examples:
  quietcut detect talk.mp4
  quietcut detect talk.mp4 --threshold -40 --min-silence 1.5
  quietcut detect talk.mp4 --raw > report.log`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	addDetectFlags(detectCmd)
	detectCmd.Flags().
		Bool("raw", false, "Print the raw silencedetect report instead of a table")
}

func runDetect(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if err := checkMediaFile(mediaPath); err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetBool("raw")

	report, err := runDetection(ctx, mediaPath, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if raw {
		_, err := fmt.Fprint(out, report)
		return err
	}

	intervals, err := silence.ParseReport(strings.NewReader(report), traceHook(logger))
	if err != nil {
		return err
	}

	if len(intervals) == 0 {
		fmt.Fprintln(out, "No silence detected.")
		return nil
	}

	rows := make([][]string, 0, len(intervals))
	var total float64
	for i, iv := range intervals {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatSeconds(iv.Start),
			formatSeconds(iv.End),
			formatSeconds(iv.Duration),
		})
		total += iv.Duration
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"#", "Start", "End", "Duration"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))

	summary := fmt.Sprintf("%d silences, %ss total", len(intervals), formatSeconds(total))
	if d, err := audio.GetDuration(ctx, mediaPath); err == nil && d > 0 {
		summary += fmt.Sprintf(" (%.1f%% of %s)", 100*total/d.Seconds(), d.Round(100*time.Millisecond))
	} else if err != nil {
		logger.Debugw("Could not probe duration", "error", err)
	}
	fmt.Fprintln(out, summary)

	return nil
}
