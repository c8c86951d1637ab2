package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/quietcut/internal/silence"
)

var planCmd = &cobra.Command{
	Use:   "plan [media_file]",
	Short: "Show how silences would be shortened without encoding anything",
	Long: `Detect silences (or read a saved silencedetect report), rescale them and
print the segments that trim would keep.

Examples:
  quietcut plan talk.mp4
  quietcut plan --report report.log --max-pause 12
  ffmpeg -i talk.mp4 -af silencedetect=n=-30dB:d=2 -f null - 2>&1 | quietcut plan --report -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	addDetectFlags(planCmd)
	addRescaleFlags(planCmd)
	planCmd.Flags().
		StringP("report", "r", "", "Read a silencedetect report from this file (- for stdin) instead of running ffmpeg")
}

func runPlan(cmd *cobra.Command, args []string) error {
	reportPath, _ := cmd.Flags().GetString("report")
	if (len(args) == 0) == (reportPath == "") {
		return errors.New("provide either a media file or --report, not both")
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	planner, err := newPlanner(cfg, logger)
	if err != nil {
		return err
	}

	var report io.Reader
	switch {
	case reportPath == "-":
		report = cmd.InOrStdin()
	case reportPath != "":
		f, err := os.Open(reportPath)
		if err != nil {
			return fmt.Errorf("failed to open report: %w", err)
		}
		defer f.Close()
		report = f
	default:
		if err := checkMediaFile(args[0]); err != nil {
			return err
		}
		text, err := runDetection(cmd.Context(), args[0], cfg)
		if err != nil {
			return err
		}
		report = strings.NewReader(text)
	}

	plan, err := planner.Plan(report)
	if err != nil {
		return err
	}

	printPlan(cmd.OutOrStdout(), plan)
	return nil
}

func printPlan(out io.Writer, plan *silence.Plan) {
	if len(plan.Detected) == 0 {
		fmt.Fprintln(out, "No silence detected.")
		return
	}

	rows := make([][]string, 0, len(plan.Detected))
	for i := range plan.Detected {
		before, after := plan.Detected[i], plan.Rescaled[i]
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatSeconds(before.Start),
			formatSeconds(before.Duration),
			formatSeconds(after.Start),
			formatSeconds(after.Duration),
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"#", "Start", "Duration", "New start", "New duration"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if plan.Empty() {
		fmt.Fprintln(out, "Nothing to trim: no segment of at least 1s between silences.")
		return
	}

	rows = rows[:0]
	for i, seg := range plan.Segments {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			formatSeconds(seg.Start),
			formatSeconds(seg.End),
			formatSeconds(seg.Length),
		})
	}
	fmt.Fprintln(out, renderTable(out,
		[]string{"Segment", "Start", "End", "Length"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
	))

	fmt.Fprintf(out, "%d segments, %ss kept\n", len(plan.Segments), formatSeconds(silence.TotalLength(plan.Segments)))
}
