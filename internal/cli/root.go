package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mgpai22/quietcut/internal/config"
	"github.com/mgpai22/quietcut/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "quietcut",
	Short: "Shorten the silent parts of a video",
	Long: `Quietcut finds silent passages in a video's audio track and trims them.

Long pauses are shortened along an easing curve instead of being cut out
entirely, so the result keeps a natural rhythm. Short pauses are left alone.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose).With("run_id", uuid.NewString())

		loaded, path, found, err := config.Load(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if found {
			logger.Debugw("Loaded config file", "path", path)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

// Execute runs the root command; SIGINT and SIGTERM cancel in-flight ffmpeg
// work.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/quietcut/config.toml or ./quietcut.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
}
