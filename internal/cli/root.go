package cli

import (
	"fmt"

	"github.com/mgpai22/lipiplay/internal/config"
	"github.com/mgpai22/lipiplay/internal/logging"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lipiplay",
	Short: "Study player that keeps subtitles in sync with a video",
	Long: `Lipiplay follows a video's playback with the matching subtitle line,
remembering a per-file subtitle delay and where you stopped.

It reads SRT and ASS/SSA subtitles. Delays and restore points are kept in
a local store so reopening the same file picks up where you left off.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, resolved, exists, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger = logging.New(logging.Options{
			Verbose: verbose,
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
		})
		logger.Debugw("Configuration loaded",
			"path", resolved,
			"exists", exists,
			"store", cfg.Store.Backend,
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default is the user config dir)")
}
