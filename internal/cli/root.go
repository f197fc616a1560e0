package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mgpai22/cuemark/internal/config"
	"github.com/mgpai22/cuemark/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cuemark",
	Short: "Keyboard-driven subtitle timing editor",
	Long: `Cuemark lets you play a video, mark subtitle start and end times
with single key presses, adjust them, and export SubRip subtitles.

Intervals without text can be filled from AI transcription of their audio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a missing .env is fine, real env vars still apply
		_ = godotenv.Load()

		logger = logging.NewLogger(verbose)

		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debugw("configuration loaded", "path", configPath)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Path to a YAML settings file")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Language code (e.g., en, es, fr)")
}
