package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/cuemark/internal/player"
)

var videoIDCmd = &cobra.Command{
	Use:   "videoid [url]",
	Short: "Print the video id of a YouTube URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, ok := player.ExtractVideoID(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", player.ErrInvalidVideoURL, args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videoIDCmd)
}
