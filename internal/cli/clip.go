package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/cuemark/internal/export"
	"github.com/mgpai22/cuemark/internal/media"
	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

var clipCmd = &cobra.Command{
	Use:   "clip [media_file] [subtitle_file] [index]",
	Short: "Extract the audio under one subtitle",
	Long: `Cut the audio spanned by one subtitle out of a media file, for
checking timing by ear. The index is the subtitle's 1-based position in the
file.

Supports wav and mp3 output.

Examples:
  cuemark clip video.mp4 timing.srt 3
  cuemark clip video.mp4 timing.srt 3 -o line3.mp3 -f mp3
  cuemark clip video.mp4 timing.srt 12 --sample-rate 44100 --channels 2`,
	Args: cobra.ExactArgs(3),
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)

	clipCmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3)")
	clipCmd.Flags().
		IntP("sample-rate", "r", 16000, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	clipCmd.Flags().
		IntP("channels", "c", 1, "Number of audio channels (1=mono, 2=stereo)")
	clipCmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for mp3 (e.g., 128k)")
}

func runClip(cmd *cobra.Command, args []string) error {
	mediaPath, subsPath := args[0], args[1]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "wav" && format != "mp3" {
		return fmt.Errorf("invalid format %q: supported formats are wav, mp3", format)
	}

	index, err := parseID(args[2:])
	if err != nil || index == 0 {
		return fmt.Errorf("invalid subtitle index %q", args[2])
	}

	sub, err := subtitle.Open(subsPath)
	if err != nil {
		return err
	}
	iv, err := nthInterval(export.FromSubtitle(sub), int(index))
	if err != nil {
		return err
	}

	if outputPath == "" {
		base := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = fmt.Sprintf("%s.%d.%s", base, index, format)
	}

	logger.Infow("Extracting clip",
		"media", mediaPath,
		"start", timeline.FormatClock(iv.Start),
		"end", timeline.FormatClock(*iv.End),
		"output", outputPath,
	)

	opts := media.ClipOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := media.ExtractClip(ctx, mediaPath, iv.Start, *iv.End, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Clip extracted successfully: %s\n", absOutput)

	return nil
}

// picks the n-th (1-based) complete interval in start order
func nthInterval(ivs []timeline.Interval, n int) (timeline.Interval, error) {
	store := timeline.NewStore()
	if _, err := store.Load(ivs); err != nil {
		return timeline.Interval{}, err
	}
	completed := store.Completed()
	if n < 1 || n > len(completed) {
		return timeline.Interval{}, fmt.Errorf("subtitle %d out of range (file has %d)", n, len(completed))
	}
	return completed[n-1], nil
}
