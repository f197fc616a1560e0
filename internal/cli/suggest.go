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
	"github.com/mgpai22/cuemark/internal/transcribe"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [media_file] [subtitle_file]",
	Short: "Fill empty subtitles with transcribed speech",
	Long: `Fill in the text of timed subtitles that are still empty.

The audio under each empty subtitle is cut out of the media file and sent to
a transcription provider. Subtitles that already have text are left alone.

Providers:
  gemini  Google Gemini (GEMINI_API_KEY)
  openai  OpenAI Whisper (OPENAI_API_KEY)

Examples:
  cuemark suggest video.mp4 timing.srt
  cuemark suggest talk.mp3 talk.srt --provider openai -o talk.filled.srt
  cuemark suggest video.mp4 timing.vtt --concurrency 5 --language ja
  cuemark suggest interview.mp4 interview.srt --prompt "Speakers: Ana and Bo."`,
	Args: cobra.ExactArgs(2),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().
		StringP("provider", "p", "", "Transcription provider (gemini, openai); defaults to the config file")
	suggestCmd.Flags().
		StringP("api-key", "k", "", "Provider API key (or set GEMINI_API_KEY / OPENAI_API_KEY)")
	suggestCmd.Flags().
		String("model", "", "Model override (default gemini-2.5-flash or whisper-1)")
	suggestCmd.Flags().
		Int("concurrency", 0, "Number of parallel transcription workers; defaults to the config file")
	suggestCmd.Flags().
		String("prompt", "", "Extra context for the provider, e.g. speaker names; defaults to the config file")
	suggestCmd.Flags().
		StringP("format", "f", "", "Output subtitle format (srt, vtt, ass); defaults to the input format")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	mediaPath, subsPath := args[0], args[1]
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !media.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")
	prompt, _ := cmd.Flags().GetString("prompt")

	if providerStr == "" {
		providerStr = cfg.Suggest.Provider
	}
	provider := transcribe.Provider(strings.ToLower(providerStr))
	if model == "" {
		model = cfg.Suggest.Model
	}
	if language == "" {
		language = cfg.Suggest.Language
	}
	if prompt == "" {
		prompt = cfg.Suggest.Prompt
	}
	if concurrency == 0 {
		concurrency = cfg.Suggest.Concurrency
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	if apiKey == "" {
		apiKey = os.Getenv(provider.APIKeyEnv())
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required: use --api-key flag or set %s environment variable", provider.APIKeyEnv())
	}

	format := subtitle.GetFormatFromExtension(subsPath)
	if formatStr != "" {
		f, err := subtitle.ParseFormat(formatStr)
		if err != nil {
			return err
		}
		format = f
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(subsPath, filepath.Ext(subsPath)) + ".suggested" +
			subtitle.GetExtensionForFormat(format)
	}

	sub, err := subtitle.Open(subsPath)
	if err != nil {
		return err
	}
	store := timeline.NewStore()
	if _, err := store.Load(export.FromSubtitle(sub)); err != nil {
		return fmt.Errorf("invalid subtitle timing in %s: %w", subsPath, err)
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language: language,
		Model:    model,
		Prompt:   prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Suggesting subtitle text",
		"media", mediaPath,
		"subtitles", subsPath,
		"provider", provider,
		"concurrency", concurrency,
	)

	suggester := transcribe.NewSuggester(transcriber,
		transcribe.WithConcurrency(concurrency),
		transcribe.WithSuggesterLogger(logger),
	)
	suggestions, err := suggester.Suggest(ctx, mediaPath, store.Intervals())
	if err != nil {
		return fmt.Errorf("suggestion failed: %w", err)
	}
	filled := transcribe.Apply(store, suggestions)

	if err := export.WriteFile(outputPath, format, store.Intervals()); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles written: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Filled: %d of %d\n", filled, len(store.Completed()))

	return nil
}
