package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mgpai22/cuemark/internal/logging"
	"github.com/mgpai22/cuemark/internal/media"
	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

// cuts [start, end) seconds of audio out of mediaPath into outputPath
type ClipExtractor func(
	ctx context.Context,
	mediaPath string,
	start, end float64,
	outputPath string,
	opts media.ClipOptions,
) error

// fills empty interval text from transcriptions of each interval's audio
type Suggester struct {
	transcriber Transcriber
	extract     ClipExtractor
	clipOptions media.ClipOptions
	wrapper     *subtitle.LineWrapper
	logger      *logging.Logger
	concurrency int
}

type SuggesterOption func(*Suggester)

func WithConcurrency(n int) SuggesterOption {
	return func(s *Suggester) {
		s.concurrency = n
	}
}

func WithClipExtractor(fn ClipExtractor) SuggesterOption {
	return func(s *Suggester) {
		s.extract = fn
	}
}

func WithSuggesterLogger(l *logging.Logger) SuggesterOption {
	return func(s *Suggester) {
		s.logger = l
	}
}

func NewSuggester(t Transcriber, opts ...SuggesterOption) *Suggester {
	s := &Suggester{
		transcriber: t,
		extract:     media.ExtractClip,
		clipOptions: media.DefaultClipOptions(),
		wrapper:     subtitle.NewLineWrapper(),
		logger:      logging.Nop(),
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency <= 0 {
		s.concurrency = 3
	}
	return s
}

// text suggested for one interval
type Suggestion struct {
	ID   timeline.ID
	Text string
}

// holds the outcome of transcribing one interval
type clipResult struct {
	Index int
	Suggestion
	Error error
}

// Suggest transcribes every completed interval whose text is empty. It
// does not touch any store; see Apply.
func (s *Suggester) Suggest(
	ctx context.Context,
	mediaPath string,
	intervals []timeline.Interval,
) ([]Suggestion, error) {
	var targets []timeline.Interval
	for _, iv := range timeline.CompletedOf(intervals) {
		if strings.TrimSpace(iv.Text) == "" {
			targets = append(targets, iv)
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "cuemark-clips-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(tmpDir)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		index int
		iv    timeline.Interval
	}
	workChan := make(chan job)
	resultChan := make(chan clipResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-workChan:
					if !ok {
						return
					}
					text, err := s.transcribeInterval(ctx, mediaPath, tmpDir, j.iv)
					// queue the failure ahead of the cancellations it causes
					resultChan <- clipResult{
						Index:      j.index,
						Suggestion: Suggestion{ID: j.iv.ID, Text: text},
						Error:      err,
					}
					if err != nil {
						cancel()
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i, iv := range targets {
			select {
			case <-ctx.Done():
				return
			case workChan <- job{index: i, iv: iv}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]clipResult, 0, len(targets))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil {
			if firstErr == nil || (errors.Is(firstErr, context.Canceled) && !errors.Is(result.Error, context.Canceled)) {
				firstErr = fmt.Errorf("subtitle %d failed: %w", result.ID, result.Error)
			}
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	// parent cancelled before every interval was handed out
	if err := ctx.Err(); err != nil && len(results) < len(targets) {
		return nil, err
	}

	// sort by index to keep timeline order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	suggestions := make([]Suggestion, 0, len(results))
	for _, r := range results {
		if r.Text == "" {
			continue
		}
		suggestions = append(suggestions, r.Suggestion)
	}
	return suggestions, nil
}

func (s *Suggester) transcribeInterval(
	ctx context.Context,
	mediaPath, tmpDir string,
	iv timeline.Interval,
) (string, error) {
	clipPath := filepath.Join(tmpDir, fmt.Sprintf("clip_%d.%s", iv.ID, s.clipOptions.Format))
	if err := s.extract(ctx, mediaPath, iv.Start, *iv.End, clipPath, s.clipOptions); err != nil {
		return "", err
	}

	result, err := s.transcriber.Transcribe(ctx, clipPath)
	if err != nil {
		return "", err
	}

	text := s.wrapper.Wrap(result.Text())
	s.logger.Debugw("suggested text",
		"id", iv.ID,
		"start", timeline.FormatClock(iv.Start),
		"text", text,
	)
	return text, nil
}

// Apply writes suggestions into the store, skipping intervals that were
// deleted or given text in the meantime. It returns how many were filled.
func Apply(store *timeline.Store, suggestions []Suggestion) int {
	filled := 0
	for _, sug := range suggestions {
		iv, ok := store.Get(sug.ID)
		if !ok || strings.TrimSpace(iv.Text) != "" {
			continue
		}
		if _, err := store.SetText(sug.ID, sug.Text); err == nil {
			filled++
		}
	}
	return filled
}
