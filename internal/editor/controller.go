// Package editor connects the playback surface, the keyboard and pointer
// input to a timeline.Store. It owns the poll loop and turns rejected
// operations into advisories.
package editor

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/mgpai22/cuemark/internal/export"
	"github.com/mgpai22/cuemark/internal/logging"
	"github.com/mgpai22/cuemark/internal/media"
	"github.com/mgpai22/cuemark/internal/player"
	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

// Settings are the editor tunables.
type Settings struct {
	SeekStep     float64
	PollInterval time.Duration
	// how far a drag may move an edge past the interval; zero only stops
	// at the neighbours
	DragBuffer float64
}

func DefaultSettings() Settings {
	return Settings{
		SeekStep:     5,
		PollInterval: 200 * time.Millisecond,
		DragBuffer:   10,
	}
}

type Controller struct {
	store    *timeline.Store
	player   player.Player
	bus      *PointerBus
	logger   *logging.Logger
	settings Settings
	now      func() time.Time

	videoID string

	active    timeline.ID
	hasActive bool

	onAdvisory func(Advisory)
	onActive   func(timeline.Interval, bool)
}

type Option func(*Controller)

func WithSettings(s Settings) Option {
	return func(c *Controller) {
		c.settings = s
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithNow replaces the wall clock used for drag grace periods.
func WithNow(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithAdvisoryHandler receives every advisory after it is logged.
func WithAdvisoryHandler(fn func(Advisory)) Option {
	return func(c *Controller) {
		c.onAdvisory = fn
	}
}

// WithActiveHandler is called when the interval under the playhead changes.
func WithActiveHandler(fn func(iv timeline.Interval, ok bool)) Option {
	return func(c *Controller) {
		c.onActive = fn
	}
}

func NewController(store *timeline.Store, p player.Player, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		player:   p,
		bus:      NewPointerBus(),
		logger:   logging.Nop(),
		settings: DefaultSettings(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Store() *timeline.Store {
	return c.store
}

func (c *Controller) Pointer() *PointerBus {
	return c.bus
}

func (c *Controller) VideoID() string {
	return c.videoID
}

func (c *Controller) Loaded() bool {
	return c.videoID != ""
}

// HandleKey dispatches a key press. It reports false when the key was
// suppressed or ignored.
func (c *Controller) HandleKey(ev KeyEvent) (timeline.Result, bool) {
	if ev.suppressed() {
		return c.unchanged(), false
	}
	if ev.Key == KeyEnter {
		if ev.Target != TargetURLField {
			return c.unchanged(), false
		}
		res, err := c.LoadVideo(ev.Value)
		return res, err == nil
	}
	if !c.Loaded() {
		return c.unchanged(), false
	}

	switch ev.Key {
	case KeySpace:
		c.TogglePlayback()
	case KeyLeft:
		c.Seek(-c.settings.SeekStep)
	case KeyRight:
		c.Seek(c.settings.SeekStep)
	case KeyTab:
		res, err := c.Mark()
		return res, err == nil
	default:
		return c.unchanged(), false
	}
	return c.unchanged(), true
}

func (c *Controller) TogglePlayback() {
	if c.player.State() == player.StatePlaying {
		c.player.Pause()
		c.logger.Debugw("paused", "at", c.player.CurrentTime())
		return
	}
	c.player.Play()
	c.logger.Debugw("playing", "at", c.player.CurrentTime())
}

// Seek moves the playhead by delta seconds, clamped to the video.
func (c *Controller) Seek(delta float64) float64 {
	t, _ := c.SeekTo(c.player.CurrentTime() + delta)
	return t
}

// SeekTo jumps to t clamped to [0, duration]. Without a loaded video it
// reports false and the player is left alone.
func (c *Controller) SeekTo(t float64) (float64, bool) {
	if !c.Loaded() || math.IsNaN(t) {
		return c.player.CurrentTime(), false
	}
	t = math.Max(0, t)
	if d := c.player.Duration(); d > 0 {
		t = math.Min(t, d)
	}
	c.player.SeekTo(t, true)
	return t, true
}

// Mark records a timestamp at the current playback position.
func (c *Controller) Mark() (timeline.Result, error) {
	at := c.player.CurrentTime()
	res, err := c.store.Mark(at)
	if err != nil {
		c.advise(err)
		return res, err
	}
	c.logger.Debugw("marked", "at", timeline.FormatClock(at), "outcome", res.Outcome, "id", res.ID)
	return res, nil
}

// LoadVideo loads a YouTube URL or a local media file and starts a fresh
// interval collection for it. An unusable input leaves everything as it was.
func (c *Controller) LoadVideo(input string) (timeline.Result, error) {
	id, err := resolveVideo(input)
	if err != nil {
		c.advise(err)
		return c.unchanged(), err
	}
	if err := c.player.LoadVideoByID(id); err != nil {
		c.advise(err)
		return c.unchanged(), err
	}

	c.videoID = id
	c.active, c.hasActive = 0, false
	res := c.store.Reset()
	c.store.SetDuration(c.player.Duration())

	c.logger.Infow("video loaded", "id", id, "duration", timeline.FormatClock(c.player.Duration()))
	return res, nil
}

func resolveVideo(input string) (string, error) {
	if id, ok := player.ExtractVideoID(input); ok {
		return id, nil
	}
	if media.IsMediaFile(input) {
		if _, err := os.Stat(input); err == nil {
			return input, nil
		}
	}
	return "", fmt.Errorf("%w: %q", player.ErrInvalidVideoURL, input)
}

func (c *Controller) SetText(id timeline.ID, text string) (timeline.Result, error) {
	res, err := c.store.SetText(id, text)
	if err != nil {
		c.advise(err)
	}
	return res, err
}

func (c *Controller) Delete(id timeline.ID) timeline.Result {
	res := c.store.Delete(id)
	if res.Outcome == timeline.OutcomeDeleted && c.hasActive && c.active == id {
		c.active, c.hasActive = 0, false
	}
	return res
}

// Import seeds the store from an srt or vtt file.
func (c *Controller) Import(path string) (timeline.Result, error) {
	sub, err := subtitle.Open(path)
	if err != nil {
		c.advise(err)
		return c.unchanged(), err
	}
	res, err := c.store.Load(export.FromSubtitle(sub))
	if err != nil {
		c.advise(err)
		return res, err
	}
	c.logger.Infow("imported subtitles", "path", path, "count", len(res.Intervals))
	return res, nil
}

// Export writes the completed intervals to path in the given format.
func (c *Controller) Export(path string, format subtitle.Format) error {
	if err := export.WriteFile(path, format, c.store.Intervals()); err != nil {
		c.advise(err)
		return err
	}
	c.logger.Infow("subtitles exported", "path", path, "format", format, "count", len(c.store.Completed()))
	return nil
}

func (c *Controller) advise(err error) {
	a := advisoryFor(err)
	c.logger.Warnw(a.Message, "error", err)
	if c.onAdvisory != nil {
		c.onAdvisory(a)
	}
}

func (c *Controller) unchanged() timeline.Result {
	return timeline.Result{Outcome: timeline.OutcomeUnchanged, Intervals: c.store.Intervals()}
}
