package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/cuemark/internal/player"
	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

const testURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

type fakePlayer struct {
	at       float64
	duration float64
	state    player.State
	loaded   string
	loadErr  error
}

func (p *fakePlayer) CurrentTime() float64 { return p.at }
func (p *fakePlayer) Duration() float64    { return p.duration }
func (p *fakePlayer) SeekTo(t float64, _ bool) {
	p.at = t
}
func (p *fakePlayer) Play()               { p.state = player.StatePlaying }
func (p *fakePlayer) Pause()              { p.state = player.StatePaused }
func (p *fakePlayer) State() player.State { return p.state }
func (p *fakePlayer) LoadVideoByID(id string) error {
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loaded = id
	p.at = 0
	p.state = player.StateCued
	return nil
}
func (p *fakePlayer) Destroy() { p.loaded = "" }

type harness struct {
	c          *Controller
	p          *fakePlayer
	now        time.Time
	advisories []Advisory
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		p:   &fakePlayer{duration: 30, state: player.StateUnstarted},
		now: time.Unix(1000, 0),
	}
	opts = append([]Option{
		WithNow(func() time.Time { return h.now }),
		WithAdvisoryHandler(func(a Advisory) { h.advisories = append(h.advisories, a) }),
	}, opts...)
	h.c = NewController(timeline.NewStore(), h.p, opts...)
	return h
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	_, err := h.c.LoadVideo(testURL)
	require.NoError(t, err)
}

func (h *harness) markAt(t *testing.T, at float64) timeline.Result {
	t.Helper()
	h.p.at = at
	res, handled := h.c.HandleKey(KeyEvent{Key: KeyTab})
	require.True(t, handled, "mark at %v rejected: %v", at, h.advisories)
	return res
}

func TestHandleKey_IgnoredUntilVideoLoaded(t *testing.T) {
	h := newHarness(t)

	for _, k := range []Key{KeySpace, KeyLeft, KeyRight, KeyTab, KeyEnter} {
		_, handled := h.c.HandleKey(KeyEvent{Key: k})
		assert.False(t, handled, k.String())
	}
	assert.Equal(t, 0, h.c.Store().Len())
	assert.Equal(t, player.StateUnstarted, h.p.state)
}

func TestHandleKey_TextTargetsSuppress(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	for _, target := range []Target{TargetTextInput, TargetTextArea} {
		for _, k := range []Key{KeySpace, KeyTab, KeyEnter} {
			_, handled := h.c.HandleKey(KeyEvent{Key: k, Target: target})
			assert.False(t, handled)
		}
	}
	_, handled := h.c.HandleKey(KeyEvent{Key: KeySpace, Target: TargetURLField})
	assert.False(t, handled, "url field only accepts enter")
	assert.Equal(t, 0, h.c.Store().Len())
	assert.Equal(t, player.StateCued, h.p.state)
}

func TestHandleKey_EnterOnURLFieldLoadsVideo(t *testing.T) {
	h := newHarness(t)

	_, handled := h.c.HandleKey(KeyEvent{Key: KeyEnter, Target: TargetURLField, Value: "not a url"})
	assert.False(t, handled)
	assert.False(t, h.c.Loaded())
	require.Len(t, h.advisories, 1)
	assert.ErrorIs(t, h.advisories[0].Err, player.ErrInvalidVideoURL)

	_, handled = h.c.HandleKey(KeyEvent{Key: KeyEnter, Target: TargetURLField, Value: testURL})
	assert.True(t, handled)
	assert.Equal(t, "dQw4w9WgXcQ", h.c.VideoID())
	assert.Equal(t, "dQw4w9WgXcQ", h.p.loaded)
	assert.Equal(t, 30.0, h.c.Store().Duration())
}

func TestLoadVideo_ResetsStore(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 1)
	h.markAt(t, 2)
	require.Equal(t, 1, h.c.Store().Len())

	_, err := h.c.LoadVideo("https://youtu.be/aaaaaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, 0, h.c.Store().Len())
}

func TestLoadVideo_PlayerFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 1)
	h.markAt(t, 2)

	h.p.loadErr = errors.New("embed blocked")
	_, err := h.c.LoadVideo("https://youtu.be/bbbbbbbbbbb")
	require.Error(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", h.c.VideoID())
	assert.Equal(t, 1, h.c.Store().Len())
	require.Len(t, h.advisories, 1)
	assert.Contains(t, h.advisories[0].Message, "embed blocked")
}

func TestLoadVideo_LocalMediaFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	h := newHarness(t)
	_, err := h.c.LoadVideo(path)
	require.NoError(t, err)
	assert.Equal(t, path, h.p.loaded)

	_, err = h.c.LoadVideo(filepath.Join(t.TempDir(), "missing.mp4"))
	assert.ErrorIs(t, err, player.ErrInvalidVideoURL)
}

func TestHandleKey_MarkStartCompleteSplit(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	res := h.markAt(t, 2)
	assert.Equal(t, timeline.OutcomeStarted, res.Outcome)
	res = h.markAt(t, 5)
	assert.Equal(t, timeline.OutcomeCompleted, res.Outcome)
	res = h.markAt(t, 3)
	assert.Equal(t, timeline.OutcomeSplit, res.Outcome)

	require.Len(t, res.Intervals, 2)
	assert.Equal(t, 2.0, res.Intervals[0].Start)
	assert.Equal(t, 3.0, *res.Intervals[0].End)
	assert.Equal(t, 3.0, res.Intervals[1].Start)
	assert.Equal(t, 5.0, *res.Intervals[1].End)
	assert.Empty(t, h.advisories)
}

func TestHandleKey_OverlapBecomesAdvisory(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 2)
	h.markAt(t, 5)
	before := h.c.Store().Intervals()

	h.p.at = 1
	_, handled := h.c.HandleKey(KeyEvent{Key: KeyTab})
	assert.False(t, handled)
	assert.Equal(t, before, h.c.Store().Intervals())

	require.Len(t, h.advisories, 1)
	assert.ErrorIs(t, h.advisories[0].Err, timeline.ErrOverlapRejected)
	assert.Contains(t, h.advisories[0].Message, "00:00:05,000")
}

func TestHandleKey_SeekClamps(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.p.at = 3
	h.c.HandleKey(KeyEvent{Key: KeyLeft})
	assert.Equal(t, 0.0, h.p.at)

	h.p.at = 28
	h.c.HandleKey(KeyEvent{Key: KeyRight})
	assert.Equal(t, 30.0, h.p.at)

	h.p.duration = 0
	h.c.HandleKey(KeyEvent{Key: KeyRight})
	assert.Equal(t, 35.0, h.p.at, "unknown duration does not clamp")
}

func TestSeekTo_RequiresLoadedVideo(t *testing.T) {
	h := newHarness(t)
	h.p.at = 4

	at, ok := h.c.SeekTo(12)
	assert.False(t, ok)
	assert.Equal(t, 4.0, at)
	assert.Equal(t, 4.0, h.p.at, "player moved without a video")

	h.load(t)
	at, ok = h.c.SeekTo(12)
	assert.True(t, ok)
	assert.Equal(t, 12.0, at)

	at, _ = h.c.SeekTo(99)
	assert.Equal(t, 30.0, at)
	at, _ = h.c.SeekTo(-3)
	assert.Equal(t, 0.0, at)
	assert.Equal(t, 0.0, h.p.at)
}

func TestHandleKey_SpaceToggles(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	h.c.HandleKey(KeyEvent{Key: KeySpace})
	assert.Equal(t, player.StatePlaying, h.p.state)
	h.c.HandleKey(KeyEvent{Key: KeySpace})
	assert.Equal(t, player.StatePaused, h.p.state)
}

func TestDrag_ThroughPointerBus(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 2)
	first := h.markAt(t, 5).ID
	h.markAt(t, 6)
	h.markAt(t, 9)

	drag, err := h.c.BeginDrag(first, timeline.HandleEnd)
	require.NoError(t, err)
	assert.Equal(t, 2, h.c.Pointer().Listeners())
	assert.Equal(t, timeline.SelectionEditing, h.c.Store().Selection().State())

	h.c.Pointer().Move(PointerEvent{Time: 8})
	iv, _ := h.c.Store().Get(first)
	assert.Equal(t, 6.0, *iv.End, "end stops at the next start")

	h.c.Pointer().Move(PointerEvent{Time: 4})
	iv, _ = h.c.Store().Get(first)
	assert.Equal(t, 4.0, *iv.End)

	h.c.Pointer().Up(PointerEvent{Time: 4})
	assert.Equal(t, 0, h.c.Pointer().Listeners())
	assert.Equal(t, timeline.SelectionReleasing, h.c.Store().Selection().State())

	res := drag.Release()
	assert.Equal(t, timeline.OutcomeUnchanged, res.Outcome, "second release is a no-op")

	h.now = h.now.Add(100 * time.Millisecond)
	h.c.Tick()
	assert.Equal(t, timeline.SelectionReleasing, h.c.Store().Selection().State())

	h.now = h.now.Add(timeline.DefaultGrace)
	h.c.Tick()
	assert.Equal(t, timeline.SelectionIdle, h.c.Store().Selection().State())
}

func TestDrag_StartStopsAtPreviousEnd(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 2)
	h.markAt(t, 5)
	h.markAt(t, 6)
	second := h.markAt(t, 9).ID

	drag, err := h.c.BeginDrag(second, timeline.HandleStart)
	require.NoError(t, err)
	_, err = drag.Move(1)
	require.NoError(t, err)
	drag.Release()

	iv, _ := h.c.Store().Get(second)
	assert.Equal(t, 5.0, iv.Start)
}

func TestDrag_UnknownID(t *testing.T) {
	h := newHarness(t)
	h.load(t)

	_, err := h.c.BeginDrag(42, timeline.HandleStart)
	assert.ErrorIs(t, err, timeline.ErrNotFound)
	assert.Equal(t, 0, h.c.Pointer().Listeners())
	require.Len(t, h.advisories, 1)
}

func TestDragBounds_UsesBuffer(t *testing.T) {
	h := newHarness(t, WithSettings(Settings{SeekStep: 5, PollInterval: time.Second, DragBuffer: 1}))
	h.load(t)
	h.markAt(t, 10)
	id := h.markAt(t, 12).ID

	b, err := h.c.DragBounds(id)
	require.NoError(t, err)
	assert.Equal(t, 9.0, b.Min)
	assert.Equal(t, 13.0, b.Max)
}

func TestTick_ReportsActiveChanges(t *testing.T) {
	var seen []timeline.ID
	h := newHarness(t, WithActiveHandler(func(iv timeline.Interval, ok bool) {
		if ok {
			seen = append(seen, iv.ID)
		} else {
			seen = append(seen, 0)
		}
	}))
	h.load(t)
	h.markAt(t, 2)
	id := h.markAt(t, 5).ID

	for _, at := range []float64{1, 2, 3, 4.9, 5, 6} {
		h.p.at = at
		h.c.Tick()
	}
	assert.Equal(t, []timeline.ID{id, 0}, seen)

	_, ok := h.c.Active()
	assert.False(t, ok)
}

func TestRun_SerialisesCommands(t *testing.T) {
	h := newHarness(t, WithSettings(Settings{SeekStep: 5, PollInterval: 10 * time.Millisecond}))
	h.load(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	commands := make(chan Command)
	done := make(chan error, 1)
	go func() {
		done <- h.c.Run(ctx, commands)
	}()

	results := make(chan timeline.Outcome, 2)
	for _, at := range []float64{2, 5} {
		commands <- func(c *Controller) {
			h.p.at = at
			res, _ := c.Mark()
			results <- res.Outcome
		}
	}
	assert.Equal(t, timeline.OutcomeStarted, <-results)
	assert.Equal(t, timeline.OutcomeCompleted, <-results)

	close(commands)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after commands closed")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.c.Run(ctx, nil)
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_DropsCommandsQueuedAfterCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := false
	commands := make(chan Command, 2)
	commands <- func(*Controller) { cancel() }
	commands <- func(*Controller) { ran = true }

	require.NoError(t, h.c.Run(ctx, commands))
	assert.False(t, ran, "command ran after the session ended")
}

func TestExportAndImport(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 2)
	id := h.markAt(t, 5).ID
	_, err := h.c.SetText(id, "hello")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.srt")
	require.NoError(t, h.c.Export(path, subtitle.FormatSRT))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1\n00:00:02,000 --> 00:00:05,000\nhello\n\n", string(data))

	other := newHarness(t)
	other.load(t)
	res, err := other.c.Import(path)
	require.NoError(t, err)
	require.Len(t, res.Intervals, 1)
	assert.Equal(t, "hello", res.Intervals[0].Text)
}

func TestExport_NothingToExport(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 2)

	err := h.c.Export(filepath.Join(t.TempDir(), "out.srt"), subtitle.FormatSRT)
	assert.ErrorIs(t, err, timeline.ErrNothingToExport)
	require.Len(t, h.advisories, 1)
}

func TestDelete_ClearsActive(t *testing.T) {
	h := newHarness(t)
	h.load(t)
	h.markAt(t, 2)
	id := h.markAt(t, 5).ID
	h.p.at = 3
	h.c.Tick()

	res := h.c.Delete(id)
	assert.Equal(t, timeline.OutcomeDeleted, res.Outcome)
	_, ok := h.c.Active()
	assert.False(t, ok)
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey("Tab")
	assert.True(t, ok)
	assert.Equal(t, KeyTab, k)

	k, ok = ParseKey("mark")
	assert.True(t, ok)
	assert.Equal(t, KeyTab, k)

	_, ok = ParseKey("escape")
	assert.False(t, ok)
}
