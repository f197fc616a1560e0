package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/cuemark/internal/config"
	"github.com/mgpai22/cuemark/internal/editor"
	"github.com/mgpai22/cuemark/internal/media"
	"github.com/mgpai22/cuemark/internal/player"
	"github.com/mgpai22/cuemark/internal/subtitle"
	"github.com/mgpai22/cuemark/internal/timeline"
)

const editHelp = `Start an interactive timing session.

Playback runs on an internal clock; each line you type is a key press or an
edit command:

  space | toggle              play or pause
  left | right                seek back or forward
  tab | mark                  mark a start, an end, or split the subtitle under the playhead
  seek <seconds>              jump to a position
  load <url_or_file>          load another video (clears the timeline)
  text <id> <text>            set subtitle text (\n for a line break)
  del <id>                    delete a subtitle
  drag <id> start|end <sec>   move one edge of a subtitle
  list                        show all subtitles
  status                      show playback position
  export [path]               write the subtitle file
  quit                        leave the session

Examples:
  cuemark edit video.mp4
  cuemark edit https://youtu.be/dQw4w9WgXcQ --subs draft.srt
  cuemark edit talk.mp3 -o talk.vtt --format vtt`

var editCmd = &cobra.Command{
	Use:   "edit [media_file_or_url]",
	Short: "Time subtitles interactively",
	Long:  editHelp,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().
		String("subs", "", "Existing SRT or VTT file to start from")
	editCmd.Flags().
		StringP("format", "f", "", "Export format (srt, vtt, ass); defaults to the config file")
	editCmd.Flags().
		Bool("follow", false, "Print the subtitle under the playhead whenever it changes")
}

func runEdit(cmd *cobra.Command, args []string) error {
	subsPath, _ := cmd.Flags().GetString("subs")
	formatStr, _ := cmd.Flags().GetString("format")
	follow, _ := cmd.Flags().GetBool("follow")
	outputPath, _ := cmd.Flags().GetString("output")

	if formatStr == "" {
		formatStr = cfg.Export.Format
	}
	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	s := newSession(ctx, cfg, out, follow)
	s.format = format
	if outputPath != "" {
		s.exportPath = outputPath
	} else {
		s.exportPath = strings.TrimSuffix(s.exportPath, filepath.Ext(s.exportPath)) +
			subtitle.GetExtensionForFormat(format)
	}

	if len(args) == 1 {
		if _, err := s.ctrl.LoadVideo(args[0]); err != nil {
			return err
		}
		if outputPath == "" && media.IsMediaFile(args[0]) {
			base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			s.exportPath = base + subtitle.GetExtensionForFormat(format)
		}
	}
	if subsPath != "" {
		if _, err := s.ctrl.Import(subsPath); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "cuemark: type 'help' for commands")
	return s.run(ctx, cmd.InOrStdin())
}

// one interactive editing session
type session struct {
	ctrl       *editor.Controller
	clock      *player.Clock
	out        io.Writer
	format     subtitle.Format
	exportPath string
}

func newSession(ctx context.Context, c *config.Config, out io.Writer, follow bool, clockOpts ...player.ClockOption) *session {
	clockOpts = append([]player.ClockOption{
		player.WithResolver(func(id string) (float64, error) {
			// YouTube ids have no local file to probe
			if _, err := os.Stat(id); err != nil {
				return 0, nil
			}
			return media.ProbeDuration(ctx, id)
		}),
	}, clockOpts...)
	clock := player.NewClock(clockOpts...)

	store := timeline.NewStore(
		timeline.WithEpsilon(c.Editor.Epsilon),
		timeline.WithGrace(c.Editor.ReleaseGrace),
	)

	s := &session{
		clock:      clock,
		out:        out,
		format:     subtitle.FormatSRT,
		exportPath: c.Export.Path,
	}

	opts := []editor.Option{
		editor.WithLogger(logger.With("component", "editor")),
		editor.WithSettings(editor.Settings{
			SeekStep:     c.Editor.SeekStep,
			PollInterval: c.Editor.PollInterval,
			DragBuffer:   c.Editor.DragBuffer,
		}),
		editor.WithAdvisoryHandler(func(a editor.Advisory) {
			fmt.Fprintf(s.out, "! %s\n", a.Message)
		}),
	}
	if follow {
		opts = append(opts, editor.WithActiveHandler(func(iv timeline.Interval, ok bool) {
			if ok {
				fmt.Fprintf(s.out, "> #%d %s\n", iv.ID, strings.ReplaceAll(iv.Text, "\n", " / "))
			}
		}))
	}
	s.ctrl = editor.NewController(store, clock, opts...)
	return s
}

// reads lines on a separate goroutine and hands them to the controller loop
func (s *session) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	commands := make(chan editor.Command)
	go func() {
		defer close(commands)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := scanner.Text()
			cmd := func(*editor.Controller) {
				if s.exec(line) {
					cancel()
				}
			}
			select {
			case <-ctx.Done():
				return
			case commands <- cmd:
			}
		}
	}()

	err := s.ctrl.Run(ctx, commands)
	s.clock.Destroy()
	return err
}

// exec runs one session line and reports whether the session should end
func (s *session) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, rest := strings.ToLower(fields[0]), fields[1:]

	if key, ok := editor.ParseKey(name); ok && key != editor.KeyEnter {
		res, handled := s.ctrl.HandleKey(editor.KeyEvent{Key: key})
		if !handled && !s.ctrl.Loaded() {
			fmt.Fprintln(s.out, "! load a video first")
			return false
		}
		if key == editor.KeyTab && handled {
			s.printResult(res)
		}
		if key != editor.KeyTab {
			s.printStatus()
		}
		return false
	}

	switch name {
	case "load":
		if len(rest) != 1 {
			fmt.Fprintln(s.out, "usage: load <url_or_file>")
			return false
		}
		if _, handled := s.ctrl.HandleKey(editor.KeyEvent{
			Key:    editor.KeyEnter,
			Target: editor.TargetURLField,
			Value:  rest[0],
		}); handled {
			fmt.Fprintf(s.out, "loaded %s (%s)\n", s.ctrl.VideoID(), timeline.FormatClock(s.clock.Duration()))
		}
	case "seek":
		t, err := parseSeconds(rest, 0)
		if err != nil {
			fmt.Fprintln(s.out, "usage: seek <seconds>")
			return false
		}
		if _, ok := s.ctrl.SeekTo(t); !ok {
			fmt.Fprintln(s.out, "! load a video first")
			return false
		}
		s.printStatus()
	case "text":
		id, err := parseID(rest)
		if err != nil {
			fmt.Fprintln(s.out, "usage: text <id> <text>")
			return false
		}
		text := strings.ReplaceAll(strings.Join(rest[1:], " "), `\n`, "\n")
		if _, err := s.ctrl.SetText(id, text); err == nil {
			fmt.Fprintf(s.out, "#%d text set\n", id)
		}
	case "del", "delete":
		id, err := parseID(rest)
		if err != nil {
			fmt.Fprintln(s.out, "usage: del <id>")
			return false
		}
		if res := s.ctrl.Delete(id); res.Outcome == timeline.OutcomeDeleted {
			fmt.Fprintf(s.out, "#%d deleted\n", id)
		}
	case "drag":
		s.drag(rest)
	case "list", "ls":
		s.list()
	case "status":
		s.printStatus()
	case "export":
		path := s.exportPath
		if len(rest) > 0 {
			path = rest[0]
		}
		format := s.format
		if len(rest) > 0 && filepath.Ext(path) != "" {
			format = subtitle.GetFormatFromExtension(path)
		}
		if err := s.ctrl.Export(path, format); err == nil {
			abs, _ := filepath.Abs(path)
			fmt.Fprintf(s.out, "exported %d subtitles to %s\n", len(s.ctrl.Store().Completed()), abs)
		}
	case "help", "?":
		fmt.Fprint(s.out, editHelp)
		fmt.Fprintln(s.out)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(s.out, "! unknown command %q, type 'help'\n", name)
	}
	return false
}

// drag <id> start|end <seconds>, driven through the pointer bus
func (s *session) drag(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(s.out, "usage: drag <id> start|end <seconds>")
		return
	}
	id, err := parseID(args)
	if err != nil {
		fmt.Fprintln(s.out, "usage: drag <id> start|end <seconds>")
		return
	}
	var handle timeline.Handle
	switch strings.ToLower(args[1]) {
	case "start":
		handle = timeline.HandleStart
	case "end":
		handle = timeline.HandleEnd
	default:
		fmt.Fprintln(s.out, "usage: drag <id> start|end <seconds>")
		return
	}
	t, err := parseSeconds(args, 2)
	if err != nil {
		fmt.Fprintln(s.out, "usage: drag <id> start|end <seconds>")
		return
	}

	if _, err := s.ctrl.BeginDrag(id, handle); err != nil {
		return
	}
	bus := s.ctrl.Pointer()
	bus.Move(editor.PointerEvent{Time: t})
	bus.Up(editor.PointerEvent{Time: t})

	if iv, ok := s.ctrl.Store().Get(id); ok {
		fmt.Fprintf(s.out, "#%d %s\n", id, formatSpan(iv))
	}
}

func (s *session) list() {
	ivs := s.ctrl.Store().Intervals()
	if len(ivs) == 0 {
		fmt.Fprintln(s.out, "no subtitles yet")
		return
	}
	for _, iv := range ivs {
		fmt.Fprintf(s.out, "#%-4d %s  %s\n", iv.ID, formatSpan(iv), strings.ReplaceAll(iv.Text, "\n", " / "))
	}
}

func (s *session) printResult(res timeline.Result) {
	iv, ok := s.ctrl.Store().Get(res.ID)
	if !ok {
		return
	}
	fmt.Fprintf(s.out, "%s #%d %s\n", res.Outcome, iv.ID, formatSpan(iv))
}

func (s *session) printStatus() {
	fmt.Fprintf(s.out, "%s %s / %s\n",
		s.clock.State(),
		timeline.FormatClock(s.clock.CurrentTime()),
		timeline.FormatClock(s.clock.Duration()))
}

func formatSpan(iv timeline.Interval) string {
	end := "..."
	if iv.End != nil {
		end = timeline.FormatClock(*iv.End)
	}
	return timeline.FormatClock(iv.Start) + " --> " + end
}

func parseID(args []string) (timeline.ID, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing id")
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", args[0], err)
	}
	return timeline.ID(n), nil
}

func parseSeconds(args []string, i int) (float64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing seconds")
	}
	return strconv.ParseFloat(args[i], 64)
}
