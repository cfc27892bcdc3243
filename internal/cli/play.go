package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mgpai22/lipiplay/internal/logging"
	"github.com/mgpai22/lipiplay/internal/media"
	"github.com/mgpai22/lipiplay/internal/playback"
	"github.com/mgpai22/lipiplay/internal/subtitle"
	"github.com/mgpai22/lipiplay/internal/textenc"
	"github.com/spf13/cobra"
)

// padding after the last subtitle when no video duration is known
const trailingMs = 5000

var (
	playVideo    string
	playRate     float64
	playDuration int64
	playPaused   bool
)

var playCmd = &cobra.Command{
	Use:   "play [subtitle file]",
	Short: "Follow a playback clock and print each subtitle as it becomes active",
	Long: `Play a subtitle file against a simulated video clock, printing every
entry as it becomes active. Type commands while it runs:

  p              play / pause
  s <ms>         seek the video to ms
  d <ms>         set the delay
  d+ / d-        nudge the delay by the configured step
  pin <n> [end]  line entry n's start (or end) up with the current time
  j <n>          jump to entry n
  r              jump to where you stopped last time
  a              toggle auto-sync
  h              hold / release auto-sync
  st             show status
  q              quit

With --video the clock runs for the video's duration as reported by ffprobe.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().
		StringVar(&playVideo, "video", "", "Video file used for the clock duration")
	playCmd.Flags().
		Float64Var(&playRate, "rate", 1.0, "Playback rate")
	playCmd.Flags().
		Int64Var(&playDuration, "duration", 0, "Clock duration in milliseconds (overrides --video)")
	playCmd.Flags().
		BoolVar(&playPaused, "paused", false, "Start paused")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	if playRate <= 0 {
		return fmt.Errorf("rate must be positive, got %v", playRate)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read subtitle file: %w", err)
	}
	content, err := textenc.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to decode subtitle file: %w", err)
	}

	durationMs, err := clockDuration(ctx, content)
	if err != nil {
		return err
	}

	store, kv, err := openPrefs()
	if err != nil {
		return err
	}
	defer kv.Close()

	out := &lockedWriter{w: cmd.OutOrStdout()}
	color := logging.IsTerminal(stdoutFile(cmd))

	clock := playback.NewSimClock(durationMs, playRate)
	ctrl := playback.NewController(playback.Options{
		Clock: clock,
		Highlighter: playback.HighlighterFunc(func(e subtitle.Entry) {
			out.printf("[%d] %s  %s\n", e.Counter, subtitle.FormatSRTTime(e.Start.Ms), styleText(e.Text(), color))
		}),
		Notifier: playback.NotifierFunc(func(msg string) {
			out.printf("! %s\n", msg)
		}),
		Prefs:     store,
		Logger:    logger,
		AutoSync:  cfg.Sync.AutoSync,
		MinWait:   time.Duration(cfg.Sync.MinWaitMs) * time.Millisecond,
		Scheduler: playback.RealScheduler{},
	})
	defer func() {
		if err := ctrl.Close(); err != nil {
			logger.Warnw("Could not save restore point", "error", err)
		}
	}()
	clock.SetListener(ctrl)

	// a parse failure has been reported through the notifier; the clock
	// still runs so the user can see the player works without subtitles
	if err := ctrl.Load(ctx, path, content); err != nil {
		logger.Debugw("Playing without subtitles", "error", err)
	}

	s := &playSession{
		ctrl:      ctrl,
		clock:     clock,
		out:       out,
		nudgeStep: int64(cfg.Sync.NudgeStepMs),
	}
	if !playPaused {
		clock.Play()
	}
	return s.run(ctx, cmd.InOrStdin())
}

func clockDuration(ctx context.Context, content string) (int64, error) {
	if playDuration > 0 {
		return playDuration, nil
	}
	if playVideo != "" {
		ms, err := media.DurationMs(ctx, playVideo)
		if err != nil {
			return 0, fmt.Errorf("failed to probe video: %w", err)
		}
		logger.Debugw("Probed video", "file", playVideo, "duration_ms", ms)
		return ms, nil
	}

	entries, _, err := subtitle.Parse(content)
	if err != nil || len(entries) == 0 {
		return 60 * 1000, nil
	}
	_, last := subtitle.NewTimeline(entries).Span()
	return last + trailingMs, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, a ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, a...)
}

type playSession struct {
	ctrl      *playback.Controller
	clock     *playback.SimClock
	out       *lockedWriter
	nudgeStep int64
	held      bool
}

func (s *playSession) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		pc, err := parsePlayCommand(scanner.Text())
		if err != nil {
			s.out.printf("? %v\n", err)
			continue
		}
		if pc.kind == cmdNone {
			continue
		}
		if pc.kind == cmdQuit {
			return nil
		}
		if err := s.exec(ctx, pc); err != nil {
			s.out.printf("! %v\n", err)
		}
	}
	return scanner.Err()
}

type playCommandKind int

const (
	cmdNone playCommandKind = iota
	cmdToggle
	cmdSeek
	cmdSetDelay
	cmdNudge
	cmdPin
	cmdJump
	cmdRestore
	cmdAuto
	cmdHold
	cmdStatus
	cmdQuit
)

type playCommand struct {
	kind     playCommandKind
	ms       int64
	sign     int64
	counter  int
	boundary playback.Boundary
}

var errUsage = errors.New("unknown command (p, s <ms>, d <ms>, d+, d-, pin <n> [end], j <n>, r, a, h, st, q)")

func parsePlayCommand(line string) (playCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return playCommand{kind: cmdNone}, nil
	}

	name, rest := strings.ToLower(fields[0]), fields[1:]
	switch name {
	case "p", "play", "pause":
		return playCommand{kind: cmdToggle}, nil
	case "s", "seek":
		ms, err := oneInt(rest, "time")
		return playCommand{kind: cmdSeek, ms: ms}, err
	case "d", "delay":
		ms, err := oneInt(rest, "delay")
		return playCommand{kind: cmdSetDelay, ms: ms}, err
	case "d+":
		return playCommand{kind: cmdNudge, sign: 1}, nil
	case "d-":
		return playCommand{kind: cmdNudge, sign: -1}, nil
	case "pin":
		if len(rest) == 0 || len(rest) > 2 {
			return playCommand{}, errors.New("usage: pin <counter> [start|end]")
		}
		n, err := strconv.Atoi(rest[0])
		if err != nil {
			return playCommand{}, fmt.Errorf("invalid counter %q", rest[0])
		}
		pc := playCommand{kind: cmdPin, counter: n, boundary: playback.BoundaryStart}
		if len(rest) == 2 {
			switch strings.ToLower(rest[1]) {
			case "start":
			case "end":
				pc.boundary = playback.BoundaryEnd
			default:
				return playCommand{}, fmt.Errorf("invalid boundary %q (start or end)", rest[1])
			}
		}
		return pc, nil
	case "j", "jump":
		n, err := oneInt(rest, "counter")
		return playCommand{kind: cmdJump, counter: int(n)}, err
	case "r", "restore":
		return playCommand{kind: cmdRestore}, nil
	case "a", "auto":
		return playCommand{kind: cmdAuto}, nil
	case "h", "hold":
		return playCommand{kind: cmdHold}, nil
	case "st", "status":
		return playCommand{kind: cmdStatus}, nil
	case "q", "quit", "exit":
		return playCommand{kind: cmdQuit}, nil
	default:
		return playCommand{}, errUsage
	}
}

func oneInt(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected one %s argument", what)
	}
	v, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return v, nil
}

func (s *playSession) exec(ctx context.Context, pc playCommand) error {
	switch pc.kind {
	case cmdToggle:
		if s.clock.Toggle() {
			s.out.printf("playing\n")
		} else {
			s.out.printf("paused at %s\n", s.position())
		}
	case cmdSeek:
		return s.ctrl.JumpToTime(pc.ms)
	case cmdSetDelay:
		err := s.ctrl.SetDelay(ctx, pc.ms)
		s.out.printf("delay %+d ms\n", s.ctrl.Delay())
		return err
	case cmdNudge:
		delay, err := s.ctrl.NudgeDelay(ctx, pc.sign*s.nudgeStep)
		s.out.printf("delay %+d ms\n", delay)
		return err
	case cmdPin:
		delay, err := s.ctrl.PinDelay(ctx, pc.counter, pc.boundary)
		if errors.Is(err, playback.ErrNoTimeline) ||
			errors.Is(err, playback.ErrUnknownEntry) ||
			errors.Is(err, playback.ErrNoTimeSource) {
			return err
		}
		s.out.printf("delay %+d ms\n", delay)
		return err
	case cmdJump:
		return s.ctrl.JumpToEntry(pc.counter)
	case cmdRestore:
		counter, err := s.ctrl.JumpToRestorePoint()
		if err != nil {
			return err
		}
		s.out.printf("back to entry %d\n", counter)
	case cmdAuto:
		if s.ctrl.ToggleAutoSync() {
			s.out.printf("auto-sync on\n")
		} else {
			s.out.printf("auto-sync off\n")
		}
	case cmdHold:
		s.held = !s.held
		s.ctrl.HoldAuto(s.held)
		if s.held {
			s.out.printf("auto-sync held\n")
		} else {
			s.out.printf("auto-sync released\n")
		}
	case cmdStatus:
		snap := s.ctrl.Snapshot()
		last := "-"
		if snap.HasLast {
			last = strconv.Itoa(snap.LastCounter)
		}
		s.out.printf("%s  state=%s entries=%d delay=%+dms last=%s playing=%t\n",
			s.position(), snap.State, snap.Entries, snap.DelayMs, last, s.clock.IsPlaying())
	}
	return nil
}

func (s *playSession) position() string {
	ms, _ := s.clock.CurrentTimeMs()
	return subtitle.FormatSRTTime(ms)
}
