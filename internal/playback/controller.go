package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/lipiplay/internal/logging"
	"github.com/mgpai22/lipiplay/internal/prefs"
	"github.com/mgpai22/lipiplay/internal/subtitle"
)

// DefaultMinWait is the shortest re-check interval. A boundary that is due
// now or already passed is re-checked after this instead of immediately.
const DefaultMinWait = 10 * time.Millisecond

// sync state of a controller
type State int

const (
	// no timeline loaded
	StateIdle State = iota
	// following playback
	StateArmed
	// timeline loaded, auto-sync off or held
	StateDisabled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateDisabled:
		return "disabled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Highlighter scrolls to and marks the active entry. It is called with the
// controller locked and must not call back into the controller.
type Highlighter interface {
	Highlight(entry subtitle.Entry)
}

type HighlighterFunc func(entry subtitle.Entry)

func (f HighlighterFunc) Highlight(entry subtitle.Entry) { f(entry) }

// Notifier shows a message to the user. Fire and forget.
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

type Options struct {
	Clock       Clock
	Highlighter Highlighter
	Notifier    Notifier
	// Prefs persists delay and restore point; nil keeps them in memory.
	Prefs     *prefs.Store
	Scheduler Scheduler
	Logger    *logging.Logger
	AutoSync  bool
	MinWait   time.Duration
}

// cursor is the controller's memory of what it last highlighted. index
// is the timeline position, since counters need not be unique.
type cursor struct {
	index   int
	counter int
	hasLast bool
}

// restorePoint is a highlight not yet written to the store.
type restorePoint struct {
	file    string
	counter int
	dirty   bool
}

// Controller keeps the highlighted subtitle in step with a Clock. It
// re-checks itself with a single pending timer set to the next entry
// boundary; every event cancels that timer and re-runs the check.
type Controller struct {
	mu sync.Mutex

	clock    Clock
	hl       Highlighter
	notifier Notifier
	prefs    *prefs.Store
	logger   *logging.Logger
	minWait  time.Duration

	slot      timerSlot
	sessionID string

	file     string
	timeline *subtitle.Timeline
	delayMs  int64
	auto     bool
	held     bool
	cursor   cursor
	// last highlighted counter from the previous session, 0 if none
	restore int
	unsaved restorePoint
}

func NewController(opts Options) *Controller {
	sched := opts.Scheduler
	if sched == nil {
		sched = RealScheduler{}
	}
	minWait := opts.MinWait
	if minWait <= 0 {
		minWait = DefaultMinWait
	}
	sessionID := uuid.NewString()

	return &Controller{
		clock:     opts.Clock,
		hl:        opts.Highlighter,
		notifier:  opts.Notifier,
		prefs:     opts.Prefs,
		logger:    logging.OrNop(opts.Logger).Named("sync").With("session", sessionID),
		minWait:   minWait,
		slot:      timerSlot{sched: sched},
		sessionID: sessionID,
		auto:      opts.AutoSync,
	}
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// Load parses content as the subtitles of file and starts following
// playback. On a parse error the user is notified once, the controller is
// left without a timeline, and the error is returned.
func (c *Controller) Load(ctx context.Context, file, content string) error {
	entries, format, err := subtitle.Parse(content)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.unloadLocked()
		c.logger.Warnw("Subtitle parse failed",
			"file", file,
			"format", format,
			"error", err,
		)
		if c.notifier != nil {
			c.notifier.Notify(fmt.Sprintf("Subtitles unavailable for %s: %v", file, err))
		}
		return fmt.Errorf("failed to parse subtitles: %w", err)
	}

	c.LoadEntries(ctx, file, entries)
	return nil
}

// LoadEntries installs an already parsed timeline for file and restores
// the file's stored delay.
func (c *Controller) LoadEntries(ctx context.Context, file string, entries []subtitle.Entry) {
	if err := c.Flush(ctx); err != nil {
		c.logger.Warnw("Could not save restore point", "error", err)
	}

	var rec prefs.Record
	if c.prefs != nil {
		r, err := c.prefs.Load(ctx, file)
		if err != nil {
			c.logger.Warnw("Could not restore preferences, using defaults",
				"file", file,
				"error", err,
			)
		} else {
			rec = r
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.unloadLocked()
	c.file = file
	c.timeline = subtitle.NewTimeline(entries)
	c.delayMs = rec.DelayMs
	c.restore = rec.LastCounter

	c.logger.Infow("Subtitles loaded",
		"file", file,
		"entries", len(entries),
		"delay_ms", rec.DelayMs,
		"restore_counter", rec.LastCounter,
		"state", c.stateLocked().String(),
	)

	c.tickLocked()
}

// Unload drops the timeline and any pending re-check, then saves the
// restore point of the file that was loaded.
func (c *Controller) Unload() {
	c.mu.Lock()
	c.unloadLocked()
	c.mu.Unlock()

	if err := c.Flush(context.Background()); err != nil {
		c.logger.Warnw("Could not save restore point", "error", err)
	}
}

func (c *Controller) unloadLocked() {
	c.slot.cancel()
	c.file = ""
	c.timeline = nil
	c.delayMs = 0
	c.restore = 0
	c.cursor = cursor{}
}

// Close stops the controller's timer and saves the restore point. The
// controller stays usable.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.slot.cancel()
	c.mu.Unlock()

	return c.Flush(context.Background())
}

// Flush writes the last highlighted entry as the file's restore point.
// Highlights only mark the point; the store is written here, outside the
// controller lock.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	p := c.unsaved
	c.unsaved = restorePoint{}
	c.mu.Unlock()

	if !p.dirty || c.prefs == nil {
		return nil
	}
	if err := c.prefs.SetRestorePoint(ctx, p.file, p.counter); err != nil {
		c.mu.Lock()
		if !c.unsaved.dirty {
			c.unsaved = p
		}
		c.mu.Unlock()
		return fmt.Errorf("failed to save restore point for %s: %w", p.file, err)
	}
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.timeline == nil:
		return StateIdle
	case c.auto && !c.held:
		return StateArmed
	default:
		return StateDisabled
	}
}

// Tick re-evaluates the active entry now.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked()
}

func (c *Controller) OnPlay()   { c.Tick() }
func (c *Controller) OnPause()  { c.Tick() }
func (c *Controller) OnSeeked() { c.Tick() }

// SetAutoSync switches between following playback and staying put.
func (c *Controller) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auto = enabled
	c.logger.Debugw("Auto-sync changed", "enabled", enabled)
	c.tickLocked()
}

// ToggleAutoSync flips auto-sync and returns the new setting.
func (c *Controller) ToggleAutoSync() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auto = !c.auto
	c.tickLocked()
	return c.auto
}

// HoldAuto suspends auto-sync while held is true, as when a modifier key
// is down. Releasing restores the previous state and checks immediately.
func (c *Controller) HoldAuto(held bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.held == held {
		return
	}
	c.held = held
	c.tickLocked()
}

func (c *Controller) Delay() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.delayMs
}

// SetDelay applies ms immediately and persists it for the loaded file.
// The in-memory delay is applied even when persisting fails.
func (c *Controller) SetDelay(ctx context.Context, ms int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setDelayLocked(ctx, ms)
}

// NudgeDelay adds deltaMs to the current delay.
func (c *Controller) NudgeDelay(ctx context.Context, deltaMs int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delay := c.delayMs + deltaMs
	return delay, c.setDelayLocked(ctx, delay)
}

func (c *Controller) setDelayLocked(ctx context.Context, ms int64) error {
	c.delayMs = ms
	c.logger.Debugw("Delay changed", "delay_ms", ms)

	var err error
	if c.prefs != nil && c.file != "" {
		err = c.prefs.SetDelay(ctx, c.file, ms)
	}
	c.tickLocked()
	return err
}

// tickLocked is the whole sync step: cancel the pending re-check, find
// the entry for the current subtitle time, highlight it if active, and
// while playing re-check at its next boundary.
func (c *Controller) tickLocked() {
	c.slot.cancel()

	if c.stateLocked() != StateArmed || c.clock == nil {
		return
	}
	videoMs, ok := c.clock.CurrentTimeMs()
	if !ok {
		return
	}

	query := videoMs - c.delayMs
	idx, active, found := c.timeline.Search(query)
	if !found {
		return
	}
	entry := c.timeline.At(idx)

	var waitMs int64
	if active {
		c.highlightLocked(idx, entry)
		waitMs = entry.End.Ms - query
		// a later entry may start inside this one
		if start, ok := c.timeline.NextStartAfter(query); ok && start-query < waitMs {
			waitMs = start - query
		}
	} else {
		waitMs = entry.Start.Ms - query
	}

	if !c.clock.IsPlaying() {
		return
	}
	c.slot.arm(c.waitDuration(waitMs), c.fire)
}

// waitDuration converts subtitle milliseconds into wall time, never below
// the minimum wait.
func (c *Controller) waitDuration(waitMs int64) time.Duration {
	d := time.Duration(waitMs) * time.Millisecond
	if rc, ok := c.clock.(rateClock); ok {
		if rate := rc.PlaybackRate(); rate > 0 && rate != 1 {
			d = time.Duration(float64(d) / rate)
		}
	}
	if d < c.minWait {
		d = c.minWait
	}
	return d
}

func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.slot.claim(gen) {
		return
	}
	c.tickLocked()
}

// highlightLocked skips the entry highlighted last time, so repeated ticks
// inside one entry do not scroll again.
func (c *Controller) highlightLocked(idx int, entry subtitle.Entry) {
	if c.cursor.hasLast && c.cursor.index == idx {
		return
	}
	c.cursor = cursor{index: idx, counter: entry.Counter, hasLast: true}

	if c.hl != nil {
		c.hl.Highlight(entry)
	}
	if c.file != "" {
		c.unsaved = restorePoint{file: c.file, counter: entry.Counter, dirty: true}
	}
}

// Snapshot is a point-in-time view of the controller for status displays.
type Snapshot struct {
	State       State
	File        string
	Entries     int
	DelayMs     int64
	LastCounter int
	HasLast     bool
	AutoSync    bool
	Held        bool
	Pending     bool
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:       c.stateLocked(),
		File:        c.file,
		DelayMs:     c.delayMs,
		LastCounter: c.cursor.counter,
		HasLast:     c.cursor.hasLast,
		AutoSync:    c.auto,
		Held:        c.held,
		Pending:     c.slot.pending(),
	}
	if c.timeline != nil {
		s.Entries = c.timeline.Len()
	}
	return s
}
