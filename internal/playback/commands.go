package playback

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgpai22/lipiplay/internal/subtitle"
)

var (
	ErrNoTimeline     = errors.New("no subtitles loaded")
	ErrNoTimeSource   = errors.New("no video time available")
	ErrUnknownEntry   = errors.New("no entry with that counter")
	ErrNoRestorePoint = errors.New("no restore point saved")
)

// which edge of an entry a gesture refers to
type Boundary int

const (
	BoundaryStart Boundary = iota
	BoundaryEnd
)

func (b Boundary) of(e subtitle.Entry) int64 {
	if b == BoundaryEnd {
		return e.End.Ms
	}
	return e.Start.Ms
}

// PinDelay makes the chosen boundary of entry counter line up with the
// current video time: delay = video time - boundary. The new delay is
// applied, persisted and returned.
func (c *Controller) PinDelay(ctx context.Context, counter int, b Boundary) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeline == nil {
		return 0, ErrNoTimeline
	}
	entry, ok := c.timeline.ByCounter(counter)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownEntry, counter)
	}
	if c.clock == nil {
		return 0, ErrNoTimeSource
	}
	videoMs, ok := c.clock.CurrentTimeMs()
	if !ok {
		return 0, ErrNoTimeSource
	}

	boundary := b.of(entry)
	delay := videoMs - boundary
	if c.prefs != nil {
		d, err := c.prefs.PinDelay(ctx, c.file, boundary, videoMs)
		if err != nil {
			c.delayMs = delay
			c.tickLocked()
			return delay, err
		}
		delay = d
	}

	c.logger.Infow("Delay pinned",
		"counter", counter,
		"boundary_ms", boundary,
		"video_ms", videoMs,
		"delay_ms", delay,
	)
	c.delayMs = delay
	c.tickLocked()
	return delay, nil
}

// JumpToTime moves the video to ms. The re-sync comes from the clock's
// OnSeeked, so the clock is called without the controller lock held.
func (c *Controller) JumpToTime(ms int64) error {
	if c.clock == nil {
		return ErrNoTimeSource
	}
	c.clock.SetCurrentTimeMs(ms)
	return nil
}

// JumpToEntry moves the video to where entry counter starts, taking the
// delay into account.
func (c *Controller) JumpToEntry(counter int) error {
	c.mu.Lock()
	if c.timeline == nil {
		c.mu.Unlock()
		return ErrNoTimeline
	}
	entry, ok := c.timeline.ByCounter(counter)
	target := entry.Start.Ms + c.delayMs
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntry, counter)
	}
	return c.JumpToTime(max(target, 0))
}

// JumpToRestorePoint returns to the entry that was highlighted last when
// the file was previously open.
func (c *Controller) JumpToRestorePoint() (int, error) {
	c.mu.Lock()
	loaded, counter := c.timeline != nil, c.restore
	c.mu.Unlock()

	if !loaded {
		return 0, ErrNoTimeline
	}
	if counter <= 0 {
		return 0, ErrNoRestorePoint
	}
	return counter, c.JumpToEntry(counter)
}
