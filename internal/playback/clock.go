package playback

import (
	"sync"
	"time"
)

// Clock is the video as a time source. The controller never moves it
// except for explicit jump commands.
type Clock interface {
	// CurrentTimeMs reports ok=false while no video is available.
	CurrentTimeMs() (ms int64, ok bool)
	// IsPlaying is false when paused or ended.
	IsPlaying() bool
	// SetCurrentTimeMs must report the seek through its listener's
	// OnSeeked; jump commands rely on it to re-sync.
	SetCurrentTimeMs(ms int64)
}

// Listener receives playback events.
type Listener interface {
	OnPlay()
	OnPause()
	OnSeeked()
}

// rateClock is implemented by clocks that play faster or slower than
// real time; waits are scaled accordingly.
type rateClock interface {
	PlaybackRate() float64
}

// SimClock is a wall-clock driven stand-in for a video element.
type SimClock struct {
	mu         sync.Mutex
	now        func() time.Time
	rate       float64
	durationMs int64
	playing    bool
	baseMs     int64
	baseAt     time.Time
	listener   Listener
}

// NewSimClock returns a paused clock at 0. A durationMs of 0 means no end.
func NewSimClock(durationMs int64, rate float64) *SimClock {
	if rate <= 0 {
		rate = 1
	}
	return &SimClock{
		now:        time.Now,
		rate:       rate,
		durationMs: durationMs,
	}
}

func (c *SimClock) SetListener(l Listener) {
	c.mu.Lock()
	c.listener = l
	c.mu.Unlock()
}

func (c *SimClock) PlaybackRate() float64 {
	return c.rate
}

func (c *SimClock) DurationMs() int64 {
	return c.durationMs
}

func (c *SimClock) positionLocked() int64 {
	pos := c.baseMs
	if c.playing {
		elapsed := c.now().Sub(c.baseAt)
		pos += int64(float64(elapsed.Milliseconds()) * c.rate)
	}
	if c.durationMs > 0 && pos > c.durationMs {
		pos = c.durationMs
	}
	return pos
}

func (c *SimClock) CurrentTimeMs() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked(), true
}

func (c *SimClock) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return false
	}
	return c.durationMs == 0 || c.positionLocked() < c.durationMs
}

func (c *SimClock) Play() {
	c.mu.Lock()
	ended := c.durationMs > 0 && c.positionLocked() >= c.durationMs
	if c.playing && !ended {
		c.mu.Unlock()
		return
	}
	if ended {
		c.baseMs = 0
	}
	c.baseAt = c.now()
	c.playing = true
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.OnPlay()
	}
}

func (c *SimClock) Pause() {
	c.mu.Lock()
	if !c.playing {
		c.mu.Unlock()
		return
	}
	c.baseMs = c.positionLocked()
	c.playing = false
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.OnPause()
	}
}

// Toggle flips play/pause and reports whether the clock is now playing.
func (c *SimClock) Toggle() bool {
	if c.IsPlaying() {
		c.Pause()
		return false
	}
	c.Play()
	return true
}

func (c *SimClock) SetCurrentTimeMs(ms int64) {
	c.mu.Lock()
	if ms < 0 {
		ms = 0
	}
	if c.durationMs > 0 && ms > c.durationMs {
		ms = c.durationMs
	}
	c.baseMs = ms
	c.baseAt = c.now()
	l := c.listener
	c.mu.Unlock()

	if l != nil {
		l.OnSeeked()
	}
}
