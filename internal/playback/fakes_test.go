package playback

import (
	"sync"
	"time"

	"github.com/mgpai22/lipiplay/internal/subtitle"
)

type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	live := !t.stopped && !t.fired
	t.stopped = true
	return live
}

// fakeScheduler records timers and fires them only when told to.
type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) live() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the newest live timer and reports whether there was one.
func (s *fakeScheduler) fire() bool {
	live := s.live()
	if len(live) == 0 {
		return false
	}
	t := live[len(live)-1]
	t.fired = true
	t.fn()
	return true
}

type fakeClock struct {
	ms       int64
	ok       bool
	playing  bool
	listener Listener
}

func newFakeClock(ms int64, playing bool) *fakeClock {
	return &fakeClock{ms: ms, ok: true, playing: playing}
}

func (c *fakeClock) CurrentTimeMs() (int64, bool) { return c.ms, c.ok }
func (c *fakeClock) IsPlaying() bool              { return c.playing }

func (c *fakeClock) SetCurrentTimeMs(ms int64) {
	c.ms = ms
	if c.listener != nil {
		c.listener.OnSeeked()
	}
}

type fastClock struct {
	*fakeClock
	rate float64
}

func (c fastClock) PlaybackRate() float64 { return c.rate }

type recorder struct {
	mu       sync.Mutex
	counters []int
	messages []string
}

func (r *recorder) Highlight(e subtitle.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, e.Counter)
}

func (r *recorder) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recorder) highlighted() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counters...)
}
