package playback

import "time"

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop reports whether the call prevented the callback from running.
	Stop() bool
}

// Scheduler runs fn once after d. The callback may run on another
// goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealScheduler schedules on the runtime timer.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// timerSlot holds at most one pending timer. Arming replaces the pending
// timer; the generation lets a callback that raced a cancellation find
// out it is stale. Callers serialize access.
type timerSlot struct {
	sched Scheduler
	timer Timer
	gen   uint64
}

func (s *timerSlot) arm(d time.Duration, fn func(gen uint64)) {
	s.cancel()
	gen := s.gen
	s.timer = s.sched.AfterFunc(d, func() { fn(gen) })
}

func (s *timerSlot) cancel() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

// claim marks the timer of generation gen as fired; false for stale ones
func (s *timerSlot) claim(gen uint64) bool {
	if s.timer == nil || gen != s.gen {
		return false
	}
	s.timer = nil
	return true
}

func (s *timerSlot) pending() bool {
	return s.timer != nil
}
