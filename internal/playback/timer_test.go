package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimerSlot(t *testing.T) {
	sched := &fakeScheduler{}
	slot := timerSlot{sched: sched}

	var fired []uint64
	record := func(gen uint64) {
		if slot.claim(gen) {
			fired = append(fired, gen)
		}
	}

	slot.arm(time.Second, record)
	first := sched.timers[0]
	slot.arm(2*time.Second, record)

	assert.True(t, first.stopped, "re-arming stops the previous timer")
	assert.True(t, slot.pending())
	assert.Len(t, sched.live(), 1)

	first.fn()
	assert.Empty(t, fired, "stale generation is not claimed")

	assert.True(t, sched.fire())
	assert.Len(t, fired, 1)
	assert.False(t, slot.pending())

	slot.arm(time.Second, record)
	slot.cancel()
	assert.False(t, slot.pending())
	assert.False(t, sched.fire())
}
