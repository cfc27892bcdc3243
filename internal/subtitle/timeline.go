package subtitle

import (
	"math/bits"
	"sort"
)

// Timeline is the read-only, start-ordered entry sequence of one file.
// It is safe for concurrent readers.
type Timeline struct {
	entries []Entry
	// maxEnd[k][i] is the latest end among entries[i : i+2^k]
	maxEnd    [][]int64
	byCounter map[int]int
}

// NewTimeline orders entries by start, keeping source order for equal
// starts. The input slice is not modified.
func NewTimeline(entries []Entry) *Timeline {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Ms < sorted[j].Start.Ms
	})

	t := &Timeline{
		entries:   sorted,
		byCounter: make(map[int]int, len(sorted)),
	}

	n := len(sorted)
	if n > 0 {
		ends := make([]int64, n)
		for i, e := range sorted {
			ends[i] = e.End.Ms
		}
		t.maxEnd = append(t.maxEnd, ends)
		for width := 2; width <= n; width *= 2 {
			prev := t.maxEnd[len(t.maxEnd)-1]
			half := width / 2
			level := make([]int64, n-width+1)
			for i := range level {
				level[i] = max(prev[i], prev[i+half])
			}
			t.maxEnd = append(t.maxEnd, level)
		}
	}

	for i, e := range sorted {
		if _, dup := t.byCounter[e.Counter]; !dup {
			t.byCounter[e.Counter] = i
		}
	}

	return t
}

// latest end among entries[lo : hi+1]
func (t *Timeline) rangeMaxEnd(lo, hi int) int64 {
	k := bits.Len(uint(hi-lo+1)) - 1
	return max(t.maxEnd[k][lo], t.maxEnd[k][hi-(1<<k)+1])
}

func (t *Timeline) Len() int {
	return len(t.entries)
}

// Entries returns the start-ordered slice; callers must not modify it.
func (t *Timeline) Entries() []Entry {
	return t.entries
}

func (t *Timeline) At(i int) Entry {
	return t.entries[i]
}

// first entry carrying counter
func (t *Timeline) ByCounter(counter int) (Entry, bool) {
	i, ok := t.byCounter[counter]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// earliest start and latest end; zeros for an empty timeline
func (t *Timeline) Span() (int64, int64) {
	n := len(t.entries)
	if n == 0 {
		return 0, 0
	}
	return t.entries[0].Start.Ms, t.rangeMaxEnd(0, n-1)
}

// FindActiveOrNext returns the entry active at ms, or the next one to
// start when ms falls before the first entry or in a gap. It reports false
// once ms is past every entry's end.
func (t *Timeline) FindActiveOrNext(ms int64) (Entry, bool) {
	i, _, ok := t.Search(ms)
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Search is FindActiveOrNext by index; active reports whether the entry
// contains ms rather than being the upcoming one.
//
// Entries sharing a boundary or overlapping resolve to the containing
// entry with the latest start. Lookups take O(log n) whatever the overlap.
func (t *Timeline) Search(ms int64) (index int, active bool, ok bool) {
	n := len(t.entries)
	if n == 0 {
		return -1, false, false
	}
	if ms < t.entries[0].Start.Ms {
		return 0, false, true
	}

	next := t.nextIndex(ms)
	last := next - 1

	if t.rangeMaxEnd(0, last) < ms {
		// gap: nothing started so far is still running
		if next == n {
			return -1, false, false
		}
		return next, false, true
	}

	// the latest end over entries[j:last+1] only shrinks as j grows, so
	// the last j still reaching ms is the containing entry with the
	// latest start
	past := sort.Search(last+1, func(j int) bool {
		return t.rangeMaxEnd(j, last) < ms
	})
	return past - 1, true, true
}

// NextStartAfter is the start of the first entry beginning strictly
// after ms.
func (t *Timeline) NextStartAfter(ms int64) (int64, bool) {
	next := t.nextIndex(ms)
	if next == len(t.entries) {
		return 0, false
	}
	return t.entries[next].Start.Ms, true
}

// index of the first entry starting after ms
func (t *Timeline) nextIndex(ms int64) int {
	return sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Start.Ms > ms
	})
}

// FindActiveOrNext is the one-shot form of Timeline.FindActiveOrNext.
func FindActiveOrNext(entries []Entry, ms int64) (Entry, bool) {
	return NewTimeline(entries).FindActiveOrNext(ms)
}
