package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// timestamp grammar of a subtitle format
type TimecodeFormat int

const (
	// H+:MM:SS,mmm
	TimecodeSRT TimecodeFormat = iota
	// H:MM:SS.cc
	TimecodeASS
)

func (f TimecodeFormat) String() string {
	switch f {
	case TimecodeSRT:
		return "srt"
	case TimecodeASS:
		return "ass"
	default:
		return fmt.Sprintf("TimecodeFormat(%d)", int(f))
	}
}

var (
	srtTimecodeRegex = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2}),(\d{3})$`)
	assTimecodeRegex = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)
)

// largest hour count that cannot overflow int64 milliseconds; the
// two-digit minute and second fields add less than two hours
const maxHours = math.MaxInt64/3600000 - 2

// Timecode is an exact point in subtitle time. Raw keeps the source text
// for display.
type Timecode struct {
	Raw string
	Ms  int64
}

func (t Timecode) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	return FormatSRTTime(t.Ms)
}

// ParseTimecode converts raw into milliseconds using the grammar of format.
func ParseTimecode(raw string, format TimecodeFormat) (Timecode, error) {
	value := strings.TrimSpace(raw)

	var (
		re    *regexp.Regexp
		scale int64
	)
	switch format {
	case TimecodeSRT:
		re, scale = srtTimecodeRegex, 1
	case TimecodeASS:
		re, scale = assTimecodeRegex, 10
	default:
		return Timecode{}, fmt.Errorf("%w: unknown format %s", ErrMalformedTimecode, format)
	}

	matches := re.FindStringSubmatch(value)
	if matches == nil {
		return Timecode{}, fmt.Errorf("%w: %q is not a %s timestamp", ErrMalformedTimecode, raw, format)
	}

	parts := make([]int64, 4)
	for i := range parts {
		n, err := strconv.ParseInt(matches[i+1], 10, 64)
		if err != nil {
			return Timecode{}, fmt.Errorf("%w: %q: %v", ErrMalformedTimecode, raw, err)
		}
		parts[i] = n
	}

	if parts[0] > maxHours {
		return Timecode{}, fmt.Errorf("%w: %q hours out of range", ErrMalformedTimecode, raw)
	}

	ms := parts[3]*scale +
		parts[2]*1000 +
		parts[1]*60000 +
		parts[0]*3600000

	return Timecode{Raw: value, Ms: ms}, nil
}

// renders ms as HH:MM:SS,mmm; negative values clamp to zero
func FormatSRTTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// renders ms as H:MM:SS.cc, truncating to centiseconds
func FormatASSTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	centis := (ms % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}
