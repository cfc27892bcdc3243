package subtitle

import (
	"strings"
)

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatASS Format = "ass"
)

// marker that selects the ASS grammar when it leads the content
const assMarker = "[Script Info]"

// represents single subtitle entry
type Entry struct {
	Counter int
	Start   Timecode
	End     Timecode
	Lines   []string
}

// reports whether ms lies within [Start, End]
func (e Entry) Contains(ms int64) bool {
	return e.Start.Ms <= ms && ms <= e.End.Ms
}

// display text with lines joined by newlines
func (e Entry) Text() string {
	return strings.Join(e.Lines, "\n")
}

// interface for writing subtitles to files
type Writer interface {
	Write(entries []Entry, path string) error
}
