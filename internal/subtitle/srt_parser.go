package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// "<start> --> <end>" with optional trailing cue settings
var srtRangeRegex = regexp.MustCompile(`^(\S+)\s*-->\s*(\S+)(?:\s.*)?$`)

var lineEndingReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

type sourceLine struct {
	num  int
	text string
}

// parseSRT reads blank-line separated blocks of counter, time range and
// text lines. The first malformed block aborts the whole parse.
func parseSRT(content string) ([]Entry, error) {
	lines := strings.Split(lineEndingReplacer.Replace(content), "\n")

	var (
		entries []Entry
		block   []sourceLine
	)

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		entry, err := parseSRTBlock(block)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		block = block[:0]
		return nil
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, sourceLine{num: i + 1, text: line})
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return entries, nil
}

func parseSRTBlock(block []sourceLine) (Entry, error) {
	head := block[0]
	counter, err := strconv.Atoi(head.text)
	if err != nil || counter <= 0 {
		return Entry{}, &ParseError{
			Line: head.num,
			Err:  fmt.Errorf("%w: %q", ErrMalformedCounter, head.text),
		}
	}

	if len(block) < 2 {
		return Entry{}, &ParseError{
			Line: head.num,
			Err:  fmt.Errorf("%w: block %d has no time range", ErrInvalidTimeRange, counter),
		}
	}

	timing := block[1]
	matches := srtRangeRegex.FindStringSubmatch(timing.text)
	if matches == nil {
		return Entry{}, &ParseError{
			Line: timing.num,
			Err:  fmt.Errorf("%w: %q", ErrInvalidTimeRange, timing.text),
		}
	}

	start, err := ParseTimecode(matches[1], TimecodeSRT)
	if err != nil {
		return Entry{}, &ParseError{Line: timing.num, Err: err}
	}
	end, err := ParseTimecode(matches[2], TimecodeSRT)
	if err != nil {
		return Entry{}, &ParseError{Line: timing.num, Err: err}
	}

	text := make([]string, 0, len(block)-2)
	for _, l := range block[2:] {
		text = append(text, stripDirectionalMarks(l.text))
	}

	return Entry{
		Counter: counter,
		Start:   start,
		End:     end,
		Lines:   text,
	}, nil
}
