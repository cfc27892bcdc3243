package subtitle

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/lipiplay/internal/textenc"
)

const byteOrderMark = "\ufeff"

var directionalMarkReplacer = strings.NewReplacer(
	"&lrm;", "",
	"&rlm;", "",
	"\u200e", "",
	"\u200f", "",
)

func stripDirectionalMarks(s string) string {
	return directionalMarkReplacer.Replace(s)
}

// picks the grammar from the leading marker; SRT when absent
func DetectFormat(content string) Format {
	trimmed := strings.TrimSpace(strings.TrimPrefix(content, byteOrderMark))
	if len(trimmed) >= len(assMarker) &&
		strings.EqualFold(trimmed[:len(assMarker)], assMarker) {
		return FormatASS
	}
	return FormatSRT
}

// Parse splits decoded subtitle text into entries in source order. Any
// malformed block or line fails the whole parse and no entries are
// returned.
func Parse(content string) ([]Entry, Format, error) {
	content = strings.TrimPrefix(content, byteOrderMark)
	format := DetectFormat(content)

	var (
		entries []Entry
		err     error
	)
	switch format {
	case FormatASS:
		entries, err = parseASS(content)
	default:
		entries, err = parseSRT(content)
	}
	if err != nil {
		return nil, format, err
	}
	return entries, format, nil
}

// Open reads, decodes and parses a subtitle file.
func Open(path string) ([]Entry, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read subtitle file: %w", err)
	}

	content, err := textenc.Decode(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode subtitle file: %w", err)
	}

	return Parse(content)
}
