package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SubRip format
type SRTWriter struct{}

// Advanced SubStation Alpha format
type ASSWriter struct {
	Title    string
	FontName string
	FontSize int
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatASS:
		return &ASSWriter{
			Title:    "lipiplay export",
			FontName: "Arial",
			FontSize: 20,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Shift moves entries from subtitle time into video time by adding
// delayMs. Times that would go negative clamp to zero. The raw timecode
// text is dropped since it no longer matches.
func Shift(entries []Entry, delayMs int64) []Entry {
	shifted := make([]Entry, len(entries))
	for i, e := range entries {
		e.Start = Timecode{Ms: max(e.Start.Ms+delayMs, 0)}
		e.End = Timecode{Ms: max(e.End.Ms+delayMs, 0)}
		shifted[i] = e
	}
	return shifted
}

// writes the entries to an SRT file, renumbered from 1
func (w *SRTWriter) Write(entries []Entry, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatSRTTime(entry.Start.Ms),
			FormatSRTTime(entry.End.Ms)))

		sb.WriteString(entry.Text())
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// writes the entries to an ASS file with a single default style
func (w *ASSWriter) Write(entries []Entry, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", w.Title))
	sb.WriteString("ScriptType: v4.00+\n")
	sb.WriteString("Collisions: Normal\n")
	sb.WriteString("PlayDepth: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	sb.WriteString(fmt.Sprintf("Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n\n",
		w.FontName, w.FontSize))

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, entry := range entries {
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			FormatASSTime(entry.Start.Ms),
			FormatASSTime(entry.End.Ms),
			strings.Join(entry.Lines, `\N`)))
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".ass", ".ssa":
		return FormatASS
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatASS:
		return ".ass"
	default:
		return ".srt"
	}
}
