package subtitle

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestShift(t *testing.T) {
	entries := []Entry{entry(1, 1000, 2000), entry(2, 100, 400)}

	shifted := Shift(entries, -500)

	if shifted[0].Start.Ms != 500 || shifted[0].End.Ms != 1500 {
		t.Errorf("entry 0: got %d-%d", shifted[0].Start.Ms, shifted[0].End.Ms)
	}
	if shifted[1].Start.Ms != 0 || shifted[1].End.Ms != 0 {
		t.Errorf("entry 1: expected clamp to zero, got %d-%d", shifted[1].Start.Ms, shifted[1].End.Ms)
	}
	if entries[0].Start.Ms != 1000 {
		t.Error("Shift must not modify its input")
	}
}

func TestWriteSRTRoundTrip(t *testing.T) {
	entries := []Entry{
		{Counter: 4, Start: Timecode{Ms: 1000}, End: Timecode{Ms: 2500}, Lines: []string{"First", "second line"}},
		{Counter: 9, Start: Timecode{Ms: 3000}, End: Timecode{Ms: 4000}, Lines: []string{"<i>Third</i>"}},
	}
	path := filepath.Join(t.TempDir(), "out", "test.srt")

	w, err := NewWriter(FormatSRT)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Write(entries, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, format, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if format != FormatSRT || len(got) != 2 {
		t.Fatalf("expected 2 SRT entries, got %d (%s)", len(got), format)
	}
	if got[0].Counter != 1 || got[1].Counter != 2 {
		t.Errorf("expected renumbering, got %d and %d", got[0].Counter, got[1].Counter)
	}
	if got[0].Text() != "First\nsecond line" || got[1].Text() != "<i>Third</i>" {
		t.Errorf("unexpected text %q / %q", got[0].Text(), got[1].Text())
	}
	if got[0].End.Ms != 2500 {
		t.Errorf("expected end 2500, got %d", got[0].End.Ms)
	}
}

func TestWriteASS(t *testing.T) {
	entries := []Entry{entry(1, 1230, 4560)}
	entries[0].Lines = []string{"top", "bottom"}
	path := filepath.Join(t.TempDir(), "test.ass")

	w, err := NewWriter(FormatASS)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Write(entries, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `Dialogue: 0,0:00:01.23,0:00:04.56,Default,,0,0,0,,top\Nbottom`) {
		t.Errorf("missing dialogue line in:\n%s", data)
	}

	got, format, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if format != FormatASS || len(got) != 1 || got[0].Text() != "top\nbottom" {
		t.Errorf("unexpected round trip: %s %+v", format, got)
	}
}

func TestNewWriterUnsupported(t *testing.T) {
	if _, err := NewWriter(Format("vtt")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestFormatExtensions(t *testing.T) {
	if GetFormatFromExtension("a/b.SSA") != FormatASS {
		t.Error("expected .SSA to be ASS")
	}
	if GetFormatFromExtension("a/b.txt") != FormatSRT {
		t.Error("expected unknown extension to fall back to SRT")
	}
	if GetExtensionForFormat(FormatASS) != ".ass" || GetExtensionForFormat(FormatSRT) != ".srt" {
		t.Error("unexpected extensions")
	}
}
