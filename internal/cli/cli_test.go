package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgpai22/lipiplay/internal/playback"
	"github.com/mgpai22/lipiplay/internal/subtitle"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,000
<i>One</i>

2
00:00:04,000 --> 00:00:06,000
Two
`

func TestParsePlayCommand(t *testing.T) {
	tests := []struct {
		line string
		want playCommand
	}{
		{"", playCommand{kind: cmdNone}},
		{"p", playCommand{kind: cmdToggle}},
		{"s 1500", playCommand{kind: cmdSeek, ms: 1500}},
		{"d -250", playCommand{kind: cmdSetDelay, ms: -250}},
		{"d+", playCommand{kind: cmdNudge, sign: 1}},
		{"D-", playCommand{kind: cmdNudge, sign: -1}},
		{"pin 4", playCommand{kind: cmdPin, counter: 4, boundary: playback.BoundaryStart}},
		{"pin 4 end", playCommand{kind: cmdPin, counter: 4, boundary: playback.BoundaryEnd}},
		{"j 12", playCommand{kind: cmdJump, counter: 12}},
		{"r", playCommand{kind: cmdRestore}},
		{"a", playCommand{kind: cmdAuto}},
		{"h", playCommand{kind: cmdHold}},
		{"status", playCommand{kind: cmdStatus}},
		{" q ", playCommand{kind: cmdQuit}},
	}

	for _, tt := range tests {
		got, err := parsePlayCommand(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestParsePlayCommandErrors(t *testing.T) {
	for _, line := range []string{"s", "s soon", "d 1 2", "pin", "pin x", "pin 3 middle", "j", "dance"} {
		_, err := parsePlayCommand(line)
		assert.Error(t, err, line)
	}
}

func TestResolveExportFormat(t *testing.T) {
	tests := []struct {
		flag, output string
		input        subtitle.Format
		want         subtitle.Format
	}{
		{"ASS", "out.srt", subtitle.FormatSRT, subtitle.FormatASS},
		{"", "out.ssa", subtitle.FormatSRT, subtitle.FormatASS},
		{"", "", subtitle.FormatASS, subtitle.FormatASS},
		{"", "out", subtitle.FormatSRT, subtitle.FormatSRT},
		{"", "", "", subtitle.FormatSRT},
	}
	for _, tt := range tests {
		got, err := resolveExportFormat(tt.flag, tt.output, tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := resolveExportFormat("vtt", "", subtitle.FormatSRT)
	assert.Error(t, err)
}

func TestDefaultExportPath(t *testing.T) {
	assert.Equal(t, "/v/movie.synced.srt", defaultExportPath("/v/movie.srt", subtitle.FormatSRT))
	assert.Equal(t, "/v/movie.synced.ass", defaultExportPath("/v/movie.srt", subtitle.FormatASS))
}

func TestRenderEntries(t *testing.T) {
	entries, _, err := subtitle.Parse(sampleSRT)
	require.NoError(t, err)

	out := renderEntries(entries, false)
	assert.Contains(t, out, "00:00:04,000")
	assert.Contains(t, out, "One")
	assert.NotContains(t, out, "<i>")
}

func TestRenderTableEmpty(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestPlaySession(t *testing.T) {
	ctx := context.Background()
	entries, _, err := subtitle.Parse(sampleSRT)
	require.NoError(t, err)

	var buf bytes.Buffer
	out := &lockedWriter{w: &buf}

	clock := playback.NewSimClock(10000, 1)
	ctrl := playback.NewController(playback.Options{
		Clock: clock,
		Highlighter: playback.HighlighterFunc(func(e subtitle.Entry) {
			out.printf("[%d] %s\n", e.Counter, styleText(e.Text(), false))
		}),
		AutoSync: true,
	})
	defer ctrl.Close()
	clock.SetListener(ctrl)
	ctrl.LoadEntries(ctx, "movie.srt", entries)

	s := &playSession{ctrl: ctrl, clock: clock, out: out, nudgeStep: 100}
	err = s.run(ctx, strings.NewReader("j 2\nd+\nst\npin 9\nbogus\nq\nj 1\n"))
	require.NoError(t, err)

	got := buf.String()
	assert.Contains(t, got, "[2] Two")
	assert.Contains(t, got, "delay +100 ms")
	assert.Contains(t, got, "state=armed")
	assert.Contains(t, got, "no entry with that counter")
	assert.Contains(t, got, "? unknown command")
	assert.NotContains(t, got, "[1] One", "commands after q are not run")
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), buf.String())
	return buf.String()
}

func TestCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("LIPIPLAY_STORE_BACKEND", "file")
	t.Setenv("LIPIPLAY_STORE_PATH", filepath.Join(dir, "prefs.json"))
	t.Setenv("LIPIPLAY_LOG_LEVEL", "error")
	t.Setenv("LIPIPLAY_LOG_FORMAT", "json")

	movie := filepath.Join(dir, "movie.srt")
	require.NoError(t, os.WriteFile(movie, []byte(sampleSRT), 0o644))

	assert.Contains(t, execute(t, "delay", "set", movie, "1500"), "+1500 ms")
	assert.Equal(t, "1500\n", execute(t, "delay", "get", movie))

	exported := filepath.Join(dir, "out", "movie.srt")
	execute(t, "export", movie, "-o", exported)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "00:00:02,500 --> 00:00:04,500")

	assert.Contains(t, execute(t, "delay", "pin", movie, "2", "9000"), "+5000 ms")
	list := execute(t, "delay", "list")
	assert.Contains(t, list, "movie.srt")
	assert.Contains(t, list, "+5000")

	inspect := execute(t, "inspect", movie)
	assert.Contains(t, inspect, "Two")
	assert.Contains(t, inspect, "2 entries (srt)")

	execute(t, "delay", "reset", movie)
	assert.Equal(t, "0\n", execute(t, "delay", "get", movie))
}
