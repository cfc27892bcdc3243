// Package media reads container metadata of the video paired with a
// subtitle file. The player only needs the duration, to know when
// playback ends.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/lipiplay/internal/ffmpeg"
)

const probeTimeout = 30 * time.Second

// parsed ffprobe output
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// DurationMs is the container duration, falling back to the longest
// stream when the container does not report one.
func (r *Result) DurationMs() (int64, error) {
	if ms, ok := parseSeconds(r.Format.Duration); ok {
		return ms, nil
	}
	var longest int64
	for _, s := range r.Streams {
		if ms, ok := parseSeconds(s.Duration); ok && ms > longest {
			longest = ms
		}
	}
	if longest == 0 {
		return 0, fmt.Errorf("no duration reported for %s", r.Format.Filename)
	}
	return longest, nil
}

func (r *Result) HasAudio() bool {
	for _, s := range r.Streams {
		if s.CodecType == "audio" {
			return true
		}
	}
	return false
}

func parseSeconds(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" || value == "N/A" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds <= 0 || math.IsInf(seconds, 0) || math.IsNaN(seconds) {
		return 0, false
	}
	return int64(math.Round(seconds * 1000)), true
}

// Probe inspects path with ffprobe.
func Probe(ctx context.Context, path string) (*Result, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	bin, err := ffmpegbin.Ensure()
	if err != nil {
		return nil, err
	}

	var raw string
	if bin.OnPath {
		raw, err = ffmpeg.ProbeWithTimeout(path, probeTimeout, ffmpeg.KwArgs{})
	} else {
		raw, err = probeWith(ctx, bin.FFprobe, path)
	}
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return ParseResult([]byte(raw))
}

func probeWith(ctx context.Context, ffprobePath, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}

func ParseResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &r, nil
}

// DurationMs probes path and returns its duration in milliseconds.
func DurationMs(ctx context.Context, path string) (int64, error) {
	r, err := Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return r.DurationMs()
}
