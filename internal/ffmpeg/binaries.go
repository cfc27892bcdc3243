package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// environment override for the ffprobe binary
const ffprobeEnv = "LIPIPLAY_FFPROBE_PATH"

// ErrNotFound means no ffprobe binary could be located.
var ErrNotFound = errors.New("ffprobe not found: install ffmpeg or set " + ffprobeEnv)

type BinaryPaths struct {
	FFprobe string
	// OnPath is true when FFprobe was resolved from PATH as "ffprobe".
	OnPath bool
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = locate(os.Getenv, exec.LookPath, cacheDirs())
	})
	return ensurePath, ensureErr
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// locate checks the env override, then PATH, then copies unpacked under
// <user cache>/lipiplay/ffmpeg/<version>/<os>/<arch>.
func locate(
	getenv func(string) string,
	lookPath func(string) (string, error),
	cached []string,
) (BinaryPaths, error) {
	if p := getenv(ffprobeEnv); p != "" {
		if !binaryExists(p) {
			return BinaryPaths{}, fmt.Errorf("%s points to missing file %s", ffprobeEnv, p)
		}
		return BinaryPaths{FFprobe: p}, nil
	}

	if found, err := lookPath("ffprobe"); err == nil {
		return BinaryPaths{FFprobe: found, OnPath: true}, nil
	}

	for _, p := range cached {
		if binaryExists(p) {
			return BinaryPaths{FFprobe: p}, nil
		}
	}

	return BinaryPaths{}, ErrNotFound
}

func cacheDirs() []string {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		return nil
	}
	pattern := filepath.Join(cacheDir, "lipiplay", "ffmpeg", "*", runtime.GOOS, runtime.GOARCH,
		"ffprobe"+executableSuffix())
	matches, _ := filepath.Glob(pattern)
	return matches
}

func binaryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func executableSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
