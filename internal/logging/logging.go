package logging

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugared zap logger shared by the cli and the engine packages
type Logger struct {
	*zap.SugaredLogger
}

// options for building a logger from config
type Options struct {
	Verbose bool
	Level   string // debug, info, warn, error
	Format  string // console, json, or auto
}

func New(opts Options) *Logger {
	level := parseLevel(opts.Level)
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if useConsole(opts.Format) {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)

	return &Logger{SugaredLogger: zap.New(core).Sugar()}
}

// logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// child logger tagged with a component name
func (l *Logger) Named(component string) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.Named(component)}
}

func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *Logger) *Logger {
	if l == nil {
		return NewNop()
	}
	return l
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func useConsole(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "console":
		return true
	case "json":
		return false
	}
	return IsTerminal(os.Stderr)
}

// reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
