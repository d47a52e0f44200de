package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	file   *lumberjack.Logger
)

// Initialize sets up the package logger. Console output goes to stderr so
// ASCII maps printed on stdout stay clean.
func Initialize(config Config) (*slog.Logger, error) {
	return initialize(config, os.Stderr)
}

func initialize(config Config, console io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(config.Level)}

	var handlers fanout
	if config.ConsoleEnabled {
		handlers = append(handlers, newHandler(console, config.ConsoleFormat, opts))
	}
	if config.FileEnabled {
		if config.FilePath == "" {
			return nil, errors.New("file logging enabled without a file path")
		}
		Close()
		file = &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.FileMaxSizeMB,
			MaxBackups: config.FileMaxBackups,
			MaxAge:     config.FileMaxAgeDays,
		}
		handlers = append(handlers, newHandler(file, config.FileFormat, opts))
	}

	switch len(handlers) {
	case 0:
		logger = slog.New(slog.DiscardHandler)
	case 1:
		logger = slog.New(handlers[0])
	default:
		logger = slog.New(handlers)
	}
	return logger, nil
}

func newHandler(w io.Writer, format string, opts *slog.HandlerOptions) slog.Handler {
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Logger returns the package logger, or a logger that discards everything
// when Initialize has not been called.
func Logger() *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns the package logger with args attached to every record, for
// handing to components that take a *slog.Logger.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// log is the single path the package helpers write through. Records are
// dropped before Initialize.
func log(level slog.Level, msg string, args ...any) {
	if logger == nil {
		return
	}
	logger.Log(context.Background(), level, msg, args...)
}

// Debug logs at debug level with key/value attributes.
func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

// Info logs at info level with key/value attributes.
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Warning logs at warn level with key/value attributes.
func Warning(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

// Error logs at error level with key/value attributes.
func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

func Debugf(format string, args ...any)   { log(slog.LevelDebug, fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)    { log(slog.LevelInfo, fmt.Sprintf(format, args...)) }
func Warningf(format string, args ...any) { log(slog.LevelWarn, fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any)   { log(slog.LevelError, fmt.Sprintf(format, args...)) }

// fanout sends each record to every handler enabled for its level. A failing
// handler does not keep the record from the others.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
