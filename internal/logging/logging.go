// Package logging builds the slog loggers used across recall-fit.
package logging

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/clog/hooks"
	"github.com/m-mizutani/goerr/v2"
)

// Format selects the handler New builds.
type Format int

const (
	FormatConsole Format = iota + 1
	FormatJSON
)

var (
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	loggerMutex   sync.Mutex
)

// Default returns the process-wide logger. It discards output until
// SetDefault is called.
func Default() *slog.Logger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *slog.Logger) {
	loggerMutex.Lock()
	defaultLogger = logger
	loggerMutex.Unlock()
}

// ParseFormat accepts "console" or "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "console", "":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, goerr.New("unknown log format", goerr.V("format", s))
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, goerr.Wrap(err, "invalid log level", goerr.V("level", s))
	}
	return level, nil
}

// New builds a clog console logger or a JSON logger writing to w.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithAttrHook(hooks.GoErr()),
			clog.WithColorMap(&clog.ColorMap{
				Level: map[slog.Level]*color.Color{
					slog.LevelDebug: color.New(color.FgGreen, color.Bold),
					slog.LevelInfo:  color.New(color.FgCyan, color.Bold),
					slog.LevelWarn:  color.New(color.FgYellow, color.Bold),
					slog.LevelError: color.New(color.FgRed, color.Bold),
				},
				LevelDefault: color.New(color.FgBlue, color.Bold),
				Time:         color.New(color.FgWhite),
				Message:      color.New(color.FgHiWhite),
				AttrKey:      color.New(color.FgHiCyan),
				AttrValue:    color.New(color.FgHiWhite),
			}),
		)
	}
	return slog.New(handler)
}

// ErrAttr wraps err for structured logging.
func ErrAttr(err error) slog.Attr { return slog.Any("error", err) }
