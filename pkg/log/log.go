// Package log provides structured logging for nst, wrapping zerolog with a
// small surface tailored to the CLI and probe/server call sites: a verbose
// flag, an error channel, and an info channel, plus a colored human-facing
// printer for the messages the CLI prints to the operator.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

var (
	red  = color.New(color.FgRed).FprintfFunc()
	blue = color.New(color.FgBlue).FprintfFunc()
)

// Logger provides leveled, structured logging with an independent verbose
// gate for debug-level detail (probe tick-by-tick traces).
type Logger struct {
	verbose bool
	zl      zerolog.Logger
}

// NewLogger creates a new logger writing to stderr. Verbose enables
// debug-level output; it does not affect Info/Error, which always print.
func NewLogger(verbose bool) *Logger {
	return NewLoggerWithWriter(verbose, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing structured events to w, for
// tests and for callers that want to redirect probe/server logs elsewhere.
func NewLoggerWithWriter(verbose bool, w io.Writer) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{verbose: verbose, zl: zl}
}

// Zerolog exposes the underlying structured logger for packages that want
// to attach fields (sample counts, tick numbers) rather than format strings.
func (l *Logger) Zerolog() *zerolog.Logger {
	if l == nil {
		discard := zerolog.New(io.Discard)
		return &discard
	}
	return &l.zl
}

// VerboseMsg logs a message at debug level, visible only when verbose mode
// is enabled. Safe to call on a nil Logger.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if l == nil || !l.verbose {
		return
	}
	l.zl.Debug().Msg(trimNewline(fmt.Sprintf(format, a...)))
}

// ErrorMsg logs an error-level message and additionally prints it to
// stderr in red, matching the teacher's human-facing CLI error style.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	msg := trimNewline(fmt.Sprintf(format, a...))
	if l != nil {
		l.zl.Error().Msg(msg)
	}
	red(os.Stderr, "[!] Error: %s\n", msg)
}

// InfoMsg logs an info-level message and prints it to stderr in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	msg := trimNewline(fmt.Sprintf(format, a...))
	if l != nil {
		l.zl.Info().Msg(msg)
	}
	blue(os.Stderr, "[+] %s\n", msg)
}

func trimNewline(s string) string {
	return strings.TrimSuffix(s, "\n")
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
