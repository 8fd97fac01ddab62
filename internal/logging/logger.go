package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Logger is a leveled, structured logger backed by zerolog. The zero value
// is not usable; a nil *Logger discards everything.
type Logger struct {
	zl zerolog.Logger
}

func NewLogger(levelStr string) *Logger {
	return New(levelStr, FormatJSON, os.Stdout)
}

func NewLoggerWithWriter(levelStr string, w io.Writer) *Logger {
	return New(levelStr, FormatJSON, w)
}

// New builds a logger writing JSON lines, or human-readable lines when
// format is "console".
func New(levelStr, format string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if strings.EqualFold(format, FormatConsole) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return &Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop returns a logger that writes nothing.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) WithComponent(component string) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

func (l *Logger) Debug(format string, args ...any) { l.printf(zerolog.DebugLevel, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.printf(zerolog.InfoLevel, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.printf(zerolog.WarnLevel, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.printf(zerolog.ErrorLevel, format, args...) }

func (l *Logger) Debugw(msg string, fields map[string]any) { l.structured(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Infow(msg string, fields map[string]any)  { l.structured(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warnw(msg string, fields map[string]any)  { l.structured(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Errorw(msg string, fields map[string]any) { l.structured(zerolog.ErrorLevel, msg, fields) }

func (l *Logger) printf(level zerolog.Level, format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.WithLevel(level).Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) structured(level zerolog.Level, msg string, fields map[string]any) {
	if l == nil {
		return
	}
	l.zl.WithLevel(level).Fields(fields).Msg(msg)
}
