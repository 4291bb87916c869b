package telemetry

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stdout, zerolog.InfoLevel, false)
)

// Setup configures the process-wide logger. format "console" switches to a
// human readable writer; anything else emits JSON lines.
func Setup(level, format string) {
	SetLogger(newLogger(os.Stdout, ParseLevel(level), strings.EqualFold(strings.TrimSpace(format), "console")))
}

// SetOutput redirects JSON log lines to w, keeping the current level.
func SetOutput(w io.Writer) {
	mu.RLock()
	level := logger.GetLevel()
	mu.RUnlock()
	SetLogger(newLogger(w, level, false))
}

// SetLogger replaces the process-wide logger.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	write(zerolog.InfoLevel, msg, fields)
}

// Warn writes a warn-level log line with the given fields.
func Warn(msg string, fields map[string]any) {
	write(zerolog.WarnLevel, msg, fields)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	write(zerolog.ErrorLevel, msg, fields)
}

func write(level zerolog.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()

	event := l.WithLevel(level)
	if event == nil {
		return
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			event = event.AnErr(k, err)
			continue
		}
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func newLogger(w io.Writer, level zerolog.Level, console bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "ts"
	zerolog.MessageFieldName = "msg"
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).With().Timestamp().Str("service", "inreader-api").Logger().Level(level)
}
