package applog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel uint8

const (
	LogLevelOff LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	LogLevelFatal
)

var logLevelNames = []string{"OFF", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l LogLevel) String() string {
	if l > LogLevelFatal {
		return ""
	}

	return logLevelNames[l]
}

// ParseLevel accepts a level name from DEBUG to FATAL in any case.
func ParseLevel(name string) (LogLevel, error) {
	for i := LogLevelDebug; i <= LogLevelFatal; i++ {
		if strings.EqualFold(logLevelNames[i], name) {
			return i, nil
		}
	}

	if strings.EqualFold(name, "warning") {
		return LogLevelWarn, nil
	}

	return LogLevelOff, fmt.Errorf("unknown log level %q", name)
}

type Logger struct {
	pkg string
}

type LogHandler interface {
	Log(LogLevel, time.Time, string, string, ...any)
}

// DefaultLogHandler writes messages at or above Level to Out. A zero Level
// logs everything; a nil Out writes to standard error.
type DefaultLogHandler struct {
	Level LogLevel
	Out   io.Writer
	mu    sync.Mutex
}

func (h *DefaultLogHandler) Log(level LogLevel, when time.Time, pkg string, msg string, args ...any) {
	if level < h.Level {
		return
	}

	nargs := make([]any, 3, len(args)+3)
	nargs[0] = when.Format(time.RFC3339)
	nargs[1] = level.String()
	nargs[2] = pkg

	nargs = append(nargs, args...)

	out := h.Out
	if out == nil {
		out = os.Stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	fmt.Fprintf(out, "%s [%s] %s "+msg+"\n", nargs...)
}

var logHandler LogHandler = &DefaultLogHandler{Level: LogLevelWarn}
var logMutex sync.RWMutex

func SetLogHandler(h LogHandler) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logHandler = h
}

func New(pkg string) *Logger {
	return &Logger{pkg: pkg}
}

func Log(level LogLevel, when time.Time, pkg string, msg string, args ...any) {
	logMutex.RLock()
	defer logMutex.RUnlock()

	logHandler.Log(level, when, pkg, msg, args...)
}

func (l *Logger) Debugf(msg string, args ...any) {
	Log(LogLevelDebug, time.Now(), l.pkg, msg, args...)
}

func (l *Logger) Infof(msg string, args ...any) {
	Log(LogLevelInfo, time.Now(), l.pkg, msg, args...)
}

func (l *Logger) Warnf(msg string, args ...any) {
	Log(LogLevelWarn, time.Now(), l.pkg, msg, args...)
}
