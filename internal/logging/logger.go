package logging

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
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes formatted lines through a buffered channel so the event
// dispatch path never blocks on I/O. When the buffer fills, lines are
// dropped rather than stalling the caller.
type Logger struct {
	level   LogLevel
	out     io.Writer
	logChan chan string
	wg      sync.WaitGroup
}

// NewLogger writes to stdout and, when path is non-empty, to the file at
// path as well.
func NewLogger(level LogLevel, path string) (*Logger, error) {
	var out io.Writer = os.Stdout
	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, file)
	}

	l := &Logger{
		level:   level,
		out:     out,
		logChan: make(chan string, 10000),
	}

	l.wg.Add(1)
	go l.worker()

	return l, nil
}

func (l *Logger) worker() {
	defer l.wg.Done()
	for line := range l.logChan {
		io.WriteString(l.out, line)
	}
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("[%s] [%s] %s\n", timestamp, levelString(level), fmt.Sprintf(format, args...))

	select {
	case l.logChan <- line:
	default:
		// Full buffer: drop instead of blocking the hot path.
	}
}

func (l *Logger) Debug(format string, args ...any) { l.log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(LevelError, format, args...) }

func levelString(level LogLevel) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Close drains the buffer and stops the worker.
func (l *Logger) Close() error {
	close(l.logChan)
	l.wg.Wait()
	if closer, ok := l.out.(io.Closer); ok && l.out != os.Stdout {
		return closer.Close()
	}
	return nil
}

var defaultLogger *Logger

// Init installs the process-wide logger used by the package-level functions.
func Init(level LogLevel, path string) error {
	logger, err := NewLogger(level, path)
	if err != nil {
		return err
	}
	defaultLogger = logger
	return nil
}

// Shutdown flushes and closes the process-wide logger.
func Shutdown() {
	if defaultLogger != nil {
		defaultLogger.Close()
		defaultLogger = nil
	}
}

func Debug(format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Debug(format, args...)
	}
}

func Info(format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Info(format, args...)
	}
}

func Warn(format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Warn(format, args...)
	}
}

func Error(format string, args ...any) {
	if defaultLogger != nil {
		defaultLogger.Error(format, args...)
	}
}
