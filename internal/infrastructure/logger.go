package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"campuspulse/internal/config"
)

// Values of LoggingConfig.Output. Anything else logs to the console.
const (
	OutputConsole = "console"
	OutputFile    = "file"
	OutputBoth    = "both"
)

var (
	defaultLogger     *slog.Logger
	defaultLoggerOnce sync.Once

	logFileMu sync.Mutex
	logFile   *os.File
)

// InitializeLogger creates the process logger and installs it as the slog
// default. Only the first call has any effect.
func InitializeLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	var err error
	defaultLoggerOnce.Do(func() {
		defaultLogger, err = NewLogger(cfg)
		if defaultLogger != nil {
			slog.SetDefault(defaultLogger)
		}
	})
	return defaultLogger, err
}

// GetLogger returns the process logger, or slog.Default before
// InitializeLogger has run.
func GetLogger() *slog.Logger {
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// NewLogger builds a JSON logger from cfg without touching global state. An
// opened log file is kept for CloseLogFile.
func NewLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	w, err := logOutput(cfg)
	if err != nil {
		return nil, err
	}
	return NewJSONLogger(w, cfg.Level, cfg.Development), nil
}

func logOutput(cfg config.LoggingConfig) (io.Writer, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Output))
	if mode != OutputFile && mode != OutputBoth {
		return os.Stdout, nil
	}

	file, err := openLogFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	trackLogFile(file)

	if mode == OutputFile {
		return file, nil
	}
	return io.MultiWriter(os.Stdout, file), nil
}

// NewJSONLogger returns a JSON logger writing to w. Records logged with a
// context carrying a trace ID get a trace_id attribute.
func NewJSONLogger(w io.Writer, level string, addSource bool) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: addSource,
		Level:     ParseLevel(level),
	})
	return slog.New(&traceHandler{Handler: handler})
}

// ParseLevel maps a configured level name to a slog.Level, case-insensitively.
// "warning" is accepted for warn; unknown names give info.
func ParseLevel(name string) slog.Level {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "warning") {
		return slog.LevelWarn
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// CloseLogFile closes the log file opened by NewLogger, if any.
func CloseLogFile() error {
	logFileMu.Lock()
	defer logFileMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ResetLoggerForTesting forgets the process logger so tests can initialize it
// again.
func ResetLoggerForTesting() {
	_ = CloseLogFile()
	defaultLogger = nil
	defaultLoggerOnce = sync.Once{}
}

func trackLogFile(f *os.File) {
	logFileMu.Lock()
	defer logFileMu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
}

func openLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
