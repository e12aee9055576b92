package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"truckmonitor/internal/config"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file names, one per level.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Logger provides leveled logging (info/warning/error) to rotated files and stdout.
type Logger struct {
	log    *logrus.Logger
	files  map[string]*lumberjack.Logger
	logDir string
	mu     sync.Mutex
}

// NewLogger creates a Logger writing to stdout and the configured log directory.
func NewLogger(config *config.Config) (*Logger, error) {
	return New(config.LogDirectory, config.LogLevel, os.Stdout)
}

// New creates a Logger with an explicit console writer and level name.
func New(logDir, level string, console io.Writer) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	l := &Logger{
		log:    logrus.New(),
		files:  make(map[string]*lumberjack.Logger),
		logDir: logDir,
	}
	for _, name := range []string{InfoFile, WarningFile, ErrorFile} {
		l.files[name] = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, name),
			LocalTime:  true,
			MaxSize:    50,
			MaxAge:     14,
			MaxBackups: 3,
		}
	}

	l.log.SetLevel(lvl)
	l.log.SetOutput(console)
	l.log.SetFormatter(&formatter.Formatter{
		TimestampFormat: "2006-01-02 15:04:05",
		HideKeys:        false,
		NoColors:        console != os.Stdout && console != os.Stderr,
	})
	l.log.AddHook(&fileHook{
		files: l.files,
		formatter: &logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		},
	})

	return l, nil
}

// Debug writes a formatted debug-level log entry.
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log.Debugf(format, v...)
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.log.Infof(format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.log.Warnf(format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.log.Errorf(format, v...)
}

// WithFields returns an entry carrying structured fields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.log.WithFields(fields)
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.files[fileName]; !ok {
		return fmt.Errorf("unknown log file: %s", fileName)
	}

	filePath := filepath.Join(l.logDir, fileName)
	if err := os.Truncate(filePath, 0); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to truncate %s: %w", fileName, err)
	}

	l.Info("File %s has been cleared.", fileName)
	return nil
}

// Close closes the rotated log files.
func (l *Logger) Close() error {
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// fileHook routes entries into the per-level files.
type fileHook struct {
	files     map[string]*lumberjack.Logger
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	var name string
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		name = ErrorFile
	case logrus.WarnLevel:
		name = WarningFile
	default:
		name = InfoFile
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.files[name].Write(line)
	return err
}
