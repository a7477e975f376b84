// Package logger provides the leveled logging used across the buffer pool
// core. It wraps a single logrus instance rather than exposing logrus
// directly, so callers never import logrus themselves.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// log is the shared instance every package-level function delegates to.
var log = logrus.New()

func init() {
	// Safe to log before InitLogger is called: falls back to stderr at info
	// level.
	_ = InitLogger(Config{LogLevel: "info"})
}

// Config controls where logs go and at what level.
type Config struct {
	LogPath  string
	LogLevel string
}

// InitLogger (re)configures the shared logger. Safe to call more than once,
// e.g. from test setup.
func InitLogger(config Config) error {
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "15:04:05 MST 2006/01/02",
		FullTimestamp:   true,
	})
	log.SetLevel(parseLogLevel(config.LogLevel))

	if config.LogPath == "" {
		log.SetOutput(os.Stderr)
		return nil
	}

	f, err := openLogFile(config.LogPath)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Warnf("failed to open log file %s, falling back to stderr: %v", config.LogPath, err)
		return nil
	}
	log.SetOutput(f)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

func Info(args ...interface{})                 { log.Info(args...) }
func Infof(format string, args ...interface{}) { log.Infof(format, args...) }

func Debug(args ...interface{})                 { log.Debug(args...) }
func Debugf(format string, args ...interface{}) { log.Debugf(format, args...) }

func Warn(args ...interface{})                 { log.Warn(args...) }
func Warnf(format string, args ...interface{}) { log.Warnf(format, args...) }

func Error(args ...interface{})                 { log.Error(args...) }
func Errorf(format string, args ...interface{}) { log.Errorf(format, args...) }
