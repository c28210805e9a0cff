// Package logger builds the application logger handed to the log package.
package logger

import (
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const defaultLogFilePermissions os.FileMode = 0644

type LogrusConfig struct {
	EnableConsole bool
	EnableFile    bool
	Structured    bool
	Level         logrus.Level
	FileLocation  string
}

type LogrusLogger struct {
	Config LogrusConfig
	Logger *logrus.Logger
	Output io.Writer
	file   *os.File
}

// NewLogrusLogger creates a logger writing to stderr, a file, both or nowhere.
func NewLogrusLogger(cfg LogrusConfig, stderr io.Writer) (*LogrusLogger, error) {
	appLogger := logrus.New()
	l := &LogrusLogger{Config: cfg, Logger: appLogger}

	if cfg.EnableFile {
		logFile, err := os.OpenFile(cfg.FileLocation, os.O_WRONLY|os.O_CREATE|os.O_APPEND, defaultLogFilePermissions)
		if err != nil {
			return nil, errors.Wrap(err, "unable to setup log file")
		}
		l.file = logFile
	}
	switch {
	case cfg.EnableConsole && cfg.EnableFile:
		l.Output = io.MultiWriter(stderr, l.file)
	case cfg.EnableConsole:
		l.Output = stderr
	case cfg.EnableFile:
		l.Output = l.file
	default:
		l.Output = ioutil.Discard
	}

	appLogger.SetOutput(l.Output)
	appLogger.SetLevel(cfg.Level)

	if cfg.Structured {
		appLogger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		appLogger.SetFormatter(&prefixed.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
			ForceFormatting: true,
		})
	}
	return l, nil
}

// Close releases the log file, if any.
func (l *LogrusLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// LevelFromVerbosity maps repeated -v flags onto a level above base.
func LevelFromVerbosity(verbosity int, base logrus.Level) logrus.Level {
	level := base + logrus.Level(verbosity)
	if level > logrus.TraceLevel {
		return logrus.TraceLevel
	}
	return level
}
