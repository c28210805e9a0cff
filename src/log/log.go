/*
Package log holds the logger used throughout tarcodec. It discards everything until Set is called.
*/
package log

import (
	"fmt"
	"io/ioutil"

	"github.com/sirupsen/logrus"
)

var (
	discarder                       = discard()
	discardEntry                    = logrus.NewEntry(discarder)
	log          logrus.FieldLogger = discarder
)

func discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(ioutil.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Set replaces the package logger. A nil logger restores the discarding default.
func Set(l logrus.FieldLogger) {
	if l == nil {
		log = discarder
		return
	}
	log = l
}

// Enabled reports whether messages at level reach the logger. Loggers that cannot tell are
// assumed to take everything.
func Enabled(level logrus.Level) bool {
	if l, ok := log.(interface{ IsLevelEnabled(logrus.Level) bool }); ok {
		return l.IsLevelEnabled(level)
	}
	return true
}

func Get() logrus.FieldLogger {
	return log
}

// Errorf takes a formatted template string and template arguments for the error logging level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Warnf takes a formatted template string and template arguments for the warning logging level.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Infof takes a formatted template string and template arguments for the info logging level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Debugf takes a formatted template string and template arguments for the debug logging level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// WithFields returns a logger carrying the given key-value pairs. A trailing key without value is dropped.
func WithFields(pairs ...interface{}) *logrus.Entry {
	if log == logrus.FieldLogger(discarder) {
		return discardEntry
	}
	fields := make(logrus.Fields, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		fields[fmt.Sprint(pairs[i])] = pairs[i+1]
	}
	return log.WithFields(fields)
}
