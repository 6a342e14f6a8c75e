package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = newStd()

func newStd() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stderr
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	}
	return l
}

// SetLevel changes the level of every logger created by New.
func SetLevel(level logrus.Level) {
	std.SetLevel(level)
}

type Logger struct {
	entry *logrus.Entry
}

func New(prefix string) Logger {
	return NewWithLogrus(prefix, std)
}

func NewWithLogrus(prefix string, l *logrus.Logger) Logger {
	return Logger{
		entry: l.WithField("component", prefix),
	}
}

// With returns a copy carrying an extra field on every entry.
func (l Logger) With(key string, value interface{}) Logger {
	return Logger{entry: l.entry.WithField(key, value)}
}

func (l Logger) Log(format string, a ...interface{}) {
	l.entry.Infof(format, a...)
}
func (l Logger) Warn(format string, a ...interface{}) {
	l.entry.Warnf(format, a...)
}
func (l Logger) Err(err error, format string, a ...interface{}) {
	if err != nil {
		l.entry.WithError(err).Errorf(format, a...)
	} else {
		l.entry.Errorf(format, a...)
	}
}
func (l Logger) Fine(format string, a ...interface{}) {
	l.entry.Debugf(format, a...)
}
func (l Logger) Trace(format string, a ...interface{}) {
	l.entry.Tracef(format, a...)
}
