package acmonitor

import "github.com/sirupsen/logrus"

// Logger is the subset of logrus used by the monitor. Both *logrus.Logger
// and *logrus.Entry satisfy it.
type Logger interface {
	Printf(format string, params ...interface{})
	Debugf(format string, params ...interface{})
	Infof(format string, params ...interface{})
	Warnf(format string, params ...interface{})
	Errorf(format string, params ...interface{})
	Debug(params ...interface{})
	WithError(err error) *logrus.Entry
}
