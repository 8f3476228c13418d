package rtctime

import "fmt"

// Logger is the logging surface the synchronizer reports through. The
// printf-style level methods make it trivial to put most loggers behind it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type logger struct {
}

// NewLogger returns a Logger that prints each entry to standard output with
// a level tag. It is the default and works under TinyGo as well.
func NewLogger() Logger {
	return &logger{}
}

func (l *logger) Debugf(format string, args ...interface{}) {
	fmt.Printf("[DEBUG]\t"+format+"\n", args...)
}

func (l *logger) Infof(format string, args ...interface{}) {
	fmt.Printf("[INFO]\t"+format+"\n", args...)
}

func (l *logger) Warnf(format string, args ...interface{}) {
	fmt.Printf("[WARN]\t"+format+"\n", args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	fmt.Printf("[ERROR]\t"+format+"\n", args...)
}

// nullLogger is a logger that does nothing.
type nullLogger struct{}

// NewNullLogger returns a logger that does nothing.
func NewNullLogger() Logger {
	return nullLogger{}
}

func (n nullLogger) Debugf(format string, args ...interface{}) {
}

func (n nullLogger) Infof(format string, args ...interface{}) {
}

func (n nullLogger) Warnf(format string, args ...interface{}) {
}

func (n nullLogger) Errorf(format string, args ...interface{}) {
}
