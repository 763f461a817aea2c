package config

import (
	"fmt"
	"os"
	"path"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggersMu sync.Mutex
	loggers   []*logrus.Logger
	logLevel  = logrus.InfoLevel
)

// NamedLogger creates named package logger.
func NamedLogger(name string) *logrus.Logger {
	l := &logrus.Logger{
		Out: os.Stderr,
		Formatter: &CustomTextFormatter{
			TextFormatter: logrus.TextFormatter{
				FullTimestamp: true,
			},
			name: name,
		},
		Hooks:    make(logrus.LevelHooks),
		Level:    logrus.InfoLevel,
		ExitFunc: os.Exit,
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	l.SetLevel(logLevel)
	loggers = append(loggers, l)
	return l
}

// SetLogLevel changes the level of every named logger, including ones
// created later. Accepts logrus level names (debug, info, warn, error).
func SetLogLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, level)
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	logLevel = lvl
	for _, l := range loggers {
		l.SetLevel(lvl)
	}
	return nil
}

// CustomTextFormatter prefixes each entry with the logger name and the
// calling file and line.
type CustomTextFormatter struct {
	logrus.TextFormatter
	name string
}

// Format renders a single log entry
func (f *CustomTextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	_, file, no, _ := runtime.Caller(5)
	entry.Message = fmt.Sprintf("[%s %s:%d] %s", f.name, path.Base(file), no, entry.Message)
	return f.TextFormatter.Format(entry)
}
