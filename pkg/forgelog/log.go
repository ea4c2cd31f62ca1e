// Package forgelog is the module's structured-logging façade. It wraps
// logrus so callers depend on a small interface instead of the
// third-party package directly, and so tests can swap in a discard
// logger via SetOutput without touching logrus's standard logger. The
// swapped-in logger replaces this package's process-wide logger.
package forgelog

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	current *logrus.Logger = defaultLogger()
)

func defaultLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// L returns the process-wide logger. It is safe for concurrent use.
func L() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetLevel parses and applies a log level by name ("debug", "info",
// "warn", "error"); an unrecognized name is ignored.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	current.SetLevel(lvl)
}

// SetOutput swaps the logger entirely, e.g. for a test that wants to
// assert on captured output or silence logging with io.Discard.
func SetOutput(l *logrus.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}
