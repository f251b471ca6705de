// Package logging prints diagnostics to the console with a log level filter.
// Only the command line tool logs; compiler packages report through errors.
package logging

import (
	"fmt"
	"sync"
)

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors
	LogLevelWarning        // errors and warnings
	LogLevelVerbose        // errors, warnings and informational messages (DEFAULT)
)

// LogLevelNames are the spellings accepted by ParseLogLevel in level order.
var LogLevelNames = []string{"silent", "error", "warn", "verbose"}

// Logger is responsible for filtering and printing output from the tool.
type Logger struct {
	LogLevel   int
	errorCount int
	m          *sync.Mutex
}

// NewLogger creates a logger printing messages up to loglevel.
func NewLogger(loglevel int) *Logger {
	return &Logger{LogLevel: loglevel, m: &sync.Mutex{}}
}

// ParseLogLevel converts a level name into its log level.
func ParseLogLevel(name string) (int, error) {
	for lvl, lvlName := range LogLevelNames {
		if lvlName == name {
			return lvl, nil
		}
	}
	return LogLevelVerbose, fmt.Errorf("unknown log level %q", name)
}

// LogError counts and displays an error.
func (l *Logger) LogError(err error) {
	l.m.Lock()
	defer l.m.Unlock()
	l.errorCount++
	if l.LogLevel >= LogLevelError {
		displayError(err)
	}
}

// LogWarning displays a warning.
func (l *Logger) LogWarning(tag, msg string) {
	l.m.Lock()
	defer l.m.Unlock()
	if l.LogLevel >= LogLevelWarning {
		PrintWarningMessage(tag, msg)
	}
}

// LogInfo displays an informational message.
func (l *Logger) LogInfo(tag, msg string) {
	l.m.Lock()
	defer l.m.Unlock()
	if l.LogLevel >= LogLevelVerbose {
		PrintInfoMessage(tag, msg)
	}
}

// ErrorCount is the number of errors logged so far.
func (l *Logger) ErrorCount() int {
	l.m.Lock()
	defer l.m.Unlock()
	return l.errorCount
}
