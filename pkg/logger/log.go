package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type LogLevel int

const (
	VERBOSE LogLevel = iota
	DEBUG
	INFO
	SUCCESS
	NEW
	REMOVE
	STOP
	WARNING
	ERROR
	FATAL
)

func (e LogLevel) Values() []string {
	return []string{"VERBOSE", "DEBUG", "INFO", "SUCCESS", "NEW", "REMOVE", "STOP", "WARNING", "ERROR", "FATAL"}
}

func (e LogLevel) String() string {
	return e.Values()[e]
}

// Level returns the numeric threshold for this level, suitable
// for use with SetMinLoggingLevel.
func (e LogLevel) Level() int { return int(e) }

func (e LogLevel) glyph() string {
	return []string{"V", "D", "I", "✓", "+", "-", "X", "!", "!!", "PANIC"}[e]
}

func (e LogLevel) color() *color.Color {
	return []*color.Color{
		color.New(color.FgWhite, color.Italic),                //Verbose
		color.New(color.FgWhite, color.Italic),                //Debug
		color.New(color.FgWhite),                              //Info
		color.New(color.FgHiGreen),                            //Success
		color.New(color.FgGreen, color.Italic),                //New
		color.New(color.FgYellow, color.Italic),               //Remove
		color.New(color.FgHiYellow),                           //Stop
		color.New(color.FgYellow, color.Underline),            //Warning
		color.New(color.FgHiRed, color.Bold),                  //Error
		color.New(color.FgHiRed, color.Bold, color.Underline), //Fatal
	}[e]
}

// ParseLevel accepts the name of a log level (case-insensitive) and returns
// the matching LogLevel. An error is returned if the name is not recognised.
func ParseLevel(name string) (LogLevel, error) {
	for k, v := range VERBOSE.Values() {
		if strings.EqualFold(v, name) {
			return LogLevel(k), nil
		}
	}

	return INFO, fmt.Errorf("log level %q is not recognised", name)
}

type Logger interface {
	Emit(LogLevel, string, ...any)
	Verbosef(string, ...any)
	Debugf(string, ...any)
	Infof(string, ...any)
	Warnf(string, ...any)
	Errorf(string, ...any)
	Fatalf(string, ...any)
	Printf(string, ...any)
}

type namedLogger struct {
	name string
}

func (l *namedLogger) Emit(level LogLevel, message string, interpolations ...any) {
	manager.emit(level, l.name, message, interpolations...)
}

func (l *namedLogger) Verbosef(message string, args ...any) { l.Emit(VERBOSE, message, args...) }
func (l *namedLogger) Debugf(message string, args ...any)   { l.Emit(DEBUG, message, args...) }
func (l *namedLogger) Infof(message string, args ...any)    { l.Emit(INFO, message, args...) }
func (l *namedLogger) Warnf(message string, args ...any)    { l.Emit(WARNING, message, args...) }
func (l *namedLogger) Errorf(message string, args ...any)   { l.Emit(ERROR, message, args...) }
func (l *namedLogger) Fatalf(message string, args ...any)   { l.Emit(FATAL, message, args...) }

// Printf emits at INFO level, allowing the logger to be handed
// to libraries expecting a standard Printf/Fatalf logger (e.g. goose)
func (l *namedLogger) Printf(message string, args ...any) { l.Emit(INFO, message, args...) }

type loggerManager struct {
	sync.Mutex
	offset   int
	minLevel LogLevel
}

var manager = &loggerManager{minLevel: INFO}

func (l *loggerManager) emit(level LogLevel, name string, message string, interpolations ...any) {
	l.Lock()
	defer l.Unlock()

	if level < l.minLevel {
		return
	}

	if len(name) > l.offset {
		l.offset = len(name)
	}

	padding := strings.Repeat(" ", l.offset-len(name))
	msg := fmt.Sprintf("[%s] %s(%s) %s", name, padding, level.glyph(), fmt.Sprintf(message, interpolations...))
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}

	level.color().Print(msg)
}

// Get returns a logger which prefixes all emitted lines
// with the name provided.
func Get(name string) Logger {
	return &namedLogger{name: name}
}

// SetMinLoggingLevel changes the threshold below which log lines
// are silently discarded.
func SetMinLoggingLevel(level int) {
	manager.Lock()
	defer manager.Unlock()

	manager.minLevel = LogLevel(level)
}
