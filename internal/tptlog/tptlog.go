// Package tptlog is TPT's leveled logger. It mirrors the original Python
// TPTLogger's five levels (debug/info/warning/error/critical) and adds
// colorized, isatty-gated output for interactive terminals.
package tptlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is a minimal leveled logger writing to an underlying *log.Logger,
// optionally colorizing level prefixes when rich output is enabled and the
// destination is a terminal.
type Logger struct {
	mu      sync.Mutex
	out     *log.Logger
	level   Level
	useRich bool
	isTerm  bool
}

// New creates a Logger writing to w. useRich gates colorization; cmd/tpt
// wires it from the use_rich setting (config.Settings.UseRich).
func New(w io.Writer, useRich bool) *Logger {
	isTerm := false
	if f, ok := w.(*os.File); ok {
		isTerm = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Logger{
		out:     log.New(w, "", log.LstdFlags),
		level:   Info,
		useRich: useRich,
		isTerm:  isTerm,
	}
}

// SetLevel changes the minimum level that is emitted.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) colorFor(level Level) *color.Color {
	switch level {
	case Debug:
		return color.New(color.FgHiBlack)
	case Info:
		return color.New(color.FgGreen)
	case Warning:
		return color.New(color.FgYellow)
	case Error, Critical:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New()
	}
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	prefix := "[" + level.String() + "] "
	if l.useRich && l.isTerm {
		prefix = l.colorFor(level).Sprint(prefix)
	}
	l.out.Print(prefix + msg)
}

func (l *Logger) Debug(format string, args ...interface{})    { l.log(Debug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})     { l.log(Info, format, args...) }
func (l *Logger) Warning(format string, args ...interface{})  { l.log(Warning, format, args...) }
func (l *Logger) Error(format string, args ...interface{})    { l.log(Error, format, args...) }
func (l *Logger) Critical(format string, args ...interface{}) { l.log(Critical, format, args...) }
