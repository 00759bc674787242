// ABOUTME: Leveled, colorized logging over the standard log package
// ABOUTME: Levels: debug, perf, info, success, warn, error, silent
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level orders the severities a Logger can be filtered to. Silent
// suppresses everything, including Error.
type Level int

const (
	LevelDebug Level = iota
	LevelPerf
	LevelInfo
	LevelSuccess
	LevelWarn
	LevelError
	LevelSilent
)

// ParseLevel maps a config/CLI string onto a Level. It returns an error
// for anything other than the seven level names.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug":
		return LevelDebug, nil
	case "perf":
		return LevelPerf, nil
	case "info":
		return LevelInfo, nil
	case "success":
		return LevelSuccess, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent":
		return LevelSilent, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

var styles = map[Level]lipgloss.Style{
	LevelDebug:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	LevelPerf:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	LevelSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	LevelWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
}

var labels = map[Level]string{
	LevelDebug:   "DEBUG",
	LevelPerf:    "PERF",
	LevelInfo:    "INFO",
	LevelSuccess: "OK",
	LevelWarn:    "WARN",
	LevelError:   "ERROR",
}

// Logger wraps a *log.Logger with a severity floor: calls below the
// floor are dropped before formatting, so a disabled Debugf costs one
// comparison.
type Logger struct {
	mu    sync.Mutex
	out   *log.Logger
	floor Level
	color bool
}

// New returns a Logger writing to w, showing only lines at or above
// floor. color enables lipgloss styling of the level label; callers
// typically gate this on isatty.IsTerminal(w's fd).
func New(w io.Writer, floor Level, color bool) *Logger {
	return &Logger{out: log.New(w, "", log.LstdFlags), floor: floor, color: color}
}

// Default returns a Logger at LevelInfo writing to stderr with no
// color, suitable as a zero-config fallback.
func Default() *Logger {
	return New(os.Stderr, LevelInfo, false)
}

// SetLevel changes the severity floor.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.floor = level
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	floor := l.floor
	color := l.color
	l.mu.Unlock()

	if level < floor || floor == LevelSilent {
		return
	}

	label := labels[level]
	if color {
		label = styles[level].Render(label)
	}
	l.out.Printf("[%s] %s", label, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any)   { l.log(LevelDebug, format, args...) }
func (l *Logger) Perff(format string, args ...any)     { l.log(LevelPerf, format, args...) }
func (l *Logger) Infof(format string, args ...any)     { l.log(LevelInfo, format, args...) }
func (l *Logger) Successf(format string, args ...any)  { l.log(LevelSuccess, format, args...) }
func (l *Logger) Warnf(format string, args ...any)     { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any)    { l.log(LevelError, format, args...) }
