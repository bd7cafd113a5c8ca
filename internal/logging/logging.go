package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level orders severities from Debug (lowest) to Error.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

var levelNames = map[Level]string{
	Debug: "debug",
	Info:  "info",
	Warn:  "warn",
	Error: "error",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return "info"
}

// ParseLevel maps a config or flag value to a Level. Unknown
// strings fall back to Info rather than erroring.
func ParseLevel(s string) Level {
	s = strings.ToLower(strings.TrimSpace(s))
	for lvl, name := range levelNames {
		if s == name {
			return lvl
		}
	}
	return Info
}

type Logger struct {
	min  Level
	json bool
	out  io.Writer
}

// New builds a logger writing to stderr, or stdout when emitting
// JSON lines.
func New(level string, jsonOut bool) *Logger {
	out := io.Writer(os.Stderr)
	if jsonOut {
		out = os.Stdout
	}
	return NewWithWriter(level, jsonOut, out)
}

// NewWithWriter is the injectable variant; tests pass a buffer here.
func NewWithWriter(level string, jsonOut bool, out io.Writer) *Logger {
	return &Logger{min: ParseLevel(level), json: jsonOut, out: out}
}

func (l *Logger) Enabled(v Level) bool { return v >= l.min }

func (l *Logger) Debugf(format string, a ...any) { l.emit(Debug, format, a...) }
func (l *Logger) Infof(format string, a ...any)  { l.emit(Info, format, a...) }
func (l *Logger) Warnf(format string, a ...any)  { l.emit(Warn, format, a...) }
func (l *Logger) Errorf(format string, a ...any) { l.emit(Error, format, a...) }

type line struct {
	TS    string `json:"ts"`
	Level string `json:"level"`
	Msg   string `json:"msg"`
}

func (l *Logger) emit(level Level, format string, a ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, a...)
	if l.json {
		_ = json.NewEncoder(l.out).Encode(line{
			TS:    time.Now().Format(time.RFC3339Nano),
			Level: level.String(),
			Msg:   msg,
		})
		return
	}
	fmt.Fprintf(l.out, "%s\t%s\n", strings.ToUpper(level.String()), msg)
}
