package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	levelNames = map[Level]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	levelColors = map[Level]string{
		DEBUG: "\033[36m", // Cyan
		INFO:  "\033[32m", // Green
		WARN:  "\033[33m", // Yellow
		ERROR: "\033[31m", // Red
		FATAL: "\033[35m", // Magenta
	}

	reset = "\033[0m"
	gray  = "\033[90m"
)

type field struct {
	key   string
	value string
}

// sink is shared by a logger and every child derived with With.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

type Logger struct {
	level     Level
	sink      *sink
	service   string
	fields    []field
	useColors bool
	showTime  bool
	exit      func(int)
}

func New(service string) *Logger {
	return &Logger{
		level:     ParseLevel(os.Getenv("LOG_LEVEL")),
		sink:      &sink{out: os.Stdout},
		service:   service,
		useColors: os.Getenv("LOG_COLORS") != "false",
		showTime:  true,
		exit:      os.Exit,
	}
}

// NewWithWriter builds an uncoloured logger writing to w, mainly for tests.
func NewWithWriter(service string, w io.Writer, level Level) *Logger {
	return &Logger{
		level:   level,
		sink:    &sink{out: w},
		service: service,
		exit:    os.Exit,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter("", io.Discard, FATAL+1)
}

func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// With returns a child logger that appends key=value to every line.
func (l *Logger) With(key string, value interface{}) *Logger {
	child := *l
	child.fields = make([]field, len(l.fields), len(l.fields)+1)
	copy(child.fields, l.fields)
	child.fields = append(child.fields, field{key: key, value: fmt.Sprint(value)})
	return &child
}

// Named returns a child logger for a different service label sharing the same output.
func (l *Logger) Named(service string) *Logger {
	child := *l
	child.service = service
	return &child
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	var buf strings.Builder

	if l.showTime {
		buf.WriteString(time.Now().Format("15:04:05"))
		buf.WriteString(" ")
	}

	if l.useColors {
		buf.WriteString(levelColors[level])
	}
	buf.WriteString(fmt.Sprintf("%-5s", levelNames[level]))
	if l.useColors {
		buf.WriteString(reset)
	}
	buf.WriteString(" ")

	if l.service != "" {
		if l.useColors {
			buf.WriteString(gray)
		}
		buf.WriteString("[")
		buf.WriteString(l.service)
		buf.WriteString("]")
		if l.useColors {
			buf.WriteString(reset)
		}
		buf.WriteString(" ")
	}

	buf.WriteString(fmt.Sprintf(format, args...))

	for _, f := range l.fields {
		buf.WriteString(" ")
		if l.useColors {
			buf.WriteString(gray)
		}
		buf.WriteString(f.key)
		buf.WriteString("=")
		if l.useColors {
			buf.WriteString(reset)
		}
		buf.WriteString(f.value)
	}

	l.sink.mu.Lock()
	fmt.Fprintln(l.sink.out, buf.String())
	l.sink.mu.Unlock()

	if level == FATAL {
		l.exit(1)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
}

// SetStdLog redirects standard log package to use this logger
func (l *Logger) SetStdLog() {
	log.SetOutput(&stdLogWriter{logger: l})
	log.SetFlags(0)
}

type stdLogWriter struct {
	logger *Logger
}

func (w *stdLogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	w.logger.Info("%s", msg)
	return len(p), nil
}
