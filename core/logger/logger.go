// Package logger is the global leveled logger used across depscope.
// Output is colored for terminals; DEBUG lines only appear in verbose
// mode. Extra writers (for --logfile) receive every level.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) color() string {
	switch l {
	case DEBUG:
		return colorGray
	case INFO:
		return colorBlue
	case WARN:
		return colorYellow
	case ERROR:
		return colorRed
	case FATAL:
		return colorPurple
	default:
		return colorWhite
	}
}

type leveledLogger struct {
	mu      sync.RWMutex
	verbose bool
	out     io.Writer
	extra   []io.Writer
}

var global = &leveledLogger{out: os.Stdout}

// SetVerbose enables DEBUG output.
func SetVerbose(verbose bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.verbose = verbose
}

// AddWriterForAll sends every level to an additional writer.
func AddWriterForAll(writer io.Writer) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.extra = append(global.extra, writer)
}

func (l *leveledLogger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.RLock()
	if level == DEBUG && !l.verbose {
		l.mu.RUnlock()
		return
	}
	writers := append([]io.Writer{l.out}, l.extra...)
	l.mu.RUnlock()

	timestamp := time.Now().Format("06-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf(
		"%s[%s]%s %s%-5s%s %s\n",
		colorGray, timestamp, colorReset,
		level.color(), level.String(), colorReset,
		message,
	)

	for _, w := range writers {
		fmt.Fprint(w, line)
	}
	if level == FATAL {
		os.Exit(1)
	}
}

func Debug(format string, args ...interface{}) {
	global.log(DEBUG, format, args...)
}

func Info(format string, args ...interface{}) {
	global.log(INFO, format, args...)
}

func Warn(format string, args ...interface{}) {
	global.log(WARN, format, args...)
}

func Error(format string, args ...interface{}) {
	global.log(ERROR, format, args...)
}

func Fatal(format string, args ...interface{}) {
	global.log(FATAL, format, args...)
}
