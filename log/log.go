package log

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log levels accepted by Init.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
	LogLevelFatal = "fatal"
)

// logTestWriterName is a reserved output name that routes the log stream to
// logTestWriter, so tests and benchmarks can capture or discard it.
const logTestWriterName = "_testWriter"

var (
	log   zerolog.Logger
	level string
	// logTestWriter is the io.Writer used when Init is called with
	// logTestWriterName as output.
	logTestWriter io.Writer = io.Discard
	errorLogFile  *os.File
	// panicOnInvalidChars is set based on env LOG_PANIC_ON_INVALIDCHARS (parsed as bool)
	panicOnInvalidChars bool
)

func init() {
	// Allow overriding the default log level via $LOG_LEVEL, so that the
	// environment variable can be set globally even when running tests.
	// Always initializing the logger is also useful to avoid panics when
	// logging if the logger is nil.
	l := LogLevelError
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		l = s
	}
	Init(l, "stderr", nil)
}

// Logger returns the underlying zerolog instance.
func Logger() *zerolog.Logger { return &log }

// Level returns the level the logger was initialized with.
func Level() string { return level }

// Init initializes the logger. Output can be either "stdout", "stderr" or a
// file path. If errorLogfile is not nil, warning and error messages are also
// written to it.
func Init(logLevel, output string, errorLogfile *os.File) {
	var out io.Writer
	switch output {
	case "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot open log output %q: %v", output, err))
		}
		out = f
	}
	zerolog.CallerSkipFrameCount = 3
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "3:04PM",
	}).With().Timestamp().Caller().Logger().Level(levelFromString(logLevel))
	level = logLevel
	errorLogFile = errorLogfile

	if s := os.Getenv("LOG_PANIC_ON_INVALIDCHARS"); s != "" {
		// ignore ParseBool errors, if anything fails panicOnInvalidChars will stay false which is good
		b, _ := strconv.ParseBool(s)
		panicOnInvalidChars = b
	}
	log.Info().Msgf("logger construction succeeded at level %s with output %s", logLevel, output)
}

func levelFromString(logLevel string) zerolog.Level {
	switch logLevel {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func writeErrorToFile(msg string) {
	if errorLogFile == nil {
		return
	}
	// Use a separate goroutine, to ensure we don't block.
	// Ignore the error, as we're logging errors anyway.
	go func() {
		_, _ = errorLogFile.WriteString(fmt.Sprintf("[%s] %s\n", time.Now().Format("2006/0102/150405"), msg))
	}()
}

// checkInvalidChars checks if the formatted string contains the Unicode
// replacement char (U+FFFD) and panics if env LOG_PANIC_ON_INVALIDCHARS is
// true. A replacement char in a log line most likely means a format mismatch
// in the caller's fmt.Sprintf.
func checkInvalidChars(args ...any) {
	if panicOnInvalidChars {
		s := fmt.Sprint(args...)
		if strings.ContainsRune(s, '�') {
			panic(fmt.Sprintf("log line with invalid chars: %s", s))
		}
	}
}

// Debug sends a debug level log message.
func Debug(args ...any) {
	log.Debug().Msg(fmt.Sprint(args...))
	checkInvalidChars(args...)
}

// Info sends an info level log message.
func Info(args ...any) {
	log.Info().Msg(fmt.Sprint(args...))
	checkInvalidChars(args...)
}

// Warn sends a warn level log message.
func Warn(args ...any) {
	msg := fmt.Sprint(args...)
	log.Warn().Msg(msg)
	writeErrorToFile(msg)
	checkInvalidChars(args...)
}

// Error sends an error level log message.
func Error(args ...any) {
	msg := fmt.Sprint(args...)
	log.Error().Msg(msg)
	writeErrorToFile(msg)
	checkInvalidChars(args...)
}

// Fatal sends a fatal level log message and exits.
func Fatal(args ...any) {
	log.Fatal().Msg(fmt.Sprint(args...))
	// We don't support log levels lower than "fatal". Help analyzers like
	// staticcheck see that, in this package, Fatal will always exit the
	// entire program.
	panic("unreachable")
}

// Debugf sends a formatted debug level log message.
func Debugf(template string, args ...any) {
	log.Debug().Msgf(template, args...)
	checkInvalidChars(fmt.Sprintf(template, args...))
}

// Infof sends a formatted info level log message.
func Infof(template string, args ...any) {
	log.Info().Msgf(template, args...)
	checkInvalidChars(fmt.Sprintf(template, args...))
}

// Warnf sends a formatted warn level log message.
func Warnf(template string, args ...any) {
	log.Warn().Msgf(template, args...)
	writeErrorToFile(fmt.Sprintf(template, args...))
	checkInvalidChars(fmt.Sprintf(template, args...))
}

// Errorf sends a formatted error level log message.
func Errorf(template string, args ...any) {
	log.Error().Msgf(template, args...)
	writeErrorToFile(fmt.Sprintf(template, args...))
	checkInvalidChars(fmt.Sprintf(template, args...))
}

// Fatalf sends a formatted fatal level log message and exits.
func Fatalf(template string, args ...any) {
	log.Fatal().Msgf(template, args...)
	panic("unreachable")
}

// Debugw sends a key-value formatted debug level log message.
func Debugw(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg(msg)
}

// Infow sends a key-value formatted info level log message.
func Infow(msg string, keysAndValues ...any) {
	log.Info().Fields(keysAndValues).Msg(msg)
}

// Warnw sends a key-value formatted warn level log message.
func Warnw(msg string, keysAndValues ...any) {
	log.Warn().Fields(keysAndValues).Msg(msg)
	writeErrorToFile(msg)
}

// Errorw sends a key-value formatted error level log message.
func Errorw(msg string, keysAndValues ...any) {
	log.Error().Fields(keysAndValues).Msg(msg)
	writeErrorToFile(msg)
}

// Fatalw sends a key-value formatted fatal level log message and exits.
func Fatalw(msg string, keysAndValues ...any) {
	log.Fatal().Fields(keysAndValues).Msg(msg)
	panic("unreachable")
}
