package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the configuration of the zerolog logger and writers
type Config struct {
	// WithConsoleLog enables human readable logging on stderr
	WithConsoleLog bool

	// WithColor enables console logging coloring
	WithColor bool

	// Filename enables rolling file logging when set to a file path
	Filename string

	// MaxSize is the max size in MB of the logfile before it's rolled
	MaxSize int

	// MaxBackups is the max number of rolled files to keep
	MaxBackups int

	// MaxAge is the max age in days to keep a logfile
	MaxAge int
}

const (
	TimeFormat = "15:04:05.000"
)

var (
	consoleWriter = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: TimeFormat}
)

// SetDefaultConsoleWriter set the default console writer
func SetDefaultConsoleWriter(w zerolog.ConsoleWriter) {
	consoleWriter = w
}

// Configure sets up the logging framework. With no writer enabled the
// returned logger discards everything.
func Configure(config Config) *zerolog.Logger {
	var writers []io.Writer

	if config.WithConsoleLog {
		consoleWriter.NoColor = !config.WithColor
		writers = append(writers, consoleWriter)
	}
	if config.Filename != "" {
		if fileWriter, err := newRollingFile(config); err == nil {
			writers = append(writers, fileWriter)
		}
	}
	if len(writers) == 0 {
		logger := zerolog.Nop()
		return &logger
	}
	logger := log.Output(io.MultiWriter(writers...))
	return &logger
}

func newRollingFile(config Config) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(config.Filename), 0o744); err != nil {
		log.Error().Err(err).Str("path", config.Filename).Msg("can't create log directory")
		return nil, err
	}
	return &lumberjack.Logger{
		Filename:   config.Filename,
		MaxBackups: config.MaxBackups, // files
		MaxSize:    config.MaxSize,    // megabytes
		MaxAge:     config.MaxAge,     // days
	}, nil
}
