// Package logging builds the root zerolog logger.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options of the root logger
type Options struct {
	Level string
	// File, when set, receives JSON logs rotated by size
	File string
	// Console is where human readable logs go; nil means stderr
	Console io.Writer
}

// New returns the root logger. An unknown level falls back to info.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}
	if opts.File != "" {
		w = zerolog.MultiLevelWriter(w, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		})
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
