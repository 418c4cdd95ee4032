// Package logging
// Author: momentics <momentics@gmail.com>
//
// zerolog-backed structured logging shared by the command-line tools.

package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var Log = NewLogger(&LogOptions{Level: "info", Format: "text"})

// LogOptions configures the logger.
type LogOptions struct {
	Level  string    // "debug", "info", "warn", "error"; default "info"
	Format string    // "json" or "text"
	Out    io.Writer // defaults to os.Stderr
}

// Logger wraps zerolog.Logger.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger builds a Logger. An unknown level falls back to info and is
// reported once through the new logger.
func NewLogger(opts *LogOptions) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if opts.Format != "json" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	l := &Logger{logger: zerolog.New(out).Level(level).With().Timestamp().Logger()}
	if err != nil {
		l.logger.Warn().Str("config_level", opts.Level).Msg("invalid log level, defaulting to info")
	}
	return l
}

// Setup replaces the package logger.
func Setup(opts *LogOptions) *Logger {
	Log = NewLogger(opts)
	return Log
}

// Zerolog exposes the underlying logger, e.g. for pool.WithLogger.
func (l *Logger) Zerolog() zerolog.Logger { return l.logger }

func (l *Logger) LogDebug(msg string, keyValues ...interface{}) {
	if e := l.logger.Debug(); e.Enabled() {
		e.Fields(keyValues).Msg(msg)
	}
}

func (l *Logger) LogInfo(msg string, keyValues ...interface{}) {
	l.logger.Info().Fields(keyValues).Msg(msg)
}

func (l *Logger) LogWarn(msg string, keyValues ...interface{}) {
	l.logger.Warn().Fields(keyValues).Msg(msg)
}

// LogError attaches err to the event.
func (l *Logger) LogError(err error, msg string, keyValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keyValues).Msg(msg)
}

func Debug(msg string, keyValues ...interface{}) { Log.LogDebug(msg, keyValues...) }

func Info(msg string, keyValues ...interface{}) { Log.LogInfo(msg, keyValues...) }

func Warn(msg string, keyValues ...interface{}) { Log.LogWarn(msg, keyValues...) }

func Error(err error, msg string, keyValues ...interface{}) { Log.LogError(err, msg, keyValues...) }
