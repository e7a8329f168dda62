// Package logx is a small structured-logging facade over zerolog.
//
// Components receive a Logger at construction; nothing in this module
// configures process-global logging. The Service fans events out to a
// console writer, a JSON file sink (the audit artifact consumed by
// operators), and optionally a rate-limited alert sender.
package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

type Config struct {
	Level   string
	Console bool

	// Dir holds dated JSON log files (automation_YYYY_MM_DD.log).
	// Empty disables the file sink.
	Dir string

	Alert AlertConfig
}

type AlertConfig struct {
	Enabled    bool
	MinLevel   string
	RatePerSec int
}

// Sender delivers an alert line to an out-of-band operator channel.
type Sender interface {
	SendText(text string) error
}

type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

// Field mutates a zerolog event. Fields apply in order; later keys win.
type Field func(e *zerolog.Event)

func String(k, v string) Field  { return func(e *zerolog.Event) { e.Str(k, v) } }
func Int(k string, v int) Field { return func(e *zerolog.Event) { e.Int(k, v) } }
func Bool(k string, v bool) Field {
	return func(e *zerolog.Event) { e.Bool(k, v) }
}
func Duration(k string, v time.Duration) Field {
	return func(e *zerolog.Event) { e.Dur(k, v) }
}
func Time(k string, v time.Time) Field { return func(e *zerolog.Event) { e.Time(k, v) } }
func Any(k string, v any) Field        { return func(e *zerolog.Event) { e.Interface(k, v) } }
func Err(err error) Field {
	return func(e *zerolog.Event) {
		if err != nil {
			e.Err(err)
		}
	}
}

// Logger is a lightweight handle over the shared root. The zero value is a
// safe no-op logger.
type Logger struct {
	svc    *Service
	base   zerolog.Logger
	hasOwn bool
	fields []Field
}

// Nop returns a logger that never writes anything.
func Nop() Logger { return Logger{base: zerolog.Nop(), hasOwn: true} }

// NewConsole creates a standalone console logger, used during bootstrap
// before the config document has been read.
func NewConsole(level string) Logger {
	cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat}
	zl := zerolog.New(cw).Level(parseLevel(level, zerolog.InfoLevel)).With().Timestamp().Logger()
	return Logger{base: zl, hasOwn: true}
}

func (l Logger) root() zerolog.Logger {
	if l.svc != nil {
		return l.svc.root
	}
	if l.hasOwn {
		return l.base
	}
	return zerolog.Nop()
}

func (l Logger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	cp := l
	cp.fields = append(append([]Field(nil), l.fields...), fields...)
	return cp
}

func (l Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields...) }
func (l Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields...) }
func (l Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields...) }
func (l Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields...) }

func (l Logger) log(level zerolog.Level, msg string, fields ...Field) {
	zl := l.root()
	e := zl.WithLevel(level)
	if e == nil {
		return
	}
	for _, f := range l.fields {
		if f != nil {
			f(e)
		}
	}
	for _, f := range fields {
		if f != nil {
			f(e)
		}
	}
	e.Msg(msg)
}

// Service owns the sinks behind a root logger.
type Service struct {
	root zerolog.Logger
	file *os.File
}

// New builds the logging service from config. The alert sender may be nil,
// in which case the alert sink is skipped even when enabled.
func New(cfg Config, sender Sender) (*Service, Logger, error) {
	zerolog.ErrorFieldName = "err"
	zerolog.TimeFieldFormat = timeFormat

	s := &Service{}
	writers := make([]io.Writer, 0, 3)

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat})
	}
	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, Logger{}, fmt.Errorf("log dir: %w", err)
		}
		name := "automation_" + time.Now().Format("2006_01_02") + ".log"
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, Logger{}, fmt.Errorf("open log file: %w", err)
		}
		s.file = f
		writers = append(writers, zerolog.SyncWriter(f))
	}
	if cfg.Alert.Enabled && sender != nil {
		rps := cfg.Alert.RatePerSec
		if rps < 1 {
			rps = 1
		}
		writers = append(writers, &alertWriter{
			sender:   sender,
			minLevel: parseLevel(cfg.Alert.MinLevel, zerolog.WarnLevel),
			limiter:  rate.NewLimiter(rate.Limit(rps), rps),
		})
	}
	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat})
	}

	lvl := parseLevel(cfg.Level, zerolog.InfoLevel)
	s.root = zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(lvl).With().Timestamp().Logger()
	return s, Logger{svc: s}, nil
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

func (s *Service) Close() error {
	if s.file != nil {
		err := s.file.Close()
		s.file = nil
		return err
	}
	return nil
}

func parseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return def
	}
}
