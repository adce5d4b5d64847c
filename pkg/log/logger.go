package log

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/small-frappuccino/mirrorcore/pkg/util"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Category selects which log file a record is routed to. Application covers
// bootstrap and console logic, Discord covers gateway traffic and message
// edits, Database covers the settings store.
type Category int

const (
	CategoryApplication Category = iota
	CategoryDiscord
	CategoryDatabase
)

type loggers struct {
	application *slog.Logger
	discord     *slog.Logger
	database    *slog.Logger

	sinks []io.Closer
}

var (
	global    *loggers
	setupOnce sync.Once
)

// Setup initializes the global category loggers. File outputs are rotated
// with lumberjack; records are mirrored to stdout. Idempotent.
func Setup() error {
	setupOnce.Do(func() {
		global = build(util.GetLogDirPath())
	})
	return nil
}

func build(logDir string) *loggers {
	l := &loggers{}
	l.application = l.newCategoryLogger(logDir, "application.log")
	l.discord = l.newCategoryLogger(logDir, "discord.log")
	l.database = l.newCategoryLogger(logDir, "database.log")
	return l
}

func (l *loggers) newCategoryLogger(dir, filename string) *slog.Logger {
	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, filename),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}
	l.sinks = append(l.sinks, sink)
	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, sink), nil)
	return slog.New(h)
}

// Application returns the logger for bootstrap and console events.
func Application() *slog.Logger {
	ensure()
	return global.application
}

// Discord returns the logger for gateway and interaction events.
func Discord() *slog.Logger {
	ensure()
	return global.discord
}

// Database returns the logger for settings-store events.
func Database() *slog.Logger {
	ensure()
	return global.database
}

// For returns the logger for an arbitrary category.
func For(c Category) *slog.Logger {
	switch c {
	case CategoryDiscord:
		return Discord()
	case CategoryDatabase:
		return Database()
	default:
		return Application()
	}
}

// Close closes all rotating file sinks. Safe to call once at shutdown.
func Close() error {
	if global == nil {
		return nil
	}
	var firstErr error
	for _, s := range global.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func ensure() {
	if global == nil {
		_ = Setup()
	}
}
