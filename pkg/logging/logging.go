// Package logging provides the subsystem log backend shared by every
// component: leveled decred/slog loggers writing to the console and to a
// rotating log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// Subsystem tags.
const (
	SubsysGame   = "GAME"
	SubsysLog    = "ELOG"
	SubsysStore  = "STOR"
	SubsysServer = "SRVR"
	SubsysRanker = "RANK"
)

// LogConfig configures a LogBackend.
type LogConfig struct {
	// LogFile is the rotating log file. Empty disables file logging.
	LogFile string
	// DebugLevel is either a level for every subsystem ("debug") or a
	// comma separated list with per-subsystem overrides ("info,GAME=trace").
	DebugLevel string
	// MaxLogFiles is how many rotated files are kept.
	MaxLogFiles int
	// Console receives log output besides the file. Nil means stdout.
	Console io.Writer
}

// LogBackend hands out per-subsystem loggers sharing one output.
type LogBackend struct {
	rotator *rotator.Rotator
	backend *slog.Backend

	mu           sync.Mutex
	defaultLevel slog.Level
	levels       map[string]slog.Level
	loggers      map[string]slog.Logger
}

type logWriter struct {
	console io.Writer
	rotator *rotator.Rotator
}

func (w logWriter) Write(p []byte) (int, error) {
	if w.console != nil {
		w.console.Write(p)
	}
	if w.rotator != nil {
		w.rotator.Write(p)
	}
	return len(p), nil
}

// NewLogBackend creates the backend described by cfg.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	def, levels, err := ParseDebugLevel(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}

	lb := &LogBackend{
		defaultLevel: def,
		levels:       levels,
		loggers:      make(map[string]slog.Logger),
	}

	w := logWriter{console: cfg.Console}
	if w.console == nil {
		w.console = os.Stdout
	}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %v", err)
		}
		maxRolls := cfg.MaxLogFiles
		if maxRolls <= 0 {
			maxRolls = 3
		}
		r, err := rotator.New(cfg.LogFile, 10*1024, false, maxRolls)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %v", err)
		}
		lb.rotator = r
		w.rotator = r
	}
	lb.backend = slog.NewBackend(w)
	return lb, nil
}

// Logger returns the logger for subsystem, creating it on first use.
func (lb *LogBackend) Logger(subsystem string) slog.Logger {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if l, ok := lb.loggers[subsystem]; ok {
		return l
	}
	l := lb.backend.Logger(subsystem)
	l.SetLevel(lb.levelFor(subsystem))
	lb.loggers[subsystem] = l
	return l
}

func (lb *LogBackend) levelFor(subsystem string) slog.Level {
	if lvl, ok := lb.levels[subsystem]; ok {
		return lvl
	}
	return lb.defaultLevel
}

// SetLevel applies new debug levels to every logger.
func (lb *LogBackend) SetLevel(debugLevel string) error {
	def, levels, err := ParseDebugLevel(debugLevel)
	if err != nil {
		return err
	}
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.defaultLevel, lb.levels = def, levels
	for name, l := range lb.loggers {
		l.SetLevel(lb.levelFor(name))
	}
	return nil
}

// Close flushes and closes the log file.
func (lb *LogBackend) Close() error {
	if lb.rotator == nil {
		return nil
	}
	return lb.rotator.Close()
}

// ParseDebugLevel parses "level" or "level,SUBSYS=level,...". An empty string
// means info.
func ParseDebugLevel(debugLevel string) (slog.Level, map[string]slog.Level, error) {
	def := slog.LevelInfo
	levels := make(map[string]slog.Level)
	if strings.TrimSpace(debugLevel) == "" {
		return def, levels, nil
	}
	for _, part := range strings.Split(debugLevel, ",") {
		part = strings.TrimSpace(part)
		name, lvl, isPair := strings.Cut(part, "=")
		if !isPair {
			l, ok := slog.LevelFromString(part)
			if !ok {
				return 0, nil, fmt.Errorf("invalid debug level %q", part)
			}
			def = l
			continue
		}
		l, ok := slog.LevelFromString(lvl)
		if !ok {
			return 0, nil, fmt.Errorf("invalid debug level %q for %s", lvl, name)
		}
		levels[strings.ToUpper(name)] = l
	}
	return def, levels, nil
}
