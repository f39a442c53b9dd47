// Package config loads pokerledger settings from defaults, a .env file,
// POKERLEDGER_* environment variables and command line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/joho/godotenv"

	"github.com/vctt94/pokerledger/pkg/logging"
	"github.com/vctt94/pokerledger/pkg/poker"
	"github.com/vctt94/pokerledger/pkg/store"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "POKERLEDGER_"

// Config is the processed configuration.
type Config struct {
	DataDir          string        `env:"DATADIR"`
	Store            string        `env:"STORE" envDefault:"file"`
	DebugLevel       string        `env:"DEBUGLEVEL" envDefault:"info"`
	LogFile          string        `env:"LOGFILE"`
	MaxLogFiles      int           `env:"MAXLOGFILES" envDefault:"5"`
	Ranker           string        `env:"RANKER" envDefault:"chehsunliu"`
	AutoAdvanceDelay time.Duration `env:"AUTO_ADVANCE_DELAY" envDefault:"1s"`
	AutoStartDelay   time.Duration `env:"AUTO_START_DELAY" envDefault:"3s"`
}

// Flags holds the command line flags shared by every binary.
type Flags struct {
	EnvFile          *string
	DataDir          *string
	Store            *string
	DebugLevel       *string
	LogFile          *string
	MaxLogFiles      *int
	Ranker           *string
	AutoAdvanceDelay *time.Duration
	AutoStartDelay   *time.Duration
}

// RegisterFlags registers the shared flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		EnvFile:          fs.String("envfile", ".env", "Path to a .env file (ignored if missing)"),
		DataDir:          fs.String("datadir", "", "Directory for game logs and log files"),
		Store:            fs.String("store", "", "Event store: file or sqlite"),
		DebugLevel:       fs.String("debuglevel", "", "Logging level: trace, debug, info, warn, error, optionally with SUBSYS=level overrides"),
		LogFile:          fs.String("logfile", "", "Path to the rotating log file"),
		MaxLogFiles:      fs.Int("maxlogfiles", 0, "Number of rotated log files to keep"),
		Ranker:           fs.String("ranker", "", "Hand ranker: chehsunliu or paulhankin"),
		AutoAdvanceDelay: fs.Duration("autoadvance", 0, "Delay before dealing the next street once betting closes"),
		AutoStartDelay:   fs.Duration("autostart", 0, "Delay before starting the next round after one ends"),
	}
}

// Load parses args with flagSet and builds the configuration for appName. Callers
// may register their own flags on flagSet before calling Load.
func Load(flagSet *flag.FlagSet, args []string, appName string) (*Config, error) {
	flags := RegisterFlags(flagSet)
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	return flags.Resolve(flagSet, appName, nil)
}

// Resolve builds the configuration from parsed flags. environ replaces the
// process environment when non-nil.
func (f *Flags) Resolve(flagSet *flag.FlagSet, appName string, environ map[string]string) (*Config, error) {
	if environ == nil {
		if err := godotenv.Load(*f.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %v", *f.EnvFile, err)
		}
	}

	var cfg Config
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Only flags given on the command line override.
	flagSet.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "datadir":
			cfg.DataDir = *f.DataDir
		case "store":
			cfg.Store = *f.Store
		case "debuglevel":
			cfg.DebugLevel = *f.DebugLevel
		case "logfile":
			cfg.LogFile = *f.LogFile
		case "maxlogfiles":
			cfg.MaxLogFiles = *f.MaxLogFiles
		case "ranker":
			cfg.Ranker = *f.Ranker
		case "autoadvance":
			cfg.AutoAdvanceDelay = *f.AutoAdvanceDelay
		case "autostart":
			cfg.AutoStartDelay = *f.AutoStartDelay
		}
	})

	if cfg.DataDir == "" {
		cfg.DataDir = dcrutil.AppDataDir(appName, false)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "logs", appName+".log")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks names, levels and delays.
func (c *Config) Validate() error {
	switch c.Store {
	case store.KindFile, store.KindSQLite:
	default:
		return fmt.Errorf("invalid store %q: want %s or %s", c.Store, store.KindFile, store.KindSQLite)
	}
	if _, err := poker.RankerByName(c.Ranker); err != nil {
		return err
	}
	if _, _, err := logging.ParseDebugLevel(c.DebugLevel); err != nil {
		return err
	}
	if c.MaxLogFiles < 0 {
		return fmt.Errorf("maxlogfiles must not be negative")
	}
	if c.AutoAdvanceDelay < 0 || c.AutoStartDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// LogConfig returns the log backend settings.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		LogFile:     c.LogFile,
		DebugLevel:  c.DebugLevel,
		MaxLogFiles: c.MaxLogFiles,
	}
}
