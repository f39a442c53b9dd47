// Package store persists game event logs and loads them back for replay.
package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/eventlog"
	"github.com/vctt94/pokerledger/pkg/events"
)

var (
	// ErrCorruptLog is returned when a persisted log cannot be parsed. The
	// game's state must not be rebuilt from a partial history.
	ErrCorruptLog = errors.New("corrupt event log")

	// ErrInvalidGameID is returned for ids that cannot name a log.
	ErrInvalidGameID = errors.New("invalid game id")
)

// Store is durable storage for per-game event logs.
type Store interface {
	// Sink returns the append sink for gameID. Events are persisted in the
	// order the sink receives them.
	Sink(gameID string) eventlog.Sink
	// Load returns the persisted history of gameID, empty if none.
	Load(gameID string) ([]events.Event, error)
	// GameIDs lists every game with a persisted log.
	GameIDs() ([]string, error)
	Close() error
}

// Config holds the options shared by every store.
type Config struct {
	Log slog.Logger
}

func (c Config) logger() slog.Logger {
	if c.Log == nil {
		return slog.Disabled
	}
	return c.Log
}

// Kinds of store selectable in configuration.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// Open creates the store of the given kind under dataDir.
func Open(kind, dataDir string, cfg Config) (Store, error) {
	switch kind {
	case KindFile:
		return NewFileStore(filepath.Join(dataDir, "games"), cfg)
	case KindSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, "pokerledger.db"), cfg)
	}
	return nil, fmt.Errorf("unknown store %q", kind)
}

func validateGameID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidGameID, id)
	}
	return nil
}
