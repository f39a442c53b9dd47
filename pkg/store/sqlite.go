package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/eventlog"
	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/store/internal/db"
	"github.com/vctt94/pokerledger/pkg/utils"
)

// SQLiteStore journals events in a SQLite database, one row per event.
type SQLiteStore struct {
	db  *db.DB
	log slog.Logger
}

// NewSQLiteStore opens or creates the journal database at path.
func NewSQLiteStore(path string, cfg Config) (*SQLiteStore, error) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	d, err := db.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &SQLiteStore{db: d, log: cfg.logger()}, nil
}

// Sink implements Store.
func (s *SQLiteStore) Sink(gameID string) eventlog.Sink {
	return eventlog.SinkFunc(func(e events.Event) error {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode %s: %w", e.Kind(), err)
		}
		seq, err := s.db.AppendEvent(gameID, string(e.Kind()), payload)
		if err != nil {
			return fmt.Errorf("journal %s for game %s: %w", e.Kind(), gameID, err)
		}
		s.log.Tracef("game %s: journaled %s as #%d", gameID, e.Kind(), seq)
		return nil
	})
}

// Load implements Store.
func (s *SQLiteStore) Load(gameID string) ([]events.Event, error) {
	rows, err := s.db.LoadEvents(gameID)
	if err != nil {
		return nil, err
	}
	out := make([]events.Event, 0, len(rows))
	for _, r := range rows {
		e, err := events.FromRecord(events.Record{Type: events.Kind(r.Type), Event: r.Payload})
		if err != nil {
			s.log.Debugf("corrupt journal row: %s", spew.Sdump(r))
			return nil, fmt.Errorf("game %s event #%d: %w: %w", gameID, r.Seq, ErrCorruptLog, err)
		}
		out = append(out, e)
	}
	s.log.Debugf("loaded %d events for game %s", len(out), gameID)
	return out, nil
}

// GameIDs implements Store.
func (s *SQLiteStore) GameIDs() ([]string, error) {
	return s.db.GameIDs()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
