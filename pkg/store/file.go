package store

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/eventlog"
	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/utils"
)

const (
	logExt          = ".log"
	recordSeparator = ",\n"
)

// FileStore keeps one comma-separated JSON record file per game.
type FileStore struct {
	dir string
	log slog.Logger

	mu    sync.Mutex
	files map[string]*os.File
}

// NewFileStore opens a file store rooted at dir, creating it if needed.
func NewFileStore(dir string, cfg Config) (*FileStore, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, log: cfg.logger(), files: make(map[string]*os.File)}, nil
}

func (s *FileStore) path(gameID string) string {
	return filepath.Join(s.dir, gameID+logExt)
}

// Sink implements Store.
func (s *FileStore) Sink(gameID string) eventlog.Sink {
	return eventlog.SinkFunc(func(e events.Event) error {
		return s.append(gameID, e)
	})
}

func (s *FileStore) append(gameID string, e events.Event) error {
	if err := validateGameID(gameID); err != nil {
		return err
	}
	rec, err := events.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[gameID]
	if !ok {
		f, err = os.OpenFile(s.path(gameID), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log for game %s: %w", gameID, err)
		}
		s.files[gameID] = f
	}
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.Size() > 0 {
		rec = append([]byte(recordSeparator), rec...)
	}
	if _, err := f.Write(rec); err != nil {
		return fmt.Errorf("write log for game %s: %w", gameID, err)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load(gameID string) ([]events.Event, error) {
	if err := validateGameID(gameID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(gameID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	evs, err := ParseLog(data)
	if err != nil {
		return nil, fmt.Errorf("game %s: %w", gameID, err)
	}
	s.log.Debugf("loaded %d events for game %s", len(evs), gameID)
	return evs, nil
}

// ParseLog decodes the contents of a log file. A trailing separator or
// whitespace left by an interrupted write is tolerated.
func ParseLog(data []byte) ([]events.Event, error) {
	body := bytes.TrimSpace(data)
	body = bytes.TrimSuffix(body, []byte(","))
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	wrapped := make([]byte, 0, len(body)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, body...)
	wrapped = append(wrapped, ']')

	evs, err := events.UnmarshalList(wrapped)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptLog, err)
	}
	return evs, nil
}

// GameIDs implements Store.
func (s *FileStore) GameIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), logExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), logExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for id, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log for game %s: %w", id, err))
		}
		delete(s.files, id)
	}
	return errors.Join(errs...)
}
