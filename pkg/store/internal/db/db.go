package db

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// Row is one journaled event.
type Row struct {
	Seq     int64
	Type    string
	Payload []byte
}

// NewDB opens the database at dbPath and creates the journal tables.
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer; sqlite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary database tables
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			game_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game_id, seq),
			FOREIGN KEY (game_id) REFERENCES games(id)
		)
	`)
	return err
}

// AppendEvent stores the next event of gameID and returns its sequence
// number.
func (db *DB) AppendEvent(gameID, eventType string, payload []byte) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO games (id) VALUES (?)`, gameID); err != nil {
		return 0, err
	}

	var seq int64
	err = tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM events WHERE game_id = ?`, gameID).Scan(&seq)
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(`
		INSERT INTO events (game_id, seq, type, payload)
		VALUES (?, ?, ?, ?)
	`, gameID, seq, eventType, string(payload))
	if err != nil {
		return 0, err
	}

	return seq, tx.Commit()
}

// LoadEvents returns the journal of gameID in append order.
func (db *DB) LoadEvents(gameID string) ([]Row, error) {
	rows, err := db.Query(`SELECT seq, type, payload FROM events WHERE game_id = ? ORDER BY seq`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %v", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var payload string
		if err := rows.Scan(&r.Seq, &r.Type, &payload); err != nil {
			return nil, err
		}
		r.Payload = []byte(payload)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GameIDs returns every game with a journal, sorted.
func (db *DB) GameIDs() ([]string, error) {
	rows, err := db.Query(`SELECT id FROM games ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
