package scorelog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ariadne-cps/pExplore/score"
)

// Session identifies one search run in the archive.
type Session struct {
	ID        string
	Name      string
	StartedAt time.Time
}

// Store is a SQLite archive of generation histories. It implements the
// manager's Archive interface for the session opened with StartSession.
type Store struct {
	db        *sql.DB
	sessionID string
}

// Open opens or creates the archive database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS point_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		generation INTEGER NOT NULL,
		coordinates TEXT NOT NULL,
		successes TEXT NOT NULL,
		hard_failures TEXT NOT NULL,
		soft_failures TEXT NOT NULL,
		objective REAL NOT NULL,
		best INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_point_scores_session
		ON point_scores(session_id, generation);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// StartSession registers a new session and makes it current for
// RecordGeneration. The generated session id is returned.
func (s *Store) StartSession(name string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO sessions (id, name, started_at) VALUES (?, ?, ?)`,
		id, name, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}
	s.sessionID = id
	return id, nil
}

// RecordGeneration archives a whole generation under the current session.
func (s *Store) RecordGeneration(index int, g score.Generation) error {
	if s.sessionID == "" {
		return fmt.Errorf("no session started")
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO point_scores
			(session_id, generation, coordinates, successes, hard_failures, soft_failures, objective, best)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range Records(s.sessionID, index, g) {
		_, err := stmt.Exec(
			rec.SessionID, rec.Generation,
			joinInts(rec.Coordinates),
			joinInts(rec.Successes), joinInts(rec.HardFailures), joinInts(rec.SoftFailures),
			rec.Objective, rec.Best,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting point score: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Sessions lists the archived sessions, newest first.
func (s *Store) Sessions() ([]Session, error) {
	rows, err := s.db.Query(`SELECT id, name, started_at FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SessionRecords returns the archived records of a session, in generation
// order with the best point of each generation first.
func (s *Store) SessionRecords(sessionID string) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT session_id, generation, coordinates, successes, hard_failures, soft_failures, objective, best
		FROM point_scores WHERE session_id = ?
		ORDER BY generation, best DESC, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying point scores: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var coordinates, successes, hardFailures, softFailures string
		if err := rows.Scan(&rec.SessionID, &rec.Generation,
			&coordinates, &successes, &hardFailures, &softFailures,
			&rec.Objective, &rec.Best); err != nil {
			return nil, fmt.Errorf("scanning point score: %w", err)
		}
		if rec.Coordinates, err = splitInts(coordinates); err != nil {
			return nil, fmt.Errorf("parsing coordinates: %w", err)
		}
		if rec.Successes, err = splitInts(successes); err != nil {
			return nil, fmt.Errorf("parsing successes: %w", err)
		}
		if rec.HardFailures, err = splitInts(hardFailures); err != nil {
			return nil, fmt.Errorf("parsing hard failures: %w", err)
		}
		if rec.SoftFailures, err = splitInts(softFailures); err != nil {
			return nil, fmt.Errorf("parsing soft failures: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
