package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrSessionNotFound is returned when no session matches the requested id.
var ErrSessionNotFound = errors.New("session not found")

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    created_ns  INTEGER NOT NULL,
    updated_ns  INTEGER NOT NULL,
    num_qubits  INTEGER NOT NULL,
    snapshot    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_ns);
`

// Session is a saved engine snapshot.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	NumQubits int
	State     QuantumState
}

// SessionStore persists snapshots in SQLite.
type SessionStore struct {
	db *sql.DB
}

// OpenSessionStore opens or creates the database at path.
func OpenSessionStore(path string) (*SessionStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sessionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Close releases the database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Save stores state under a new session id and returns it.
func (s *SessionStore) Save(name string, state QuantumState) (Session, error) {
	now := time.Now()
	sess := Session{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		NumQubits: state.NumQubits(),
		State:     state.Clone(),
	}
	blob, err := json.Marshal(sess.State)
	if err != nil {
		return Session{}, fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO sessions (id, name, created_ns, updated_ns, num_qubits, snapshot) VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, now.UnixNano(), now.UnixNano(), sess.NumQubits, string(blob),
	)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Update overwrites the snapshot of an existing session.
func (s *SessionStore) Update(id string, state QuantumState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE sessions SET updated_ns = ?, num_qubits = ?, snapshot = ? WHERE id = ?`,
		time.Now().UnixNano(), state.NumQubits(), string(blob), id,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Load returns the session with the given id.
func (s *SessionStore) Load(id string) (Session, error) {
	row := s.db.QueryRow(
		`SELECT id, name, created_ns, updated_ns, num_qubits, snapshot FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, err
}

// Latest returns the most recently updated session.
func (s *SessionStore) Latest() (Session, error) {
	row := s.db.QueryRow(
		`SELECT id, name, created_ns, updated_ns, num_qubits, snapshot FROM sessions ORDER BY updated_ns DESC LIMIT 1`)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return sess, err
}

// List returns all sessions, newest first, without decoding their snapshots.
func (s *SessionStore) List() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, name, created_ns, updated_ns, num_qubits FROM sessions ORDER BY updated_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		var created, updated int64
		if err := rows.Scan(&sess.ID, &sess.Name, &created, &updated, &sess.NumQubits); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.CreatedAt = time.Unix(0, created)
		sess.UpdatedAt = time.Unix(0, updated)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

func scanSession(row *sql.Row) (Session, error) {
	var sess Session
	var created, updated int64
	var blob string
	if err := row.Scan(&sess.ID, &sess.Name, &created, &updated, &sess.NumQubits, &blob); err != nil {
		return Session{}, err
	}
	sess.CreatedAt = time.Unix(0, created)
	sess.UpdatedAt = time.Unix(0, updated)
	if err := json.Unmarshal([]byte(blob), &sess.State); err != nil {
		return Session{}, fmt.Errorf("decode session %s: %w", sess.ID, err)
	}
	return sess, nil
}
