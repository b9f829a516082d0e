//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"kiltergen/internal/model"
)

// SQLiteStore persists records as JSON payloads in a SQLite database, one
// table per record kind.
type SQLiteStore struct {
	db *sql.DB
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path)
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: empty database path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			name TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS populations (
			session_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS fitness_history (
			session_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			session_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite store: init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) upsert(ctx context.Context, table, keyCol, key string, payload []byte) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, payload) VALUES (?, ?)
		 ON CONFLICT(%s) DO UPDATE SET payload = excluded.payload`,
		table, keyCol, keyCol,
	)
	if _, err := s.db.ExecContext(ctx, query, key, payload); err != nil {
		return fmt.Errorf("sqlite store: upsert %s %q: %w", table, key, err)
	}
	return nil
}

func (s *SQLiteStore) fetch(ctx context.Context, table, keyCol, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT payload FROM %s WHERE %s = ?`, table, keyCol)
	var payload []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite store: fetch %s %q: %w", table, key, err)
	}
	return payload, true, nil
}

func (s *SQLiteStore) SaveBoard(ctx context.Context, record model.BoardRecord) error {
	payload, err := encodeBoard(record)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "boards", "name", record.Name, payload)
}

func (s *SQLiteStore) GetBoard(ctx context.Context, name string) (model.BoardRecord, bool, error) {
	payload, ok, err := s.fetch(ctx, "boards", "name", name)
	if err != nil || !ok {
		return model.BoardRecord{}, false, err
	}
	record, err := decodeBoard(payload)
	if err != nil {
		return model.BoardRecord{}, false, err
	}
	return record, true, nil
}

func (s *SQLiteStore) SaveSession(ctx context.Context, session model.Session) error {
	payload, err := encodeSession(session)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "sessions", "id", session.ID, payload)
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (model.Session, bool, error) {
	payload, ok, err := s.fetch(ctx, "sessions", "id", id)
	if err != nil || !ok {
		return model.Session{}, false, err
	}
	session, err := decodeSession(payload)
	if err != nil {
		return model.Session{}, false, err
	}
	return session, true, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM sessions`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("sqlite store: scan session: %w", err)
		}
		session, err := decodeSession(payload)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error {
	payload, err := encodePopulation(snapshot)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "populations", "session_id", snapshot.SessionID, payload)
}

func (s *SQLiteStore) GetPopulation(ctx context.Context, sessionID string) (model.PopulationSnapshot, bool, error) {
	payload, ok, err := s.fetch(ctx, "populations", "session_id", sessionID)
	if err != nil || !ok {
		return model.PopulationSnapshot{}, false, err
	}
	snapshot, err := decodePopulation(payload)
	if err != nil {
		return model.PopulationSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *SQLiteStore) SaveFitnessHistory(ctx context.Context, sessionID string, history []float64) error {
	payload, err := encodeFitnessHistory(history)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "fitness_history", "session_id", sessionID, payload)
}

func (s *SQLiteStore) GetFitnessHistory(ctx context.Context, sessionID string) ([]float64, bool, error) {
	payload, ok, err := s.fetch(ctx, "fitness_history", "session_id", sessionID)
	if err != nil || !ok {
		return nil, false, err
	}
	history, err := decodeFitnessHistory(payload)
	if err != nil {
		return nil, false, err
	}
	return history, true, nil
}

func (s *SQLiteStore) SaveDiagnostics(ctx context.Context, sessionID string, diags []model.GenerationDiagnostics) error {
	payload, err := encodeDiagnostics(diags)
	if err != nil {
		return err
	}
	return s.upsert(ctx, "diagnostics", "session_id", sessionID, payload)
}

func (s *SQLiteStore) GetDiagnostics(ctx context.Context, sessionID string) ([]model.GenerationDiagnostics, bool, error) {
	payload, ok, err := s.fetch(ctx, "diagnostics", "session_id", sessionID)
	if err != nil || !ok {
		return nil, false, err
	}
	diags, err := decodeDiagnostics(payload)
	if err != nil {
		return nil, false, err
	}
	return diags, true, nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	for _, table := range []string{"boards", "sessions", "populations", "fitness_history", "diagnostics"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("sqlite store: reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
