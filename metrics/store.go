package metrics

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store keeps training runs in a SQLite database so several runs can be
// compared later.
type Store struct {
	db *sql.DB
}

// RunInfo summarises a stored run.
type RunInfo struct {
	ID        uuid.UUID
	Seed      int64
	CreatedAt time.Time
	Episodes  int
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open metrics db: %w", err)
	}
	// sqlite has a single writer, and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS episodes (
			run_id TEXT NOT NULL REFERENCES runs(id),
			episode INTEGER NOT NULL,
			reward REAL NOT NULL,
			epsilon REAL NOT NULL,
			PRIMARY KEY (run_id, episode)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create metrics schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// StartRun registers the run so its episodes can be recorded.
func (s *Store) StartRun(d *TrainingData) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO runs (id, seed, created_at) VALUES (?, ?, ?)`,
		d.RunID.String(), d.Seed, d.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("start run %s: %w", d.RunID, err)
	}
	return nil
}

// RecordEpisode stores one episode; episode numbers start at 1.
func (s *Store) RecordEpisode(runID uuid.UUID, episode int, reward, epsilon float64) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO episodes (run_id, episode, reward, epsilon)
		VALUES (?, ?, ?, ?)
	`, runID.String(), episode, reward, epsilon)
	if err != nil {
		return fmt.Errorf("record episode %d of run %s: %w", episode, runID, err)
	}
	return nil
}

func (s *Store) LoadRun(runID uuid.UUID) (*TrainingData, error) {
	d := &TrainingData{RunID: runID}
	var created int64
	err := s.db.QueryRow(`SELECT seed, created_at FROM runs WHERE id = ?`, runID.String()).
		Scan(&d.Seed, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}
	d.CreatedAt = time.Unix(0, created).UTC()

	rows, err := s.db.Query(`
		SELECT reward, epsilon FROM episodes WHERE run_id = ? ORDER BY episode
	`, runID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var reward, epsilon float64
		if err := rows.Scan(&reward, &epsilon); err != nil {
			return nil, err
		}
		d.Append(reward, epsilon)
	}
	return d, rows.Err()
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs() ([]RunInfo, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.seed, r.created_at, COUNT(e.episode)
		FROM runs r LEFT JOIN episodes e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at, r.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var (
			id      string
			info    RunInfo
			created int64
		)
		if err := rows.Scan(&id, &info.Seed, &created, &info.Episodes); err != nil {
			return nil, err
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("run id %q: %w", id, err)
		}
		info.CreatedAt = time.Unix(0, created).UTC()
		runs = append(runs, info)
	}
	return runs, rows.Err()
}
