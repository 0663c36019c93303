package session

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE session (
	id          TEXT PRIMARY KEY,
	participant TEXT NOT NULL,
	captured_at TEXT NOT NULL
);
CREATE TABLE trial (
	session_id   TEXT    NOT NULL REFERENCES session(id),
	seq          INTEGER NOT NULL,
	trial_number INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
CREATE TABLE position (
	session_id TEXT    NOT NULL,
	trial_seq  INTEGER NOT NULL,
	idx        INTEGER NOT NULL,
	x          REAL    NOT NULL,
	y          REAL    NOT NULL,
	PRIMARY KEY (session_id, trial_seq, idx)
);
`

// SQLiteStore writes one SQLite database per session.
type SQLiteStore struct{}

func (SQLiteStore) Ext() string { return ".db" }

func (SQLiteStore) Save(path string, meta Meta, rec Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("artifact %q already exists", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	if _, err := tx.Exec(`INSERT INTO session (id, participant, captured_at) VALUES (?, ?, ?)`,
		id, meta.Participant, meta.CapturedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	trialStmt, err := tx.Prepare(`INSERT INTO trial (session_id, seq, trial_number) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer trialStmt.Close()
	posStmt, err := tx.Prepare(`INSERT INTO position (session_id, trial_seq, idx, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer posStmt.Close()

	for seq, tr := range rec {
		if _, err := trialStmt.Exec(id, seq, tr.TrialNumber); err != nil {
			return fmt.Errorf("insert trial %d: %w", tr.TrialNumber, err)
		}
		for i, p := range tr.CursorPositions {
			if _, err := posStmt.Exec(id, seq, i, p[0], p[1]); err != nil {
				return fmt.Errorf("insert trial %d position %d: %w", tr.TrialNumber, i, err)
			}
		}
	}
	return tx.Commit()
}

func (SQLiteStore) Load(path string) (Record, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer db.Close()

	var id string
	if err := db.QueryRow(`SELECT id FROM session LIMIT 1`).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%q: no session", path)
		}
		return nil, fmt.Errorf("%q: read session: %w", path, err)
	}

	rows, err := db.Query(`SELECT seq, trial_number FROM trial WHERE session_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("%q: read trials: %w", path, err)
	}
	rec := Record{}
	seqs := map[int]int{}
	for rows.Next() {
		var seq, num int
		if err := rows.Scan(&seq, &num); err != nil {
			rows.Close()
			return nil, err
		}
		seqs[seq] = len(rec)
		rec = append(rec, TrialRecord{TrialNumber: num, CursorPositions: []Position{}})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = db.Query(`SELECT trial_seq, x, y FROM position WHERE session_id = ? ORDER BY trial_seq, idx`, id)
	if err != nil {
		return nil, fmt.Errorf("%q: read positions: %w", path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var seq int
		var p Position
		if err := rows.Scan(&seq, &p[0], &p[1]); err != nil {
			return nil, err
		}
		i, ok := seqs[seq]
		if !ok {
			return nil, fmt.Errorf("%q: position for unknown trial seq %d", path, seq)
		}
		rec[i].CursorPositions = append(rec[i].CursorPositions, p)
	}
	return rec, rows.Err()
}
