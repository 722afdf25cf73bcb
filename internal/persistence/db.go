// Package persistence provides SQLite-based round history storage: every
// round started, how it ended, and the fastest solves per configuration.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/duck-sorter/internal/engine"
)

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("not found")

// DB wraps a SQLite connection for round history.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS rounds (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		num_groups INTEGER NOT NULL,
		ducks_per_group INTEGER NOT NULL,
		tuning TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		ticks INTEGER NOT NULL DEFAULT 0,
		final_time REAL,
		solved INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		round_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		tick INTEGER NOT NULL,
		elapsed REAL NOT NULL,
		at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rounds_config ON rounds(seed, num_groups, ducks_per_group);
	CREATE INDEX IF NOT EXISTS idx_rounds_started ON rounds(started_at);
	CREATE INDEX IF NOT EXISTS idx_events_round ON events(round_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Round is one row of round history. Times are Unix milliseconds.
type Round struct {
	ID            string   `db:"id" json:"id"`
	Seed          int64    `db:"seed" json:"seed"`
	NumGroups     int      `db:"num_groups" json:"num_groups"`
	DucksPerGroup int      `db:"ducks_per_group" json:"ducks_per_group"`
	Tuning        string   `db:"tuning" json:"tuning"`
	StartedAt     int64    `db:"started_at" json:"started_at"`
	FinishedAt    *int64   `db:"finished_at" json:"finished_at,omitempty"`
	Ticks         uint64   `db:"ticks" json:"ticks"`
	FinalTime     *float64 `db:"final_time" json:"final_time,omitempty"` // seconds
	Solved        bool     `db:"solved" json:"solved"`
}

// Started returns StartedAt as a time.
func (r Round) Started() time.Time {
	return time.UnixMilli(r.StartedAt)
}

// SaveRound inserts a freshly started round.
func (db *DB) SaveRound(ev engine.Event) error {
	return saveRound(db.conn, ev)
}

func saveRound(e sqlx.Ext, ev engine.Event) error {
	_, err := sqlx.NamedExec(e, `INSERT INTO rounds
		(id, seed, num_groups, ducks_per_group, tuning, started_at)
		VALUES (:id, :seed, :num_groups, :ducks_per_group, :tuning, :started_at)`,
		Round{
			ID:            ev.RoundID,
			Seed:          ev.Seed,
			NumGroups:     ev.NumGroups,
			DucksPerGroup: ev.DucksPerGroup,
			Tuning:        ev.Tuning,
			StartedAt:     ev.At.UnixMilli(),
		})
	if err != nil {
		return fmt.Errorf("insert round %s: %w", ev.RoundID, err)
	}
	return nil
}

// FinishRound marks a round as solved or abandoned. A solved round records
// its final time.
func (db *DB) FinishRound(ev engine.Event, solved bool) error {
	return finishRound(db.conn, ev, solved)
}

func finishRound(e sqlx.Ext, ev engine.Event, solved bool) error {
	var finalTime *float64
	if solved {
		ft := ev.Elapsed
		finalTime = &ft
	}
	res, err := e.Exec(`UPDATE rounds
		SET finished_at = ?, ticks = ?, final_time = ?, solved = ?
		WHERE id = ?`,
		ev.At.UnixMilli(), ev.Tick, finalTime, solved, ev.RoundID,
	)
	if err != nil {
		return fmt.Errorf("finish round %s: %w", ev.RoundID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish round %s: %w", ev.RoundID, ErrNotFound)
	}
	return nil
}

// RecordEvent stores a lifecycle event and updates the round it belongs to.
func (db *DB) RecordEvent(ev engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO events (round_id, kind, tick, elapsed, at) VALUES (?, ?, ?, ?, ?)",
		ev.RoundID, string(ev.Kind), ev.Tick, ev.Elapsed, ev.At.UnixMilli(),
	); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	switch ev.Kind {
	case engine.EventStarted:
		err = saveRound(tx, ev)
	case engine.EventSolved:
		err = finishRound(tx, ev, true)
	case engine.EventStopped:
		err = finishRound(tx, ev, false)
	default:
		slog.Debug("unhandled event kind", "kind", ev.Kind)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetRound looks up one round by id.
func (db *DB) GetRound(id string) (Round, error) {
	var r Round
	err := db.conn.Get(&r, "SELECT * FROM rounds WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return Round{}, fmt.Errorf("round %s: %w", id, ErrNotFound)
	}
	return r, err
}

// RecentRounds returns the most recently started rounds, newest first.
func (db *DB) RecentRounds(limit int) ([]Round, error) {
	rounds := []Round{}
	err := db.conn.Select(&rounds,
		"SELECT * FROM rounds ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return rounds, err
}

// LeaderboardQuery filters BestTimes. Zero fields match everything.
type LeaderboardQuery struct {
	Seed          *int64
	NumGroups     int
	DucksPerGroup int
	Limit         int
}

// BestTimes returns solved rounds ordered by final time, fastest first.
func (db *DB) BestTimes(q LeaderboardQuery) ([]Round, error) {
	where := []string{"solved = 1"}
	var args []any
	if q.Seed != nil {
		where = append(where, "seed = ?")
		args = append(args, *q.Seed)
	}
	if q.NumGroups > 0 {
		where = append(where, "num_groups = ?")
		args = append(args, q.NumGroups)
	}
	if q.DucksPerGroup > 0 {
		where = append(where, "ducks_per_group = ?")
		args = append(args, q.DucksPerGroup)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)

	rounds := []Round{}
	err := db.conn.Select(&rounds,
		"SELECT * FROM rounds WHERE "+strings.Join(where, " AND ")+
			" ORDER BY final_time ASC, started_at ASC LIMIT ?",
		args...,
	)
	return rounds, err
}

// Totals counts rounds played and solved.
type Totals struct {
	Played int `db:"played" json:"played"`
	Solved int `db:"solved" json:"solved"`
}

// RoundTotals returns the all-time totals.
func (db *DB) RoundTotals() (Totals, error) {
	var t Totals
	err := db.conn.Get(&t,
		"SELECT COUNT(*) AS played, COALESCE(SUM(solved), 0) AS solved FROM rounds")
	return t, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %q: %w", key, ErrNotFound)
	}
	return value, err
}

// EventRecord is one stored lifecycle event.
type EventRecord struct {
	RoundID string  `db:"round_id" json:"round_id"`
	Kind    string  `db:"kind" json:"kind"`
	Tick    uint64  `db:"tick" json:"tick"`
	Elapsed float64 `db:"elapsed" json:"elapsed"`
	At      int64   `db:"at" json:"at"`
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRecord, error) {
	events := []EventRecord{}
	err := db.conn.Select(&events,
		"SELECT round_id, kind, tick, elapsed, at FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
