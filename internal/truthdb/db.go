// Package truthdb stores per-read variant calls from a validation run and
// exports them, labeled against known genotypes, as calibration input.
package truthdb

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = 1

// DB is a per-read variant call store backed by SQLite.
type DB struct {
	conn *sql.DB
}

// Open opens the database at path, creating the schema if needed.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=10000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open per-read call database: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate per-read call database: %w", err)
	}
	return db, nil
}

func (db *DB) migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	for version < schemaVersion {
		version++
		switch version {
		case 1:
			if err := applySchemaV1(tx); err != nil {
				return fmt.Errorf("failed to apply schema v%d: %w", version, err)
			}
		default:
			return fmt.Errorf("unknown schema version: %d", version)
		}
	}
	return tx.Commit()
}

func applySchemaV1(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			read_id TEXT NOT NULL,
			chrom TEXT NOT NULL,
			pos INTEGER NOT NULL,
			score REAL NOT NULL,
			ref_seq TEXT NOT NULL,
			alt_seq TEXT NOT NULL
		)
	`); err != nil {
		return err
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS calls_site_idx ON calls(chrom, pos)`); err != nil {
		return err
	}
	_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// Call is one per-read variant call: a proposed alternate at a site on a
// single read, with the read's reference versus alternate LLR.
type Call struct {
	ReadID string
	Chrom  string
	Pos    int
	Score  float64
	RefSeq string
	AltSeq string
}

// InsertCall appends one call.
func (db *DB) InsertCall(c Call) error {
	_, err := db.conn.Exec(
		`INSERT INTO calls (read_id, chrom, pos, score, ref_seq, alt_seq) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ReadID, c.Chrom, c.Pos, c.Score, c.RefSeq, c.AltSeq)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

// ForEachCall streams every call in insertion order.
func (db *DB) ForEachCall(fn func(Call) error) error {
	rows, err := db.conn.Query(`SELECT read_id, chrom, pos, score, ref_seq, alt_seq FROM calls ORDER BY id`)
	if err != nil {
		return fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Call
		if err := rows.Scan(&c.ReadID, &c.Chrom, &c.Pos, &c.Score, &c.RefSeq, &c.AltSeq); err != nil {
			return fmt.Errorf("scan call: %w", err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return rows.Err()
}

// CountCalls returns the number of stored calls.
func (db *DB) CountCalls() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM calls`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}
