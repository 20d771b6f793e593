// Package persistence provides SQLite-based save storage: one compressed
// snapshot per settlement day plus world metadata. See design doc
// Section 6.
package persistence

import (
	"bytes"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pierrec/lz4/v4"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"github.com/talgya/steading/internal/engine"
)

// ErrNoSnapshot is returned when the database holds no saved world yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// ErrCorruptSnapshot is returned when a stored blob fails its checksum,
// or when the snapshot chain does not link up.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// DB wraps a SQLite connection for save storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
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
	CREATE TABLE IF NOT EXISTS snapshots (
		day INTEGER PRIMARY KEY,
		state_blob BLOB NOT NULL,
		checksum TEXT NOT NULL,
		prev_checksum TEXT NOT NULL,
		saved_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type snapshotRow struct {
	Day          int    `db:"day"`
	StateBlob    []byte `db:"state_blob"`
	Checksum     string `db:"checksum"`
	PrevChecksum string `db:"prev_checksum"`
	SavedAt      string `db:"saved_at"`
}

// SaveSnapshot stores one day's full state. Each blob is LZ4-compressed
// JSON whose checksum chains to the previous day's, so tampering with any
// stored day breaks every later link. Saving a day the chain already
// passed truncates the stale future first.
func (db *DB) SaveSnapshot(st engine.GameState) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	blob, err := compress(raw)
	if err != nil {
		return fmt.Errorf("compress state: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var prev string
	err = tx.Get(&prev,
		"SELECT checksum FROM snapshots WHERE day < ? ORDER BY day DESC LIMIT 1", st.Day)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	sum := chainSum(prev, blob)

	if _, err := tx.Exec("DELETE FROM snapshots WHERE day >= ?", st.Day); err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT INTO snapshots
		(day, state_blob, checksum, prev_checksum, saved_at)
		VALUES (?, ?, ?, ?, ?)`,
		st.Day, blob, sum, prev, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert snapshot day %d: %w", st.Day, err)
	}
	_, err = tx.Exec(`INSERT OR REPLACE INTO world_meta (key, value)
		VALUES ('latest_day', ?), ('head_checksum', ?)`,
		fmt.Sprintf("%d", st.Day), sum)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("snapshot saved", "day", st.Day, "bytes", len(blob))
	return nil
}

// LoadLatest returns the most recent snapshot after verifying its
// checksum against the stored chain head.
func (db *DB) LoadLatest() (engine.GameState, error) {
	var row snapshotRow
	err := db.conn.Get(&row, `SELECT day, state_blob, checksum, prev_checksum, saved_at
		FROM snapshots ORDER BY day DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.GameState{}, ErrNoSnapshot
	}
	if err != nil {
		return engine.GameState{}, err
	}

	if chainSum(row.PrevChecksum, row.StateBlob) != row.Checksum {
		return engine.GameState{}, fmt.Errorf("day %d blob: %w", row.Day, ErrCorruptSnapshot)
	}
	if head, err := db.GetMeta("head_checksum"); err == nil && head != row.Checksum {
		return engine.GameState{}, fmt.Errorf("chain head mismatch at day %d: %w",
			row.Day, ErrCorruptSnapshot)
	}

	return decodeSnapshot(row)
}

// LoadDay returns one specific day's snapshot, verified against its own
// stored checksum.
func (db *DB) LoadDay(day int) (engine.GameState, error) {
	var row snapshotRow
	err := db.conn.Get(&row, `SELECT day, state_blob, checksum, prev_checksum, saved_at
		FROM snapshots WHERE day = ?`, day)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.GameState{}, ErrNoSnapshot
	}
	if err != nil {
		return engine.GameState{}, err
	}

	if chainSum(row.PrevChecksum, row.StateBlob) != row.Checksum {
		return engine.GameState{}, fmt.Errorf("day %d blob: %w", row.Day, ErrCorruptSnapshot)
	}
	return decodeSnapshot(row)
}

func decodeSnapshot(row snapshotRow) (engine.GameState, error) {
	raw, err := decompress(row.StateBlob)
	if err != nil {
		return engine.GameState{}, fmt.Errorf("decompress day %d: %w", row.Day, err)
	}
	var st engine.GameState
	if err := json.Unmarshal(raw, &st); err != nil {
		return engine.GameState{}, fmt.Errorf("unmarshal day %d: %w", row.Day, err)
	}
	return st, nil
}

// VerifyChain recomputes every link of the snapshot chain and returns the
// number of verified snapshots.
func (db *DB) VerifyChain() (int, error) {
	var rows []snapshotRow
	err := db.conn.Select(&rows, `SELECT day, state_blob, checksum, prev_checksum, saved_at
		FROM snapshots ORDER BY day ASC`)
	if err != nil {
		return 0, err
	}

	prev := ""
	for _, row := range rows {
		if row.PrevChecksum != prev {
			return 0, fmt.Errorf("day %d does not link to day before it: %w",
				row.Day, ErrCorruptSnapshot)
		}
		if chainSum(prev, row.StateBlob) != row.Checksum {
			return 0, fmt.Errorf("day %d blob: %w", row.Day, ErrCorruptSnapshot)
		}
		prev = row.Checksum
	}
	if len(rows) > 0 {
		if head, err := db.GetMeta("head_checksum"); err == nil && head != prev {
			return 0, fmt.Errorf("chain head mismatch: %w", ErrCorruptSnapshot)
		}
	}
	return len(rows), nil
}

// HasSnapshot reports whether any world has been saved.
func (db *DB) HasSnapshot() (bool, error) {
	var count int
	err := db.conn.Get(&count, "SELECT COUNT(*) FROM snapshots")
	return count > 0, err
}

// Reset wipes the store: snapshots, events and world identity. Called
// when a save fails verification, so the stale rows cannot be served to
// the world founded in their place.
func (db *DB) Reset() error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"snapshots", "events", "world_meta"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// SaveEvents replaces the stored event log. The engine keeps the log
// bounded, so a full replace stays cheap and idempotent.
func (db *DB) SaveEvents(events []engine.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(
		"INSERT INTO events (day, description, category) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.Day, ev.Description, ev.Category); err != nil {
			return fmt.Errorf("insert event day %d: %w", ev.Day, err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N stored events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT day, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// EnsureWorld records the world's identity on first open and returns it
// afterward. The bool reports whether this call created the world.
func (db *DB) EnsureWorld(seed int64, difficulty string) (string, bool, error) {
	id, err := db.GetMeta("world_id")
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, err
	}

	id = uuid.NewString()
	meta := map[string]string{
		"world_id":   id,
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"seed":       fmt.Sprintf("%d", seed),
		"difficulty": difficulty,
	}
	for key, value := range meta {
		if err := db.SaveMeta(key, value); err != nil {
			return "", false, err
		}
	}
	slog.Info("world created", "id", id, "seed", seed, "difficulty", difficulty)
	return id, true, nil
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) ([]byte, error) {
	zr := lz4.NewReader(bytes.NewReader(blob))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// chainSum hashes a blob together with the previous link's checksum.
func chainSum(prev string, blob []byte) string {
	h := blake3.New(32, nil)
	h.Write([]byte(prev))
	h.Write(blob)
	return hex.EncodeToString(h.Sum(nil))
}
