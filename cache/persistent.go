package cache

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"

	// Persistent regions store entries in SQLite files.
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// PersistentRegion is a Region backed by a SQLite file. Entries survive
// process restarts until explicitly cleared. Stored values are encoded
// with encoding/gob; concrete result types that are stored behind
// interfaces must be registered with gob.Register by the caller.
type PersistentRegion struct {
	db       *sql.DB
	location string
	logger   *zap.Logger
}

func init() {
	// Plain numeric vectors are storable without further registration.
	gob.Register([]float64(nil))
}

// NewPersistentRegion opens (or creates) the store at location. Failures
// wrap ErrCaching.
func NewPersistentRegion(location string, logger *zap.Logger) (*PersistentRegion, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", location)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrCaching, location, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: initialize %s: %v", ErrCaching, location, err)
	}

	logger.Debug("persistent cache region opened", zap.String("location", location))

	return &PersistentRegion{db: db, location: location, logger: logger}, nil
}

// Location returns the filesystem path of the backing store.
func (r *PersistentRegion) Location() string {
	return r.location
}

// Get retrieves a stored result. Returns (nil, false) on miss. A row
// that cannot be read or decoded is treated as a miss and logged, never
// surfaced as an error.
func (r *PersistentRegion) Get(ctx context.Context, key Key) (any, bool) {
	var blob []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE key = ?`, string(key)).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		r.logger.Warn("persistent region read failed",
			zap.String("key", string(key)), zap.Error(err))
		return nil, false
	}

	var value any
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&value); err != nil {
		r.logger.Warn("persistent region entry undecodable",
			zap.String("key", string(key)), zap.Error(err))
		return nil, false
	}
	return value, true
}

// Set stores a result under key with round-trip fidelity. Encoding or
// I/O failures wrap ErrCaching.
func (r *PersistentRegion) Set(ctx context.Context, key Key, value any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return fmt.Errorf("%w: encode value for %s: %v", ErrCaching, key, err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		string(key), buf.Bytes())
	if err != nil {
		return fmt.Errorf("%w: store %s: %v", ErrCaching, key, err)
	}
	return nil
}

// Clear removes all persisted entries for this region.
func (r *PersistentRegion) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("%w: clear %s: %v", ErrCaching, r.location, err)
	}
	r.logger.Debug("persistent cache region cleared", zap.String("location", r.location))
	return nil
}

// Len returns the number of persisted entries, or 0 when the count
// cannot be read.
func (r *PersistentRegion) Len() int {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		r.logger.Warn("persistent region count failed", zap.Error(err))
		return 0
	}
	return n
}

// Close releases the database handle. Persisted entries remain on disk.
func (r *PersistentRegion) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrCaching, r.location, err)
	}
	return nil
}

// Ensure PersistentRegion implements Region
var _ Region = (*PersistentRegion)(nil)
