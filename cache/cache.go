// Package cache stores compiled chunks in SQLite, keyed by the SHA-256 of
// the source text they were compiled from.
package cache

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/glox/vm"
	"github.com/chazu/glox/vm/dist"
)

var log = commonlog.GetLogger("glox.cache")

// Store is a compiled-chunk cache. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		digest TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened cache %s", path)
	return &Store{db: db, path: path}, nil
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Digest returns the cache key for source.
func Digest(source string) string {
	sum := dist.HashSource(source)
	return hex.EncodeToString(sum[:])
}

// Get returns the chunk compiled from source, if cached. Entries written
// by another encoding version, or that fail to decode, are misses.
func (s *Store) Get(source string) (*vm.Chunk, bool, error) {
	digest := Digest(source)

	var version int
	var data []byte
	err := s.db.QueryRow("SELECT version, data FROM chunks WHERE digest = ?", digest).Scan(&version, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("miss %s", digest[:12])
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying chunk: %w", err)
	}

	if version != int(dist.WireVersion) {
		log.Debugf("stale %s: version %d", digest[:12], version)
		return nil, false, nil
	}

	w, err := dist.UnmarshalChunk(data)
	if err != nil {
		log.Warningf("discarding corrupt entry %s: %s", digest[:12], err)
		return nil, false, nil
	}
	if err := w.Verify(source); err != nil {
		log.Warningf("discarding entry %s: %s", digest[:12], err)
		return nil, false, nil
	}
	chunk, err := w.ToVM()
	if err != nil {
		log.Warningf("discarding invalid entry %s: %s", digest[:12], err)
		return nil, false, nil
	}

	log.Debugf("hit %s", digest[:12])
	return chunk, true, nil
}

// Put stores the chunk compiled from source, replacing any previous entry.
func (s *Store) Put(source string, chunk *vm.Chunk) error {
	data, err := dist.Encode(chunk, source)
	if err != nil {
		return fmt.Errorf("encoding chunk: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO chunks (digest, version, data, created_at) VALUES (?, ?, ?, ?)",
		Digest(source), int(dist.WireVersion), data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving chunk: %w", err)
	}
	return nil
}

// Len returns the number of cached chunks.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Purge removes entries created before cutoff and returns how many were
// removed.
func (s *Store) Purge(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM chunks WHERE created_at < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("purging chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purging chunks: %w", err)
	}
	if n > 0 {
		log.Infof("purged %d entries", n)
	}
	return n, nil
}
