package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/maypok86/otter"
)

// pragmas configures the physical layout: write-ahead logging, NORMAL sync,
// a 64 MiB page cache, memory-backed temp storage, a 256 MiB mmap, and
// foreign-key enforcement with cascading delete.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA cache_size = -65536",
	"PRAGMA temp_store = MEMORY",
	"PRAGMA mmap_size = 268435456",
	"PRAGMA foreign_keys = ON",
}

// Store is a handle to one root's `.codex/index.db`. It owns the only
// *sql.DB connection a scheduler should use; it is not safe for concurrent
// use by more than one goroutine at a time (see the concurrency model this
// package's callers follow).
type Store struct {
	db    *sql.DB
	path  string
	cache otter.Cache[string, int64]
}

// RelPath returns the `.codex/index.db` path under root.
func RelPath(root string) string {
	return filepath.Join(root, ".codex", "index.db")
}

// Open opens (creating if absent) the index database under root's .codex
// directory, applies the physical-layout pragmas, and creates the schema if
// the database is new.
func Open(root string) (*Store, error) {
	dir := filepath.Join(root, ".codex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create .codex directory: %w", err)
	}

	path := RelPath(root)
	fresh := true
	if _, err := os.Stat(path); err == nil {
		fresh = false
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer model; see concurrency design note

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}

	if fresh {
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	cache, err := otter.MustBuilder[string, int64](10_000).
		WithTTL(10 * time.Minute).
		Build()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("build symbol cache: %w", err)
	}

	return &Store{db: db, path: path, cache: cache}, nil
}

// Close flushes a WAL checkpoint and closes the underlying connection. The
// store handle must not be used after Close returns.
func (s *Store) Close() error {
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		// Best-effort: closing proceeds regardless, matching the
		// "never outlive the handle" guidance, not a hard failure.
		_ = err
	}
	return s.db.Close()
}

// DB exposes the underlying connection so the index package can open its
// transactions on this handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InvalidateCache drops the handle-scoped name lookup cache. Called after
// any commit that can change which symbol a name resolves to.
func (s *Store) InvalidateCache() {
	s.cache.Clear()
}

// CacheGet looks up a name in the handle-scoped symbol-id cache, the one
// otter actually guards: a name -> best-match-symbol-id binding, good until
// the next write that can change which symbol a name resolves to.
func (s *Store) CacheGet(name string) (int64, bool) {
	return s.cache.Get(name)
}

// CacheSet records a name -> symbol-id binding in the handle-scoped cache.
func (s *Store) CacheSet(name string, id int64) {
	s.cache.Set(name, id)
}
