package store

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables, indexes, the FTS5 projection, and its sync
// triggers. Uses one transaction for the relational tables and indexes; the
// FTS5 virtual table and its triggers are created outside that transaction,
// matching SQLite's restriction on DDL for virtual tables mid-transaction.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"symbols", createSymbolsTable},
		{"edges", createEdgesTable},
		{"file_deps", createFileDepsTable},
		{"rankings", createRankingsTable},
	}

	for _, t := range tables {
		if _, err := tx.Exec(t.ddl); err != nil {
			return fmt.Errorf("create %s table: %w", t.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}

	if _, err := db.Exec(createSymbolsFTSTable); err != nil {
		return fmt.Errorf("create symbols_fts table: %w", err)
	}

	if err := createFTSTriggers(db); err != nil {
		return fmt.Errorf("create FTS triggers: %w", err)
	}

	return nil
}

const createFilesTable = `
CREATE TABLE files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    language TEXT NOT NULL DEFAULT '',
    digest TEXT NOT NULL,
    line_count INTEGER NOT NULL DEFAULT 0,
    last_indexed TEXT NOT NULL
)
`

const createSymbolsTable = `
CREATE TABLE symbols (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    qualified_name TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    signature TEXT NOT NULL DEFAULT '',
    docstring TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL DEFAULT '',
    exported INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (file_id) REFERENCES files(id) ON DELETE CASCADE
)
`

const createEdgesTable = `
CREATE TABLE edges (
    from_id INTEGER NOT NULL,
    to_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    PRIMARY KEY (from_id, to_id, kind),
    FOREIGN KEY (from_id) REFERENCES symbols(id) ON DELETE CASCADE,
    FOREIGN KEY (to_id) REFERENCES symbols(id) ON DELETE CASCADE
)
`

const createFileDepsTable = `
CREATE TABLE file_deps (
    from_id INTEGER NOT NULL,
    to_id INTEGER NOT NULL,
    kind TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (from_id, to_id, kind, name),
    FOREIGN KEY (from_id) REFERENCES files(id) ON DELETE CASCADE,
    FOREIGN KEY (to_id) REFERENCES files(id) ON DELETE CASCADE
)
`

const createRankingsTable = `
CREATE TABLE rankings (
    symbol_id INTEGER PRIMARY KEY,
    rank REAL NOT NULL,
    in_degree INTEGER NOT NULL DEFAULT 0,
    out_degree INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (symbol_id) REFERENCES symbols(id) ON DELETE CASCADE
)
`

// symbols_fts projects the textual columns of symbols {name, qualified_name,
// signature, docstring, content}. "content" has no matching symbols column;
// it is populated from the symbol's body text at write time so search can
// highlight a snippet of source around a match.
const createSymbolsFTSTable = `
CREATE VIRTUAL TABLE symbols_fts USING fts5(
    name,
    qualified_name,
    signature,
    docstring,
    content,
    tokenize = 'porter unicode61'
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_symbols_file_id ON symbols(file_id)",
		"CREATE INDEX idx_symbols_name ON symbols(name)",
		"CREATE INDEX idx_symbols_qualified_name ON symbols(qualified_name)",
		"CREATE INDEX idx_symbols_kind ON symbols(kind)",
		"CREATE INDEX idx_edges_from ON edges(from_id)",
		"CREATE INDEX idx_edges_to ON edges(to_id)",
		"CREATE INDEX idx_file_deps_from ON file_deps(from_id)",
		"CREATE INDEX idx_file_deps_to ON file_deps(to_id)",
	}
}

// createFTSTriggers keeps symbols_fts synchronized with the symbols table on
// insert, update, and delete, per the store's consistency invariant. Schema-
// level triggers exist so callers that write through plain SQL (as opposed to
// this package's own helpers) can't drift the projection out of sync.
func createFTSTriggers(db *sql.DB) error {
	triggers := []string{
		`CREATE TRIGGER symbols_fts_insert AFTER INSERT ON symbols
		BEGIN
			INSERT INTO symbols_fts(rowid, name, qualified_name, signature, docstring, content)
			VALUES (NEW.id, NEW.name, NEW.qualified_name, NEW.signature, NEW.docstring, NEW.body);
		END`,

		`CREATE TRIGGER symbols_fts_update AFTER UPDATE ON symbols
		BEGIN
			DELETE FROM symbols_fts WHERE rowid = OLD.id;
			INSERT INTO symbols_fts(rowid, name, qualified_name, signature, docstring, content)
			VALUES (NEW.id, NEW.name, NEW.qualified_name, NEW.signature, NEW.docstring, NEW.body);
		END`,

		`CREATE TRIGGER symbols_fts_delete AFTER DELETE ON symbols
		BEGIN
			DELETE FROM symbols_fts WHERE rowid = OLD.id;
		END`,
	}

	for i, trig := range triggers {
		if _, err := db.Exec(trig); err != nil {
			return fmt.Errorf("create trigger %d: %w", i+1, err)
		}
	}
	return nil
}

// GetSchemaVersion is unused by the core index path but kept for parity with
// the on-disk layout other tooling may probe; it simply checks the symbols
// table exists.
func GetSchemaVersion(db *sql.DB) (string, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='symbols'").Scan(&count)
	if err != nil {
		return "", fmt.Errorf("check schema: %w", err)
	}
	if count == 0 {
		return "0", nil
	}
	return "1", nil
}
