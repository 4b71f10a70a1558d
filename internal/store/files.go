package store

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// UpsertFile inserts a new file row or updates an existing one's digest,
// language, line count, and last-indexed timestamp, within tx so a rolled
// back index pass reverts the digest advance along with everything else.
// Returns the file's id and whether its digest changed (false for an
// unchanged, pre-existing row).
func (s *Store) UpsertFile(tx *sql.Tx, path, language, digest string, lineCount int) (id int64, changed bool, err error) {
	now := time.Now().UTC().Format(time.RFC3339)
	run := sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(tx)

	var existingID int64
	var existingDigest string
	err = run.Select("id", "digest").From("files").Where(sq.Eq{"path": path}).
		QueryRow().Scan(&existingID, &existingDigest)

	switch {
	case err == sql.ErrNoRows:
		res, execErr := run.Insert("files").
			Columns("path", "language", "digest", "line_count", "last_indexed").
			Values(path, language, digest, lineCount, now).
			Exec()
		if execErr != nil {
			return 0, false, fmt.Errorf("insert file %s: %w", path, execErr)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("last insert id for %s: %w", path, err)
		}
		return id, true, nil

	case err != nil:
		return 0, false, fmt.Errorf("lookup file %s: %w", path, err)

	case existingDigest == digest:
		return existingID, false, nil

	default:
		_, execErr := run.Update("files").
			Set("language", language).
			Set("digest", digest).
			Set("line_count", lineCount).
			Set("last_indexed", now).
			Where(sq.Eq{"id": existingID}).
			Exec()
		if execErr != nil {
			return 0, false, fmt.Errorf("update file %s: %w", path, execErr)
		}
		return existingID, true, nil
	}
}

// FileByPath returns the file row for path, or (nil, nil) if not found.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := qb.Select("id", "path", "language", "digest", "line_count", "last_indexed").
		From("files").Where(sq.Eq{"path": path}).RunWith(s.db).QueryRow().
		Scan(&f.ID, &f.Path, &f.Language, &f.Digest, &f.LineCount, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup file %s: %w", path, err)
	}
	return f, nil
}

// FileByPathTx is FileByPath scoped to an open transaction, for lookups
// made while an index pass holds the store's single connection.
func (s *Store) FileByPathTx(tx *sql.Tx, path string) (*File, error) {
	f := &File{}
	err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Select("id", "path", "language", "digest", "line_count", "last_indexed").
		From("files").Where(sq.Eq{"path": path}).RunWith(tx).QueryRow().
		Scan(&f.ID, &f.Path, &f.Language, &f.Digest, &f.LineCount, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup file %s: %w", path, err)
	}
	return f, nil
}

// FileByID loads a single file row by id.
func (s *Store) FileByID(id int64) (*File, error) {
	f := &File{}
	err := qb.Select("id", "path", "language", "digest", "line_count", "last_indexed").
		From("files").Where(sq.Eq{"id": id}).RunWith(s.db).QueryRow().
		Scan(&f.ID, &f.Path, &f.Language, &f.Digest, &f.LineCount, &f.LastIndexed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup file %d: %w", id, err)
	}
	return f, nil
}

// AllFiles returns every file row, for modules()' per-module partition.
func (s *Store) AllFiles() ([]File, error) {
	rows, err := qb.Select("id", "path", "language", "digest", "line_count", "last_indexed").
		From("files").RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Language, &f.Digest, &f.LineCount, &f.LastIndexed); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SymbolCountForFile returns the number of symbol rows belonging to fileID.
func (s *Store) SymbolCountForFile(fileID int64) (int, error) {
	var n int
	err := qb.Select("COUNT(*)").From("symbols").Where(sq.Eq{"file_id": fileID}).
		RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("symbol count for file %d: %w", fileID, err)
	}
	return n, nil
}

// ClearFileData deletes, in order, rankings rooted at the file's symbols,
// edges touching those symbols, the symbols themselves, and outgoing
// file_deps from this file. It does not touch file_deps into this file from
// elsewhere; those cascade only when their own endpoint changes.
func (s *Store) ClearFileData(tx *sql.Tx, fileID int64) error {
	run := sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(tx)

	if _, err := run.Delete("rankings").
		Where("symbol_id IN (SELECT id FROM symbols WHERE file_id = ?)", fileID).Exec(); err != nil {
		return fmt.Errorf("clear rankings for file %d: %w", fileID, err)
	}
	if _, err := run.Delete("edges").
		Where("from_id IN (SELECT id FROM symbols WHERE file_id = ?) OR to_id IN (SELECT id FROM symbols WHERE file_id = ?)", fileID, fileID).Exec(); err != nil {
		return fmt.Errorf("clear edges for file %d: %w", fileID, err)
	}
	if _, err := run.Delete("symbols").Where(sq.Eq{"file_id": fileID}).Exec(); err != nil {
		return fmt.Errorf("clear symbols for file %d: %w", fileID, err)
	}
	if _, err := run.Delete("file_deps").Where(sq.Eq{"from_id": fileID}).Exec(); err != nil {
		return fmt.Errorf("clear file_deps for file %d: %w", fileID, err)
	}
	return nil
}

// RemoveFile deletes a file row by path; cascading foreign keys remove its
// symbols, edges, file_deps, and rankings.
func (s *Store) RemoveFile(path string) error {
	_, err := qb.Delete("files").Where(sq.Eq{"path": path}).RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	s.InvalidateCache()
	return nil
}

// RemoveStale deletes every file row whose path is not in valid, cascading
// to its symbols, edges, file_deps, and rankings.
func (s *Store) RemoveStale(tx *sql.Tx, valid map[string]struct{}) error {
	rows, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Select("id", "path").From("files").RunWith(tx).Query()
	if err != nil {
		return fmt.Errorf("list files for stale check: %w", err)
	}
	var stale []int64
	for rows.Next() {
		var id int64
		var path string
		if err := rows.Scan(&id, &path); err != nil {
			rows.Close()
			return fmt.Errorf("scan file row: %w", err)
		}
		if _, ok := valid[path]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate files: %w", err)
	}
	rows.Close()

	for _, id := range stale {
		if _, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
			Delete("files").Where(sq.Eq{"id": id}).RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("remove stale file %d: %w", id, err)
		}
	}
	return nil
}

// AllFilePaths returns every indexed file path. The full index does not use
// it; its valid-paths set comes from the collector's walk.
func (s *Store) AllFilePaths() ([]string, error) {
	rows, err := qb.Select("path").From("files").RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("list file paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan file path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// LanguageHistogram returns a count of files per detected language tag.
func (s *Store) LanguageHistogram() (map[string]int, error) {
	rows, err := qb.Select("language", "COUNT(*)").From("files").GroupBy("language").RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("language histogram: %w", err)
	}
	defer rows.Close()

	hist := make(map[string]int)
	for rows.Next() {
		var lang string
		var count int
		if err := rows.Scan(&lang, &count); err != nil {
			return nil, fmt.Errorf("scan language histogram row: %w", err)
		}
		hist[lang] = count
	}
	return hist, rows.Err()
}
