package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// InsertFileDepIgnore inserts a file-to-file import edge, ignoring the
// insert if the (from, to, kind, name) quadruple already exists.
func (s *Store) InsertFileDepIgnore(tx *sql.Tx, fromID, toID int64, kind FileDepKind, name string) error {
	_, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Insert("file_deps").Columns("from_id", "to_id", "kind", "name").
		Values(fromID, toID, string(kind), name).
		Suffix("ON CONFLICT(from_id, to_id, kind, name) DO NOTHING").
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("insert file_dep %d->%d: %w", fromID, toID, err)
	}
	return nil
}

// AllFileDeps loads every file_deps row, used to build the in-memory graph
// impact() traverses.
func (s *Store) AllFileDeps() ([]FileDep, error) {
	rows, err := qb.Select("from_id", "to_id", "kind", "name").From("file_deps").RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("list file_deps: %w", err)
	}
	defer rows.Close()

	var out []FileDep
	for rows.Next() {
		var fd FileDep
		var kind string
		if err := rows.Scan(&fd.FromID, &fd.ToID, &kind, &fd.Name); err != nil {
			return nil, fmt.Errorf("scan file_dep row: %w", err)
		}
		fd.Kind = FileDepKind(kind)
		out = append(out, fd)
	}
	return out, rows.Err()
}

// FileDepsFrom returns every outgoing file_dep from fileID, for pre_edit()'s
// "imports from" listing.
func (s *Store) FileDepsFrom(fileID int64) ([]FileDep, error) {
	rows, err := qb.Select("from_id", "to_id", "kind", "name").From("file_deps").
		Where(sq.Eq{"from_id": fileID}).RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("file_deps from %d: %w", fileID, err)
	}
	defer rows.Close()

	var out []FileDep
	for rows.Next() {
		var fd FileDep
		var kind string
		if err := rows.Scan(&fd.FromID, &fd.ToID, &kind, &fd.Name); err != nil {
			return nil, fmt.Errorf("scan file_dep row: %w", err)
		}
		fd.Kind = FileDepKind(kind)
		out = append(out, fd)
	}
	return out, rows.Err()
}

// FileDepsInto returns every incoming file_dep into fileID, for pre_edit()'s
// "depended on by" listing.
func (s *Store) FileDepsInto(fileID int64) ([]FileDep, error) {
	rows, err := qb.Select("from_id", "to_id", "kind", "name").From("file_deps").
		Where(sq.Eq{"to_id": fileID}).RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("file_deps into %d: %w", fileID, err)
	}
	defer rows.Close()

	var out []FileDep
	for rows.Next() {
		var fd FileDep
		var kind string
		if err := rows.Scan(&fd.FromID, &fd.ToID, &kind, &fd.Name); err != nil {
			return nil, fmt.Errorf("scan file_dep row: %w", err)
		}
		fd.Kind = FileDepKind(kind)
		out = append(out, fd)
	}
	return out, rows.Err()
}

// FileDepCounts returns the total number of file_dep rows, for stats().
func (s *Store) FileDepCounts() (int, error) {
	var n int
	err := qb.Select("COUNT(*)").From("file_deps").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count file_deps: %w", err)
	}
	return n, nil
}
