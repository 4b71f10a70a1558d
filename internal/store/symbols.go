package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// InsertSymbol inserts one symbol row within tx and returns its id. The FTS
// projection is kept in sync by the schema's triggers, so no separate FTS
// write is needed here.
func (s *Store) InsertSymbol(tx *sql.Tx, sym Symbol) (int64, error) {
	res, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Insert("symbols").
		Columns("file_id", "name", "qualified_name", "kind", "start_line", "end_line",
			"signature", "docstring", "body", "exported").
		Values(sym.FileID, sym.Name, sym.QualifiedName, string(sym.Kind), sym.StartLine, sym.EndLine,
			sym.Signature, sym.Docstring, sym.Body, boolToInt(sym.Exported)).
		RunWith(tx).Exec()
	if err != nil {
		return 0, fmt.Errorf("insert symbol %s: %w", sym.Name, err)
	}
	return res.LastInsertId()
}

// ExportedSymbolsByFile returns name/qualified_name -> symbol id for every
// exported symbol in fileID, read within tx. Used to seed the cross-file
// resolution table for files whose digest did not change on this index run.
func (s *Store) ExportedSymbolsByFile(tx *sql.Tx, fileID int64) (map[string]int64, error) {
	rows, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Select("id", "name", "qualified_name").From("symbols").
		Where(sq.Eq{"file_id": fileID, "exported": 1}).RunWith(tx).Query()
	if err != nil {
		return nil, fmt.Errorf("exported symbols for file %d: %w", fileID, err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name, qname string
		if err := rows.Scan(&id, &name, &qname); err != nil {
			return nil, fmt.Errorf("scan exported symbol row: %w", err)
		}
		out[name] = id
		if qname != "" {
			out[qname] = id
		}
	}
	return out, rows.Err()
}

// AllSymbolIDs returns every symbol id, for seeding PageRank's vertex set.
func (s *Store) AllSymbolIDs() ([]int64, error) {
	rows, err := qb.Select("id").From("symbols").RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("list symbol ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan symbol id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SymbolByID loads a single symbol by its identity.
func (s *Store) SymbolByID(id int64) (*Symbol, error) {
	return s.scanSymbolBy(sq.Eq{"id": id})
}

// SymbolByNameBestMatch finds the symbol matching name by name or qualified
// name, preferring exported=true then highest PageRank, per context()'s
// selection rule.
func (s *Store) SymbolByNameBestMatch(name string) (*Symbol, error) {
	row := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Select("s.id", "s.file_id", "s.name", "s.qualified_name", "s.kind", "s.start_line", "s.end_line",
			"s.signature", "s.docstring", "s.body", "s.exported").
		From("symbols s").
		LeftJoin("rankings r ON r.symbol_id = s.id").
		Where(sq.Or{sq.Eq{"s.name": name}, sq.Eq{"s.qualified_name": name}}).
		OrderBy("s.exported DESC", "COALESCE(r.rank, 0) DESC").
		Limit(1).
		RunWith(s.db).QueryRow()

	sym := &Symbol{}
	var exported int
	err := row.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &sym.Kind, &sym.StartLine, &sym.EndLine,
		&sym.Signature, &sym.Docstring, &sym.Body, &exported)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("best match for %s: %w", name, err)
	}
	sym.Exported = exported != 0
	return sym, nil
}

// SymbolsByName returns every symbol matching name by name or qualified
// name, used by callers() and dependencies() which consider all matches
// rather than a single best one.
func (s *Store) SymbolsByName(name string) ([]Symbol, error) {
	rows, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Select("id", "file_id", "name", "qualified_name", "kind", "start_line", "end_line",
			"signature", "docstring", "body", "exported").
		From("symbols").
		Where(sq.Or{sq.Eq{"name": name}, sq.Eq{"qualified_name": name}}).
		RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("symbols by name %s: %w", name, err)
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		sym, exported, scanErr := scanSymbolRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sym.Exported = exported != 0
		out = append(out, sym)
	}
	return out, rows.Err()
}

// SiblingsInFile returns every symbol in fileID ordered by start line, for
// context()'s "same-file siblings" list.
func (s *Store) SiblingsInFile(fileID int64) ([]Symbol, error) {
	rows, err := qb.Select("id", "file_id", "name", "qualified_name", "kind", "start_line", "end_line",
		"signature", "docstring", "body", "exported").
		From("symbols").Where(sq.Eq{"file_id": fileID}).OrderBy("start_line ASC").
		RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("siblings in file %d: %w", fileID, err)
	}
	defer rows.Close()

	var out []Symbol
	for rows.Next() {
		sym, exported, scanErr := scanSymbolRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		sym.Exported = exported != 0
		out = append(out, sym)
	}
	return out, rows.Err()
}

func (s *Store) scanSymbolBy(pred sq.Eq) (*Symbol, error) {
	row := qb.Select("id", "file_id", "name", "qualified_name", "kind", "start_line", "end_line",
		"signature", "docstring", "body", "exported").From("symbols").Where(pred).RunWith(s.db).QueryRow()

	sym := &Symbol{}
	var exported int
	err := row.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &sym.Kind, &sym.StartLine, &sym.EndLine,
		&sym.Signature, &sym.Docstring, &sym.Body, &exported)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan symbol: %w", err)
	}
	sym.Exported = exported != 0
	return sym, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSymbolRow(r rowScanner) (Symbol, int, error) {
	var sym Symbol
	var exported int
	err := r.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &sym.Kind, &sym.StartLine, &sym.EndLine,
		&sym.Signature, &sym.Docstring, &sym.Body, &exported)
	if err != nil {
		return Symbol{}, 0, fmt.Errorf("scan symbol row: %w", err)
	}
	return sym, exported, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
