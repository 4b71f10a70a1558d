package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// InsertEdgeIgnore inserts a symbol-to-symbol edge, ignoring the insert if
// the (from, to, kind) triple already exists. Self-edges are rejected by the
// caller before this is invoked (callers() and dependencies() depend on
// a != b holding for every edge).
func (s *Store) InsertEdgeIgnore(tx *sql.Tx, fromID, toID int64, kind EdgeKind) error {
	if fromID == toID {
		return nil
	}
	_, err := sq.StatementBuilder.PlaceholderFormat(sq.Question).
		Insert("edges").Columns("from_id", "to_id", "kind").
		Values(fromID, toID, string(kind)).
		Suffix("ON CONFLICT(from_id, to_id, kind) DO NOTHING").
		RunWith(tx).Exec()
	if err != nil {
		return fmt.Errorf("insert edge %d->%d (%s): %w", fromID, toID, kind, err)
	}
	return nil
}

// OutgoingTargets returns the distinct symbols any edge kind points to from
// symbolID, for dependencies().
func (s *Store) OutgoingTargets(symbolID int64) ([]Symbol, error) {
	return s.edgeJoinedSymbols("e.to_id = s.id", "e.from_id = ?", symbolID, "r.rank DESC")
}

// IncomingSources returns the distinct symbols with an edge of kind calls or
// references pointing at symbolID, for callers().
func (s *Store) IncomingSources(symbolID int64) ([]Symbol, error) {
	return s.edgeJoinedSymbols("e.from_id = s.id", "e.to_id = ?", symbolID, "r.rank DESC")
}

func (s *Store) edgeJoinedSymbols(joinCond, whereCond string, arg int64, order string) ([]Symbol, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT s.id, s.file_id, s.name, s.qualified_name, s.kind, s.start_line, s.end_line,
		       s.signature, s.docstring, s.body, s.exported
		FROM edges e
		JOIN symbols s ON %s
		LEFT JOIN rankings r ON r.symbol_id = s.id
		WHERE %s
		ORDER BY %s
	`, joinCond, whereCond, order)

	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("edge-joined symbols: %w", err)
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

// AllEdges returns every edge row, for building PageRank's adjacency graph.
func (s *Store) AllEdges() ([]Edge, error) {
	rows, err := qb.Select("from_id", "to_id", "kind").From("edges").RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		var kind string
		if err := rows.Scan(&e.FromID, &e.ToID, &kind); err != nil {
			return nil, fmt.Errorf("scan edge row: %w", err)
		}
		e.Kind = EdgeKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// EdgeCounts returns the total number of edge rows, for stats().
func (s *Store) EdgeCounts() (int, error) {
	var n int
	err := qb.Select("COUNT(*)").From("edges").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return n, nil
}
