package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// WriteRankings replaces every ranking row with the given set, inside tx,
// per the PageRank invariant that |Ranking| == |Symbol| after a full index.
func (s *Store) WriteRankings(tx *sql.Tx, rankings []Ranking) error {
	run := sq.StatementBuilder.PlaceholderFormat(sq.Question).RunWith(tx)

	if _, err := run.Delete("rankings").Exec(); err != nil {
		return fmt.Errorf("clear rankings: %w", err)
	}

	for _, r := range rankings {
		if _, err := run.Insert("rankings").
			Columns("symbol_id", "rank", "in_degree", "out_degree").
			Values(r.SymbolID, r.Rank, r.InDegree, r.OutDegree).Exec(); err != nil {
			return fmt.Errorf("insert ranking for symbol %d: %w", r.SymbolID, err)
		}
	}
	s.InvalidateCache()
	return nil
}

// TopRanked returns the top `limit` symbols by PageRank, restricted to kinds,
// for rank() and brief().
func (s *Store) TopRanked(limit int, kinds []SymbolKind) ([]Symbol, []float64, error) {
	kindStrs := make([]string, len(kinds))
	for i, k := range kinds {
		kindStrs[i] = string(k)
	}

	rows, err := qb.Select("s.id", "s.file_id", "s.name", "s.qualified_name", "s.kind", "s.start_line", "s.end_line",
		"s.signature", "s.docstring", "s.body", "s.exported", "r.rank").
		From("symbols s").
		Join("rankings r ON r.symbol_id = s.id").
		Where(sq.Eq{"s.kind": kindStrs}).
		OrderBy("r.rank DESC").
		Limit(uint64(limit)).
		RunWith(s.db).Query()
	if err != nil {
		return nil, nil, fmt.Errorf("top ranked: %w", err)
	}
	defer rows.Close()

	var syms []Symbol
	var ranks []float64
	for rows.Next() {
		var sym Symbol
		var exported int
		var rank float64
		if err := rows.Scan(&sym.ID, &sym.FileID, &sym.Name, &sym.QualifiedName, &sym.Kind, &sym.StartLine, &sym.EndLine,
			&sym.Signature, &sym.Docstring, &sym.Body, &exported, &rank); err != nil {
			return nil, nil, fmt.Errorf("scan top ranked row: %w", err)
		}
		sym.Exported = exported != 0
		syms = append(syms, sym)
		ranks = append(ranks, rank)
	}
	return syms, ranks, rows.Err()
}

// RankOf returns the PageRank value for symbolID, or 0 if no ranking exists
// yet (a fresh symbol before the next full index's PageRank pass).
func (s *Store) RankOf(symbolID int64) (float64, error) {
	var rank float64
	err := qb.Select("rank").From("rankings").Where(sq.Eq{"symbol_id": symbolID}).
		RunWith(s.db).QueryRow().Scan(&rank)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rank of symbol %d: %w", symbolID, err)
	}
	return rank, nil
}

// SymbolCount returns the total number of symbol rows, for stats() and the
// |Ranking| == |Symbol| invariant check in tests.
func (s *Store) SymbolCount() (int, error) {
	var n int
	err := qb.Select("COUNT(*)").From("symbols").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count symbols: %w", err)
	}
	return n, nil
}

// RankingCount returns the total number of ranking rows.
func (s *Store) RankingCount() (int, error) {
	var n int
	err := qb.Select("COUNT(*)").From("rankings").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rankings: %w", err)
	}
	return n, nil
}

// FileCount returns the total number of file rows, for stats().
func (s *Store) FileCount() (int, error) {
	var n int
	err := qb.Select("COUNT(*)").From("files").RunWith(s.db).QueryRow().Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count files: %w", err)
	}
	return n, nil
}
