package store

import (
	"fmt"
	"regexp"
	"strings"
)

// SearchResult is one row of a search() call: a symbol plus its PageRank
// and a highlighted snippet of its content.
type SearchResult struct {
	Symbol
	Rank    float64
	Snippet string
}

var nonWordNonSpace = regexp.MustCompile(`[^\w\s]`)

// BuildFTSQuery tokenizes q by replacing non-word non-space characters with
// spaces, splitting on whitespace, wrapping each token in quotes, and
// joining with OR. An empty or all-punctuation query yields an empty string.
func BuildFTSQuery(q string) string {
	cleaned := nonWordNonSpace.ReplaceAllString(q, " ")
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}

// SearchFTS runs q against the symbols_fts projection, ordered primarily by
// PageRank descending and secondarily by FTS rank ascending (FTS5's bm25()
// is more negative for a better match, hence ascending is "best first").
// Returns an empty slice without querying when q tokenizes to nothing.
func (s *Store) SearchFTS(q string, limit int) ([]SearchResult, error) {
	ftsQuery := BuildFTSQuery(q)
	if ftsQuery == "" {
		return nil, nil
	}

	const sqlText = `
		SELECT s.id, s.file_id, s.name, s.qualified_name, s.kind, s.start_line, s.end_line,
		       s.signature, s.docstring, s.body, s.exported,
		       COALESCE(r.rank, 0) AS page_rank,
		       bm25(symbols_fts) AS fts_rank,
		       snippet(symbols_fts, 4, '>>>', '<<<', '...', 30) AS snippet
		FROM symbols_fts
		JOIN symbols s ON s.id = symbols_fts.rowid
		LEFT JOIN rankings r ON r.symbol_id = s.id
		WHERE symbols_fts MATCH ?
		ORDER BY page_rank DESC, fts_rank ASC
		LIMIT ?
	`

	rows, err := s.db.Query(sqlText, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("search fts %q: %w", q, err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var res SearchResult
		var exported int
		var ftsRank float64
		if err := rows.Scan(&res.ID, &res.FileID, &res.Name, &res.QualifiedName, &res.Kind, &res.StartLine, &res.EndLine,
			&res.Signature, &res.Docstring, &res.Body, &exported, &res.Rank, &ftsRank, &res.Snippet); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		res.Exported = exported != 0
		out = append(out, res)
	}
	return out, rows.Err()
}
