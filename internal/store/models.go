// Package store implements the persistent relational and full-text index
// the rest of codeindex is built on: one SQLite database per indexed root,
// holding files, symbols, the edges between symbols, the import relationships
// between files, and a PageRank score per symbol.
package store

// SymbolKind is the closed set of symbol categories the parser emits.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindType      SymbolKind = "type"
	KindEnum      SymbolKind = "enum"
	KindVariable  SymbolKind = "variable"
)

// EdgeKind is the closed set of directed relationships between two symbols.
type EdgeKind string

const (
	EdgeCalls      EdgeKind = "calls"
	EdgeReferences EdgeKind = "references"
)

// FileDepKind is the closed set of directed relationships between two files.
// Only "import" exists today; the column is kept open-ended for future kinds.
type FileDepKind string

const (
	FileDepImport FileDepKind = "import"
)

// File is a single row of the files table: one entry per indexed source file.
type File struct {
	ID          int64
	Path        string // root-relative, forward-slash separated
	Language    string // detected language tag, or "" when none
	Digest      string // 16 hex chars, prefix of sha256(content)
	LineCount   int
	LastIndexed string // RFC3339
}

// Symbol is a single row of the symbols table.
type Symbol struct {
	ID            int64
	FileID        int64
	Name          string
	QualifiedName string // "" when not applicable
	Kind          SymbolKind
	StartLine     int
	EndLine       int
	Signature     string // "" when absent, <=200 chars
	Docstring     string // "" when absent, <=500 chars
	Body          string // "" when absent, <=2048/3072 chars
	Exported      bool
}

// Edge is a single row of the edges table: a directed symbol-to-symbol
// relationship. The triple (FromID, ToID, Kind) is unique.
type Edge struct {
	FromID int64
	ToID   int64
	Kind   EdgeKind
}

// FileDep is a single row of the file_deps table: a directed file-to-file
// import relationship. The quadruple (FromID, ToID, Kind, Name) is unique.
type FileDep struct {
	FromID int64
	ToID   int64
	Kind   FileDepKind
	Name   string // comma-joined imported identifiers, or "*"
}

// Ranking is a single row of the rankings table: the PageRank result for one
// symbol, regenerated wholesale on every full re-index.
type Ranking struct {
	SymbolID  int64
	Rank      float64
	InDegree  int
	OutDegree int
}
