// Package parse extracts symbols, imports, and intra-file calls from a
// single file's source text by walking its tree-sitter concrete syntax
// tree. Extraction is syntactic: no cross-file or semantic name resolution
// happens here (that is the Resolver's and Indexer's job).
package parse

import "github.com/mvp-joe/codeindex/internal/store"

// Symbol is one definition-like node found while walking a file's tree.
type Symbol struct {
	Name          string
	QualifiedName string
	Kind          store.SymbolKind
	StartLine     int
	EndLine       int
	Signature     string
	Docstring     string
	Body          string
	Exported      bool
}

// Import is one import/require-like statement found in a file.
type Import struct {
	Source string
	Names  []string
	Line   int
}

// Call is one call-expression found in a file, with its textual caller
// (the enclosing symbol's name) already resolved.
type Call struct {
	Caller string
	Callee string
	Line   int
}

// Result is the full extraction output of Parse for one file.
type Result struct {
	Language string
	Symbols  []Symbol
	Imports  []Import
	Calls    []Call
}
