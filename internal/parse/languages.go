package parse

import (
	"path/filepath"
	"strings"
)

// category is the closed set of emitted symbol shapes. Import and call
// nodes are recognized separately by the walker.
type category int

const (
	catNone category = iota
	catFunction
	catMethod
	catClass
	catInterface
	catType
	catEnum
	catDeclLike // lexical_declaration / variable_declaration
)

// langSpec describes, for one tree-sitter grammar, which node type strings
// map to which emitted category, which node types are import statements,
// and which node type is a call expression. The categories themselves are
// the ones named in the symbol table; per-grammar node-kind strings vary
// (a Go method is `method_declaration`, a JS/TS class method is
// `method_definition`) so each grammar gets its own map onto the same
// closed category set.
type langSpec struct {
	tag         string
	nodeKinds   map[string]category
	importKinds map[string]bool
	callKind    string
	moduleRoot  string // node type of the file's root, for Python's bare-export rule
}

// extToLanguage maps a supported extension to a language tag. json/css/html
// map to a tag too (so File.language is still populated) even though their
// symbol/import/call extraction is unconditionally empty.
var extToLanguage = map[string]string{
	".ts": "typescript", ".tsx": "typescript",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript",
	".py": "python",
	".rs": "rust",
	".go": "go",
	".sh": "bash", ".bash": "bash",
	".c": "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".hpp": "cpp",
	".json": "json",
	".css":  "css",
	".html": "html", ".htm": "html",
}

// emptyResultLanguages are tagged and stored like any other file but never
// parsed: their structured result is unconditionally empty.
var emptyResultLanguages = map[string]bool{
	"json": true, "css": true, "html": true,
}

// LanguageForPath returns the language tag for rel's extension, or "" if
// unsupported (the collector should never hand Parse an unsupported
// extension, but Parse tolerates it defensively).
func LanguageForPath(rel string) string {
	ext := strings.ToLower(filepath.Ext(rel))
	return extToLanguage[ext]
}

var langSpecs = map[string]langSpec{
	"javascript": {
		tag: "javascript",
		nodeKinds: map[string]category{
			"function_declaration": catFunction,
			"method_definition":    catMethod,
			"class_declaration":    catClass,
			"lexical_declaration":  catDeclLike,
			"variable_declaration": catDeclLike,
		},
		importKinds: map[string]bool{"import_statement": true},
		callKind:    "call_expression",
	},
	"typescript": {
		tag: "typescript",
		nodeKinds: map[string]category{
			"function_declaration":   catFunction,
			"method_definition":      catMethod,
			"class_declaration":      catClass,
			"interface_declaration":  catInterface,
			"type_alias_declaration": catType,
			"enum_declaration":       catEnum,
			"lexical_declaration":    catDeclLike,
			"variable_declaration":   catDeclLike,
		},
		importKinds: map[string]bool{"import_statement": true},
		callKind:    "call_expression",
	},
	"python": {
		tag: "python",
		nodeKinds: map[string]category{
			"function_definition": catFunction,
			"class_definition":    catClass,
		},
		importKinds: map[string]bool{"import_statement": true, "import_from_statement": true},
		callKind:    "call",
		moduleRoot:  "module",
	},
	"go": {
		tag: "go",
		nodeKinds: map[string]category{
			"function_declaration": catFunction,
			"method_declaration":   catMethod,
			"type_declaration":     catType,
		},
		importKinds: map[string]bool{"import_declaration": true},
		callKind:    "call_expression",
	},
	"rust": {
		tag: "rust",
		nodeKinds: map[string]category{
			"function_item": catFunction,
			"struct_item":   catClass,
			"enum_item":     catEnum,
			"trait_item":    catInterface,
			"type_item":     catType,
		},
		importKinds: map[string]bool{"use_declaration": true},
		callKind:    "call_expression",
	},
	"c": {
		tag: "c",
		nodeKinds: map[string]category{
			"function_definition": catFunction,
		},
		importKinds: map[string]bool{"preproc_include": true},
		callKind:    "call_expression",
	},
	"cpp": {
		tag: "cpp",
		nodeKinds: map[string]category{
			"function_definition": catFunction,
			"class_specifier":     catClass,
		},
		importKinds: map[string]bool{"preproc_include": true},
		callKind:    "call_expression",
	},
	"bash": {
		tag: "bash",
		nodeKinds: map[string]category{
			"function_definition": catFunction,
		},
		importKinds: map[string]bool{},
		callKind:    "command",
	},
}
