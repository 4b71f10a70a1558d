package parse

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// grammarState is the tagged Loaded(g)|Absent variant the design calls for:
// a nil lang with ok=true would be meaningless, so ok alone carries the
// Absent case and lang is only read when ok is true.
type grammarState struct {
	lang *sitter.Language
	ok   bool
}

// registry caches loaded grammars per language tag, keyed by tag, so a
// failed load (absent binding) is never retried within one process.
type registry struct {
	mu    sync.Mutex
	cache map[string]grammarState
}

var grammars = &registry{cache: make(map[string]grammarState)}

func (r *registry) get(tag string) (*sitter.Language, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if st, ok := r.cache[tag]; ok {
		return st.lang, st.ok
	}

	lang, ok := loadGrammar(tag)
	r.cache[tag] = grammarState{lang: lang, ok: ok}
	return lang, ok
}

func loadGrammar(tag string) (*sitter.Language, bool) {
	switch tag {
	case "go":
		return golang.GetLanguage(), true
	case "python":
		return python.GetLanguage(), true
	case "javascript":
		return javascript.GetLanguage(), true
	case "typescript":
		return ts.GetLanguage(), true
	case "rust":
		return rust.GetLanguage(), true
	case "c":
		return c.GetLanguage(), true
	case "cpp":
		return cpp.GetLanguage(), true
	case "bash":
		return bash.GetLanguage(), true
	default:
		return nil, false
	}
}
