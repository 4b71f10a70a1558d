package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codeindex/internal/store"
)

func TestParseGoFunctionsAndCalls(t *testing.T) {
	src := []byte(`package main

func bar() {}

func foo() {
	bar()
}
`)
	result := Parse("a.go", src)
	assert.Equal(t, "go", result.Language)
	require.Len(t, result.Symbols, 2)

	var fooSym, barSym *Symbol
	for i := range result.Symbols {
		switch result.Symbols[i].Name {
		case "foo":
			fooSym = &result.Symbols[i]
		case "bar":
			barSym = &result.Symbols[i]
		}
	}
	require.NotNil(t, fooSym)
	require.NotNil(t, barSym)
	assert.Equal(t, store.KindFunction, fooSym.Kind)
	assert.Equal(t, store.KindFunction, barSym.Kind)

	require.Len(t, result.Calls, 1)
	assert.Equal(t, "foo", result.Calls[0].Caller)
	assert.Equal(t, "bar", result.Calls[0].Callee)
}

func TestParseTypeScriptExportedFunction(t *testing.T) {
	src := []byte(`export function foo() {
  bar();
}
`)
	result := Parse("a.ts", src)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "foo", result.Symbols[0].Name)
	assert.True(t, result.Symbols[0].Exported)
}

func TestParseTypeScriptImport(t *testing.T) {
	src := []byte(`import { bar } from './b';
export function foo() {
  bar();
}
`)
	result := Parse("a.ts", src)
	require.Len(t, result.Imports, 1)
	assert.Equal(t, "./b", result.Imports[0].Source)
	assert.Contains(t, result.Imports[0].Names, "bar")
}

func TestParsePythonClassMethod(t *testing.T) {
	src := []byte(`class Greeter:
    def greet(self):
        pass
`)
	result := Parse("a.py", src)
	require.Len(t, result.Symbols, 2)

	var method *Symbol
	for i := range result.Symbols {
		if result.Symbols[i].Name == "greet" {
			method = &result.Symbols[i]
		}
	}
	require.NotNil(t, method)
	assert.Equal(t, "Greeter.greet", method.QualifiedName)
}

func TestParseUnsupportedExtensionIsEmpty(t *testing.T) {
	result := Parse("README.md", []byte("# hello"))
	assert.Empty(t, result.Language)
	assert.Empty(t, result.Symbols)
}

func TestParseEmptyResultLanguages(t *testing.T) {
	result := Parse("a.json", []byte(`{"a": 1}`))
	assert.Equal(t, "json", result.Language)
	assert.Empty(t, result.Symbols)
	assert.Empty(t, result.Imports)
}

func TestParseNeverPanics(t *testing.T) {
	assert.NotPanics(t, func() {
		Parse("a.go", []byte("not even close to valid go {{{"))
	})
}
