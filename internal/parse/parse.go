package parse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mvp-joe/codeindex/internal/store"
)

var stopCallNames = map[string]bool{
	"console.log": true, "console.error": true, "console.warn": true,
	"console.info": true, "console.debug": true,
	"print": true, "require": true,
}

// Parse maps a file's relative path and content to its extracted symbols,
// imports, and intra-file calls. A parser crash, an unsupported extension,
// or an unloadable grammar all yield an empty, non-error result: per-file
// extraction failures never fail the index run.
func Parse(rel string, content []byte) (result Result) {
	defer func() {
		if recover() != nil {
			result = Result{Language: result.Language}
		}
	}()

	lang := LanguageForPath(rel)
	result.Language = lang
	if lang == "" || emptyResultLanguages[lang] {
		return result
	}

	spec, ok := langSpecs[lang]
	if !ok {
		return result
	}

	grammar, ok := grammars.get(lang)
	if !ok {
		return result
	}

	p := sitter.NewParser()
	p.SetLanguage(grammar)
	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return result
	}
	defer tree.Close()

	w := &walker{spec: spec, src: content}
	w.walk(tree.RootNode(), "")

	result.Symbols = w.symbols
	result.Imports = w.imports
	result.Calls = w.calls
	return result
}

type walker struct {
	spec    langSpec
	src     []byte
	symbols []Symbol
	imports []Import
	calls   []Call
}

func (w *walker) walk(n *sitter.Node, enclosingClass string) {
	if n == nil {
		return
	}

	nextClass := enclosingClass
	kind := n.Type()

	if cat, ok := w.spec.nodeKinds[kind]; ok && cat != catNone {
		w.emitSymbol(n, cat, enclosingClass)
		if cat == catClass {
			nextClass = w.symbolName(n)
		}
	} else if w.spec.importKinds[kind] {
		w.emitImport(n)
	} else if kind == w.spec.callKind {
		w.emitCall(n)
	}

	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		w.walk(n.Child(i), nextClass)
	}
}

func (w *walker) emitSymbol(n *sitter.Node, cat category, enclosingClass string) {
	name := w.symbolName(n)
	if name == "" {
		return
	}

	var kind store.SymbolKind
	qualified := ""

	switch cat {
	case catFunction:
		kind = store.KindFunction
		if enclosingClass != "" {
			qualified = enclosingClass + "." + name
		}
	case catMethod:
		kind = store.KindMethod
		owner := enclosingClass
		if owner == "" && w.spec.tag == "go" {
			owner = goReceiverType(n, w.src)
		}
		if owner != "" {
			qualified = owner + "." + name
		}
	case catClass:
		kind = store.KindClass
	case catInterface:
		kind = store.KindInterface
	case catType:
		kind = store.KindType
	case catEnum:
		kind = store.KindEnum
	case catDeclLike:
		parent := n.Parent()
		if !isExportParent(parent) {
			return
		}
		decl := firstChildOfType(n, "variable_declarator")
		if decl == nil {
			return
		}
		declName := fieldText(decl, "name", w.src)
		if declName == "" {
			return
		}
		value := decl.ChildByFieldName("value")
		if value != nil && value.Type() == "arrow_function" {
			kind = store.KindFunction
		} else {
			kind = store.KindVariable
		}
		w.append(n, declName, "", kind, w.exported(n))
		return
	default:
		return
	}

	w.append(n, name, qualified, kind, w.exported(n))
}

const (
	maxBodyLenDefault = 2048
	maxBodyLenWide    = 3072 // class/interface
)

func maxBodyLen(kind store.SymbolKind) int {
	if kind == store.KindClass || kind == store.KindInterface {
		return maxBodyLenWide
	}
	return maxBodyLenDefault
}

func (w *walker) append(n *sitter.Node, name, qualified string, kind store.SymbolKind, exported bool) {
	body := nodeText(n, w.src)
	maxBody := maxBodyLen(kind)
	sym := Symbol{
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		StartLine:     int(n.StartPoint().Row) + 1,
		EndLine:       int(n.EndPoint().Row) + 1,
		Signature:     firstLine(body, 200),
		Docstring:     docstringFor(n, w.src),
		Body:          truncate(body, maxBody),
		Exported:      exported,
	}
	w.symbols = append(w.symbols, sym)
}

// exported is a parent-node test: export-statement parent;
// decorated_definition whose parent is an export form; or, for Python, a
// bare module-root declaration whose name doesn't start with "_".
func (w *walker) exported(n *sitter.Node) bool {
	parent := n.Parent()
	if parent == nil {
		return false
	}
	if isExportParent(parent) {
		return true
	}
	if parent.Type() == "decorated_definition" {
		gp := parent.Parent()
		if gp != nil && isExportParent(gp) {
			return true
		}
	}
	if w.spec.tag == "python" && parent.Type() == w.spec.moduleRoot {
		return !strings.HasPrefix(w.symbolName(n), "_")
	}
	return false
}

func isExportParent(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "export_statement", "export_declaration", "export_default_declaration", "export_named_declaration":
		return true
	}
	return false
}

func (w *walker) emitImport(n *sitter.Node) {
	source := fieldText(n, "source", w.src)
	if source == "" {
		if s := firstChildOfType(n, "string"); s != nil {
			source = nodeText(s, w.src)
		} else if s := firstChildOfType(n, "string_literal"); s != nil {
			source = nodeText(s, w.src)
		}
	}
	source = strings.Trim(source, `"'`+"`")

	names := collectImportNames(n, w.src)

	if source == "" {
		// Python-style import with no source string. For
		// `from .b import helper` the first dotted_name child is the
		// imported name, not the module, so prefer the module_name field
		// (dotted_name or relative_import) before falling back.
		if mod := fieldNode(n, "module_name"); mod != nil {
			source = nodeText(mod, w.src)
		} else if mod := firstChildOfType(n, "relative_import"); mod != nil {
			source = nodeText(mod, w.src)
		} else if mod := firstChildOfType(n, "dotted_name"); mod != nil {
			source = nodeText(mod, w.src)
		} else if mod := firstChildOfType(n, "aliased_import"); mod != nil {
			source = nodeText(mod, w.src)
		}
		names = nil
	}

	if source == "" {
		return
	}

	w.imports = append(w.imports, Import{
		Source: source,
		Names:  names,
		Line:   int(n.StartPoint().Row) + 1,
	})
}

func collectImportNames(n *sitter.Node, src []byte) []string {
	var names []string

	clause := firstChildOfType(n, "import_clause")
	if clause != nil {
		if clause.ChildCount() > 0 {
			first := clause.Child(0)
			if first.Type() == "identifier" {
				names = append(names, nodeText(first, src))
			}
		}
		names = append(names, collectSpecifierNames(clause, src)...)
		return names
	}

	return collectSpecifierNames(n, src)
}

func collectSpecifierNames(n *sitter.Node, src []byte) []string {
	var names []string
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import_specifier":
			if nameNode := fieldNode(child, "name"); nameNode != nil {
				names = append(names, nodeText(nameNode, src))
			} else if child.ChildCount() > 0 {
				names = append(names, nodeText(child.Child(0), src))
			}
		case "named_imports", "import_clause":
			names = append(names, collectSpecifierNames(child, src)...)
		default:
			if child.Type() == "identifier" || child.Type() == "dotted_name" {
				continue
			}
			names = append(names, collectSpecifierNames(child, src)...)
		}
	}
	return names
}

func (w *walker) emitCall(n *sitter.Node) {
	fn := fieldNode(n, "function")
	if fn == nil && n.ChildCount() > 0 {
		fn = n.Child(0)
	}
	if fn == nil {
		return
	}

	text := nodeText(fn, w.src)
	if idx := strings.LastIndex(text, "."); idx >= 0 {
		parts := strings.Split(text, ".")
		if len(parts) >= 2 {
			text = parts[len(parts)-2] + "." + parts[len(parts)-1]
		}
	}

	if stopCallNames[text] || len(text) >= 100 {
		return
	}

	caller := w.enclosingSymbolName(n)
	if caller == "" {
		return
	}

	w.calls = append(w.calls, Call{
		Caller: caller,
		Callee: text,
		Line:   int(n.StartPoint().Row) + 1,
	})
}

// enclosingSymbolName climbs ancestors from n until it finds a
// function/method/class definition (by name field) or a variable-declarator
// / lexical-declaration (by name field), returning "" if none is found.
func (w *walker) enclosingSymbolName(n *sitter.Node) string {
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "function_declaration", "function_definition", "method_definition",
			"method_declaration", "class_declaration", "class_definition",
			"function_item":
			if name := w.symbolName(p); name != "" {
				return name
			}
		case "variable_declarator":
			if name := fieldText(p, "name", w.src); name != "" {
				return name
			}
		case "lexical_declaration", "variable_declaration":
			if decl := firstChildOfType(p, "variable_declarator"); decl != nil {
				if name := fieldText(decl, "name", w.src); name != "" {
					return name
				}
			}
		}
	}
	return ""
}

func (w *walker) symbolName(n *sitter.Node) string {
	return fieldText(n, "name", w.src)
}

func fieldNode(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

func fieldText(n *sitter.Node, field string, src []byte) string {
	fn := fieldNode(n, field)
	if fn == nil {
		return ""
	}
	return nodeText(fn, src)
}

func firstChildOfType(n *sitter.Node, typ string) *sitter.Node {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if c := n.Child(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

func docstringFor(n *sitter.Node, src []byte) string {
	prev := n.PrevSibling()
	if prev == nil {
		return ""
	}
	switch prev.Type() {
	case "comment", "line_comment", "block_comment":
		return truncate(nodeText(prev, src), 500)
	}
	return ""
}

func firstLine(s string, max int) string {
	line := s
	if idx := strings.IndexAny(s, "\r\n"); idx >= 0 {
		line = s[:idx]
	}
	return truncate(strings.TrimSpace(line), max)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func goReceiverType(n *sitter.Node, src []byte) string {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child.Type() != "parameter_list" {
			continue
		}
		// The receiver is the first parameter_list, which precedes the
		// method's own name field.
		paramCount := int(child.ChildCount())
		for j := 0; j < paramCount; j++ {
			param := child.Child(j)
			if param.Type() != "parameter_declaration" {
				continue
			}
			return unwrapGoTypeName(param, src)
		}
		return ""
	}
	return ""
}

func unwrapGoTypeName(param *sitter.Node, src []byte) string {
	count := int(param.ChildCount())
	for i := 0; i < count; i++ {
		child := param.Child(i)
		switch child.Type() {
		case "type_identifier":
			return nodeText(child, src)
		case "pointer_type":
			inner := firstChildOfType(child, "type_identifier")
			if inner != nil {
				return nodeText(inner, src)
			}
		}
	}
	return ""
}
