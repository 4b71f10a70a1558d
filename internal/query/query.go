// Package query implements the ten read-only operators the tool protocol
// and CLI both sit on top of: search, callers, dependencies, context,
// impact, rank, modules, stats, brief, and pre_edit. Every operator reads
// from an open Store handle and returns plain records, never a reference
// into the Store.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/codeindex/internal/store"
)

// Engine is the query layer over one Store handle.
type Engine struct {
	store *store.Store
}

// New returns an Engine backed by st.
func New(st *store.Store) *Engine {
	return &Engine{store: st}
}

// SearchResult is one hit from Search.
type SearchResult = store.SearchResult

// Search tokenizes q, runs it against the FTS projection, and returns hits
// ordered by PageRank desc, then FTS rank asc. Empty input yields no results.
func (e *Engine) Search(q string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 15
	}
	return e.store.SearchFTS(q, limit)
}

// matchingSymbols resolves name against both the name and qualified_name
// columns. Unlike ContextFor's single-best-match path this needs every
// match, so it bypasses the handle-scoped id cache.
func (e *Engine) matchingSymbols(name string) ([]store.Symbol, error) {
	return e.store.SymbolsByName(name)
}

// Callers returns the distinct symbols with a calls or references edge
// pointing at any symbol matching name, ordered by source PageRank desc.
func (e *Engine) Callers(name string) ([]store.Symbol, error) {
	matches, err := e.matchingSymbols(name)
	if err != nil {
		return nil, fmt.Errorf("callers %s: %w", name, err)
	}

	seen := make(map[int64]bool)
	var out []store.Symbol
	for _, m := range matches {
		sources, err := e.store.IncomingSources(m.ID)
		if err != nil {
			return nil, fmt.Errorf("callers %s: %w", name, err)
		}
		for _, s := range sources {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}

	if err := e.sortByRankDesc(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dependencies returns the distinct symbols reachable by any edge kind from
// any symbol matching name, ordered by target PageRank desc.
func (e *Engine) Dependencies(name string) ([]store.Symbol, error) {
	matches, err := e.matchingSymbols(name)
	if err != nil {
		return nil, fmt.Errorf("dependencies %s: %w", name, err)
	}

	seen := make(map[int64]bool)
	var out []store.Symbol
	for _, m := range matches {
		targets, err := e.store.OutgoingTargets(m.ID)
		if err != nil {
			return nil, fmt.Errorf("dependencies %s: %w", name, err)
		}
		for _, t := range targets {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			out = append(out, t)
		}
	}

	if err := e.sortByRankDesc(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Context is the full detail view of one symbol: its metadata and body,
// what it depends on, what depends on it, and its same-file siblings.
type Context struct {
	Symbol       store.Symbol
	Dependencies []store.Symbol
	Dependents   []store.Symbol
	Siblings     []store.Symbol
}

// ContextFor picks the single best match for name (exported desc, then
// PageRank desc) and returns its full context, or nil if nothing matches.
// The best-match id is cached on the handle, since context() is the
// operator most likely to be called repeatedly for the same name in a row.
func (e *Engine) ContextFor(name string) (*Context, error) {
	var sym *store.Symbol
	if id, ok := e.store.CacheGet(name); ok {
		cached, err := e.store.SymbolByID(id)
		if err != nil {
			return nil, fmt.Errorf("context %s: %w", name, err)
		}
		sym = cached
	}
	if sym == nil {
		resolved, err := e.store.SymbolByNameBestMatch(name)
		if err != nil {
			return nil, fmt.Errorf("context %s: %w", name, err)
		}
		if resolved == nil {
			return nil, nil
		}
		e.store.CacheSet(name, resolved.ID)
		sym = resolved
	}

	deps, err := e.store.OutgoingTargets(sym.ID)
	if err != nil {
		return nil, fmt.Errorf("context %s: %w", name, err)
	}
	dependents, err := e.store.IncomingSources(sym.ID)
	if err != nil {
		return nil, fmt.Errorf("context %s: %w", name, err)
	}
	siblings, err := e.store.SiblingsInFile(sym.FileID)
	if err != nil {
		return nil, fmt.Errorf("context %s: %w", name, err)
	}

	return &Context{
		Symbol:       *sym,
		Dependencies: deps,
		Dependents:   dependents,
		Siblings:     siblings,
	}, nil
}

// ImpactEntry is one file's aggregated result from Impact.
type ImpactEntry struct {
	Path        string
	Depth       int
	SymbolCount int
}

// Impact does a breadth-first reverse traversal of the FileDep graph
// starting at file: layer 1 is every file that imports it directly, layer
// k+1 is every file that imports a layer-k file, bounded by maxDepth.
func (e *Engine) Impact(file string, maxDepth int) ([]ImpactEntry, error) {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	root, err := e.store.FileByPath(file)
	if err != nil {
		return nil, fmt.Errorf("impact %s: %w", file, err)
	}
	if root == nil {
		return nil, nil
	}

	deps, err := e.store.AllFileDeps()
	if err != nil {
		return nil, fmt.Errorf("impact %s: %w", file, err)
	}
	predecessors := make(map[int64][]int64, len(deps))
	for _, d := range deps {
		predecessors[d.ToID] = append(predecessors[d.ToID], d.FromID)
	}

	minDepth := make(map[int64]int)
	frontier := []int64{root.ID}
	visited := map[int64]bool{root.ID: true}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []int64
		for _, id := range frontier {
			for _, pred := range predecessors[id] {
				if _, ok := minDepth[pred]; !ok {
					minDepth[pred] = depth
				}
				if !visited[pred] {
					visited[pred] = true
					next = append(next, pred)
				}
			}
		}
		frontier = next
	}

	entries := make([]ImpactEntry, 0, len(minDepth))
	for id, depth := range minDepth {
		f, err := e.store.FileByID(id)
		if err != nil {
			return nil, fmt.Errorf("impact %s: %w", file, err)
		}
		if f == nil {
			continue
		}
		count, err := e.store.SymbolCountForFile(id)
		if err != nil {
			return nil, fmt.Errorf("impact %s: %w", file, err)
		}
		entries = append(entries, ImpactEntry{Path: f.Path, Depth: depth, SymbolCount: count})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Depth != entries[j].Depth {
			return entries[i].Depth < entries[j].Depth
		}
		return entries[i].SymbolCount > entries[j].SymbolCount
	})
	return entries, nil
}

// rankableKinds is the set of symbol kinds Rank and brief's top-symbol
// listing consider; variables are excluded.
var rankableKinds = []store.SymbolKind{
	store.KindFunction, store.KindClass, store.KindMethod, store.KindInterface, store.KindType,
}

// Rank returns the top symbols by PageRank among rankableKinds.
func (e *Engine) Rank(top int) ([]store.Symbol, []float64, error) {
	if top <= 0 {
		top = 20
	}
	return e.store.TopRanked(top, rankableKinds)
}

// ModuleEntry is one module (first path segment) partition's summary.
type ModuleEntry struct {
	Name        string
	FileCount   int
	SymbolCount int
	DependsOn   []string
}

// Modules partitions files by their first path segment (files with no "/"
// are grouped under "."), reporting per-partition file count, total symbol
// count, and which other partitions it depends on via FileDep.
func (e *Engine) Modules() ([]ModuleEntry, error) {
	files, err := e.store.AllFiles()
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}
	deps, err := e.store.AllFileDeps()
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	moduleOf := make(map[int64]string, len(files))
	counts := make(map[string]int)
	symbolCounts := make(map[string]int)

	for _, f := range files {
		mod := moduleName(f.Path)
		moduleOf[f.ID] = mod
		counts[mod]++
		n, err := e.store.SymbolCountForFile(f.ID)
		if err != nil {
			return nil, fmt.Errorf("modules: %w", err)
		}
		symbolCounts[mod] += n
	}

	dependsOn := make(map[string]map[string]bool)
	for _, d := range deps {
		from, ok1 := moduleOf[d.FromID]
		to, ok2 := moduleOf[d.ToID]
		if !ok1 || !ok2 || from == to {
			continue
		}
		if dependsOn[from] == nil {
			dependsOn[from] = make(map[string]bool)
		}
		dependsOn[from][to] = true
	}

	entries := make([]ModuleEntry, 0, len(counts))
	for mod, fileCount := range counts {
		var others []string
		for other := range dependsOn[mod] {
			others = append(others, other)
		}
		sort.Strings(others)
		entries = append(entries, ModuleEntry{
			Name:        mod,
			FileCount:   fileCount,
			SymbolCount: symbolCounts[mod],
			DependsOn:   others,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].SymbolCount > entries[j].SymbolCount })
	return entries, nil
}

func moduleName(path string) string {
	if idx := strings.Index(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return "."
}

// StatsResult is the summary Stats returns.
type StatsResult struct {
	Files    int
	Symbols  int
	Edges    int
	FileDeps int
}

// Stats returns the basic row counts.
func (e *Engine) Stats() (StatsResult, error) {
	var s StatsResult
	var err error
	if s.Files, err = e.store.FileCount(); err != nil {
		return s, err
	}
	if s.Symbols, err = e.store.SymbolCount(); err != nil {
		return s, err
	}
	if s.Edges, err = e.store.EdgeCounts(); err != nil {
		return s, err
	}
	if s.FileDeps, err = e.store.FileDepCounts(); err != nil {
		return s, err
	}
	return s, nil
}

// Brief renders a human-readable summary: the stats line, the language
// histogram, up to 8 top modules, and up to 10 top-ranked symbols.
func (e *Engine) Brief() (string, error) {
	stats, err := e.Stats()
	if err != nil {
		return "", fmt.Errorf("brief: %w", err)
	}
	hist, err := e.store.LanguageHistogram()
	if err != nil {
		return "", fmt.Errorf("brief: %w", err)
	}
	modules, err := e.Modules()
	if err != nil {
		return "", fmt.Errorf("brief: %w", err)
	}
	syms, ranks, err := e.Rank(10)
	if err != nil {
		return "", fmt.Errorf("brief: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d files, %d symbols, %d edges, %d file deps\n\n",
		stats.Files, stats.Symbols, stats.Edges, stats.FileDeps)

	fmt.Fprintln(&b, "Languages:")
	langs := make([]string, 0, len(hist))
	for lang := range hist {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		name := lang
		if name == "" {
			name = "(unknown)"
		}
		fmt.Fprintf(&b, "  %s: %d\n", name, hist[lang])
	}

	fmt.Fprintln(&b, "\nTop modules:")
	for i, m := range modules {
		if i >= 8 {
			break
		}
		fmt.Fprintf(&b, "  %s (%d files, %d symbols)\n", m.Name, m.FileCount, m.SymbolCount)
	}

	fmt.Fprintln(&b, "\nTop symbols:")
	for i, s := range syms {
		if i >= 10 {
			break
		}
		fmt.Fprintf(&b, "  %s (%s, rank %.4f)\n", displayName(s), s.Kind, ranks[i])
	}

	return b.String(), nil
}

// PreEdit renders a human-readable pre-edit briefing for file: its exported
// symbols, the files that depend on it (truncated to 15), and the files and
// import names it depends on.
func (e *Engine) PreEdit(file string) (string, error) {
	f, err := e.store.FileByPath(file)
	if err != nil {
		return "", fmt.Errorf("pre-edit %s: %w", file, err)
	}
	if f == nil {
		return fmt.Sprintf("%s is not indexed\n", file), nil
	}

	siblings, err := e.store.SiblingsInFile(f.ID)
	if err != nil {
		return "", fmt.Errorf("pre-edit %s: %w", file, err)
	}
	depsInto, err := e.store.FileDepsInto(f.ID)
	if err != nil {
		return "", fmt.Errorf("pre-edit %s: %w", file, err)
	}
	depsFrom, err := e.store.FileDepsFrom(f.ID)
	if err != nil {
		return "", fmt.Errorf("pre-edit %s: %w", file, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", file)

	fmt.Fprintln(&b, "Exported symbols:")
	for _, s := range siblings {
		if !s.Exported {
			continue
		}
		fmt.Fprintf(&b, "  %s (%s)\n", displayName(s), s.Kind)
	}

	fmt.Fprintln(&b, "\nDepended on by:")
	for i, d := range depsInto {
		if i >= 15 {
			fmt.Fprintf(&b, "  ... and %d more\n", len(depsInto)-15)
			break
		}
		from, err := e.store.FileByID(d.FromID)
		if err != nil {
			return "", fmt.Errorf("pre-edit %s: %w", file, err)
		}
		if from != nil {
			fmt.Fprintf(&b, "  %s\n", from.Path)
		}
	}

	fmt.Fprintln(&b, "\nImports from:")
	for _, d := range depsFrom {
		to, err := e.store.FileByID(d.ToID)
		if err != nil {
			return "", fmt.Errorf("pre-edit %s: %w", file, err)
		}
		if to != nil {
			fmt.Fprintf(&b, "  %s (%s)\n", to.Path, d.Name)
		}
	}

	return b.String(), nil
}

func displayName(s store.Symbol) string {
	if s.QualifiedName != "" {
		return s.QualifiedName
	}
	return s.Name
}

// sortByRankDesc reorders syms in place by PageRank desc, looking up each
// symbol's rank once rather than re-scanning on every comparison.
func (e *Engine) sortByRankDesc(syms []store.Symbol) error {
	ranks := make(map[int64]float64, len(syms))
	for _, s := range syms {
		r, err := e.store.RankOf(s.ID)
		if err != nil {
			return err
		}
		ranks[s.ID] = r
	}
	sort.SliceStable(syms, func(i, j int) bool { return ranks[syms[i].ID] > ranks[syms[j].ID] })
	return nil
}
