// Package docs renders a CLAUDE.md-style project brief from the query
// engine's summary operators: a plain Markdown template over stats(),
// modules(), and rank(), regenerated on demand by the generate-docs CLI
// command.
package docs

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/codeindex/internal/query"
)

// Generate renders the project brief as Markdown.
func Generate(eng *query.Engine) (string, error) {
	stats, err := eng.Stats()
	if err != nil {
		return "", fmt.Errorf("generate docs: %w", err)
	}
	modules, err := eng.Modules()
	if err != nil {
		return "", fmt.Errorf("generate docs: %w", err)
	}
	syms, ranks, err := eng.Rank(15)
	if err != nil {
		return "", fmt.Errorf("generate docs: %w", err)
	}

	var b strings.Builder
	fmt.Fprintln(&b, "# Project Index")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "%d files, %d symbols, %d edges, %d file dependencies.\n\n",
		stats.Files, stats.Symbols, stats.Edges, stats.FileDeps)

	fmt.Fprintln(&b, "## Modules")
	fmt.Fprintln(&b)
	for _, m := range modules {
		fmt.Fprintf(&b, "- **%s**: %d files, %d symbols", m.Name, m.FileCount, m.SymbolCount)
		if len(m.DependsOn) > 0 {
			fmt.Fprintf(&b, " (depends on: %s)", strings.Join(m.DependsOn, ", "))
		}
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "## Most central symbols")
	fmt.Fprintln(&b)
	for i, s := range syms {
		name := s.Name
		if s.QualifiedName != "" {
			name = s.QualifiedName
		}
		fmt.Fprintf(&b, "%d. `%s` (%s, rank %.4f)\n", i+1, name, s.Kind, ranks[i])
	}

	return b.String(), nil
}
