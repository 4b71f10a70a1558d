// Package index drives the full and single-file indexing pipelines: collect
// live files, parse changed ones, resolve cross-file references, prune stale
// rows, and recompute PageRank. It is the only package that wires collect,
// parse, resolve, and store together.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/codeindex/internal/collect"
	"github.com/mvp-joe/codeindex/internal/parse"
	"github.com/mvp-joe/codeindex/internal/resolve"
	"github.com/mvp-joe/codeindex/internal/store"
)

// digestLen matches store.File.Digest's documented width.
const digestLen = 16

// Stats summarizes one Index or ReindexFile run.
type Stats struct {
	FilesSeen      int
	FilesChanged   int
	FilesUnchanged int
	FilesSkipped   int
	SymbolsFound   int
}

// Settings carries the configuration knobs the indexer otherwise hardcodes:
// the collector's ignore rules and the PageRank pass's iteration count and
// damping factor. Kept as a small struct (rather than pulling the config
// package in directly) so this package stays decoupled from how those
// values are sourced.
type Settings struct {
	CollectOptions collect.Options
	RankIterations int
	RankDamping    float64
}

// DefaultSettings returns the hardcoded defaults: no extra ignore globs,
// 20 PageRank iterations, 0.85 damping.
func DefaultSettings() Settings {
	return Settings{RankIterations: pageRankIterations, RankDamping: pageRankDamping}
}

// Indexer drives the collector, parser, resolver, and store through a full
// or single-file index pass.
type Indexer struct {
	store    *store.Store
	root     string
	settings Settings
}

// New returns an Indexer for root backed by st, applying settings to the
// collector walk and the PageRank pass. Zero-value RankIterations/
// RankDamping fall back to the defaults so callers that only care about
// CollectOptions don't have to know the PageRank constants.
func New(root string, st *store.Store, settings Settings) *Indexer {
	if settings.RankIterations <= 0 {
		settings.RankIterations = pageRankIterations
	}
	if settings.RankDamping <= 0 {
		settings.RankDamping = pageRankDamping
	}
	return &Indexer{store: st, root: root, settings: settings}
}

type resolvedFile struct {
	fileID    int64
	symbolIDs []int64
	targets   []int64 // target file id, one per import with a nonempty name list
	names     [][]string
}

// Index runs a full index pass: every live file is visited, changed files
// are reparsed from scratch, stale files are pruned, cross-file references
// are resolved, and PageRank is recomputed over the resulting graph.
func (ix *Indexer) Index(ctx context.Context) (Stats, error) {
	var stats Stats

	paths, err := collect.Walk(ix.root, ix.settings.CollectOptions)
	if err != nil {
		return stats, fmt.Errorf("collect: %w", err)
	}
	stats.FilesSeen = len(paths)

	live := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		live[p] = struct{}{}
	}

	tx, err := ix.store.DB().Begin()
	if err != nil {
		return stats, fmt.Errorf("begin index transaction: %w", err)
	}
	defer tx.Rollback()

	// Pass A: upsert every live file first, so cross-file lookups during
	// pass B always find a target file id regardless of walk order. Runs
	// inside the same transaction as pass B: a rollback reverts the digest
	// advance too, so a failed run never strands a file at its new digest
	// with stale symbols. File content is cached here rather than re-read
	// in pass B.
	fileIDByPath := make(map[string]int64, len(paths))
	changedByPath := make(map[string]bool, len(paths))
	contentByPath := make(map[string][]byte, len(paths))
	for _, rel := range paths {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		content, err := os.ReadFile(filepath.Join(ix.root, rel))
		if err != nil {
			stats.FilesSkipped++
			continue
		}

		lang := parse.LanguageForPath(rel)
		lineCount := strings.Count(string(content), "\n") + 1
		fileID, changed, err := ix.store.UpsertFile(tx, rel, lang, digest(content), lineCount)
		if err != nil {
			return stats, fmt.Errorf("upsert file %s: %w", rel, err)
		}
		fileIDByPath[rel] = fileID
		changedByPath[rel] = changed
		contentByPath[rel] = content
	}

	exportedByFile := make(map[int64]map[string]int64, len(paths))
	var toResolve []resolvedFile

	// Pass B: reparse changed files; seed the cross-file table for
	// unchanged ones from their already-indexed exported symbols.
	for _, rel := range paths {
		fileID, ok := fileIDByPath[rel]
		if !ok {
			continue // unreadable in pass A, already counted as skipped
		}

		if !changedByPath[rel] {
			stats.FilesUnchanged++
			exported, err := ix.store.ExportedSymbolsByFile(tx, fileID)
			if err != nil {
				return stats, fmt.Errorf("exported symbols for %s: %w", rel, err)
			}
			exportedByFile[fileID] = exported
			continue
		}

		stats.FilesChanged++
		if err := ix.store.ClearFileData(tx, fileID); err != nil {
			return stats, fmt.Errorf("clear file data for %s: %w", rel, err)
		}

		result := parse.Parse(rel, contentByPath[rel])
		stats.SymbolsFound += len(result.Symbols)

		fileTable := make(map[string]int64, len(result.Symbols)*2)
		symbolIDs := make([]int64, 0, len(result.Symbols))
		exported := make(map[string]int64)

		for _, sym := range result.Symbols {
			id, err := ix.store.InsertSymbol(tx, store.Symbol{
				FileID:        fileID,
				Name:          sym.Name,
				QualifiedName: sym.QualifiedName,
				Kind:          sym.Kind,
				StartLine:     sym.StartLine,
				EndLine:       sym.EndLine,
				Signature:     sym.Signature,
				Docstring:     sym.Docstring,
				Body:          sym.Body,
				Exported:      sym.Exported,
			})
			if err != nil {
				return stats, fmt.Errorf("insert symbol %s in %s: %w", sym.Name, rel, err)
			}
			symbolIDs = append(symbolIDs, id)
			fileTable[sym.Name] = id
			if sym.QualifiedName != "" {
				fileTable[sym.QualifiedName] = id
			}
			if sym.Exported {
				exported[sym.Name] = id
				if sym.QualifiedName != "" {
					exported[sym.QualifiedName] = id
				}
			}
		}
		exportedByFile[fileID] = exported

		for _, call := range result.Calls {
			callerID, ok := fileTable[call.Caller]
			if !ok {
				continue
			}
			calleeID, ok := fileTable[call.Callee]
			if !ok || calleeID == callerID {
				continue
			}
			if err := ix.store.InsertEdgeIgnore(tx, callerID, calleeID, store.EdgeCalls); err != nil {
				return stats, fmt.Errorf("insert call edge in %s: %w", rel, err)
			}
		}

		rf := resolvedFile{fileID: fileID, symbolIDs: symbolIDs}
		for _, imp := range result.Imports {
			targetRel, ok := resolve.Resolve(ix.root, rel, imp.Source)
			if !ok {
				continue
			}
			targetID, ok := fileIDByPath[targetRel]
			if !ok {
				continue
			}
			name := strings.Join(imp.Names, ",")
			if name == "" {
				name = "*"
			}
			if err := ix.store.InsertFileDepIgnore(tx, fileID, targetID, store.FileDepImport, name); err != nil {
				return stats, fmt.Errorf("insert file dep %s: %w", rel, err)
			}
			if len(imp.Names) > 0 {
				rf.targets = append(rf.targets, targetID)
				rf.names = append(rf.names, imp.Names)
			}
		}
		if len(rf.targets) > 0 {
			toResolve = append(toResolve, rf)
		}
	}

	if err := ix.store.RemoveStale(tx, live); err != nil {
		return stats, fmt.Errorf("remove stale files: %w", err)
	}

	// Cross-file resolution: one references edge from every symbol in the
	// importing file to each resolved target symbol, skipping self-edges.
	// Coarse by design: this records "this file uses X", not which specific
	// symbol does.
	for _, rf := range toResolve {
		for i, targetID := range rf.targets {
			exported := exportedByFile[targetID]
			if exported == nil {
				continue
			}
			for _, name := range rf.names[i] {
				targetSymbolID, ok := exported[name]
				if !ok {
					continue
				}
				for _, fromID := range rf.symbolIDs {
					if fromID == targetSymbolID {
						continue
					}
					if err := ix.store.InsertEdgeIgnore(tx, fromID, targetSymbolID, store.EdgeReferences); err != nil {
						return stats, fmt.Errorf("insert reference edge: %w", err)
					}
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit index transaction: %w", err)
	}
	ix.store.InvalidateCache()

	if err := ix.runPageRank(); err != nil {
		return stats, fmt.Errorf("page rank: %w", err)
	}

	return stats, nil
}

// ReindexFile reparses a single file in isolation (steps 2-3 only: no
// cross-file references pass, no PageRank recomputation). Callers are
// expected to run a full Index periodically to amortize those.
func (ix *Indexer) ReindexFile(ctx context.Context, rel string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	full := filepath.Join(ix.root, rel)
	content, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return ix.store.RemoveFile(rel)
		}
		return fmt.Errorf("read %s: %w", rel, err)
	}

	tx, err := ix.store.DB().Begin()
	if err != nil {
		return fmt.Errorf("begin reindex transaction: %w", err)
	}
	defer tx.Rollback()

	lang := parse.LanguageForPath(rel)
	lineCount := strings.Count(string(content), "\n") + 1
	fileID, changed, err := ix.store.UpsertFile(tx, rel, lang, digest(content), lineCount)
	if err != nil {
		return fmt.Errorf("upsert file %s: %w", rel, err)
	}
	if !changed {
		return nil
	}

	if err := ix.store.ClearFileData(tx, fileID); err != nil {
		return fmt.Errorf("clear file data for %s: %w", rel, err)
	}

	result := parse.Parse(rel, content)
	fileTable := make(map[string]int64, len(result.Symbols)*2)
	for _, sym := range result.Symbols {
		id, err := ix.store.InsertSymbol(tx, store.Symbol{
			FileID:        fileID,
			Name:          sym.Name,
			QualifiedName: sym.QualifiedName,
			Kind:          sym.Kind,
			StartLine:     sym.StartLine,
			EndLine:       sym.EndLine,
			Signature:     sym.Signature,
			Docstring:     sym.Docstring,
			Body:          sym.Body,
			Exported:      sym.Exported,
		})
		if err != nil {
			return fmt.Errorf("insert symbol %s in %s: %w", sym.Name, rel, err)
		}
		fileTable[sym.Name] = id
		if sym.QualifiedName != "" {
			fileTable[sym.QualifiedName] = id
		}
	}

	for _, call := range result.Calls {
		callerID, ok := fileTable[call.Caller]
		if !ok {
			continue
		}
		calleeID, ok := fileTable[call.Callee]
		if !ok || calleeID == callerID {
			continue
		}
		if err := ix.store.InsertEdgeIgnore(tx, callerID, calleeID, store.EdgeCalls); err != nil {
			return fmt.Errorf("insert call edge in %s: %w", rel, err)
		}
	}

	for _, imp := range result.Imports {
		targetRel, ok := resolve.Resolve(ix.root, rel, imp.Source)
		if !ok {
			continue
		}
		targetFile, err := ix.store.FileByPathTx(tx, targetRel)
		if err != nil {
			return fmt.Errorf("lookup target %s: %w", targetRel, err)
		}
		if targetFile == nil {
			continue
		}
		name := strings.Join(imp.Names, ",")
		if name == "" {
			name = "*"
		}
		if err := ix.store.InsertFileDepIgnore(tx, fileID, targetFile.ID, store.FileDepImport, name); err != nil {
			return fmt.Errorf("insert file dep %s: %w", rel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	ix.store.InvalidateCache()
	return nil
}

// runPageRank recomputes PageRank over the entire current graph, in its own
// transaction, separate from the index pass that produced it.
func (ix *Indexer) runPageRank() error {
	symbolIDs, err := ix.store.AllSymbolIDs()
	if err != nil {
		return fmt.Errorf("list symbol ids: %w", err)
	}
	edges, err := ix.store.AllEdges()
	if err != nil {
		return fmt.Errorf("list edges: %w", err)
	}

	rankings := pageRank(symbolIDs, edges, ix.settings.RankIterations, ix.settings.RankDamping)

	tx, err := ix.store.DB().Begin()
	if err != nil {
		return fmt.Errorf("begin page rank transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ix.store.WriteRankings(tx, rankings); err != nil {
		return fmt.Errorf("write rankings: %w", err)
	}
	return tx.Commit()
}

func digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:digestLen]
}
