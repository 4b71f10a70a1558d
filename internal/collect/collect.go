// Package collect walks a root directory and produces the set of
// root-relative file paths the rest of the pipeline indexes, applying the
// directory-pruning, extension, size, and gitignore rules that keep the
// engine from wandering into build artifacts and vendor trees.
package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// MaxFileSize is the largest file, in bytes, the collector will admit.
const MaxFileSize = 524288

// blockedDirs is the fixed set of directory basenames pruned regardless of
// gitignore content.
var blockedDirs = map[string]struct{}{
	"node_modules": {}, ".git": {}, ".hg": {}, ".svn": {}, "dist": {}, "build": {},
	"out": {}, ".next": {}, ".nuxt": {}, "__pycache__": {}, ".pytest_cache": {},
	"target": {}, "vendor": {}, ".codex": {}, ".claude": {}, "coverage": {},
	".vscode": {}, ".idea": {}, "venv": {}, ".venv": {}, ".env": {}, ".tox": {},
	"bower_components": {}, ".cache": {}, ".parcel-cache": {}, "tmp": {}, "temp": {},
	".turbo": {}, ".vercel": {}, ".netlify": {},
}

// supportedExtensions is the fixed admission set.
var supportedExtensions = map[string]struct{}{
	".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {}, ".py": {}, ".rs": {},
	".go": {}, ".sh": {}, ".bash": {}, ".c": {}, ".h": {}, ".cpp": {}, ".cc": {},
	".hpp": {}, ".json": {}, ".css": {}, ".html": {}, ".htm": {},
}

// Options configures a Walk beyond the fixed rules: ExtraGlobs are
// user-supplied ignore patterns (see the config package) layered on top of
// the fixed directory block-set and gitignore handling.
type Options struct {
	ExtraGlobs []glob.Glob
}

// Walk collects every admissible file under root, returning root-relative,
// forward-slash-separated paths. Order is deterministic (lexical per
// directory) but otherwise unspecified, matching the collector's contract.
func Walk(root string, opts Options) ([]string, error) {
	ignoreNames := readGitignoreNames(root)

	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Unreadable entries are skipped silently, not fatal.
			return nil
		}
		if path == root {
			return nil
		}

		name := info.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if shouldPruneDir(name, ignoreNames) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesExtraGlob(rel, opts.ExtraGlobs) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := supportedExtensions[ext]; !ok {
			return nil
		}

		if info.Size() > MaxFileSize {
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			return nil // unreadable files are skipped silently
		}
		f.Close()

		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return paths, nil
}

// Admissible reports whether a single root-relative path would survive a
// full Walk: none of its directory segments are pruned, its extension is
// supported, it doesn't match an extra glob, and it isn't oversized. The
// watcher uses this to decide whether a changed path is worth a reindex
// without re-walking the whole tree.
func Admissible(root, rel string, opts Options) bool {
	rel = filepath.ToSlash(rel)
	ignoreNames := readGitignoreNames(root)

	segments := strings.Split(rel, "/")
	for _, seg := range segments[:len(segments)-1] {
		if shouldPruneDir(seg, ignoreNames) {
			return false
		}
	}

	if matchesExtraGlob(rel, opts.ExtraGlobs) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(segments[len(segments)-1]))
	if _, ok := supportedExtensions[ext]; !ok {
		return false
	}

	info, err := os.Stat(filepath.Join(root, rel))
	if err != nil {
		return os.IsNotExist(err) // a removed file is still admissible, for the unlink path
	}
	if info.IsDir() || info.Size() > MaxFileSize {
		return false
	}
	return true
}

// DirAdmissible reports whether a root-relative directory path would be
// descended into by a full Walk: none of its segments are pruned.
func DirAdmissible(root, rel string) bool {
	ignoreNames := readGitignoreNames(root)
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if shouldPruneDir(seg, ignoreNames) {
			return false
		}
	}
	return true
}

func shouldPruneDir(name string, ignoreNames map[string]struct{}) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := blockedDirs[name]; ok {
		return true
	}
	if _, ok := ignoreNames[name]; ok {
		return true
	}
	return false
}

func matchesExtraGlob(rel string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// readGitignoreNames parses the root .gitignore with a deliberately narrow
// reading: trimmed plain-name lines only. Lines containing "/" or "*" are
// ignored since the collector does not implement glob semantics.
func readGitignoreNames(root string) map[string]struct{} {
	names := make(map[string]struct{})

	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return names
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.Trim(line, "/")
		if strings.Contains(line, "/") || strings.Contains(line, "*") {
			continue
		}
		names[line] = struct{}{}
	}

	return names
}
