// Package resolve turns a raw import specifier found in one file into the
// relative path of another in-tree file, or reports that it doesn't resolve
// in-tree (a package import, or a specifier naming nothing on disk).
package resolve

import (
	"os"
	"path/filepath"
	"strings"
)

var candidateExts = []string{".ts", ".tsx", ".js", ".jsx", ".py", ".rs", ".go", ""}

var indexCandidates = []string{
	"/index.ts", "/index.tsx", "/index.js", "/index.jsx",
}

// Resolve maps specifier, written in the file at fromRel (relative to root),
// to the relative path of the file it targets. It returns ok=false when the
// specifier isn't a relative/absolute in-tree path, or when none of the
// probed candidates exist on disk.
func Resolve(root, fromRel, specifier string) (rel string, ok bool) {
	if specifier == "" {
		return "", false
	}
	if specifier[0] != '.' && specifier[0] != '/' {
		return "", false
	}

	fromDir := filepath.Dir(fromRel)
	joined := filepath.Join(fromDir, specifier)
	joined = filepath.ToSlash(filepath.Clean(joined))
	joined = strings.TrimPrefix(joined, "/")

	abs := filepath.Join(root, filepath.FromSlash(joined))

	for _, ext := range candidateExts {
		candidate := abs + ext
		if fileExists(candidate) {
			return joined + ext, true
		}
	}

	for _, suffix := range indexCandidates {
		candidate := abs + filepath.FromSlash(suffix)
		if fileExists(candidate) {
			return joined + suffix, true
		}
	}

	return "", false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
