// Package resolve turns raw textual references into concrete on-disk paths,
// emulating compiler-style module resolution: root-relative and alias bases,
// implicit extensions, and index-file fallback.
package resolve

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mpsweep/mpsweep/pkg/alias"
	"github.com/mpsweep/mpsweep/pkg/extract"
)

// Resolver resolves references against a project root and alias table.
type Resolver struct {
	root    string
	aliases *alias.Table
	known   map[string]bool
}

// New creates a resolver. root must be absolute.
func New(root string, aliases *alias.Table) *Resolver {
	known := make(map[string]bool)
	for _, ext := range extract.KnownExtensions() {
		known[ext] = true
	}
	return &Resolver{root: root, aliases: aliases, known: known}
}

// Root returns the configured project root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a raw reference originating in sourceFile to an existing
// absolute file path. exts is the ordered candidate-extension list to probe
// when the reference carries no recognized extension. A miss returns ok=false;
// unresolved references are dropped by callers, never errors.
func (r *Resolver) Resolve(ref string, sourceFile string, exts []string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false
	}

	var bases []string
	switch {
	case strings.HasPrefix(ref, "/"):
		bases = []string{filepath.Join(r.root, ref[1:])}
	case strings.HasPrefix(ref, "./"), strings.HasPrefix(ref, "../"):
		bases = []string{filepath.Join(filepath.Dir(sourceFile), ref)}
	default:
		if targets, remainder, ok := r.aliases.Match(ref); ok {
			for _, target := range targets {
				bases = append(bases, filepath.Join(target, remainder))
			}
		} else {
			// Bare specifier without an alias: treat like a sibling path.
			// Node-style package lookups are not project files.
			bases = []string{filepath.Join(filepath.Dir(sourceFile), ref)}
		}
	}

	for _, base := range bases {
		if path, ok := r.probe(base, exts); ok {
			return path, true
		}
	}
	return "", false
}

// probe applies the extension and index fallbacks to one composed path.
func (r *Resolver) probe(composed string, exts []string) (string, bool) {
	if r.known[strings.ToLower(filepath.Ext(composed))] && isFile(composed) {
		return composed, true
	}
	for _, ext := range exts {
		if candidate := composed + ext; isFile(candidate) {
			return candidate, true
		}
	}
	if isDir(composed) {
		for _, ext := range exts {
			if candidate := filepath.Join(composed, "index"+ext); isFile(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
