// Package alias maps symbolic import prefixes to target directories, merging
// compiler configuration, tool configuration, and caller overrides.
package alias

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one alias: a prefix mapped to ordered candidate base directories.
// Target order is a tie-break: resolution probes them in declared order.
type Entry struct {
	Prefix  string
	Targets []string
}

// Table holds the merged alias set for a project.
type Table struct {
	entries map[string][]string
	keys    []string // sorted longest-first for prefix matching
	logger  *slog.Logger
}

// tsconfig is the subset of a TypeScript compiler configuration the alias
// table consumes.
type tsconfig struct {
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// maxParentHops bounds the upward tsconfig search from the project root.
const maxParentHops = 3

// Load builds the alias table for a project root. Merge order, lowest to
// highest priority: tsconfig paths, tool-config aliases, caller overrides.
// Later sources overwrite whole keys. All target directories are absolute.
func Load(root string, toolAliases, overrides map[string][]string, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Table{entries: make(map[string][]string), logger: logger}

	t.mergeTsconfig(root)
	for prefix, targets := range toolAliases {
		t.set(root, prefix, targets)
	}
	for prefix, targets := range overrides {
		t.set(root, prefix, targets)
	}

	t.keys = make([]string, 0, len(t.entries))
	for k := range t.entries {
		t.keys = append(t.keys, k)
	}
	// Longest prefix first so "@components" beats "@".
	sort.Slice(t.keys, func(i, j int) bool {
		if len(t.keys[i]) != len(t.keys[j]) {
			return len(t.keys[i]) > len(t.keys[j])
		}
		return t.keys[i] < t.keys[j]
	})
	return t
}

// mergeTsconfig loads compilerOptions.paths from the nearest tsconfig.json,
// searching the root and up to three parent directories. Wildcard suffixes
// are stripped from both keys and targets; ordered target lists are kept.
func (t *Table) mergeTsconfig(root string) {
	dir := root
	for hop := 0; hop <= maxParentHops; hop++ {
		path := filepath.Join(dir, "tsconfig.json")
		if data, err := os.ReadFile(path); err == nil {
			var cfg tsconfig
			if err := json.Unmarshal(data, &cfg); err != nil {
				t.logger.Warn("malformed tsconfig, skipping aliases", "path", path, "error", err)
				return
			}
			base := cfg.CompilerOptions.BaseURL
			if base == "" {
				base = "."
			}
			baseDir := filepath.Join(dir, base)
			for rawPrefix, rawTargets := range cfg.CompilerOptions.Paths {
				prefix := stripWildcard(rawPrefix)
				if prefix == "" {
					continue
				}
				targets := make([]string, 0, len(rawTargets))
				for _, rt := range rawTargets {
					targets = append(targets, filepath.Join(baseDir, stripWildcard(rt)))
				}
				t.entries[prefix] = targets
			}
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (t *Table) set(root, prefix string, targets []string) {
	prefix = stripWildcard(prefix)
	if prefix == "" || len(targets) == 0 {
		return
	}
	abs := make([]string, 0, len(targets))
	for _, target := range targets {
		target = stripWildcard(target)
		if !filepath.IsAbs(target) {
			target = filepath.Join(root, target)
		}
		abs = append(abs, target)
	}
	t.entries[prefix] = abs
}

func stripWildcard(s string) string {
	s = strings.TrimSuffix(s, "/*")
	return strings.TrimSuffix(s, "*")
}

// Len returns the number of aliases.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns all aliases, longest prefix first.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, Entry{Prefix: k, Targets: t.entries[k]})
	}
	return out
}

// Match returns the target directories and remainder path for the first alias
// whose prefix matches ref, either exactly or at a path-segment boundary.
func (t *Table) Match(ref string) (targets []string, remainder string, ok bool) {
	for _, key := range t.keys {
		if ref == key {
			return t.entries[key], "", true
		}
		if strings.HasPrefix(ref, key+"/") {
			return t.entries[key], ref[len(key)+1:], true
		}
	}
	return nil, "", false
}
