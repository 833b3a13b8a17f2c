// Package unused partitions a project inventory against the discovered
// dependency graph: anything on disk the walk never reached, and nothing
// protects, is reported.
package unused

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/mpsweep/mpsweep/internal/scanner"
	"github.com/mpsweep/mpsweep/pkg/extract"
	"github.com/mpsweep/mpsweep/pkg/graph"
)

// Options tune the partition.
type Options struct {
	// Essential paths (relative to the root, slash-separated) are never
	// reported even when undiscovered.
	Essential []string
	// IncludeAssets reports unreferenced asset files too. Off by default
	// because assets are commonly referenced through constructs static
	// analysis cannot see.
	IncludeAssets bool
}

// Report is the outcome of one analysis run.
type Report struct {
	Total    int      `json:"total" toon:"total"`
	Reached  int      `json:"reached" toon:"reached"`
	Unused   []string `json:"unused" toon:"unused"`
	Excluded int      `json:"excluded" toon:"excluded"`
}

// Analyze computes the set of inventory files absent from the graph. The
// inventory indexes a bitmap; discovery, essential protection, and the asset
// policy each clear bits, and survivors are reported sorted by relative path.
func Analyze(root string, inventory []scanner.File, g *graph.Graph, opts Options) *Report {
	candidates := roaring.New()
	index := make(map[string]uint32, len(inventory))
	for i, f := range inventory {
		candidates.Add(uint32(i))
		index[f.Path] = uint32(i)
	}

	reached := 0
	for _, path := range g.ModulePaths() {
		if i, ok := index[path]; ok && candidates.Contains(i) {
			candidates.Remove(i)
			reached++
		}
	}

	essential := essentialMatcher(root, opts.Essential)
	excluded := 0
	it := candidates.Iterator()
	var drop []uint32
	for it.HasNext() {
		i := it.Next()
		f := inventory[i]
		if !opts.IncludeAssets && extract.IsAsset(f.Path) {
			drop = append(drop, i)
			excluded++
			continue
		}
		if essential(f.Path) {
			drop = append(drop, i)
			excluded++
		}
	}
	for _, i := range drop {
		candidates.Remove(i)
	}

	unused := make([]string, 0, candidates.GetCardinality())
	it = candidates.Iterator()
	for it.HasNext() {
		rel, err := filepath.Rel(root, inventory[it.Next()].Path)
		if err != nil {
			continue
		}
		unused = append(unused, filepath.ToSlash(rel))
	}
	sort.Strings(unused)

	return &Report{
		Total:    len(inventory),
		Reached:  reached,
		Unused:   unused,
		Excluded: excluded,
	}
}

// essentialMatcher matches absolute paths against the essential list. An
// entry names either a single file or, with a trailing slash, a directory
// subtree.
func essentialMatcher(root string, essential []string) func(string) bool {
	files := make(map[string]struct{}, len(essential))
	var dirs []string
	for _, e := range essential {
		e = strings.TrimPrefix(filepath.ToSlash(e), "/")
		if e == "" {
			continue
		}
		abs := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(e, "/")))
		if strings.HasSuffix(e, "/") {
			dirs = append(dirs, abs+string(filepath.Separator))
			continue
		}
		files[abs] = struct{}{}
	}
	return func(path string) bool {
		if _, ok := files[path]; ok {
			return true
		}
		for _, d := range dirs {
			if strings.HasPrefix(path, d) {
				return true
			}
		}
		return false
	}
}
