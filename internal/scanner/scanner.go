// Package scanner assembles the file inventory: every candidate file under
// the project root with a recognized extension, minus configured and
// gitignored exclusions. The inventory is the universe the reachability
// analyzer partitions.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/mpsweep/mpsweep/pkg/config"
	"github.com/mpsweep/mpsweep/pkg/extract"
)

// File is one inventory entry.
type File struct {
	Path string // absolute
	Ext  string // lowercase, with dot
	Size int64
}

// Scanner walks a project tree collecting candidate files.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
}

// New creates a scanner.
func New(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot walks up from start looking for a .git directory.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns combines config exclude patterns with .gitignore files
// found across the repository, both parsed as gitignore syntax.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern

	for _, p := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	for _, d := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(d+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			bfs := osfs.New(gitRoot)
			if gitPatterns, err := gitignore.ReadPatterns(bfs, nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}
	parts := strings.Split(relPath, string(filepath.Separator))
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// Scan recursively collects candidate files under root. Symlinks escaping the
// root are skipped.
func (s *Scanner) Scan(root string) ([]File, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	files := make([]File, 0, 256)
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		relPath, _ := filepath.Rel(absRoot, path)

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !within(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.isExcluded(relPath, false) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if extract.DetectClass(path) == extract.ClassUnknown {
			return nil
		}
		var size int64
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		files = append(files, File{Path: path, Ext: ext, Size: size})
		return nil
	})

	return files, walkErr
}

// within reports whether path is contained in root after normalization.
func within(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// Paths returns just the absolute paths of an inventory.
func Paths(files []File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
