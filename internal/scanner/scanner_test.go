package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/mpsweep/mpsweep/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func relPaths(t *testing.T, root string, files []File) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out
}

func TestScanCollectsKnownExtensions(t *testing.T) {
	root := t.TempDir()
	root, _ = filepath.EvalSymlinks(root)
	writeFile(t, filepath.Join(root, "app.js"), "")
	writeFile(t, filepath.Join(root, "app.json"), "{}")
	writeFile(t, filepath.Join(root, "pages", "index", "index.wxml"), "")
	writeFile(t, filepath.Join(root, "assets", "logo.png"), "")
	writeFile(t, filepath.Join(root, "README.md"), "")
	writeFile(t, filepath.Join(root, "tool.exe"), "")

	files, err := New(config.DefaultConfig()).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := relPaths(t, root, files)
	want := []string{"app.js", "app.json", "assets/logo.png", "pages/index/index.wxml"}
	if len(got) != len(want) {
		t.Fatalf("Scan = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Scan[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanExcludesConfiguredDirs(t *testing.T) {
	root := t.TempDir()
	root, _ = filepath.EvalSymlinks(root)
	writeFile(t, filepath.Join(root, "app.js"), "")
	writeFile(t, filepath.Join(root, "node_modules", "lib", "index.js"), "")
	writeFile(t, filepath.Join(root, "miniprogram_npm", "pkg", "index.js"), "")
	writeFile(t, filepath.Join(root, "dist", "bundle.js"), "")

	files, err := New(config.DefaultConfig()).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := relPaths(t, root, files)
	if len(got) != 1 || got[0] != "app.js" {
		t.Errorf("Scan = %v, want [app.js]", got)
	}
}

func TestScanExcludePatterns(t *testing.T) {
	root := t.TempDir()
	root, _ = filepath.EvalSymlinks(root)
	writeFile(t, filepath.Join(root, "app.js"), "")
	writeFile(t, filepath.Join(root, "app.test.js"), "")
	writeFile(t, filepath.Join(root, "mock", "data.js"), "")

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"*.test.js", "mock/"}

	files, err := New(cfg).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := relPaths(t, root, files)
	if len(got) != 1 || got[0] != "app.js" {
		t.Errorf("Scan = %v, want [app.js]", got)
	}
}

func TestScanGitignore(t *testing.T) {
	root := t.TempDir()
	root, _ = filepath.EvalSymlinks(root)
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, ".gitignore"), "generated/\n")
	writeFile(t, filepath.Join(root, "app.js"), "")
	writeFile(t, filepath.Join(root, "generated", "bundle.js"), "")

	files, err := New(config.DefaultConfig()).Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := relPaths(t, root, files)
	if len(got) != 1 || got[0] != "app.js" {
		t.Errorf("Scan = %v, want [app.js]", got)
	}
}

func TestPaths(t *testing.T) {
	files := []File{{Path: "/a/x.js"}, {Path: "/a/y.js"}}
	got := Paths(files)
	if len(got) != 2 || got[0] != "/a/x.js" || got[1] != "/a/y.js" {
		t.Errorf("Paths = %v", got)
	}
}
