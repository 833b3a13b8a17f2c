package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMapSource(t *testing.T) {
	src := NewMap(map[string][]byte{"/p/app.js": []byte("content")})

	data, err := src.Read("/p/app.js")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("Read = %q", data)
	}

	if _, err := src.Read("/p/missing.js"); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestFilesystemSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := NewFilesystem().Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Read = %q", data)
	}
}

func TestPrefetchServesAndFallsThrough(t *testing.T) {
	dir := t.TempDir()
	prefetched := filepath.Join(dir, "a.js")
	late := filepath.Join(dir, "b.js")
	if err := os.WriteFile(prefetched, []byte("aa"), 0644); err != nil {
		t.Fatal(err)
	}

	src := Prefetch([]string{prefetched, filepath.Join(dir, "missing.js")})

	data, err := src.Read(prefetched)
	if err != nil || string(data) != "aa" {
		t.Errorf("prefetched read = %q, %v", data, err)
	}

	// Files created after the prefetch are still readable.
	if err := os.WriteFile(late, []byte("bb"), 0644); err != nil {
		t.Fatal(err)
	}
	data, err = src.Read(late)
	if err != nil || string(data) != "bb" {
		t.Errorf("fall-through read = %q, %v", data, err)
	}

	if _, err := src.Read(filepath.Join(dir, "missing.js")); err == nil {
		t.Error("expected error for file that never existed")
	}
}
