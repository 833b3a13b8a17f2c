// Package source abstracts file-content access for analyzers. The graph walk
// itself is single-threaded; a prefetching source lets callers parallelize
// read I/O without the graph ever seeing concurrent mutation.
package source

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// ContentSource provides file content by absolute path.
type ContentSource interface {
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapSource serves content from memory. Intended for tests and inline
// manifests.
type MapSource struct {
	files map[string][]byte
}

// NewMap creates a source backed by the given path-to-content map.
func NewMap(files map[string][]byte) *MapSource {
	return &MapSource{files: files}
}

// Read implements ContentSource.
func (m *MapSource) Read(path string) ([]byte, error) {
	if content, ok := m.files[path]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("no content for %s", path)
}

// PrefetchSource eagerly loads a known file set with a worker pool, then
// serves reads from memory. Paths outside the prefetched set fall through to
// the filesystem.
type PrefetchSource struct {
	mu       sync.RWMutex
	contents map[string][]byte
}

// Prefetch reads all paths concurrently. Unreadable files are skipped; their
// reads fall through and fail at use time, where the caller logs and drops
// the reference.
func Prefetch(paths []string) *PrefetchSource {
	s := &PrefetchSource{contents: make(map[string][]byte, len(paths))}
	p := pool.New().WithMaxGoroutines(runtime.NumCPU() * 2)
	for _, path := range paths {
		p.Go(func() {
			data, err := os.ReadFile(path)
			if err != nil {
				return
			}
			s.mu.Lock()
			s.contents[path] = data
			s.mu.Unlock()
		})
	}
	p.Wait()
	return s
}

// Read implements ContentSource.
func (s *PrefetchSource) Read(path string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.contents[path]
	s.mu.RUnlock()
	if ok {
		return data, nil
	}
	return os.ReadFile(path)
}
