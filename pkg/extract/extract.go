// Package extract scans file content for raw dependency references. Scripts go
// through a tree-sitter parse; templates and styles are scanned textually. The
// extractor never fails: malformed input yields an empty reference list and a
// log entry.
package extract

import (
	"encoding/json"
	"log/slog"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/mpsweep/mpsweep/internal/cache"
)

// Extractor produces RawReferences from file content, dispatching on the
// file's extension class.
type Extractor struct {
	parser *sitter.Parser
	logger *slog.Logger
	cache  *cache.Cache
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for recoverable extraction failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithCache enables content-hash keyed caching of extraction results.
func WithCache(c *cache.Cache) Option {
	return func(e *Extractor) {
		e.cache = c
	}
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		parser: sitter.NewParser(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases parser resources.
func (e *Extractor) Close() {
	e.parser.Close()
}

// Extract returns the ordered raw references found in content. Config files
// and assets yield nothing: manifest fields need structural, not textual,
// interpretation and belong to the builder.
func (e *Extractor) Extract(path string, content []byte) []RawReference {
	class := DetectClass(path)
	switch class {
	case ClassScript, ClassTemplate, ClassStyle:
	default:
		return nil
	}

	var key string
	if e.cache != nil {
		key = "refs:" + string(class) + ":" + cache.HashBytes(content)
		if data, ok := e.cache.Get(key); ok {
			var refs []RawReference
			if err := json.Unmarshal(data, &refs); err == nil {
				return refs
			}
		}
	}

	var refs []RawReference
	switch class {
	case ClassScript:
		refs = e.extractScript(path, content)
	case ClassTemplate:
		refs = extractTemplate(content)
	case ClassStyle:
		refs = extractStyle(content)
	}

	if e.cache != nil {
		if data, err := json.Marshal(refs); err == nil {
			if err := e.cache.Set(key, data); err != nil {
				e.logger.Debug("cache write failed", "path", path, "error", err)
			}
		}
	}
	return refs
}
