// Package structure builds the module dependency graph for a mini program
// project, walking outward from the entry manifest. The walk is structural
// first (pages, subpackages, registered components, tab bar, workers), then
// textual (imports, template includes, style imports, resources) until no
// undiscovered text-bearing module remains.
package structure

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mpsweep/mpsweep/internal/cache"
	"github.com/mpsweep/mpsweep/pkg/alias"
	"github.com/mpsweep/mpsweep/pkg/extract"
	"github.com/mpsweep/mpsweep/pkg/graph"
	"github.com/mpsweep/mpsweep/pkg/manifest"
	"github.com/mpsweep/mpsweep/pkg/resolve"
	"github.com/mpsweep/mpsweep/pkg/source"
)

// appRootID is the synthetic node anchoring the walk.
const appRootID = "app"

// globalFiles are conventionally present at the project root and attached to
// the app root unconditionally when they exist on disk.
var globalFiles = []struct {
	name string
	edge graph.EdgeType
}{
	{"app.js", graph.EdgeStructure},
	{"app.ts", graph.EdgeStructure},
	{"app.wxss", graph.EdgeStyle},
	{"project.config.json", graph.EdgeConfig},
	{"sitemap.json", graph.EdgeConfig},
}

// Builder is a per-run analysis session. All traversal state (visited sets,
// worklist, graph) lives here, so separate runs never share anything.
type Builder struct {
	root         string
	entryPath    string
	entryContent []byte
	aliases      *alias.Table
	overrides    map[string][]string
	src          source.ContentSource
	logger       *slog.Logger
	progress     func(path string)
	refCache     *cache.Cache

	extractor *extract.Extractor
	resolver  *resolve.Resolver

	graph   *graph.Graph
	visited map[string]struct{} // structural identity: page/component/package keys
	parsed  map[string]struct{} // absolute paths already text-parsed
	pending []string            // modules awaiting the text sweep
}

// Option configures a Builder.
type Option func(*Builder)

// WithEntryPath sets the entry-manifest path, relative to the root or
// absolute.
func WithEntryPath(path string) Option {
	return func(b *Builder) {
		b.entryPath = path
	}
}

// WithEntryContent supplies the entry manifest inline, used when no file
// backs it.
func WithEntryContent(content []byte) Option {
	return func(b *Builder) {
		b.entryContent = content
	}
}

// WithAliasOverrides sets caller-supplied aliases, the highest-priority
// source in the alias merge.
func WithAliasOverrides(overrides map[string][]string) Option {
	return func(b *Builder) {
		b.overrides = overrides
	}
}

// WithLogger sets the logger for recoverable conditions.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithSource sets the content source. Defaults to the filesystem.
func WithSource(src source.ContentSource) Option {
	return func(b *Builder) {
		b.src = src
	}
}

// WithProgress sets a per-file progress callback for the text sweep.
func WithProgress(fn func(path string)) Option {
	return func(b *Builder) {
		b.progress = fn
	}
}

// WithCache enables the content-hash extraction cache.
func WithCache(c *cache.Cache) Option {
	return func(b *Builder) {
		b.refCache = c
	}
}

// New creates a builder for the project rooted at root (absolute).
func New(root string, opts ...Option) *Builder {
	b := &Builder{
		root:      root,
		entryPath: "app.json",
		logger:    slog.New(slog.DiscardHandler),
		src:       source.NewFilesystem(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Close releases parser resources. Safe to call after Build.
func (b *Builder) Close() {
	if b.extractor != nil {
		b.extractor.Close()
	}
}

// Build runs the full walk and returns the populated graph. The only fatal
// condition is a missing entry manifest with no inline content; everything
// else degrades graph precision and is logged.
func (b *Builder) Build(ctx context.Context) (*graph.Graph, error) {
	b.graph = graph.New(b.logger)
	b.visited = make(map[string]struct{})
	b.parsed = make(map[string]struct{})
	b.pending = b.pending[:0]

	exOpts := []extract.Option{extract.WithLogger(b.logger)}
	if b.refCache != nil {
		exOpts = append(exOpts, extract.WithCache(b.refCache))
	}
	b.extractor = extract.New(exOpts...)

	b.aliases = alias.Load(b.root, nil, b.overrides, b.logger)
	b.resolver = resolve.New(b.root, b.aliases)

	m, err := b.loadEntry()
	if err != nil {
		return nil, err
	}

	b.graph.AddNode(graph.Node{ID: appRootID, Type: graph.NodeAppRoot, Label: "app"})
	if b.entryAbs() != "" && isFile(b.entryAbs()) {
		b.addModule(b.entryAbs())
		b.graph.AddEdge(graph.Edge{From: appRootID, To: b.entryAbs(), Type: graph.EdgeConfig})
	}

	b.walkManifest(m)
	b.attachGlobals()

	if err := b.sweep(ctx); err != nil {
		return nil, err
	}
	return b.graph, nil
}

// loadEntry reads and normalizes the entry manifest. A manifest that exists
// but fails to parse is recoverable: the walk continues with an empty shape.
func (b *Builder) loadEntry() (*manifest.Manifest, error) {
	if abs := b.entryAbs(); abs != "" && isFile(abs) {
		content, err := b.src.Read(abs)
		if err == nil {
			return b.parseEntry(abs, content), nil
		}
		b.logger.Warn("entry manifest unreadable", "path", abs, "error", err)
	}
	if b.entryContent != nil {
		return b.parseEntry("<inline>", b.entryContent), nil
	}
	return nil, fmt.Errorf("entry manifest not found at %s and no inline content given", b.entryAbs())
}

func (b *Builder) parseEntry(origin string, content []byte) *manifest.Manifest {
	if err := manifest.Validate(content); err != nil {
		b.logger.Warn("entry manifest fails schema validation", "origin", origin, "error", err)
	}
	m, err := manifest.Parse(content)
	if err != nil {
		b.logger.Warn("malformed entry manifest", "origin", origin, "error", err)
		return &manifest.Manifest{}
	}
	return m
}

func (b *Builder) entryAbs() string {
	if b.entryPath == "" {
		return ""
	}
	if filepath.IsAbs(b.entryPath) {
		return b.entryPath
	}
	return filepath.Join(b.root, b.entryPath)
}

// walkManifest performs the structural walk of the normalized manifest.
func (b *Builder) walkManifest(m *manifest.Manifest) {
	for _, page := range m.Pages {
		b.addPage(appRootID, page)
	}

	for _, sp := range m.SubPackages {
		if sp.Root == "" {
			continue
		}
		pkgID := "package:" + toSlash(sp.Root)
		if _, seen := b.visited[pkgID]; !seen {
			b.visited[pkgID] = struct{}{}
			b.graph.AddNode(graph.Node{ID: pkgID, Type: graph.NodePackage, Label: toSlash(sp.Root)})
		}
		b.graph.AddEdge(graph.Edge{From: appRootID, To: pkgID, Type: graph.EdgeStructure})
		for _, page := range sp.Pages {
			b.addPage(pkgID, joinSlash(sp.Root, page))
		}
	}

	for _, ref := range sortedValues(m.UsingComponents) {
		b.addComponent(appRootID, ref, b.root)
	}

	if m.TabBar != nil {
		for _, item := range m.TabBar.List {
			if item.PagePath != "" {
				pageID := b.addPage(appRootID, item.PagePath)
				b.graph.AddEdge(graph.Edge{From: appRootID, To: pageID, Type: graph.EdgeResource})
			}
			for _, icon := range []string{item.IconPath, item.SelectedIconPath} {
				if icon == "" {
					continue
				}
				abs := filepath.Join(b.root, strings.TrimPrefix(toSlash(icon), "/"))
				if !isFile(abs) {
					b.logger.Debug("tab bar icon missing", "path", icon)
					continue
				}
				b.addModule(abs)
				b.graph.AddEdge(graph.Edge{From: appRootID, To: abs, Type: graph.EdgeResource})
			}
		}
	}

	if m.ThemeLocation != "" {
		abs := filepath.Join(b.root, strings.TrimPrefix(toSlash(m.ThemeLocation), "/"))
		if isFile(abs) {
			b.addModule(abs)
			b.graph.AddEdge(graph.Edge{From: appRootID, To: abs, Type: graph.EdgeConfig})
		}
	}

	if m.Workers != "" {
		if abs, ok := b.resolver.Resolve("/"+strings.TrimPrefix(toSlash(m.Workers), "/"), b.root, extract.ScriptExtensions); ok {
			b.addModule(abs)
			b.graph.AddEdge(graph.Edge{From: appRootID, To: abs, Type: graph.EdgeWorkerEntry})
		} else {
			b.logger.Debug("worker entry unresolved", "path", m.Workers)
		}
	}
}

// addPage materializes a page and its sibling cluster. Re-derivation is
// guarded by the structural visited set; repeat references only add the
// owner edge.
func (b *Builder) addPage(ownerID, page string) string {
	rel := strings.TrimPrefix(toSlash(page), "/")
	id := "page:" + rel
	if _, seen := b.visited[id]; !seen {
		b.visited[id] = struct{}{}
		b.graph.AddNode(graph.Node{ID: id, Type: graph.NodePage, Label: rel})
		b.attachCluster(id, filepath.Join(b.root, filepath.FromSlash(rel)))
	}
	b.graph.AddEdge(graph.Edge{From: ownerID, To: id, Type: graph.EdgeStructure})
	return id
}

// addComponent materializes a registered component and recursively expands
// its own registrations. Cycles between components terminate on the visited
// set, leaving structure edges in both directions.
func (b *Builder) addComponent(ownerID, ref, sourceDir string) {
	if strings.HasPrefix(ref, "plugin://") {
		return
	}
	base, ok := b.componentBase(ref, sourceDir)
	if !ok {
		b.logger.Debug("component registration unresolved", "ref", ref)
		return
	}
	rel := toSlash(mustRel(b.root, base))
	id := "component:" + rel
	if _, seen := b.visited[id]; !seen {
		b.visited[id] = struct{}{}
		b.graph.AddNode(graph.Node{ID: id, Type: graph.NodeComponent, Label: rel})
		b.attachCluster(id, base)
	}
	b.graph.AddEdge(graph.Edge{From: ownerID, To: id, Type: graph.EdgeStructure})
}

// componentBase resolves a component registration to the absolute base path
// (no extension) of its file cluster.
func (b *Builder) componentBase(ref, sourceDir string) (string, bool) {
	ref = toSlash(strings.TrimSpace(ref))
	if ref == "" {
		return "", false
	}
	var candidates []string
	switch {
	case strings.HasPrefix(ref, "/"):
		candidates = []string{filepath.Join(b.root, ref[1:])}
	case strings.HasPrefix(ref, "./"), strings.HasPrefix(ref, "../"):
		candidates = []string{filepath.Join(sourceDir, ref)}
	default:
		if targets, remainder, ok := b.aliases.Match(ref); ok {
			for _, t := range targets {
				candidates = append(candidates, filepath.Join(t, remainder))
			}
		}
		// Bare registrations also work as sibling or root-relative paths.
		candidates = append(candidates, filepath.Join(sourceDir, ref), filepath.Join(b.root, ref))
	}
	for _, c := range candidates {
		if clusterExists(c) {
			return c, true
		}
	}
	return "", false
}

// attachCluster adds every sibling file sharing the base name across the
// standard extension set. A JSON sibling is authoritative for component
// composition and is walked for its own registrations.
func (b *Builder) attachCluster(ownerID, base string) {
	for _, ext := range extract.ClusterExtensions {
		path := base + ext
		if !isFile(path) {
			continue
		}
		b.addModule(path)
		edgeType := graph.EdgeStructure
		if ext == ".json" {
			edgeType = graph.EdgeConfig
		}
		b.graph.AddEdge(graph.Edge{From: ownerID, To: path, Type: edgeType})
		if ext == ".json" {
			b.walkClusterManifest(ownerID, path)
		}
	}
}

func (b *Builder) walkClusterManifest(ownerID, path string) {
	content, err := b.src.Read(path)
	if err != nil {
		b.logger.Warn("cluster manifest unreadable", "path", path, "error", err)
		return
	}
	comps, err := manifest.ParseComponents(content)
	if err != nil {
		b.logger.Warn("malformed cluster manifest", "path", path, "error", err)
		return
	}
	for _, ref := range sortedValues(comps) {
		b.addComponent(ownerID, ref, filepath.Dir(path))
	}
}

func (b *Builder) attachGlobals() {
	for _, g := range globalFiles {
		path := filepath.Join(b.root, g.name)
		if !isFile(path) {
			continue
		}
		b.addModule(path)
		b.graph.AddEdge(graph.Edge{From: appRootID, To: path, Type: g.edge})
	}
}

// addModule ensures a module node exists for an absolute path and queues
// text-bearing files for the sweep. Exactly one module node per file.
func (b *Builder) addModule(abs string) {
	if !b.graph.HasNode(abs) {
		n := graph.Node{
			ID:    abs,
			Type:  graph.NodeModule,
			Label: toSlash(mustRel(b.root, abs)),
			Path:  abs,
			Ext:   strings.ToLower(filepath.Ext(abs)),
		}
		if info, err := os.Stat(abs); err == nil {
			n.Size = info.Size()
		}
		b.graph.AddNode(n)
	}
	switch extract.DetectClass(abs) {
	case extract.ClassScript, extract.ClassTemplate, extract.ClassStyle:
		if _, done := b.parsed[abs]; !done {
			b.pending = append(b.pending, abs)
		}
	}
}

// sweep text-parses every pending module, resolving references and recursing
// into freshly discovered targets until the worklist drains. The parsed set
// bounds the loop: each file is expanded at most once.
func (b *Builder) sweep(ctx context.Context) error {
	for len(b.pending) > 0 {
		path := b.pending[0]
		b.pending = b.pending[1:]
		if _, done := b.parsed[path]; done {
			continue
		}
		b.parsed[path] = struct{}{}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if b.progress != nil {
			b.progress(path)
		}

		content, err := b.src.Read(path)
		if err != nil {
			b.logger.Warn("module unreadable, skipping", "path", path, "error", err)
			continue
		}

		sourceClass := extract.DetectClass(path)
		for _, ref := range b.extractor.Extract(path, content) {
			if ref.Kind == extract.KindNavigation {
				b.addNavigationTarget(path, ref.Value)
				continue
			}
			exts := candidateExtensions(ref.Kind, sourceClass)
			target, ok := b.resolver.Resolve(ref.Value, path, exts)
			if !ok {
				b.logger.Debug("reference unresolved", "source", path, "ref", ref.Value, "kind", ref.Kind)
				continue
			}
			b.addModule(target)
			b.graph.AddEdge(graph.Edge{From: path, To: target, Type: edgeTypeFor(target, ref.Kind)})
		}
	}
	return nil
}

// addNavigationTarget materializes the page or component cluster behind an
// implicit navigation path, when one exists on disk.
func (b *Builder) addNavigationTarget(sourcePath, value string) {
	rel := strings.TrimPrefix(toSlash(value), "/")
	base := filepath.Join(b.root, filepath.FromSlash(rel))
	if !clusterExists(base) {
		b.logger.Debug("navigation path unresolved", "source", sourcePath, "ref", value)
		return
	}
	if strings.HasPrefix(rel, "components/") {
		b.addComponent(sourcePath, "/"+rel, b.root)
		return
	}
	b.addPage(sourcePath, rel)
}

// candidateExtensions returns the probe order for a reference, adjusted for
// the referencing file's class: a template's module import is a WXS file, not
// a page script.
func candidateExtensions(kind extract.Kind, sourceClass extract.Class) []string {
	if kind == extract.KindImport && sourceClass == extract.ClassTemplate {
		return []string{".wxs"}
	}
	return kind.CandidateExtensions()
}

// edgeTypeFor infers the edge type from the resolved target's class, falling
// back to the reference kind.
func edgeTypeFor(target string, kind extract.Kind) graph.EdgeType {
	switch extract.DetectClass(target) {
	case extract.ClassTemplate:
		return graph.EdgeTemplate
	case extract.ClassStyle:
		return graph.EdgeStyle
	case extract.ClassConfig:
		return graph.EdgeConfig
	case extract.ClassAsset:
		return graph.EdgeResource
	case extract.ClassScript:
		return graph.EdgeImport
	}
	switch kind {
	case extract.KindStyle:
		return graph.EdgeStyle
	case extract.KindTemplate:
		return graph.EdgeTemplate
	case extract.KindResource:
		return graph.EdgeResource
	default:
		return graph.EdgeImport
	}
}

func clusterExists(base string) bool {
	for _, ext := range extract.ClusterExtensions {
		if isFile(base + ext) {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func joinSlash(parts ...string) string {
	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(toSlash(p), "/")
		if p != "" {
			joined = append(joined, p)
		}
	}
	return strings.Join(joined, "/")
}

func mustRel(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

// sortedValues returns map values ordered by key, keeping the walk
// deterministic across runs.
func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
