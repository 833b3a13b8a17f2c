package structure

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mpsweep/mpsweep/pkg/graph"
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

func build(t *testing.T, root string, opts ...Option) *graph.Graph {
	t.Helper()
	b := New(root, opts...)
	defer b.Close()
	g, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func hasEdge(g *graph.Graph, from, to string, typ graph.EdgeType) bool {
	for _, e := range g.OutEdges(from) {
		if e.To == to && e.Type == typ {
			return true
		}
	}
	return false
}

func TestBuildMinimalProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "app.js"), `App({})`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"), `Page({})`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.wxml"), `<view>hi</view>`)
	writeFile(t, filepath.Join(root, "utils", "orphan.js"), `module.exports = {}`)

	g := build(t, root)

	if !g.HasNode("app") {
		t.Fatal("app root node missing")
	}
	if !g.HasNode("page:pages/index/index") {
		t.Fatal("page node missing")
	}
	if !hasEdge(g, "app", "page:pages/index/index", graph.EdgeStructure) {
		t.Error("app -> page structure edge missing")
	}

	pageJS := filepath.Join(root, "pages", "index", "index.js")
	pageWXML := filepath.Join(root, "pages", "index", "index.wxml")
	if !hasEdge(g, "page:pages/index/index", pageJS, graph.EdgeStructure) {
		t.Error("page script cluster edge missing")
	}
	if !hasEdge(g, "page:pages/index/index", pageWXML, graph.EdgeStructure) {
		t.Error("page template cluster edge missing")
	}
	if !hasEdge(g, "app", filepath.Join(root, "app.js"), graph.EdgeStructure) {
		t.Error("global app.js edge missing")
	}
	if !hasEdge(g, "app", filepath.Join(root, "app.json"), graph.EdgeConfig) {
		t.Error("entry manifest config edge missing")
	}

	if g.HasNode(filepath.Join(root, "utils", "orphan.js")) {
		t.Error("orphan module should not be discovered")
	}
}

func TestBuildFollowsImportsTransitively(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"),
		`import { fmt } from '../../utils/format';`)
	writeFile(t, filepath.Join(root, "utils", "format.js"),
		`const pad = require('./pad'); module.exports = { fmt: pad };`)
	writeFile(t, filepath.Join(root, "utils", "pad.js"), `module.exports = s => s;`)

	g := build(t, root)

	formatJS := filepath.Join(root, "utils", "format.js")
	padJS := filepath.Join(root, "utils", "pad.js")
	indexJS := filepath.Join(root, "pages", "index", "index.js")

	if !hasEdge(g, indexJS, formatJS, graph.EdgeImport) {
		t.Error("index -> format import edge missing")
	}
	if !hasEdge(g, formatJS, padJS, graph.EdgeImport) {
		t.Error("format -> pad transitive import edge missing")
	}
}

func TestBuildComponentCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"),
		`{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.json"),
		`{"usingComponents": {"comp-a": "/components/a/index"}}`)
	writeFile(t, filepath.Join(root, "components", "a", "index.json"),
		`{"usingComponents": {"comp-b": "/components/b/index"}}`)
	writeFile(t, filepath.Join(root, "components", "a", "index.js"), `Component({})`)
	writeFile(t, filepath.Join(root, "components", "b", "index.json"),
		`{"usingComponents": {"comp-a": "/components/a/index"}}`)
	writeFile(t, filepath.Join(root, "components", "b", "index.js"), `Component({})`)

	g := build(t, root)

	compA := "component:components/a/index"
	compB := "component:components/b/index"
	if !g.HasNode(compA) || !g.HasNode(compB) {
		t.Fatalf("component nodes missing: a=%v b=%v", g.HasNode(compA), g.HasNode(compB))
	}
	if !hasEdge(g, compA, compB, graph.EdgeStructure) {
		t.Error("a -> b structure edge missing")
	}
	if !hasEdge(g, compB, compA, graph.EdgeStructure) {
		t.Error("b -> a structure edge missing (cycle must close)")
	}
}

func TestBuildSubpackagesAndTabBar(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{
		"pages": ["pages/index/index"],
		"subPackages": [{"root": "packageA", "pages": ["pages/cat"]}],
		"tabBar": {"list": [
			{"pagePath": "pages/index/index", "iconPath": "assets/home.png"}
		]}
	}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"), `Page({})`)
	writeFile(t, filepath.Join(root, "packageA", "pages", "cat.js"), `Page({})`)
	writeFile(t, filepath.Join(root, "assets", "home.png"), "png")

	g := build(t, root)

	if !g.HasNode("package:packageA") {
		t.Fatal("subpackage node missing")
	}
	if !hasEdge(g, "app", "package:packageA", graph.EdgeStructure) {
		t.Error("app -> package edge missing")
	}
	if !hasEdge(g, "package:packageA", "page:packageA/pages/cat", graph.EdgeStructure) {
		t.Error("package -> page edge missing")
	}

	icon := filepath.Join(root, "assets", "home.png")
	if !hasEdge(g, "app", icon, graph.EdgeResource) {
		t.Error("tab bar icon resource edge missing")
	}
	if !hasEdge(g, "app", "page:pages/index/index", graph.EdgeResource) {
		t.Error("tab bar page resource edge missing")
	}
}

func TestBuildWorkersAndTheme(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{
		"pages": ["pages/index/index"],
		"workers": "workers",
		"themeLocation": "theme.json"
	}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"), `Page({})`)
	writeFile(t, filepath.Join(root, "workers", "index.js"), `worker()`)
	writeFile(t, filepath.Join(root, "theme.json"), `{}`)

	g := build(t, root)

	worker := filepath.Join(root, "workers", "index.js")
	if !hasEdge(g, "app", worker, graph.EdgeWorkerEntry) {
		t.Error("worker entry edge missing")
	}
	theme := filepath.Join(root, "theme.json")
	if !hasEdge(g, "app", theme, graph.EdgeConfig) {
		t.Error("theme location config edge missing")
	}
}

func TestBuildTemplateAndStyleReferences(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.wxml"), `
<import src="../../templates/card.wxml" />
<wxs src="../../utils/filter.wxs" module="f" />
<image src="/assets/logo.png" />
`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.wxss"),
		`@import "../../styles/base.wxss";`)
	writeFile(t, filepath.Join(root, "templates", "card.wxml"), `<template name="card"/>`)
	writeFile(t, filepath.Join(root, "utils", "filter.wxs"), `module.exports = {}`)
	writeFile(t, filepath.Join(root, "assets", "logo.png"), "png")
	writeFile(t, filepath.Join(root, "styles", "base.wxss"), `.x{}`)

	g := build(t, root)

	pageWXML := filepath.Join(root, "pages", "index", "index.wxml")
	pageWXSS := filepath.Join(root, "pages", "index", "index.wxss")

	if !hasEdge(g, pageWXML, filepath.Join(root, "templates", "card.wxml"), graph.EdgeTemplate) {
		t.Error("template import edge missing")
	}
	if !hasEdge(g, pageWXML, filepath.Join(root, "utils", "filter.wxs"), graph.EdgeImport) {
		t.Error("wxs import edge missing")
	}
	if !hasEdge(g, pageWXML, filepath.Join(root, "assets", "logo.png"), graph.EdgeResource) {
		t.Error("image resource edge missing")
	}
	if !hasEdge(g, pageWXSS, filepath.Join(root, "styles", "base.wxss"), graph.EdgeStyle) {
		t.Error("style import edge missing")
	}
}

func TestBuildNavigationMaterializesPage(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"),
		`wx.navigateTo({ url: '/pages/detail/detail?id=1' });`)
	writeFile(t, filepath.Join(root, "pages", "detail", "detail.js"), `Page({})`)
	writeFile(t, filepath.Join(root, "pages", "detail", "detail.wxml"), `<view/>`)

	g := build(t, root)

	if !g.HasNode("page:pages/detail/detail") {
		t.Fatal("navigated page not materialized")
	}
	detailJS := filepath.Join(root, "pages", "detail", "detail.js")
	if !hasEdge(g, "page:pages/detail/detail", detailJS, graph.EdgeStructure) {
		t.Error("navigated page cluster not attached")
	}
}

func TestBuildInlineEntry(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"), `Page({})`)

	g := build(t, root,
		WithEntryPath("missing.json"),
		WithEntryContent([]byte(`{"pages": ["pages/index/index"]}`)))

	if !g.HasNode("page:pages/index/index") {
		t.Error("inline entry not walked")
	}
}

func TestBuildMissingEntryIsFatal(t *testing.T) {
	b := New(t.TempDir())
	defer b.Close()
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected error for missing entry manifest")
	}
}

func TestBuildMalformedClusterManifestRecoverable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.json"), `{broken`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"), `Page({})`)

	g := build(t, root)

	// The malformed manifest is still part of the cluster; the walk continues.
	if !g.HasNode(filepath.Join(root, "pages", "index", "index.json")) {
		t.Error("malformed cluster manifest should still be a module")
	}
	if !g.HasNode(filepath.Join(root, "pages", "index", "index.js")) {
		t.Error("cluster script missing")
	}
}

func TestBuildAliasOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.json"), `{"pages": ["pages/index/index"]}`)
	writeFile(t, filepath.Join(root, "pages", "index", "index.js"),
		`import { d } from '@utils/date';`)
	writeFile(t, filepath.Join(root, "src", "shared", "date.js"), `export const d = 1;`)

	g := build(t, root, WithAliasOverrides(map[string][]string{
		"@utils": {"src/shared"},
	}))

	target := filepath.Join(root, "src", "shared", "date.js")
	indexJS := filepath.Join(root, "pages", "index", "index.js")
	if !hasEdge(g, indexJS, target, graph.EdgeImport) {
		t.Error("aliased import edge missing")
	}
}
