package extract

import (
	"path/filepath"
	"strings"
)

// Class is the extraction class of a file, derived from its extension.
type Class string

const (
	ClassScript   Class = "script"
	ClassTemplate Class = "template"
	ClassStyle    Class = "style"
	ClassConfig   Class = "config"
	ClassAsset    Class = "asset"
	ClassUnknown  Class = "unknown"
)

// Extension sets for the mini program file taxonomy. Order matters: resolution
// probes extensions in the declared order.
var (
	ScriptExtensions   = []string{".js", ".ts", ".wxs"}
	TemplateExtensions = []string{".wxml"}
	StyleExtensions    = []string{".wxss", ".less", ".scss"}
	ConfigExtensions   = []string{".json"}
	AssetExtensions    = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico"}

	// ClusterExtensions are the sibling files making up a page or component.
	ClusterExtensions = []string{".json", ".js", ".ts", ".wxml", ".wxss"}
)

// KnownExtensions returns every extension the analyzer recognizes.
func KnownExtensions() []string {
	var all []string
	all = append(all, ScriptExtensions...)
	all = append(all, TemplateExtensions...)
	all = append(all, StyleExtensions...)
	all = append(all, ConfigExtensions...)
	all = append(all, AssetExtensions...)
	return all
}

// DetectClass determines the extraction class from a file path.
func DetectClass(path string) Class {
	return classOf(strings.ToLower(filepath.Ext(path)))
}

func classOf(ext string) Class {
	switch ext {
	case ".js", ".ts", ".wxs":
		return ClassScript
	case ".wxml":
		return ClassTemplate
	case ".wxss", ".less", ".scss":
		return ClassStyle
	case ".json":
		return ClassConfig
	}
	for _, a := range AssetExtensions {
		if ext == a {
			return ClassAsset
		}
	}
	return ClassUnknown
}

// IsAsset reports whether the path has an asset extension.
func IsAsset(path string) bool {
	return DetectClass(path) == ClassAsset
}

// Kind tags a raw reference with the extraction strategy that produced it,
// which in turn determines its candidate target extensions.
type Kind string

const (
	// KindImport covers import-from clauses and template <wxs src> modules.
	KindImport Kind = "import"
	// KindRequire covers call-style loads: require(...) and dynamic import(...).
	KindRequire Kind = "require"
	// KindTemplate covers <import src> and <include src> in templates.
	KindTemplate Kind = "template-import"
	// KindStyle covers @import in stylesheets.
	KindStyle Kind = "style-import"
	// KindResource covers url(...) references and image src attributes.
	KindResource Kind = "url-resource"
	// KindComponent marks component registrations from JSON manifests.
	KindComponent Kind = "component-usage"
	// KindNavigation marks quoted literals that look like framework
	// navigation paths. A heuristic: see Extractor documentation.
	KindNavigation Kind = "implicit-navigation-path"
)

// RawReference is a string token extracted from file content, before
// resolution against the filesystem.
type RawReference struct {
	Value string `json:"value" toon:"value"`
	Kind  Kind   `json:"kind" toon:"kind"`
}

// CandidateExtensions returns the ordered extension list to probe when a
// reference of this kind misses a recognized extension.
func (k Kind) CandidateExtensions() []string {
	switch k {
	case KindImport, KindRequire:
		return ScriptExtensions
	case KindTemplate:
		return TemplateExtensions
	case KindStyle:
		return StyleExtensions
	case KindComponent, KindNavigation:
		return ClusterExtensions
	case KindResource:
		return AssetExtensions
	default:
		return nil
	}
}
