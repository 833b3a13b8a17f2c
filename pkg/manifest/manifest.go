// Package manifest ingests mini program configuration files: the entry
// manifest (app.json) and per-page/component manifests. The loosely-typed
// JSON shape is normalized once into an explicit struct so downstream code
// never checks alternate spellings.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the normalized entry-manifest shape.
type Manifest struct {
	Pages           []string
	SubPackages     []SubPackage
	UsingComponents map[string]string
	TabBar          *TabBar
	ThemeLocation   string
	Workers         string
}

// SubPackage is a named sub-tree of pages with its own root directory.
type SubPackage struct {
	Root  string   `json:"root"`
	Pages []string `json:"pages"`
}

// TabBar is the bottom tab configuration.
type TabBar struct {
	List []TabBarItem `json:"list"`
}

// TabBarItem references a page and its icon files.
type TabBarItem struct {
	PagePath         string `json:"pagePath"`
	IconPath         string `json:"iconPath"`
	SelectedIconPath string `json:"selectedIconPath"`
}

// rawManifest accepts both spellings of the subpackages field. Exact tag
// matches take precedence, so each spelling lands in its own field.
type rawManifest struct {
	Pages            []string          `json:"pages"`
	SubpackagesLower []SubPackage      `json:"subpackages"`
	SubPackagesCamel []SubPackage      `json:"subPackages"`
	UsingComponents  map[string]string `json:"usingComponents"`
	TabBar           *TabBar           `json:"tabBar"`
	ThemeLocation    string            `json:"themeLocation"`
	Workers          string            `json:"workers"`
}

// Parse normalizes manifest content. When both subpackage spellings are
// present the camel-case one wins, matching devtools behavior.
func Parse(content []byte) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	m := &Manifest{
		Pages:           raw.Pages,
		UsingComponents: raw.UsingComponents,
		TabBar:          raw.TabBar,
		ThemeLocation:   raw.ThemeLocation,
		Workers:         raw.Workers,
	}
	if len(raw.SubPackagesCamel) > 0 {
		m.SubPackages = raw.SubPackagesCamel
	} else {
		m.SubPackages = raw.SubpackagesLower
	}
	return m, nil
}

// Load reads and normalizes a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// componentManifest is the subset of a page/component JSON the builder walks.
type componentManifest struct {
	UsingComponents map[string]string `json:"usingComponents"`
}

// ParseComponents extracts the component registrations from a page or
// component manifest. Malformed content is a recoverable condition for the
// caller, reported through the returned error.
func ParseComponents(content []byte) (map[string]string, error) {
	var raw componentManifest
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parse component manifest: %w", err)
	}
	return raw.UsingComponents, nil
}
