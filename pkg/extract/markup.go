package extract

import "regexp"

// Template tags carrying path-valued src attributes. Attribute order inside
// the tag does not matter; only the src value is captured.
var (
	templateSrc = regexp.MustCompile(`<(?:import|include)\b[^>]*?\bsrc\s*=\s*["']([^"']+)["']`)
	wxsSrc      = regexp.MustCompile(`<wxs\b[^>]*?\bsrc\s*=\s*["']([^"']+)["']`)
	imageSrc    = regexp.MustCompile(`<image\b[^>]*?\bsrc\s*=\s*["']([^"']+)["']`)
)

// extractTemplate scans a template for import/include, wxs-module, and image
// references.
func extractTemplate(content []byte) []RawReference {
	text := string(content)
	var refs []RawReference
	for _, m := range templateSrc.FindAllStringSubmatch(text, -1) {
		if usableTarget(m[1]) {
			refs = append(refs, RawReference{Value: m[1], Kind: KindTemplate})
		}
	}
	for _, m := range wxsSrc.FindAllStringSubmatch(text, -1) {
		if usableTarget(m[1]) {
			refs = append(refs, RawReference{Value: m[1], Kind: KindImport})
		}
	}
	for _, m := range imageSrc.FindAllStringSubmatch(text, -1) {
		if usableTarget(m[1]) {
			refs = append(refs, RawReference{Value: m[1], Kind: KindResource})
		}
	}
	return refs
}

// usableTarget filters out values that cannot name a project file:
// interpolated expressions, data URIs, and absolute URLs.
func usableTarget(v string) bool {
	if v == "" {
		return false
	}
	if containsInterpolation(v) {
		return false
	}
	if hasPrefixFold(v, "data:") || hasPrefixFold(v, "http://") || hasPrefixFold(v, "https://") || hasPrefixFold(v, "//") {
		return false
	}
	return true
}

func containsInterpolation(v string) bool {
	for i := 0; i+1 < len(v); i++ {
		if v[i] == '{' && v[i+1] == '{' {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != prefix[i] {
			return false
		}
	}
	return true
}
