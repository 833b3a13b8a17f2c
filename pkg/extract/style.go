package extract

import "regexp"

var (
	styleImport = regexp.MustCompile(`@import\s+(?:url\(\s*)?["']?([^"'()\s;]+)["']?\s*\)?\s*;`)
	styleURL    = regexp.MustCompile(`url\(\s*["']?([^"'()\s]+)["']?\s*\)`)
)

// extractStyle scans a stylesheet for @import statements and url() resources.
// An @import target is reported once, as a style import, even though the
// url() pattern may also match it.
func extractStyle(content []byte) []RawReference {
	text := string(content)
	var refs []RawReference
	imported := make(map[string]bool)

	for _, m := range styleImport.FindAllStringSubmatch(text, -1) {
		if usableTarget(m[1]) {
			refs = append(refs, RawReference{Value: m[1], Kind: KindStyle})
			imported[m[1]] = true
		}
	}
	for _, m := range styleURL.FindAllStringSubmatch(text, -1) {
		if usableTarget(m[1]) && !imported[m[1]] {
			refs = append(refs, RawReference{Value: m[1], Kind: KindResource})
		}
	}
	return refs
}
