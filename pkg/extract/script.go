package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// navigationPath matches string literals that look like framework navigation
// targets: pages/... or components/... with an optional leading slash and an
// optional ?query suffix. This is a deliberate heuristic; an unrelated string
// that happens to match over-reports, which only keeps a file off the unused
// list.
var navigationPath = regexp.MustCompile(`^/?(?:pages|components)/[\w\-./]+`)

// extractScript parses a script file and collects module references.
// WXS files share JavaScript syntax.
func (e *Extractor) extractScript(path string, content []byte) []RawReference {
	lang := javascript.GetLanguage()
	if strings.ToLower(filepath.Ext(path)) == ".ts" {
		lang = typescript.GetLanguage()
	}
	e.parser.SetLanguage(lang)

	tree, err := e.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		e.logger.Warn("script parse failed", "path", path, "error", err)
		return nil
	}
	defer tree.Close()

	var refs []RawReference
	walk(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "import_statement", "export_statement":
			// import ... from '...' and export ... from '...'
			if src := n.ChildByFieldName("source"); src != nil {
				if lit, ok := stringLiteral(src, content); ok && isModuleSpecifier(lit) {
					refs = append(refs, RawReference{Value: lit, Kind: KindImport})
				}
			}
		case "call_expression":
			if lit, ok := callArgument(n, content); ok && isModuleSpecifier(lit) {
				refs = append(refs, RawReference{Value: lit, Kind: KindRequire})
			}
		case "string":
			if lit, ok := stringLiteral(n, content); ok {
				if m := navigationPath.FindString(lit); m != "" {
					refs = append(refs, RawReference{Value: trimQuery(m), Kind: KindNavigation})
				}
			}
		}
		return true
	})
	return refs
}

// callArgument returns the string-literal argument of require(...) or dynamic
// import(...) calls. Template strings and computed arguments are skipped:
// dynamically constructed paths cannot be discovered statically.
func callArgument(call *sitter.Node, source []byte) (string, bool) {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	switch {
	case fn.Type() == "identifier" && nodeText(fn, source) == "require":
	case fn.Type() == "import":
	default:
		return "", false
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return "", false
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		child := args.Child(i)
		if child.Type() == "string" {
			return stringLiteral(child, source)
		}
	}
	return "", false
}

// isModuleSpecifier reports whether a literal is a loadable module path:
// relative, root-relative, or a bare alias/package specifier.
func isModuleSpecifier(lit string) bool {
	if lit == "" {
		return false
	}
	if strings.HasPrefix(lit, "http://") || strings.HasPrefix(lit, "https://") {
		return false
	}
	return true
}

// stringLiteral returns the unquoted text of a tree-sitter string node.
func stringLiteral(n *sitter.Node, source []byte) (string, bool) {
	if n.Type() != "string" {
		return "", false
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() == "string_fragment" {
			return nodeText(child, source), true
		}
	}
	// Empty string literal: only quote children.
	text := nodeText(n, source)
	if len(text) >= 2 {
		return text[1 : len(text)-1], true
	}
	return "", false
}

func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

func trimQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// walk visits nodes depth-first. Returning false from fn prunes the subtree.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}
