package graph

import "strings"

// MermaidOptions configures Mermaid diagram generation.
type MermaidOptions struct {
	MaxNodes  int
	MaxEdges  int
	Direction string // TD, LR, BT, RL
}

// DefaultMermaidOptions returns sensible defaults.
func DefaultMermaidOptions() MermaidOptions {
	return MermaidOptions{MaxNodes: 100, MaxEdges: 300, Direction: "TD"}
}

// ToMermaid renders the graph as a Mermaid flowchart, truncated to the
// configured node and edge limits.
func (g *Graph) ToMermaid(opts MermaidOptions) string {
	direction := opts.Direction
	if direction == "" {
		direction = "TD"
	}

	nodes := g.Nodes()
	edges := g.Edges()

	if opts.MaxNodes > 0 && len(nodes) > opts.MaxNodes {
		nodes = nodes[:opts.MaxNodes]
		keep := make(map[string]bool, len(nodes))
		for _, n := range nodes {
			keep[n.ID] = true
		}
		var filtered []Edge
		for _, e := range edges {
			if keep[e.From] && keep[e.To] {
				filtered = append(filtered, e)
			}
		}
		edges = filtered
	}
	if opts.MaxEdges > 0 && len(edges) > opts.MaxEdges {
		edges = edges[:opts.MaxEdges]
	}

	var b strings.Builder
	b.WriteString("graph " + direction + "\n")
	for _, n := range nodes {
		label := escapeMermaidLabel(n.Label)
		if label == "" {
			label = escapeMermaidLabel(n.ID)
		}
		b.WriteString("    " + sanitizeMermaidID(n.ID) + "[\"" + label + "\"]\n")
	}
	for _, e := range edges {
		b.WriteString("    " + sanitizeMermaidID(e.From) + " " + edgeArrow(e.Type) + " " + sanitizeMermaidID(e.To) + "\n")
	}
	return b.String()
}

func edgeArrow(t EdgeType) string {
	switch t {
	case EdgeImport:
		return "-.->|imports|"
	case EdgeTemplate:
		return "-->|template|"
	case EdgeStyle:
		return "-->|style|"
	case EdgeConfig:
		return "-->|config|"
	case EdgeResource:
		return "-.->|resource|"
	case EdgeWorkerEntry:
		return "-->|worker|"
	default:
		return "-->"
	}
}

func sanitizeMermaidID(id string) string {
	if id == "" {
		return "empty"
	}
	var out []byte
	for i := 0; i < len(id); i++ {
		c := id[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			out = append(out, c)
		} else {
			out = append(out, '_')
		}
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = append([]byte{'n'}, out...)
	}
	return string(out)
}

func escapeMermaidLabel(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"\"", "&quot;",
		"<", "&lt;",
		">", "&gt;",
		"|", "&#124;",
		"[", "&#91;",
		"]", "&#93;",
	)
	return r.Replace(s)
}
