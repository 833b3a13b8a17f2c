package graph

// NodeType classifies a graph node.
type NodeType string

const (
	NodeAppRoot   NodeType = "approot"
	NodePackage   NodeType = "package"
	NodePage      NodeType = "page"
	NodeComponent NodeType = "component"
	NodeModule    NodeType = "module"
)

// String returns the string representation.
func (n NodeType) String() string {
	return string(n)
}

// EdgeType classifies a dependency between nodes.
type EdgeType string

const (
	EdgeStructure   EdgeType = "structure"
	EdgeImport      EdgeType = "import"
	EdgeTemplate    EdgeType = "template"
	EdgeStyle       EdgeType = "style"
	EdgeConfig      EdgeType = "config"
	EdgeResource    EdgeType = "resource"
	EdgeWorkerEntry EdgeType = "worker"
)

// String returns the string representation.
func (e EdgeType) String() string {
	return string(e)
}

// Node is a vertex in the dependency graph. ID is the absolute file path for
// module nodes, or a synthetic key (page:<rel>, component:<rel>, package:<root>)
// for structural entities.
type Node struct {
	ID    string   `json:"id" toon:"id"`
	Type  NodeType `json:"type" toon:"type"`
	Label string   `json:"label" toon:"label"`
	Path  string   `json:"path,omitempty" toon:"path,omitempty"`
	Ext   string   `json:"ext,omitempty" toon:"ext,omitempty"`
	Size  int64    `json:"size,omitempty" toon:"size,omitempty"`
}

// Edge is a typed, directed dependency between two nodes.
type Edge struct {
	From string   `json:"source" toon:"source"`
	To   string   `json:"target" toon:"target"`
	Type EdgeType `json:"type" toon:"type"`
}

// Export is the serializable {nodes, links} projection of a graph.
type Export struct {
	Nodes []ExportNode `json:"nodes" toon:"nodes"`
	Links []ExportLink `json:"links" toon:"links"`
}

// ExportNode is a node in the exported projection.
type ExportNode struct {
	ID    string `json:"id" toon:"id"`
	Type  string `json:"type" toon:"type"`
	Label string `json:"label" toon:"label"`
}

// ExportLink is an edge in the exported projection.
type ExportLink struct {
	Source string `json:"source" toon:"source"`
	Target string `json:"target" toon:"target"`
	Type   string `json:"type" toon:"type"`
}
