package ast

// Node is an in-memory Entity. It is used to build declaration trees without
// a parser, mostly in tests.
type Node struct {
	NodeKind   Kind
	Definition bool
	NodeName   string
	Nodes      []*Node

	// Raw is the pre-expansion location; nil means unavailable
	Raw *Location
	// Expansion is the post-expansion location; nil falls back to Raw
	Expansion *Location
}

// NewNode creates a node located at loc for both raw and expansion queries
func NewNode(kind Kind, name string, definition bool, loc Location, children ...*Node) *Node {
	l := loc
	return &Node{
		NodeKind:   kind,
		Definition: definition,
		NodeName:   name,
		Nodes:      children,
		Raw:        &l,
	}
}

func (n *Node) Kind() Kind {
	if n.NodeKind == "" {
		return KindOther
	}
	return n.NodeKind
}

func (n *Node) IsDefinition() bool { return n.Definition }
func (n *Node) Name() string       { return n.NodeName }

func (n *Node) Children() []Entity {
	out := make([]Entity, 0, len(n.Nodes))
	for _, c := range n.Nodes {
		out = append(out, c)
	}
	return out
}

func (n *Node) RawLocation() (Location, bool) {
	if n.Raw == nil {
		return Location{}, false
	}
	return *n.Raw, true
}

func (n *Node) ExpansionLocation() (Location, bool) {
	if n.Expansion != nil {
		return *n.Expansion, true
	}
	return n.RawLocation()
}

// Add appends children and returns n for chaining
func (n *Node) Add(children ...*Node) *Node {
	n.Nodes = append(n.Nodes, children...)
	return n
}
