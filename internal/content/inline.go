package content

// NodeKind identifies an inline run inside a prose segment
type NodeKind string

const (
	NodeText NodeKind = "text"
	NodeBold NodeKind = "bold"
	NodeCode NodeKind = "code"
	NodeLink NodeKind = "link"
)

// Node is a renderable inline run. Href is only set for links, which always
// open in a new browsing context.
type Node struct {
	Kind NodeKind `json:"kind"`
	Text string   `json:"text"`
	Href string   `json:"href,omitempty"`
}

// FormatInline converts one prose segment into inline nodes.
func FormatInline(text string) []Node {
	toks := ScanInline(text)
	nodes := make([]Node, 0, len(toks))
	for _, tok := range toks {
		switch tok.Kind {
		case TokenAnchor:
			nodes = append(nodes, Node{Kind: NodeLink, Text: tok.Text, Href: tok.Href})
		case TokenInlineCode:
			nodes = append(nodes, Node{Kind: NodeCode, Text: tok.Text})
		case TokenBold:
			nodes = append(nodes, Node{Kind: NodeBold, Text: tok.Text})
		default:
			nodes = append(nodes, Node{Kind: NodeText, Text: tok.Text})
		}
	}
	return nodes
}
