package compositor

import (
	"fmt"
	"strings"

	"github.com/decker502/svgplay/internal/svgid"
)

// Node is one sub-document in a composite scene tree. Each node keeps its
// own markup, identifier prefix and placement transform; nothing is merged
// until Flatten serializes the tree. A parent's prefix is applied after its
// children's, so identifiers accumulate prefixes outermost-first and stay
// disjoint at any nesting depth.
type Node struct {
	Markup    string
	Prefix    string
	Transform string
	Children  []*Node
}

// Flatten serializes the tree into a single document sized by the root's
// viewBox (100x100 when the root declares none).
func (n *Node) Flatten() string {
	w, h, ok := ExtractViewBox(n.Markup)
	if !ok {
		w, h = 100, 100
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		ftoa(w), ftoa(h), ftoa(w), ftoa(h))
	b.WriteString(n.content())
	b.WriteString(`</svg>`)
	return b.String()
}

// content returns the node's inner markup with children embedded and this
// node's prefix applied over the whole subtree.
func (n *Node) content() string {
	var b strings.Builder
	b.WriteString(innerContent(n.Markup))
	for _, child := range n.Children {
		sub := child.content()
		if child.Transform != "" {
			fmt.Fprintf(&b, `<g transform="%s">`, child.Transform)
			b.WriteString(sub)
			b.WriteString(`</g>`)
		} else {
			b.WriteString(sub)
		}
	}
	return svgid.Rewrite(b.String(), n.Prefix)
}
