package output

import (
	"strings"

	"github.com/aretw0/tendril/pkg/domain"
)

// Node is an element or text node of a captured document.
// Text nodes have an empty Name and no children.
type Node struct {
	Name     domain.QName `json:"name,omitzero"`
	Attrs    []Attr       `json:"attrs,omitempty"`
	Text     string       `json:"text,omitempty"`
	Children []*Node      `json:"children,omitempty"`
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n.Name.Local == ""
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Elements returns the child elements with the given local name ("" matches all).
func (n *Node) Elements(local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.IsText() {
			continue
		}
		if local == "" || c.Name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// Content concatenates the text of n and all its descendants.
func (n *Node) Content() string {
	var b strings.Builder
	n.walkText(&b)
	return b.String()
}

func (n *Node) walkText(b *strings.Builder) {
	if n.IsText() {
		b.WriteString(n.Text)
	}
	for _, c := range n.Children {
		c.walkText(b)
	}
}

// Emit replays n (and its subtree) into out. A synthetic root emits only its children.
func (n *Node) Emit(out Output) error {
	if n.IsText() && n.Text != "" {
		return out.Write(n.Text)
	}
	if !n.IsText() {
		if err := out.StartElement(n.Name, n.Attrs); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := c.Emit(out); err != nil {
			return err
		}
	}
	if !n.IsText() {
		return out.EndElement(n.Name)
	}
	return nil
}

// String serializes the node as escaped markup.
func (n *Node) String() string {
	s, _ := Render(true, n.Emit)
	return s
}
