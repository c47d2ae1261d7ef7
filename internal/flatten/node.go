package flatten

import (
	"encoding/xml"
	"strings"
)

// Node is a namespace-stripped XML element.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr is a namespace-stripped XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Child returns the first direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// localName strips both the namespace URI and any residual "prefix:" from name.
func localName(name xml.Name) string {
	local := name.Local
	if i := strings.LastIndexByte(local, ':'); i >= 0 {
		local = local[i+1:]
	}
	return local
}

func newNode(start xml.StartElement) *Node {
	n := &Node{Name: localName(start.Name)}
	for _, a := range start.Attr {
		// namespace declarations carry no data
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		n.Attrs = append(n.Attrs, Attr{Name: localName(a.Name), Value: a.Value})
	}
	return n
}

// ParseNode decodes a single XML fragment into a Node tree.
func ParseNode(data string) (*Node, error) {
	dec := xml.NewDecoder(strings.NewReader(data))
	var (
		stack []*Node
		text  []*strings.Builder
		root  *Node
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			if root != nil && len(stack) == 0 {
				return root, nil
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := newNode(t)
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			n.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
			if len(stack) == 0 {
				root = n
			}
		}
	}
}
