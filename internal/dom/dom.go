// Package dom is a minimal in-memory document tree with the selector subset
// the page agents need. Agents read and mutate this tree the way their
// browser-side counterparts read and mutate the live page; the hosting
// transport is responsible for mirroring it into a real document.
package dom

import (
	"strings"
)

// Node is a single element in the document tree.
type Node struct {
	Tag      string
	attrs    map[string]string
	styles   map[string]string
	Text     string
	children []*Node
	parent   *Node

	// OnClick, when set, reacts to Click. Used for controls whose
	// activation changes the page, such as Gmail's expand buttons.
	OnClick func()
}

// Click activates the node. Clicking a node without a handler is a no-op.
func (n *Node) Click() {
	if n.OnClick != nil {
		n.OnClick()
	}
}

// NewNode creates a detached element.
func NewNode(tag string) *Node {
	return &Node{
		Tag:    tag,
		attrs:  make(map[string]string),
		styles: make(map[string]string),
	}
}

// SetAttr sets an attribute. Classes live in the "class" attribute,
// space-separated, as in HTML.
func (n *Node) SetAttr(name, value string) *Node {
	n.attrs[name] = value
	return n
}

// Attr returns an attribute value, or "" when absent.
func (n *Node) Attr(name string) string {
	return n.attrs[name]
}

// HasAttr reports whether the attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.attrs[name]
	return ok
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.attrs["id"] }

// Classes returns the node's class list.
func (n *Node) Classes() []string {
	return strings.Fields(n.attrs["class"])
}

func (n *Node) hasClass(class string) bool {
	for _, c := range n.Classes() {
		if c == class {
			return true
		}
	}
	return false
}

// SetStyle sets an inline style property.
func (n *Node) SetStyle(name, value string) {
	n.styles[name] = value
}

// Style returns an inline style property, or "" when unset.
func (n *Node) Style(name string) string {
	return n.styles[name]
}

// AppendChild attaches a node as the last child, detaching it from any
// previous parent.
func (n *Node) AppendChild(child *Node) {
	child.Remove()
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches the node from its parent. Detaching an already-detached
// node is a no-op.
func (n *Node) Remove() {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Parent returns the parent node, nil for detached nodes and the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list.
func (n *Node) Children() []*Node { return n.children }

// TextContent returns the node's own text and all descendant text, in
// document order, joined with single spaces.
func (n *Node) TextContent() string {
	var parts []string
	n.walk(func(node *Node) bool {
		if t := strings.TrimSpace(node.Text); t != "" {
			parts = append(parts, t)
		}
		return true
	})
	return strings.Join(parts, " ")
}

// walk visits the subtree in preorder; returning false stops descent into a
// node's children.
func (n *Node) walk(visit func(*Node) bool) {
	if !visit(n) {
		return
	}
	for _, c := range n.children {
		c.walk(visit)
	}
}

// Document is a page: a URL and an element tree rooted at <html> with a
// <body> child.
type Document struct {
	URL  string
	root *Node
	body *Node
}

// NewDocument creates an empty document for a URL.
func NewDocument(url string) *Document {
	root := NewNode("html")
	body := NewNode("body")
	root.AppendChild(body)
	return &Document{URL: url, root: root, body: body}
}

// Body returns the document body.
func (d *Document) Body() *Node { return d.body }

// GetElementByID returns the first node with the given id, or nil.
func (d *Document) GetElementByID(id string) *Node {
	var found *Node
	d.root.walk(func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID() == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Query returns the first node in the document matching the selector.
func (d *Document) Query(selector string) *Node {
	return d.root.Query(selector)
}

// QueryAll returns all nodes in the document matching the selector.
func (d *Document) QueryAll(selector string) []*Node {
	return d.root.QueryAll(selector)
}
