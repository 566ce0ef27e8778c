package dom

import (
	"strings"
)

// The selector subset: tag, #id, .class, [attr], [attr=v], [attr*=v],
// compounds of those, descendant combination by whitespace, and
// comma-separated groups. This covers every selector the agents use.

type simpleSelector struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSelector
}

type attrSelector struct {
	name      string
	value     string
	substring bool // [attr*=v]
	hasValue  bool // [attr=v] or [attr*=v]
}

type compoundSelector []simpleSelector // descendant chain, outermost first

// Query returns the first node in the subtree matching the selector, in
// document order, or nil.
func (n *Node) Query(selector string) *Node {
	results := n.queryLimit(selector, 1)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}

// QueryAll returns every node in the subtree matching the selector, in
// document order.
func (n *Node) QueryAll(selector string) []*Node {
	return n.queryLimit(selector, -1)
}

func (n *Node) queryLimit(selector string, limit int) []*Node {
	groups := parseSelectorList(selector)
	var results []*Node
	seen := make(map[*Node]bool)

	n.walk(func(node *Node) bool {
		if limit >= 0 && len(results) >= limit {
			return false
		}
		if node == n || seen[node] {
			return true
		}
		for _, g := range groups {
			if g.matches(node) {
				seen[node] = true
				results = append(results, node)
				break
			}
		}
		return true
	})
	return results
}

// matches checks the compound selector against a candidate node: the last
// simple selector must match the node itself, the earlier ones must match
// ancestors in document order.
func (c compoundSelector) matches(node *Node) bool {
	if len(c) == 0 {
		return false
	}
	if !c[len(c)-1].matches(node) {
		return false
	}

	remaining := c[:len(c)-1]
	for ancestor := node.parent; ancestor != nil && len(remaining) > 0; ancestor = ancestor.parent {
		if remaining[len(remaining)-1].matches(ancestor) {
			remaining = remaining[:len(remaining)-1]
		}
	}
	return len(remaining) == 0
}

func (s simpleSelector) matches(n *Node) bool {
	if s.tag != "" && !strings.EqualFold(s.tag, n.Tag) {
		return false
	}
	if s.id != "" && n.ID() != s.id {
		return false
	}
	for _, class := range s.classes {
		if !n.hasClass(class) {
			return false
		}
	}
	for _, a := range s.attrs {
		if !n.HasAttr(a.name) {
			return false
		}
		if a.hasValue {
			v := n.Attr(a.name)
			if a.substring {
				if !strings.Contains(v, a.value) {
					return false
				}
			} else if v != a.value {
				return false
			}
		}
	}
	return true
}

func parseSelectorList(selector string) []compoundSelector {
	var groups []compoundSelector
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var compound compoundSelector
		for _, simple := range strings.Fields(part) {
			compound = append(compound, parseSimple(simple))
		}
		if len(compound) > 0 {
			groups = append(groups, compound)
		}
	}
	return groups
}

func parseSimple(s string) simpleSelector {
	var sel simpleSelector
	i := 0
	// leading tag name
	for i < len(s) && s[i] != '.' && s[i] != '#' && s[i] != '[' {
		i++
	}
	sel.tag = s[:i]

	for i < len(s) {
		switch s[i] {
		case '.':
			j := i + 1
			for j < len(s) && s[j] != '.' && s[j] != '#' && s[j] != '[' {
				j++
			}
			sel.classes = append(sel.classes, s[i+1:j])
			i = j
		case '#':
			j := i + 1
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			sel.id = s[i+1 : j]
			i = j
		case '[':
			j := strings.IndexByte(s[i:], ']')
			if j < 0 {
				return sel
			}
			sel.attrs = append(sel.attrs, parseAttr(s[i+1:i+j]))
			i += j + 1
		default:
			i++
		}
	}
	return sel
}

func parseAttr(s string) attrSelector {
	var a attrSelector
	if k := strings.Index(s, "*="); k >= 0 {
		a.name, a.value = s[:k], unquote(s[k+2:])
		a.substring, a.hasValue = true, true
		return a
	}
	if k := strings.IndexByte(s, '='); k >= 0 {
		a.name, a.value = s[:k], unquote(s[k+1:])
		a.hasValue = true
		return a
	}
	a.name = s
	return a
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
