package render

import (
	"fmt"
	"slices"
	"strings"
)

// Node is one element (or text run, when Tag is empty) of a display tree.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Classes  []string
	Text     string
	Children []*Node
}

// Attrs configures an element built with El. Keys follow the DOM factory
// convention: "className" is a space separated class list, "textContent"
// sets the text, "data-*" and anything else become attributes.
type Attrs map[string]any

// El builds an element. String children become text nodes.
func El(tag string, attrs Attrs, children ...any) *Node {
	n := &Node{Tag: tag, Attrs: map[string]string{}}
	for k, v := range attrs {
		switch k {
		case "className":
			n.AddClass(strings.Fields(fmt.Sprint(v))...)
		case "textContent":
			n.Text = fmt.Sprint(v)
		default:
			n.Attrs[k] = fmt.Sprint(v)
		}
	}
	for _, c := range children {
		switch c := c.(type) {
		case *Node:
			if c != nil {
				n.Children = append(n.Children, c)
			}
		case string:
			n.Children = append(n.Children, Text(c))
		}
	}
	return n
}

// Text builds a text node.
func Text(s string) *Node {
	return &Node{Text: s}
}

func (n *Node) IsText() bool {
	return n.Tag == ""
}

func (n *Node) SetAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[key] = value
	return n
}

func (n *Node) Attr(key string) string {
	return n.Attrs[key]
}

func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

func (n *Node) AddClass(classes ...string) *Node {
	for _, c := range classes {
		if c != "" && !n.HasClass(c) {
			n.Classes = append(n.Classes, c)
		}
	}
	return n
}

func (n *Node) RemoveClass(class string) *Node {
	n.Classes = slices.DeleteFunc(n.Classes, func(c string) bool { return c == class })
	return n
}

// ToggleClass adds class if missing and removes it otherwise. It reports
// whether the class is present afterwards.
func (n *Node) ToggleClass(class string) bool {
	if n.HasClass(class) {
		n.RemoveClass(class)
		return false
	}
	n.AddClass(class)
	return true
}

func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.Classes, class)
}

// TextContent concatenates the text of n and all of its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.walk(func(m *Node) bool {
		b.WriteString(m.Text)
		return true
	})
	return b.String()
}

// FindAll returns every descendant (including n) carrying class, in document order.
func (n *Node) FindAll(class string) []*Node {
	var out []*Node
	n.walk(func(m *Node) bool {
		if m.HasClass(class) {
			out = append(out, m)
		}
		return true
	})
	return out
}

// Find returns the first node carrying class, or nil.
func (n *Node) Find(class string) *Node {
	var found *Node
	n.walk(func(m *Node) bool {
		if m.HasClass(class) {
			found = m
			return false
		}
		return true
	})
	return found
}

func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
