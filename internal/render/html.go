package render

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

var voidElements = map[string]bool{
	"br": true, "hr": true, "img": true, "input": true, "link": true, "meta": true,
}

// HTMLTree is a TreeBuilder that keeps the latest tree and renders it as
// HTML through templ.
type HTMLTree struct {
	mu   sync.RWMutex
	root *Node
}

func NewHTMLTree() *HTMLTree {
	return &HTMLTree{}
}

func (h *HTMLTree) Replace(ctx context.Context, root *Node) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.root = root
	return nil
}

// Root returns the tree from the last Replace, or nil.
func (h *HTMLTree) Root() *Node {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.root
}

// Component renders whatever tree is current at render time.
func (h *HTMLTree) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		root := h.Root()
		if root == nil {
			return nil
		}
		return NodeComponent(root).Render(ctx, w)
	})
}

// NodeComponent renders n and its children as HTML. Attributes are written
// in sorted order.
func NodeComponent(n *Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeNode(&b, n)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// HTML returns the markup for n.
func HTML(n *Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node) {
	if n.IsText() {
		b.WriteString(templ.EscapeString(n.Text))
		return
	}

	b.WriteString("<")
	b.WriteString(n.Tag)
	if len(n.Classes) > 0 {
		b.WriteString(` class="`)
		b.WriteString(templ.EscapeString(strings.Join(n.Classes, " ")))
		b.WriteString(`"`)
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(templ.EscapeString(n.Attrs[k]))
		b.WriteString(`"`)
	}
	b.WriteString(">")

	if voidElements[n.Tag] {
		return
	}

	b.WriteString(templ.EscapeString(n.Text))
	for _, c := range n.Children {
		writeNode(b, c)
	}
	b.WriteString("</")
	b.WriteString(n.Tag)
	b.WriteString(">")
}

const pageStyle = `body{font-family:sans-serif;max-width:40rem;margin:2rem auto}
.task-item.completed .task-text{text-decoration:line-through;opacity:.6}
.priority-high{border-left:4px solid #c0392b}.priority-medium{border-left:4px solid #f39c12}
.priority-low{border-left:4px solid #27ae60}.filter-btn.active{font-weight:bold}
.fade-in{animation:fade .3s}@keyframes fade{from{opacity:0}to{opacity:1}}
.user-card{border:1px solid #ddd;padding:.5rem;margin:.5rem 0}.error{color:#c0392b}`

// Page wraps content in a full HTML document.
func Page(title string, content ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := "<!DOCTYPE html><html><head><meta charset=\"utf-8\"><title>" +
			templ.EscapeString(title) + "</title><style>" + pageStyle + "</style></head><body>"
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		nav := El("nav", Attrs{"className": "nav"},
			El("a", Attrs{"href": "/", "textContent": "Tasks"}),
			" | ",
			El("a", Attrs{"href": "/users", "textContent": "Users"}),
		)
		if _, err := io.WriteString(w, HTML(nav)); err != nil {
			return err
		}
		for _, c := range content {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</body></html>")
		return err
	})
}

// AddTaskForm is the entry form for new tasks.
func AddTaskForm(action string) *Node {
	return El("form", Attrs{"id": "task-form", "method": "post", "action": action},
		El("input", Attrs{"id": "task-input", "name": "text", "type": "text", "placeholder": "What needs doing?", "required": "required"}),
		El("select", Attrs{"id": "task-priority", "name": "priority"},
			El("option", Attrs{"value": "low", "textContent": "Low"}),
			El("option", Attrs{"value": "medium", "selected": "selected", "textContent": "Medium"}),
			El("option", Attrs{"value": "high", "textContent": "High"}),
		),
		El("button", Attrs{"type": "submit", "textContent": "Add"}),
	)
}

// ClearCompletedForm posts to action to drop completed tasks.
func ClearCompletedForm(action string) *Node {
	return El("form", Attrs{"method": "post", "action": action, "className": "clear-form"},
		El("button", Attrs{"type": "submit", "className": "btn-clear", "textContent": "Clear completed"}),
	)
}
