// Package render projects task state into display trees.
//
// A Renderer never keeps what it produced: each Render builds a complete
// tree from the current TaskSource and hands it to a TreeBuilder, which
// replaces whatever it showed before.
package render

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// FadeIn is the one-shot animation class. The host removes it when the
// animation completes.
const FadeIn = "fade-in"

// TreeBuilder is the render target.
type TreeBuilder interface {
	Replace(ctx context.Context, root *Node) error
}

// TaskSource is the read side of the task repository.
type TaskSource interface {
	FilteredView() []model.Task
	Stats() model.Stats
	Filter() model.Filter
}

// Actions maps controls to form endpoints. When set on a Renderer the root
// becomes a POST form and every button carries its own formaction.
type Actions struct {
	Toggle func(id int) string
	Delete func(id int) string
	Filter string
}

type Renderer struct {
	src     TaskSource
	target  TreeBuilder
	actions *Actions

	// mu orders renders so the last Replace carries the newest state.
	mu sync.Mutex
}

type RendererOption func(*Renderer)

func WithActions(a Actions) RendererOption {
	return func(r *Renderer) { r.actions = &a }
}

func NewRenderer(src TaskSource, target TreeBuilder, opts ...RendererOption) *Renderer {
	r := &Renderer{src: src, target: target}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render rebuilds the tree and replaces the target's content with it.
// Concurrent calls run one at a time.
func (r *Renderer) Render(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.target.Replace(ctx, r.Build()); err != nil {
		return fmt.Errorf("render: replace tree: %w", err)
	}
	return nil
}

// Build produces the tree for the current state without touching the target.
func (r *Renderer) Build() *Node {
	tasks := r.src.FilteredView()
	stats := r.src.Stats()
	current := r.src.Filter()

	root := El("div", Attrs{"className": "task-app"})
	if r.actions != nil {
		root = El("form", Attrs{"className": "task-app", "method": "post"})
	}

	root.Append(El("div", Attrs{"className": "stats-bar"},
		fmt.Sprintf("%d active, %d completed, %d total", stats.Active, stats.Completed, stats.Total),
	))

	list := El("ul", Attrs{"className": "task-list", "id": "task-list"})
	for _, t := range tasks {
		list.Append(r.taskRow(t))
	}
	root.Append(list)

	bar := El("div", Attrs{"className": "filter-bar"})
	for _, f := range model.Filters() {
		btn := El("button", Attrs{"className": "filter-btn", "textContent": f.Label(), "data-filter": f})
		if f == current {
			btn.AddClass("active")
		}
		if r.actions != nil {
			btn.SetAttr("formaction", r.actions.Filter)
			btn.SetAttr("name", "mode")
			btn.SetAttr("value", string(f))
		}
		bar.Append(btn)
	}
	root.Append(bar)

	return root
}

func (r *Renderer) taskRow(t model.Task) *Node {
	label := "Done"
	if t.Completed {
		label = "Undo"
	}
	complete := El("button", Attrs{"className": "btn-complete", "textContent": label})
	del := El("button", Attrs{"className": "btn-delete", "textContent": "Delete"})
	if r.actions != nil {
		complete.SetAttr("formaction", r.actions.Toggle(t.ID))
		del.SetAttr("formaction", r.actions.Delete(t.ID))
	}

	li := El("li", Attrs{"className": "task-item", "data-id": strconv.Itoa(t.ID)},
		El("span", Attrs{"className": "task-text", "textContent": t.Text}),
		El("div", Attrs{"className": "task-actions"}, complete, del),
	)
	if t.Completed {
		li.AddClass("completed")
	}
	li.AddClass("priority-" + string(t.Priority))
	return li
}

// Animate marks n for a one-shot fade-in.
func Animate(n *Node) *Node {
	return n.AddClass(FadeIn)
}
