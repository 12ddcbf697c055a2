package render_test

import (
	"errors"
	"testing"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/render"
)

func TestEl(t *testing.T) {
	n := render.El("li", render.Attrs{
		"className": "task-item  completed",
		"data-id":   7,
		"title":     "hello",
	},
		"plain ",
		render.El("span", render.Attrs{"textContent": "inner"}),
		(*render.Node)(nil),
		42, // ignored
	)

	if n.Tag != "li" {
		t.Errorf("expected li, got %s", n.Tag)
	}
	if len(n.Classes) != 2 || !n.HasClass("completed") {
		t.Errorf("unexpected classes %v", n.Classes)
	}
	if n.Attr("data-id") != "7" || n.Attr("title") != "hello" {
		t.Errorf("unexpected attrs %v", n.Attrs)
	}
	if len(n.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(n.Children))
	}
	if !n.Children[0].IsText() {
		t.Error("expected string child to become a text node")
	}
	if got := n.TextContent(); got != "plain inner" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestNode_ClassList(t *testing.T) {
	n := render.El("div", nil)

	n.AddClass("a", "b", "a", "")
	if len(n.Classes) != 2 {
		t.Errorf("expected 2 classes, got %v", n.Classes)
	}

	if on := n.ToggleClass("c"); !on || !n.HasClass("c") {
		t.Error("expected toggle to add c")
	}
	if on := n.ToggleClass("c"); on || n.HasClass("c") {
		t.Error("expected toggle to remove c")
	}

	n.RemoveClass("a")
	if n.HasClass("a") {
		t.Error("expected a removed")
	}

	render.Animate(n)
	if !n.HasClass(render.FadeIn) {
		t.Error("expected fade-in class")
	}
}

func TestUserCards(t *testing.T) {
	users := []model.User{
		{ID: 1, Name: "Leanne Graham", Email: "Sincere@april.biz", Company: model.Company{Name: "Romaguera-Crona"}, Address: model.Address{City: "Gwenborough"}},
		{ID: 2, Name: "Ervin Howell", Email: "Shanna@melissa.tv"},
	}

	cards := render.UserCards(users).FindAll("user-card")
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if got := cards[0].Find("location").TextContent(); got != "Gwenborough" {
		t.Errorf("unexpected city %q", got)
	}
	if got := cards[0].Find("company").TextContent(); got != "Romaguera-Crona" {
		t.Errorf("unexpected company %q", got)
	}

	empty := render.UserCards(nil)
	if empty.Find("empty") == nil {
		t.Error("expected empty state")
	}

	failed := render.UserCardsError(errors.New("timed out"), "/users")
	if got := failed.Find("error").TextContent(); got != "Failed to load users: timed outRetry" {
		t.Errorf("unexpected error text %q", got)
	}
	if failed.Find("btn-retry").Attr("href") != "/users" {
		t.Error("expected retry link")
	}
}

func TestModal(t *testing.T) {
	m := render.Modal("Oops", "Unknown filter")
	if m.Attr("id") != "modal" || !m.HasClass("modal-overlay") {
		t.Errorf("unexpected overlay %+v", m)
	}
	if m.Find("btn-close") == nil {
		t.Error("expected close button")
	}
	if got := m.Find("modal").TextContent(); got != "OopsUnknown filterClose" {
		t.Errorf("unexpected modal text %q", got)
	}
}
