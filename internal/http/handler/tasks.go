package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/render"
	"github.com/jaekwang-park/taskboard/internal/service"
)

// Actions are the form endpoints the board posts to.
var Actions = render.Actions{
	Toggle: func(id int) string { return fmt.Sprintf("/tasks/%d/toggle", id) },
	Delete: func(id int) string { return fmt.Sprintf("/tasks/%d/delete", id) },
	Filter: "/filter",
}

// TaskHandler serves the board page, its form posts and the JSON view.
// The board body comes from view, which the repository's change hook keeps
// current.
type TaskHandler struct {
	repo   *service.TaskRepository
	view   *render.HTMLTree
	logger *slog.Logger
}

func NewTaskHandler(repo *service.TaskRepository, view *render.HTMLTree, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{repo: repo, view: view, logger: logger}
}

type taskListResponse struct {
	Tasks  []model.Task `json:"tasks"`
	Stats  model.Stats  `json:"stats"`
	Filter model.Filter `json:"filter"`
}

func (h *TaskHandler) board(extra ...*render.Node) []templ.Component {
	parts := []templ.Component{
		render.NodeComponent(render.El("h1", render.Attrs{"textContent": "Tasks"})),
		render.NodeComponent(render.AddTaskForm("/tasks")),
		h.view.Component(),
		render.NodeComponent(render.ClearCompletedForm("/tasks/clear-completed")),
	}
	for _, n := range extra {
		parts = append(parts, render.NodeComponent(n))
	}
	return parts
}

func (h *TaskHandler) writeBoard(w http.ResponseWriter, r *http.Request, status int, extra ...*render.Node) {
	WriteHTML(w, r, status, render.Page("Tasks", h.board(extra...)...))
}

// Board renders the task page.
func (h *TaskHandler) Board(w http.ResponseWriter, r *http.Request) {
	h.writeBoard(w, r, http.StatusOK)
}

// List returns the filtered tasks with stats as JSON.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, taskListResponse{
		Tasks:  h.repo.FilteredView(),
		Stats:  h.repo.Stats(),
		Filter: h.repo.Filter(),
	})
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Invalid form", "The form could not be read.")
		return
	}
	res := h.repo.Add(r.Context(), r.PostForm.Get("text"), model.Priority(r.PostForm.Get("priority")))
	h.logResult(r, "add", res)
	SeeOther(w, r, "/")
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.logResult(r, "toggle", h.repo.Toggle(r.Context(), id))
	SeeOther(w, r, "/")
}

func (h *TaskHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Invalid form", "The form could not be read.")
		return
	}
	h.logResult(r, "edit", h.repo.Edit(r.Context(), id, r.PostForm.Get("text")))
	SeeOther(w, r, "/")
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.logResult(r, "delete", h.repo.Delete(r.Context(), id))
	SeeOther(w, r, "/")
}

// DeleteAPI is the DELETE verb form of Delete. It answers 204, or 404 for an
// unknown id.
func (h *TaskHandler) DeleteAPI(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_ID", "task id must be an integer")
		return
	}
	res := h.repo.Delete(r.Context(), id)
	h.logResult(r, "delete", res)
	if errors.Is(res.Err(), service.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "task not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	h.logResult(r, "clear_completed", h.repo.ClearCompleted(r.Context()))
	SeeOther(w, r, "/")
}

// SetFilter accepts only the three known modes.
func (h *TaskHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Invalid form", "The form could not be read.")
		return
	}
	mode := model.Filter(r.PostForm.Get("mode"))
	if !mode.IsValid() {
		h.badRequest(w, r, "Unknown filter", fmt.Sprintf("%q is not one of all, active, completed.", string(mode)))
		return
	}
	h.repo.SetFilter(r.Context(), mode)
	SeeOther(w, r, "/")
}

func (h *TaskHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.badRequest(w, r, "Invalid task", "Task ids are whole numbers.")
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) badRequest(w http.ResponseWriter, r *http.Request, title, message string) {
	h.writeBoard(w, r, http.StatusBadRequest, render.Animate(render.Modal(title, message)))
}

func (h *TaskHandler) logResult(r *http.Request, op string, res service.Result) {
	attrs := []any{"op", op, "status", res.Status.String()}
	if res.Task.ID != 0 {
		attrs = append(attrs, "task_id", res.Task.ID)
	}
	if res.SaveErr != nil {
		h.logger.WarnContext(r.Context(), "task change not persisted", append(attrs, "error", res.SaveErr)...)
		return
	}
	h.logger.DebugContext(r.Context(), "task change", attrs...)
}
