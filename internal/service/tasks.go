package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jaekwang-park/taskboard/internal/model"
	"github.com/jaekwang-park/taskboard/internal/repository"
)

// DefaultStoreKey is the key the task list is persisted under.
const DefaultStoreKey = "tasks"

// Status reports what a mutation did.
type Status int

const (
	// StatusApplied means the in-memory list changed (or was re-saved).
	StatusApplied Status = iota
	// StatusSkipped means the input failed validation and nothing happened.
	StatusSkipped
	// StatusNotFound means no task had the requested id.
	StatusNotFound
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusSkipped:
		return "skipped"
	case StatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Result is returned by every mutation instead of an error. SaveErr is set
// when the list changed in memory but could not be written to the store.
type Result struct {
	Status  Status
	Task    model.Task
	Removed int
	SaveErr error
}

type Option func(*TaskRepository)

func WithClock(now func() time.Time) Option {
	return func(r *TaskRepository) { r.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *TaskRepository) { r.logger = logger }
}

func WithStoreKey(key string) Option {
	return func(r *TaskRepository) { r.key = key }
}

// TaskRepository owns the ordered task list, the id counter and the current
// filter. Every mutation writes the whole list back to the store and then
// fires the change hook.
type TaskRepository struct {
	mu       sync.Mutex
	store    *repository.JSONStore
	key      string
	tasks    []model.Task
	nextID   int
	filter   model.Filter
	now      func() time.Time
	logger   *slog.Logger
	onChange func(ctx context.Context)
}

// NewTaskRepository loads the persisted list from kv. A missing or unreadable
// list starts the repository empty.
func NewTaskRepository(ctx context.Context, kv repository.KeyValueStore, opts ...Option) *TaskRepository {
	r := &TaskRepository{
		key:    DefaultStoreKey,
		filter: model.FilterAll,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.store = repository.NewJSONStore(kv, r.logger)

	r.tasks = repository.Load(ctx, r.store, r.key, []model.Task{})
	if r.tasks == nil {
		r.tasks = []model.Task{}
	}
	r.nextID = 1
	for _, t := range r.tasks {
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}

	r.logger.DebugContext(ctx, "tasks loaded", "count", len(r.tasks), "next_id", r.nextID)
	return r
}

// SetOnChange registers the render signal. It runs after each mutation and
// filter change, outside the repository lock.
func (r *TaskRepository) SetOnChange(fn func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

func (r *TaskRepository) Add(ctx context.Context, text string, priority model.Priority) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Status: StatusSkipped}
	}
	if priority == "" {
		priority = model.PriorityMedium
	} else if !priority.IsValid() {
		r.logger.WarnContext(ctx, "unknown priority, using medium", "priority", priority)
		priority = model.PriorityMedium
	}

	r.mu.Lock()
	task := model.Task{
		ID:        r.nextID,
		Text:      text,
		Priority:  priority,
		CreatedAt: r.now(),
	}
	r.nextID++
	r.tasks = append(r.tasks, task)
	err := r.saveLocked(ctx)
	r.mu.Unlock()

	r.signal(ctx)
	return Result{Status: StatusApplied, Task: cloneTask(task), SaveErr: err}
}

func (r *TaskRepository) Toggle(ctx context.Context, id int) Result {
	r.mu.Lock()
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return Result{Status: StatusNotFound}
	}
	t := &r.tasks[i]
	t.Completed = !t.Completed
	if t.Completed {
		at := r.now()
		t.CompletedAt = &at
	} else {
		t.CompletedAt = nil
	}
	task := cloneTask(*t)
	err := r.saveLocked(ctx)
	r.mu.Unlock()

	r.signal(ctx)
	return Result{Status: StatusApplied, Task: task, SaveErr: err}
}

// Delete removes the task with id. The list is saved and the change hook
// fires even when nothing matched.
func (r *TaskRepository) Delete(ctx context.Context, id int) Result {
	r.mu.Lock()
	res := Result{Status: StatusNotFound}
	if i := r.indexLocked(id); i >= 0 {
		res = Result{Status: StatusApplied, Task: cloneTask(r.tasks[i]), Removed: 1}
		r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
	}
	res.SaveErr = r.saveLocked(ctx)
	r.mu.Unlock()

	r.signal(ctx)
	return res
}

func (r *TaskRepository) Edit(ctx context.Context, id int, text string) Result {
	text = strings.TrimSpace(text)

	r.mu.Lock()
	i := r.indexLocked(id)
	if i < 0 {
		r.mu.Unlock()
		return Result{Status: StatusNotFound}
	}
	if text == "" {
		r.mu.Unlock()
		return Result{Status: StatusSkipped}
	}
	r.tasks[i].Text = text
	task := cloneTask(r.tasks[i])
	err := r.saveLocked(ctx)
	r.mu.Unlock()

	r.signal(ctx)
	return Result{Status: StatusApplied, Task: task, SaveErr: err}
}

// ClearCompleted drops every completed task.
func (r *TaskRepository) ClearCompleted(ctx context.Context) Result {
	r.mu.Lock()
	kept := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(r.tasks) - len(kept)
	r.tasks = kept
	err := r.saveLocked(ctx)
	r.mu.Unlock()

	r.signal(ctx)
	return Result{Status: StatusApplied, Removed: removed, SaveErr: err}
}

// SetFilter stores mode as given. Modes other than active and completed
// behave like all in FilteredView.
func (r *TaskRepository) SetFilter(ctx context.Context, mode model.Filter) {
	r.mu.Lock()
	r.filter = mode
	r.mu.Unlock()

	r.signal(ctx)
}

func (r *TaskRepository) Filter() model.Filter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filter
}

// FilteredView returns the tasks visible under the current filter in
// insertion order.
func (r *TaskRepository) FilteredView() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if t.Matches(r.filter) {
			out = append(out, cloneTask(t))
		}
	}
	return out
}

func (r *TaskRepository) All() []model.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

func (r *TaskRepository) Get(id int) (model.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexLocked(id); i >= 0 {
		return cloneTask(r.tasks[i]), true
	}
	return model.Task{}, false
}

func (r *TaskRepository) Stats() model.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := model.Stats{Total: len(r.tasks)}
	for _, t := range r.tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Active = s.Total - s.Completed
	return s
}

func (r *TaskRepository) indexLocked(id int) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// saveLocked writes the full list. Failures are already logged by the
// JSON store; the in-memory list is kept as is.
func (r *TaskRepository) saveLocked(ctx context.Context) error {
	return r.store.Save(ctx, r.key, r.tasks)
}

func (r *TaskRepository) signal(ctx context.Context) {
	r.mu.Lock()
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(ctx)
	}
}

func cloneTask(t model.Task) model.Task {
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
