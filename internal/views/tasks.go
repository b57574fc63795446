package views

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"taskboard/internal/apiclient"
	"taskboard/internal/listview"
	"taskboard/internal/service"
)

// TasksTable is the filterable, paginated task listing with a detail panel
// for the selected task and its comments.
type TasksTable struct {
	svc  service.TaskService
	list *listview.Controller[service.Task, service.TaskFilter]

	mu        sync.Mutex
	selected  *service.Task
	comments  []service.Comment
	detailErr string
}

// NewTasksTable creates a table with the given page size.
func NewTasksTable(svc service.TaskService, limit int) *TasksTable {
	return &TasksTable{
		svc:  svc,
		list: listview.New(svc.ListTasks, service.TaskFilter{}, limit, MsgLoadTasks),
	}
}

// List exposes the underlying list controller.
func (v *TasksTable) List() *listview.Controller[service.Task, service.TaskFilter] {
	return v.list
}

// SetFilter applies filter and reloads from the first page.
func (v *TasksTable) SetFilter(ctx context.Context, filter service.TaskFilter) error {
	filter = trimFilter(filter)
	if !filter.Scoped() {
		v.list.ResetFilter(filter)
		v.CloseDetail()
		return ErrProjectRequired
	}
	return v.list.SetFilter(ctx, filter)
}

func trimFilter(f service.TaskFilter) service.TaskFilter {
	f.ProjectID = strings.TrimSpace(f.ProjectID)
	f.TeamID = strings.TrimSpace(f.TeamID)
	f.Q = strings.TrimSpace(f.Q)
	return f
}

// Show applies filter and loads the page at offset in one request.
func (v *TasksTable) Show(ctx context.Context, filter service.TaskFilter, offset int) error {
	filter = trimFilter(filter)
	v.list.ResetFilter(filter)
	return v.Load(ctx, offset)
}

// Load fetches the page at offset. Without a project or team nothing is
// requested: the page and the detail panel are cleared.
func (v *TasksTable) Load(ctx context.Context, offset int) error {
	if !v.list.Filter().Scoped() {
		v.list.Reset()
		v.CloseDetail()
		return ErrProjectRequired
	}
	return v.list.Load(ctx, offset)
}

// Reload fetches the current page again.
func (v *TasksTable) Reload(ctx context.Context) error {
	return v.Load(ctx, v.list.Offset())
}

// Next loads the following page.
func (v *TasksTable) Next(ctx context.Context) error {
	return v.list.Next(ctx)
}

// Prev loads the preceding page.
func (v *TasksTable) Prev(ctx context.Context) error {
	return v.list.Prev(ctx)
}

// Create adds a task titled title to the filtered project and reloads from
// the first page.
func (v *TasksTable) Create(ctx context.Context, title string) (service.Task, error) {
	title = strings.TrimSpace(title)
	projectID := v.list.Filter().ProjectID
	if projectID == "" {
		return service.Task{}, ErrProjectRequired
	}
	if title == "" {
		return service.Task{}, fmt.Errorf("title is required")
	}

	task, err := v.svc.CreateTask(ctx, service.CreateTaskRequest{ProjectID: projectID, Title: title})
	if err != nil {
		v.list.SetErr(err, MsgCreateTask)
		return service.Task{}, err
	}
	return task, v.Load(ctx, 0)
}

// Select opens the detail panel for task and loads its comments.
func (v *TasksTable) Select(ctx context.Context, task service.Task) error {
	v.mu.Lock()
	t := task
	v.selected = &t
	v.comments = []service.Comment{}
	v.detailErr = ""
	v.mu.Unlock()

	return v.loadComments(ctx, task.ID, MsgLoadComments)
}

// Open fetches task taskID and selects it.
func (v *TasksTable) Open(ctx context.Context, taskID string) error {
	task, err := v.svc.GetTask(ctx, taskID)
	if err != nil {
		v.setDetailErr(err, MsgLoadTask)
		return err
	}
	return v.Select(ctx, task)
}

func (v *TasksTable) loadComments(ctx context.Context, taskID, fallback string) error {
	comments, err := v.svc.ListComments(ctx, taskID)
	if err != nil {
		v.setDetailErr(err, fallback)
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil || v.selected.ID != taskID {
		return nil
	}
	if comments == nil {
		comments = []service.Comment{}
	}
	v.comments = comments
	return nil
}

// Selected returns the task in the detail panel, if any.
func (v *TasksTable) Selected() (service.Task, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return service.Task{}, false
	}
	return *v.selected, true
}

// Comments returns the comments of the selected task.
func (v *TasksTable) Comments() []service.Comment {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.comments)
}

// DetailErr returns the last failure of a detail panel action.
func (v *TasksTable) DetailErr() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detailErr
}

// UpdateSelected sends patch for the selected task, shows the server's
// version in the detail panel and reloads the current page.
func (v *TasksTable) UpdateSelected(ctx context.Context, patch service.TaskPatch) (service.Task, error) {
	current, ok := v.Selected()
	if !ok {
		return service.Task{}, fmt.Errorf("no task selected")
	}
	if patch.Empty() {
		return current, nil
	}

	updated, err := v.svc.UpdateTask(ctx, current.ID, patch)
	if err != nil {
		v.setDetailErr(err, MsgUpdateTask)
		return service.Task{}, err
	}

	v.mu.Lock()
	if v.selected != nil && v.selected.ID == current.ID {
		v.selected = &updated
	}
	v.detailErr = ""
	v.mu.Unlock()

	if v.list.Filter().Scoped() {
		if err := v.list.Reload(ctx); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

// AddComment appends body to the selected task and re-fetches its comments.
func (v *TasksTable) AddComment(ctx context.Context, body string) error {
	body = strings.TrimSpace(body)
	current, ok := v.Selected()
	if !ok {
		return fmt.Errorf("no task selected")
	}
	if body == "" {
		return fmt.Errorf("comment body is required")
	}

	if _, err := v.svc.AddComment(ctx, current.ID, body); err != nil {
		v.setDetailErr(err, MsgAddComment)
		return err
	}
	v.setDetailErr(nil, "")
	return v.loadComments(ctx, current.ID, MsgAddComment)
}

// CloseDetail clears the detail panel. The list is left as it is.
func (v *TasksTable) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
	v.comments = nil
	v.detailErr = ""
}

func (v *TasksTable) setDetailErr(err error, fallback string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detailErr = apiclient.MessageOr(err, fallback)
}
