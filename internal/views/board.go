package views

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"taskboard/internal/listview"
	"taskboard/internal/service"
)

// Column is one status column of the board.
type Column struct {
	Status string
	Title  string
	Tasks  []service.Task
}

var columnTitles = map[string]string{
	service.StatusOpen:       "Open",
	service.StatusInProgress: "In Progress",
	service.StatusDone:       "Done",
}

// ColumnTitle returns the display title of a status column.
func ColumnTitle(status string) string {
	if t, ok := columnTitles[status]; ok {
		return t
	}
	return status
}

// Board is the kanban view of one project.
type Board struct {
	svc  service.TaskService
	list *listview.Controller[service.Task, service.TaskFilter]
}

// NewBoard creates a board that loads up to limit tasks.
func NewBoard(svc service.TaskService, limit int) *Board {
	return &Board{
		svc:  svc,
		list: listview.New(svc.ListTasks, service.TaskFilter{}, limit, MsgLoadTasks),
	}
}

// ProjectID returns the project shown on the board.
func (b *Board) ProjectID() string {
	return b.list.Filter().ProjectID
}

// SetProject switches the board to projectID and loads it.
func (b *Board) SetProject(ctx context.Context, projectID string) error {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		b.list.ResetFilter(service.TaskFilter{})
		return nil
	}
	return b.list.SetFilter(ctx, service.TaskFilter{ProjectID: projectID})
}

// Load fetches the board's tasks. Without a project the board is emptied
// and no request is made.
func (b *Board) Load(ctx context.Context) error {
	if b.ProjectID() == "" {
		b.list.Reset()
		return nil
	}
	return b.list.Load(ctx, 0)
}

// Status returns the load state.
func (b *Board) Status() listview.Status {
	return b.list.Status()
}

// Err returns the last failure message.
func (b *Board) Err() string {
	return b.list.Err()
}

// Tasks returns the loaded tasks in board order.
func (b *Board) Tasks() []service.Task {
	return b.list.Items()
}

// Columns groups the loaded tasks by status. Tasks without a status are
// shown as open.
func (b *Board) Columns() []Column {
	cols := make([]Column, len(service.Statuses))
	index := make(map[string]int, len(cols))
	for i, s := range service.Statuses {
		cols[i] = Column{Status: s, Title: ColumnTitle(s), Tasks: []service.Task{}}
		index[s] = i
	}
	for _, t := range b.list.Items() {
		if i, ok := index[columnOf(t)]; ok {
			cols[i].Tasks = append(cols[i].Tasks, t)
		}
	}
	return cols
}

func columnOf(t service.Task) string {
	if t.Status == "" {
		return service.StatusOpen
	}
	return t.Status
}

// Create adds an open, medium-priority task to the board's project and
// puts it at the top of the board.
func (b *Board) Create(ctx context.Context, title string) (service.Task, error) {
	title = strings.TrimSpace(title)
	projectID := b.ProjectID()
	if projectID == "" {
		return service.Task{}, ErrProjectRequired
	}
	if title == "" {
		return service.Task{}, fmt.Errorf("title is required")
	}

	task, err := b.svc.CreateTask(ctx, service.CreateTaskRequest{
		ProjectID:       projectID,
		Title:           title,
		Status:          service.StatusOpen,
		Priority:        service.PriorityMedium,
		AssigneeUserIDs: []string{},
	})
	if err != nil {
		b.list.SetErr(err, MsgCreateTask)
		return service.Task{}, err
	}
	b.list.SetErr(nil, "")
	b.list.Prepend(task)
	return task, nil
}

// Move drops task taskID into column status at position index within that
// column; a negative index keeps the task's place in its own column or
// appends it to another one. The board changes immediately; if the backend
// rejects the new status the task goes back where it was.
//
// Dropping a task on its own position makes no request.
func (b *Board) Move(ctx context.Context, taskID, status string, index int) error {
	if !service.ValidStatus(status) {
		return fmt.Errorf("invalid status %q (want one of: %s)", status, strings.Join(service.Statuses, ", "))
	}

	var from Column
	fromIndex := -1
	for _, col := range b.Columns() {
		if i := slices.IndexFunc(col.Tasks, func(t service.Task) bool { return t.ID == taskID }); i >= 0 {
			from, fromIndex = col, i
			break
		}
	}
	if fromIndex < 0 {
		return fmt.Errorf("task %s is not on the board", taskID)
	}
	if from.Status == status && (index < 0 || index == fromIndex) {
		return nil
	}

	return b.list.Mutate(ctx,
		func(tasks []service.Task) []service.Task {
			return moveTask(tasks, taskID, status, index)
		},
		func(ctx context.Context) error {
			_, err := b.svc.UpdateTask(ctx, taskID, service.TaskPatch{Status: &status})
			return err
		},
		MsgMoveTask,
	)
}

// moveTask removes the task from tasks, sets its status and reinserts it
// before the task at position index of the destination column, or after the
// column's last task when index is out of range.
func moveTask(tasks []service.Task, taskID, status string, index int) []service.Task {
	i := slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID == taskID })
	moved := tasks[i]
	moved.Status = status
	rest := slices.Delete(tasks, i, i+1)

	at, seen, last := -1, 0, -1
	for j, t := range rest {
		if columnOf(t) != status {
			continue
		}
		if seen == index {
			at = j
			break
		}
		seen++
		last = j
	}
	switch {
	case at >= 0:
	case last >= 0:
		at = last + 1
	default:
		at = len(rest)
	}
	return slices.Insert(rest, at, moved)
}
