package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func init() {
	Register(&TaskAddCmd{})
	Register(&TaskShowCmd{})
	Register(&TaskUpdateCmd{})
	Register(&TaskCommentCmd{})
}

// TaskAddCmd creates a task.
type TaskAddCmd struct {
	project     string
	team        string
	description string
	status      string
	priority    string
	due         string
	assignees   stringList
}

func (c *TaskAddCmd) Name() string      { return "task add" }
func (c *TaskAddCmd) Aliases() []string { return []string{"add"} }
func (c *TaskAddCmd) Synopsis() string  { return "Create a task" }
func (c *TaskAddCmd) Usage() string {
	return "taskboard task add [common flags] --project <id> [--team <id>] [--description <text>] [--status <s>] [--priority <p>] [--due <date>] [--assignee <user-id>...] <title...>"
}
func (c *TaskAddCmd) NeedsAuth() bool { return true }

func (c *TaskAddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.assignees = nil
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.team, "team", "", "")
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.Var(&c.assignees, "assignee", "")
}

func (c *TaskAddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	title := joinArgs(args)
	if title == "" {
		return usageError(errOut, "title required")
	}
	project := strings.TrimSpace(c.project)
	if project == "" {
		return usageError(errOut, "%s", views.ErrProjectRequired)
	}
	if err := validateStatus(c.status); err != nil {
		return usageError(errOut, "%s", err)
	}
	if err := validatePriority(c.priority); err != nil {
		return usageError(errOut, "%s", err)
	}

	task, err := env.Service.CreateTask(ctx, service.CreateTaskRequest{
		ProjectID:       project,
		TeamID:          strings.TrimSpace(c.team),
		Title:           title,
		Description:     c.description,
		Status:          c.status,
		Priority:        c.priority,
		DueDate:         c.due,
		AssigneeUserIDs: c.assignees,
	})
	if err != nil {
		return fail(errOut, err, views.MsgCreateTask)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "Created %s\n", task.ID)
	}
	return exitcode.Success
}

// TaskShowCmd prints a task and its comments.
type TaskShowCmd struct{}

func (c *TaskShowCmd) Name() string      { return "task show" }
func (c *TaskShowCmd) Aliases() []string { return []string{"show"} }
func (c *TaskShowCmd) Synopsis() string  { return "Show a task with its comments" }
func (c *TaskShowCmd) Usage() string     { return "taskboard task show [common flags] <task-id>" }
func (c *TaskShowCmd) NeedsAuth() bool   { return true }

func (c *TaskShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TaskShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return usageError(errOut, "expected exactly one task id")
	}

	table := views.NewTasksTable(env.Service, env.Config.PageSize)
	if err := table.Open(ctx, args[0]); err != nil {
		return fail(errOut, err, table.DetailErr())
	}
	task, _ := table.Selected()
	output.FormatTaskDetail(out, task, table.Comments())
	return exitcode.Success
}

// TaskUpdateCmd patches fields of a task.
type TaskUpdateCmd struct {
	title       optionalString
	description optionalString
	status      optionalString
	priority    optionalString
	due         optionalString
}

func (c *TaskUpdateCmd) Name() string      { return "task update" }
func (c *TaskUpdateCmd) Aliases() []string { return []string{"update"} }
func (c *TaskUpdateCmd) Synopsis() string  { return "Update fields of a task" }
func (c *TaskUpdateCmd) Usage() string {
	return "taskboard task update [common flags] [--title <t>] [--description <d>] [--status <s>] [--priority <p>] [--due <date>] <task-id>"
}
func (c *TaskUpdateCmd) NeedsAuth() bool { return true }

func (c *TaskUpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = TaskUpdateCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.priority, "priority", "")
	fs.Var(&c.due, "due", "")
}

func (c *TaskUpdateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return usageError(errOut, "expected exactly one task id")
	}

	patch := service.TaskPatch{
		Title:       c.title.ptr(),
		Description: c.description.ptr(),
		Status:      c.status.ptr(),
		Priority:    c.priority.ptr(),
		DueDate:     c.due.ptr(),
	}
	if patch.Empty() {
		return usageError(errOut, "nothing to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return usageError(errOut, "title must not be empty")
	}
	if err := validateStatus(c.status.value); err != nil {
		return usageError(errOut, "%s", err)
	}
	if err := validatePriority(c.priority.value); err != nil {
		return usageError(errOut, "%s", err)
	}

	task, err := env.Service.UpdateTask(ctx, args[0], patch)
	if err != nil {
		return fail(errOut, err, views.MsgUpdateTask)
	}
	if !env.Config.Quiet {
		fmt.Fprintf(out, "Updated %s\n", task.ID)
	}
	return exitcode.Success
}

// TaskCommentCmd adds a comment to a task.
type TaskCommentCmd struct{}

func (c *TaskCommentCmd) Name() string      { return "task comment" }
func (c *TaskCommentCmd) Aliases() []string { return []string{"comment"} }
func (c *TaskCommentCmd) Synopsis() string  { return "Comment on a task" }
func (c *TaskCommentCmd) Usage() string {
	return "taskboard task comment [common flags] <task-id> <body...>"
}
func (c *TaskCommentCmd) NeedsAuth() bool { return true }

func (c *TaskCommentCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TaskCommentCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		return usageError(errOut, "expected a task id and a comment body")
	}
	body := joinArgs(args[1:])
	if body == "" {
		return usageError(errOut, "comment body is required")
	}

	if _, err := env.Service.AddComment(ctx, args[0], body); err != nil {
		return fail(errOut, err, views.MsgAddComment)
	}
	return ok(env, out)
}

// optionalString is a string flag that remembers whether it was set, so an
// explicit empty value can be told apart from an absent flag.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
