package commands

import (
	"context"
	"flag"
	"io"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func init() {
	Register(&TasksCmd{})
}

// TasksCmd lists one page of tasks of a project or team.
type TasksCmd struct {
	project  string
	team     string
	query    string
	status   string
	priority string
	limit    int
	offset   int
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return []string{"ls"} }
func (c *TasksCmd) Synopsis() string  { return "List tasks of a project or team" }
func (c *TasksCmd) Usage() string {
	return "taskboard tasks [common flags] (--project <id> | --team <id>) [--q <text>] [--status <s>] [--priority <p>] [--limit <n>] [--offset <n>]"
}
func (c *TasksCmd) NeedsAuth() bool { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
	fs.StringVar(&c.team, "team", "", "")
	fs.StringVar(&c.query, "q", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.priority, "priority", "", "")
	fs.IntVar(&c.limit, "limit", 0, "")
	fs.IntVar(&c.offset, "offset", 0, "")
}

func (c *TasksCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if err := validateStatus(c.status); err != nil {
		return usageError(errOut, "%s", err)
	}
	if err := validatePriority(c.priority); err != nil {
		return usageError(errOut, "%s", err)
	}
	if c.limit < 0 || c.offset < 0 {
		return usageError(errOut, "--limit and --offset must not be negative")
	}

	limit := c.limit
	if limit == 0 {
		limit = env.Config.PageSize
	}
	table := views.NewTasksTable(env.Service, limit)
	filter := service.TaskFilter{
		ProjectID: c.project,
		TeamID:    c.team,
		Q:         c.query,
		Status:    c.status,
		Priority:  c.priority,
	}
	if err := table.Show(ctx, filter, c.offset); err != nil {
		return fail(errOut, err, views.MsgLoadTasks)
	}

	list := table.List()
	output.FormatTasks(out, service.Page[service.Task]{Items: list.Items(), Meta: list.Meta()})
	return exitcode.Success
}
