package commands

import (
	"context"
	"flag"
	"io"
	"strings"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/views"
)

func init() {
	Register(&BoardCmd{})
	Register(&MoveCmd{})
}

// BoardCmd prints the kanban columns of a project.
type BoardCmd struct {
	project string
}

func (c *BoardCmd) Name() string      { return "board" }
func (c *BoardCmd) Aliases() []string { return nil }
func (c *BoardCmd) Synopsis() string  { return "Show a project's tasks grouped by status" }
func (c *BoardCmd) Usage() string     { return "taskboard board [common flags] --project <id>" }
func (c *BoardCmd) NeedsAuth() bool   { return true }

func (c *BoardCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
}

func (c *BoardCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	board, code := loadBoard(ctx, env, c.project, errOut)
	if board == nil {
		return code
	}
	output.FormatBoard(out, board.Columns())
	return exitcode.Success
}

// MoveCmd changes the status of a task on a project board.
type MoveCmd struct {
	project string
}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to another board column" }
func (c *MoveCmd) Usage() string {
	return "taskboard move [common flags] --project <id> <task-id> <open|in_progress|done>"
}
func (c *MoveCmd) NeedsAuth() bool { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.project, "project", "", "")
}

func (c *MoveCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		return usageError(errOut, "expected a task id and a status")
	}
	if err := validateStatus(args[1]); err != nil {
		return usageError(errOut, "%s", err)
	}

	board, code := loadBoard(ctx, env, c.project, errOut)
	if board == nil {
		return code
	}
	if err := board.Move(ctx, args[0], args[1], -1); err != nil {
		if board.Err() != "" {
			return fail(errOut, err, board.Err())
		}
		return usageError(errOut, "%s", err)
	}
	return ok(env, out)
}

// loadBoard loads the board of project. On failure it reports the error and
// returns a nil board with the exit code.
func loadBoard(ctx context.Context, env *Env, project string, errOut io.Writer) (*views.Board, int) {
	project = strings.TrimSpace(project)
	if project == "" {
		return nil, usageError(errOut, "%s", views.ErrProjectRequired)
	}
	board := views.NewBoard(env.Service, env.Config.BoardLimit)
	if err := board.SetProject(ctx, project); err != nil {
		return nil, fail(errOut, err, views.MsgLoadTasks)
	}
	return board, exitcode.Success
}
