package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/exitcode"
	"taskboard/internal/tui"
)

func init() {
	Register(&TuiCmd{})
}

// TuiCmd starts the interactive client. The login screen is part of the
// program, so no session is required up front.
type TuiCmd struct{}

func (c *TuiCmd) Name() string      { return "tui" }
func (c *TuiCmd) Aliases() []string { return []string{"ui"} }
func (c *TuiCmd) Synopsis() string  { return "Start the interactive board" }
func (c *TuiCmd) Usage() string     { return "taskboard tui [common flags]" }
func (c *TuiCmd) NeedsAuth() bool   { return false }

func (c *TuiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TuiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}
	err := tui.Run(ctx, tui.Options{
		Session:    env.Session,
		Service:    env.Service,
		PageSize:   env.Config.PageSize,
		BoardLimit: env.Config.BoardLimit,
	})
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
