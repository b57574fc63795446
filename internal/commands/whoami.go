package commands

import (
	"context"
	"flag"
	"io"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/session"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd prints the authenticated profile.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return []string{"me"} }
func (c *WhoamiCmd) Synopsis() string  { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string     { return "taskboard whoami [common flags]" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	st := env.Session.State()
	if st.User == nil {
		if err := env.Session.Refresh(ctx); err != nil {
			return fail(errOut, err, "Failed to load profile")
		}
		st = env.Session.State()
	}
	if st.User == nil {
		return fail(errOut, session.ErrNotAuthenticated, "")
	}
	output.FormatUser(out, *st.User)
	return exitcode.Success
}
