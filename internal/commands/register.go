package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email    string
	password string
	roles    stringList
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskboard register [common flags] --email <email> --password <password> [--role <role>...]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.roles = nil
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.Var(&c.roles, "role", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" || c.password == "" {
		return usageError(errOut, "--email and --password are required")
	}

	_, err := env.Service.Register(ctx, service.RegisterRequest{
		Email:    email,
		Password: c.password,
		Roles:    c.roles,
	})
	if err != nil {
		return fail(errOut, err, views.MsgRegister)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "Account created. You can now sign in.")
	}
	return exitcode.Success
}
