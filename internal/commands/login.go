package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/apiclient"
	"taskboard/internal/exitcode"
	"taskboard/internal/session"
	"taskboard/internal/views"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the access token" }
func (c *LoginCmd) Usage() string {
	return "taskboard login [common flags] --email <email> [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" {
		return usageError(errOut, "--email is required")
	}

	password := c.password
	if password == "" {
		if !env.Config.Quiet {
			fmt.Fprint(errOut, "Password: ")
		}
		var err error
		password, err = readLine(env.In)
		if err != nil || password == "" {
			return usageError(errOut, "password required")
		}
	}

	if err := env.Config.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := env.Session.Login(ctx, email, password); err != nil {
		if errors.Is(err, session.ErrSuperseded) {
			fmt.Fprintln(errOut, "error: login was interrupted")
			return exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: %s\n", apiclient.MessageOr(err, views.MsgLogin))
		if code := codeFor(err); code != exitcode.UserError {
			return code
		}
		return exitcode.AuthError
	}

	if !env.Config.Quiet {
		if u := env.Session.State().User; u != nil {
			fmt.Fprintf(out, "Logged in as %s\n", u.Email)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}

func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", io.EOF
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}
