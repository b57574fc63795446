// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taskboard/internal/apiclient"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/session"
	"taskboard/internal/views"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name. Subcommands use two words,
	// e.g. "task add".
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a logged-in session.
	// The dispatcher restores and validates the session before Run.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with positional args and returns the exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env carries what a command runs against.
type Env struct {
	Config  *config.Config
	Session *session.Manager
	Service service.Service
	// In is read for prompts such as the login password.
	In io.Reader
}

// fail prints err and maps it to an exit code. fallback is printed when err
// has no message of its own.
func fail(errOut io.Writer, err error, fallback string) int {
	fmt.Fprintf(errOut, "error: %s\n", apiclient.MessageOr(err, fallback))
	return codeFor(err)
}

func codeFor(err error) int {
	status := apiclient.StatusOf(err)
	switch {
	case errors.Is(err, session.ErrNotAuthenticated), status == http.StatusUnauthorized:
		return exitcode.AuthError
	case errors.Is(err, views.ErrProjectRequired):
		return exitcode.UserError
	case status >= 400 && status < 500:
		return exitcode.UserError
	case status != 0, apiclient.IsTransport(err):
		return exitcode.BackendError
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exitcode.BackendError
	default:
		return exitcode.UserError
	}
}

// usageError prints a user error.
func usageError(errOut io.Writer, format string, a ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", a...)
	return exitcode.UserError
}

// ok prints "ok" unless quiet.
func ok(env *Env, out io.Writer) int {
	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// joinArgs joins positional args into one trimmed string.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func validateStatus(s string) error {
	if s != "" && !service.ValidStatus(s) {
		return fmt.Errorf("invalid status: %s (want one of: %s)", s, strings.Join(service.Statuses, ", "))
	}
	return nil
}

func validatePriority(p string) error {
	if p != "" && !service.ValidPriority(p) {
		return fmt.Errorf("invalid priority: %s (want one of: %s)", p, strings.Join(service.Priorities, ", "))
	}
	return nil
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}
