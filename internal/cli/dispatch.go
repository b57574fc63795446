package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/apiclient"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/exitcode"
	"taskboard/internal/guard"
)

// EnvFactory builds the session and backend a command runs against.
// Used to inject the backend during dispatch.
type EnvFactory func(ctx context.Context, cfg *config.Config) (*commands.Env, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  EnvFactory
}

// NewDispatcher creates a new dispatcher with the given registry and env factory.
func NewDispatcher(registry *commands.Registry, factory EnvFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, commands.HelpText)
		return exitcode.Success
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	// Subcommands are registered as "<group> <name>".
	if len(args) > 1 {
		if cmd, ok := d.registry.Find(cmdName + " " + args[1]); ok {
			return d.dispatchCommand(ctx, cmd, args[2:], out, errOut)
		}
	}

	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		if d.registry.HasGroup(cmdName) {
			if len(args) == 1 || strings.HasPrefix(args[1], "-") {
				fmt.Fprintf(errOut, "error: %s needs a subcommand\n", cmdName)
			} else {
				fmt.Fprintf(errOut, "error: unknown command: %s %s\n", cmdName, args[1])
			}
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatchCommand(ctx, cmd, args[1:], out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var baseURL string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&baseURL, "base-url", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	positionalArgs, err := parseInterspersed(fs, args)
	if err != nil {
		return flagError(errOut, err)
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.SetDebug(debug, errOut)
	if baseURL != "" {
		cfg.BaseURL = config.NormalizeBaseURL(baseURL)
	}
	cfg.Logger.Debug("dispatch", "command", cmd.Name(), "base_url", cfg.BaseURL)

	if d.factory == nil {
		fmt.Fprintln(errOut, "error: no backend configured")
		return exitcode.BackendError
	}
	env, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	if cmd.NeedsAuth() {
		if code, ok := authorize(ctx, env, errOut); !ok {
			return code
		}
	}

	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// parseInterspersed parses flags that may appear between positional
// arguments. Everything after "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// flagError reports a flag parsing error the way the rest of the CLI
// reports errors.
func flagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		flagPart := strings.TrimSpace(parts[len(parts)-1])
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}

// authorize restores and validates the stored session. It returns false
// with an exit code when the command may not run.
func authorize(ctx context.Context, env *commands.Env, errOut io.Writer) (int, bool) {
	if err := env.Session.Start(ctx); err != nil {
		switch {
		case apiclient.IsUnauthorized(err):
			fmt.Fprintf(errOut, "error: session expired: %s (run: taskboard login)\n", apiclient.MessageOr(err, "token rejected"))
			return exitcode.AuthError, false
		case apiclient.IsTransport(err), apiclient.StatusOf(err) >= 500,
			errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			fmt.Fprintf(errOut, "error: %s\n", apiclient.MessageOr(err, "could not check the session"))
			return exitcode.BackendError, false
		default:
			fmt.Fprintf(errOut, "error: %s\n", apiclient.MessageOr(err, "could not check the session"))
			return exitcode.AuthError, false
		}
	}

	if guard.Check(env.Session) != guard.Authenticated {
		fmt.Fprintln(errOut, "error: not logged in (run: taskboard login)")
		return exitcode.AuthError, false
	}
	return exitcode.Success, true
}
