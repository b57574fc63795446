package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskboard help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText)
	return exitcode.Success
}

// HelpText is the usage summary printed by help and by a bare invocation.
const HelpText = `Usage:
  taskboard login [common flags] --email <email> [--password <password>]
  taskboard logout [common flags]
  taskboard register [common flags] --email <email> --password <password> [--role <role>...]
  taskboard whoami [common flags]
  taskboard tasks [common flags] --project <id>|--team <id> [--q <text>] [--status <s>] [--priority <p>] [--limit <n>] [--offset <n>]
  taskboard task add [common flags] --project <id> [--status <s>] [--priority <p>] [--description <d>] [--due <YYYY-MM-DD>] [--assignee <user-id>...] <title...>
  taskboard task show [common flags] <task-id>
  taskboard task update [common flags] <task-id> [--status <s>] [--priority <p>] [--title <t>] [--description <d>] [--due <YYYY-MM-DD>]
  taskboard task comment [common flags] <task-id> <body...>
  taskboard board [common flags] --project <id>
  taskboard move [common flags] --project <id> <task-id> <open|in_progress|done>
  taskboard teams [common flags] [--limit <n>] [--offset <n>]
  taskboard team create [common flags] <name...>
  taskboard team show [common flags] <team-id>
  taskboard team add-member [common flags] <team-id> <user-id> [--role <role>]
  taskboard notifications [common flags] [--unread] [--limit <n>] [--offset <n>]
  taskboard analytics [common flags] --team <id>|--project <id>
  taskboard tui [common flags]
  taskboard help
  taskboard version

Common flags:
  --config <dir>     Override config directory
  --base-url <url>   Override the API base URL
  --quiet            Suppress informational output
  --debug            Print debug logs to stderr
`
