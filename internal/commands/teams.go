package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func init() {
	Register(&TeamsCmd{})
	Register(&TeamCreateCmd{})
	Register(&TeamShowCmd{})
	Register(&TeamAddMemberCmd{})
}

// TeamsCmd lists one page of teams.
type TeamsCmd struct {
	limit  int
	offset int
}

func (c *TeamsCmd) Name() string      { return "teams" }
func (c *TeamsCmd) Aliases() []string { return nil }
func (c *TeamsCmd) Synopsis() string  { return "List teams" }
func (c *TeamsCmd) Usage() string {
	return "taskboard teams [common flags] [--limit <n>] [--offset <n>]"
}
func (c *TeamsCmd) NeedsAuth() bool { return true }

func (c *TeamsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.limit, "limit", 0, "")
	fs.IntVar(&c.offset, "offset", 0, "")
}

func (c *TeamsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return usageError(errOut, "unexpected argument: %s", args[0])
	}
	if c.limit < 0 || c.offset < 0 {
		return usageError(errOut, "--limit and --offset must not be negative")
	}
	limit := c.limit
	if limit == 0 {
		limit = env.Config.PageSize
	}

	table := views.NewTeamsTable(env.Service, limit)
	if err := table.Load(ctx, c.offset); err != nil {
		return fail(errOut, err, views.MsgLoadTeams)
	}
	list := table.List()
	output.FormatTeams(out, service.Page[service.Team]{Items: list.Items(), Meta: list.Meta()})
	return exitcode.Success
}

// TeamCreateCmd creates a team.
type TeamCreateCmd struct{}

func (c *TeamCreateCmd) Name() string      { return "team create" }
func (c *TeamCreateCmd) Aliases() []string { return nil }
func (c *TeamCreateCmd) Synopsis() string  { return "Create a team" }
func (c *TeamCreateCmd) Usage() string     { return "taskboard team create [common flags] <name...>" }
func (c *TeamCreateCmd) NeedsAuth() bool   { return true }

func (c *TeamCreateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TeamCreateCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	name := joinArgs(args)
	if name == "" {
		return usageError(errOut, "team name required")
	}
	team, err := env.Service.CreateTeam(ctx, name)
	if err != nil {
		return fail(errOut, err, views.MsgCreateTeam)
	}
	if !env.Config.Quiet {
		fmt.Fprintf(out, "Created %s\n", team.ID)
	}
	return exitcode.Success
}

// TeamShowCmd prints a team and its members.
type TeamShowCmd struct{}

func (c *TeamShowCmd) Name() string      { return "team show" }
func (c *TeamShowCmd) Aliases() []string { return nil }
func (c *TeamShowCmd) Synopsis() string  { return "Show a team with its members" }
func (c *TeamShowCmd) Usage() string     { return "taskboard team show [common flags] <team-id>" }
func (c *TeamShowCmd) NeedsAuth() bool   { return true }

func (c *TeamShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TeamShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		return usageError(errOut, "expected exactly one team id")
	}
	table := views.NewTeamsTable(env.Service, env.Config.PageSize)
	if err := table.Select(ctx, args[0]); err != nil {
		return fail(errOut, err, views.MsgLoadTeamDetail)
	}
	team, _ := table.Selected()
	output.FormatTeamDetail(out, team)
	return exitcode.Success
}

// TeamAddMemberCmd adds a user to a team.
type TeamAddMemberCmd struct {
	role string
}

func (c *TeamAddMemberCmd) Name() string      { return "team add-member" }
func (c *TeamAddMemberCmd) Aliases() []string { return nil }
func (c *TeamAddMemberCmd) Synopsis() string  { return "Add a user to a team" }
func (c *TeamAddMemberCmd) Usage() string {
	return "taskboard team add-member [common flags] [--role <role>] <team-id> <user-id>"
}
func (c *TeamAddMemberCmd) NeedsAuth() bool { return true }

func (c *TeamAddMemberCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.role, "role", service.DefaultTeamRole, "")
}

func (c *TeamAddMemberCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		return usageError(errOut, "expected a team id and a user id")
	}
	err := env.Service.AddTeamMember(ctx, args[0], service.AddMemberRequest{UserID: args[1], RoleInTeam: c.role})
	if err != nil {
		return fail(errOut, err, views.MsgAddMember)
	}
	return ok(env, out)
}
