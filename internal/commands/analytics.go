package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func init() {
	Register(&AnalyticsCmd{})
}

// AnalyticsCmd prints the rollup counters of a team or project.
type AnalyticsCmd struct {
	team    string
	project string
}

func (c *AnalyticsCmd) Name() string      { return "analytics" }
func (c *AnalyticsCmd) Aliases() []string { return []string{"stats"} }
func (c *AnalyticsCmd) Synopsis() string  { return "Show task counters of a team or project" }
func (c *AnalyticsCmd) Usage() string {
	return "taskboard analytics [common flags] (--team <id> | --project <id>)"
}
func (c *AnalyticsCmd) NeedsAuth() bool { return true }

func (c *AnalyticsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.team, "team", "", "")
	fs.StringVar(&c.project, "project", "", "")
}

func (c *AnalyticsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	team, project := strings.TrimSpace(c.team), strings.TrimSpace(c.project)
	if (team == "") == (project == "") {
		return usageError(errOut, "exactly one of --team or --project is required")
	}

	a := views.NewAnalytics(env.Service)
	var (
		r     service.Rollup
		err   error
		title string
	)
	if team != "" {
		r, err = a.Team(ctx, team)
		title = fmt.Sprintf("Team %s", team)
	} else {
		r, err = a.Project(ctx, project)
		title = fmt.Sprintf("Project %s", project)
	}
	if err != nil {
		return fail(errOut, err, "")
	}
	output.FormatRollup(out, title, r)
	return exitcode.Success
}
