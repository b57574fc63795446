package commands

import (
	"context"
	"flag"
	"io"

	"taskboard/internal/exitcode"
	"taskboard/internal/output"
	"taskboard/internal/service"
	"taskboard/internal/views"
)

func init() {
	Register(&NotificationsCmd{})
}

// NotificationsCmd lists one page of notifications.
type NotificationsCmd struct {
	unread bool
	limit  int
	offset int
}

func (c *NotificationsCmd) Name() string      { return "notifications" }
func (c *NotificationsCmd) Aliases() []string { return []string{"inbox"} }
func (c *NotificationsCmd) Synopsis() string  { return "List notifications" }
func (c *NotificationsCmd) Usage() string {
	return "taskboard notifications [common flags] [--unread] [--limit <n>] [--offset <n>]"
}
func (c *NotificationsCmd) NeedsAuth() bool { return true }

func (c *NotificationsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.unread, "unread", false, "")
	fs.IntVar(&c.limit, "limit", 0, "")
	fs.IntVar(&c.offset, "offset", 0, "")
}

func (c *NotificationsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
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

	feed := views.NewNotifications(env.Service, limit)
	feed.List().ResetFilter(service.NotificationFilter{UnreadOnly: c.unread})
	if err := feed.Load(ctx, c.offset); err != nil {
		return fail(errOut, err, views.MsgLoadNotifications)
	}
	list := feed.List()
	output.FormatNotifications(out, service.Page[service.Notification]{Items: list.Items(), Meta: list.Meta()})
	return exitcode.Success
}
