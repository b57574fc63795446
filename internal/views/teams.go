package views

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taskboard/internal/apiclient"
	"taskboard/internal/listview"
	"taskboard/internal/service"
)

// TeamsTable is the paginated team listing with a member detail panel.
type TeamsTable struct {
	svc  service.TeamService
	list *listview.Controller[service.Team, struct{}]

	mu        sync.Mutex
	selected  *service.TeamDetail
	detailErr string
	// pending is the team whose detail was requested last.
	pending string
}

// NewTeamsTable creates a table with the given page size.
func NewTeamsTable(svc service.TeamService, limit int) *TeamsTable {
	fetch := func(ctx context.Context, _ struct{}, w service.Window) (service.Page[service.Team], error) {
		return svc.ListTeams(ctx, w)
	}
	return &TeamsTable{
		svc:  svc,
		list: listview.New(fetch, struct{}{}, limit, MsgLoadTeams),
	}
}

// List exposes the underlying list controller.
func (v *TeamsTable) List() *listview.Controller[service.Team, struct{}] {
	return v.list
}

// Load fetches the page at offset.
func (v *TeamsTable) Load(ctx context.Context, offset int) error {
	return v.list.Load(ctx, offset)
}

// Create adds a team named name and reloads from the first page.
func (v *TeamsTable) Create(ctx context.Context, name string) (service.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return service.Team{}, fmt.Errorf("team name is required")
	}
	team, err := v.svc.CreateTeam(ctx, name)
	if err != nil {
		v.list.SetErr(err, MsgCreateTeam)
		return service.Team{}, err
	}
	return team, v.list.Load(ctx, 0)
}

// Select fetches the detail of team teamID into the detail panel. A
// response that arrives after another Select or CloseDetail is dropped.
func (v *TeamsTable) Select(ctx context.Context, teamID string) error {
	v.mu.Lock()
	v.pending = teamID
	v.mu.Unlock()

	detail, err := v.svc.GetTeam(ctx, teamID)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.pending != teamID {
		return nil
	}
	if err != nil {
		v.detailErr = apiclient.MessageOr(err, MsgLoadTeamDetail)
		return err
	}
	v.selected = &detail
	v.detailErr = ""
	return nil
}

// Selected returns the team in the detail panel, if any.
func (v *TeamsTable) Selected() (service.TeamDetail, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return service.TeamDetail{}, false
	}
	return *v.selected, true
}

// DetailErr returns the last failure of a detail panel action.
func (v *TeamsTable) DetailErr() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detailErr
}

// AddMember adds userID to the selected team and re-fetches its detail.
// An empty role means service.DefaultTeamRole.
func (v *TeamsTable) AddMember(ctx context.Context, userID, role string) error {
	userID = strings.TrimSpace(userID)
	team, ok := v.Selected()
	if !ok {
		return fmt.Errorf("no team selected")
	}
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if role == "" {
		role = service.DefaultTeamRole
	}

	err := v.svc.AddTeamMember(ctx, team.ID, service.AddMemberRequest{UserID: userID, RoleInTeam: role})
	if err != nil {
		v.setDetailErr(err, MsgAddMember)
		return err
	}
	return v.Select(ctx, team.ID)
}

// CloseDetail clears the detail panel. The list is left as it is.
func (v *TeamsTable) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending = ""
	v.selected = nil
	v.detailErr = ""
}

func (v *TeamsTable) setDetailErr(err error, fallback string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detailErr = apiclient.MessageOr(err, fallback)
}
