package taskapi

import (
	"context"
	"net/url"

	"taskboard/internal/service"
)

func teamPath(teamID string) string {
	return "/teams/" + url.PathEscape(teamID)
}

// ListTeams returns one page of teams via GET /teams.
func (c *Client) ListTeams(ctx context.Context, w service.Window) (service.Page[service.Team], error) {
	var page service.Page[service.Team]
	_, err := c.authed(ctx, get("/teams", w.Query()), &page)
	return page, err
}

// CreateTeam creates a team via POST /teams.
func (c *Client) CreateTeam(ctx context.Context, name string) (service.Team, error) {
	var team service.Team
	body := struct {
		Name string `json:"name"`
	}{name}
	_, err := c.authed(ctx, post("/teams", body), &team)
	return team, err
}

// GetTeam returns a team with its members via GET /teams/{id}.
func (c *Client) GetTeam(ctx context.Context, teamID string) (service.TeamDetail, error) {
	var detail service.TeamDetail
	_, err := c.authed(ctx, get(teamPath(teamID), nil), &detail)
	return detail, err
}

// AddTeamMember adds a member via POST /teams/{id}/members.
func (c *Client) AddTeamMember(ctx context.Context, teamID string, req service.AddMemberRequest) error {
	if req.RoleInTeam == "" {
		req.RoleInTeam = service.DefaultTeamRole
	}
	_, err := c.authed(ctx, post(teamPath(teamID)+"/members", req), nil)
	return err
}
