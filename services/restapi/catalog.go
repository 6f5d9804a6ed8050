package restapi

import (
	"context"
	"fmt"

	"github.com/skillflow360/skillflow/core/catalog"
)

var _ catalog.API = (*Client)(nil)

func (c *Client) ListCompetences(ctx context.Context) ([]catalog.Competence, error) {
	var comps []catalog.Competence
	err := c.get(ctx, "/competences", nil, &comps)
	return comps, err
}

func (c *Client) CreateCompetence(ctx context.Context, nc catalog.NewCompetence) (catalog.Competence, error) {
	var comp catalog.Competence
	err := c.post(ctx, "/competences", nc, &comp)
	return comp, err
}

func (c *Client) UpdateCompetence(ctx context.Context, id int64, nc catalog.NewCompetence) (catalog.Competence, error) {
	var comp catalog.Competence
	err := c.put(ctx, fmt.Sprintf("/competences/%d", id), nc, &comp)
	return comp, err
}

func (c *Client) DeleteCompetence(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/competences/%d", id))
}

func (c *Client) ListSubCompetences(ctx context.Context, competenceID int64) ([]catalog.SubCompetence, error) {
	var subs []catalog.SubCompetence
	err := c.get(ctx, fmt.Sprintf("/subcompetences/competence/%d", competenceID), nil, &subs)
	return subs, err
}

func (c *Client) CreateSubCompetence(ctx context.Context, ns catalog.NewSubCompetence) (catalog.SubCompetence, error) {
	var sub catalog.SubCompetence
	err := c.post(ctx, "/subcompetences", ns, &sub)
	return sub, err
}

func (c *Client) UpdateSubCompetence(ctx context.Context, id int64, ns catalog.NewSubCompetence) (catalog.SubCompetence, error) {
	var sub catalog.SubCompetence
	err := c.put(ctx, fmt.Sprintf("/subcompetences/%d", id), ns, &sub)
	return sub, err
}

func (c *Client) DeleteSubCompetence(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/subcompetences/%d", id))
}

func (c *Client) ListLevels(ctx context.Context, competenceID int64) ([]catalog.Level, error) {
	var lvls []catalog.Level
	err := c.get(ctx, fmt.Sprintf("/levels/competence/%d", competenceID), nil, &lvls)
	return lvls, err
}

func (c *Client) CreateLevel(ctx context.Context, nl catalog.NewLevel) (catalog.Level, error) {
	var lvl catalog.Level
	err := c.post(ctx, "/levels", nl, &lvl)
	return lvl, err
}

func (c *Client) UpdateLevel(ctx context.Context, id int64, nl catalog.NewLevel) (catalog.Level, error) {
	var lvl catalog.Level
	err := c.put(ctx, fmt.Sprintf("/levels/%d", id), nl, &lvl)
	return lvl, err
}

func (c *Client) DeleteLevel(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/levels/%d", id))
}

func (c *Client) ListCompetenceResources(ctx context.Context, competenceID int64) ([]catalog.Resource, error) {
	var res []catalog.Resource
	err := c.get(ctx, fmt.Sprintf("/resources/competence/%d", competenceID), nil, &res)
	return res, err
}

func (c *Client) CreateCompetenceResource(ctx context.Context, nr catalog.NewResource) (catalog.Resource, error) {
	var res catalog.Resource
	err := c.post(ctx, "/resources", nr, &res)
	return res, err
}

func (c *Client) UpdateCompetenceResource(ctx context.Context, id int64, nr catalog.NewResource) (catalog.Resource, error) {
	var res catalog.Resource
	err := c.put(ctx, fmt.Sprintf("/resources/%d", id), nr, &res)
	return res, err
}

func (c *Client) DeleteCompetenceResource(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/resources/%d", id))
}

func (c *Client) ListPrerequisites(ctx context.Context) ([]catalog.Prerequisite, error) {
	var ps []catalog.Prerequisite
	err := c.get(ctx, "/prerequisites", nil, &ps)
	return ps, err
}

func (c *Client) CreatePrerequisite(ctx context.Context, np catalog.NewPrerequisite) (catalog.Prerequisite, error) {
	var p catalog.Prerequisite
	err := c.post(ctx, "/prerequisites", np, &p)
	return p, err
}

func (c *Client) UpdatePrerequisite(ctx context.Context, id int64, np catalog.NewPrerequisite) (catalog.Prerequisite, error) {
	var p catalog.Prerequisite
	err := c.put(ctx, fmt.Sprintf("/prerequisites/%d", id), np, &p)
	return p, err
}

func (c *Client) DeletePrerequisite(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/prerequisites/%d", id))
}
