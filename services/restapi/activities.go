package restapi

import (
	"context"
	"fmt"

	"github.com/skillflow360/skillflow/core/activity"
)

var _ activity.API = (*Client)(nil)

func (c *Client) ListActivities(ctx context.Context) ([]activity.Activity, error) {
	var acts []activity.Activity
	err := c.get(ctx, "/activities", nil, &acts)
	return acts, err
}

func (c *Client) GetActivity(ctx context.Context, id int64) (activity.Activity, error) {
	var act activity.Activity
	err := c.get(ctx, fmt.Sprintf("/activities/%d", id), nil, &act)
	return act, err
}

func (c *Client) CreateActivity(ctx context.Context, na activity.NewActivity) (activity.Activity, error) {
	var act activity.Activity
	err := c.post(ctx, "/activities", na, &act)
	return act, err
}

func (c *Client) UpdateActivity(ctx context.Context, id int64, na activity.NewActivity) (activity.Activity, error) {
	var act activity.Activity
	err := c.put(ctx, fmt.Sprintf("/activities/%d", id), na, &act)
	return act, err
}

func (c *Client) DeleteActivity(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/activities/%d", id))
}

func (c *Client) ListActivityResources(ctx context.Context, activityID int64) ([]activity.Resource, error) {
	var res []activity.Resource
	err := c.get(ctx, fmt.Sprintf("/activities/%d/resources", activityID), nil, &res)
	return res, err
}

func (c *Client) CreateActivityResource(ctx context.Context, activityID int64, nr activity.NewResource) (activity.Resource, error) {
	var res activity.Resource
	err := c.post(ctx, fmt.Sprintf("/activities/%d/resources", activityID), nr, &res)
	return res, err
}

func (c *Client) UpdateActivityResource(ctx context.Context, id int64, nr activity.NewResource) (activity.Resource, error) {
	var res activity.Resource
	err := c.put(ctx, fmt.Sprintf("/activities/resources/%d", id), nr, &res)
	return res, err
}

func (c *Client) DeleteActivityResource(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/activities/resources/%d", id))
}
