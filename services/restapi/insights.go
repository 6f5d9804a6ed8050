package restapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skillflow360/skillflow/core/analytics"
	"github.com/skillflow360/skillflow/core/recommendation"
	"github.com/skillflow360/skillflow/core/user"
)

var (
	_ analytics.API      = (*Client)(nil)
	_ recommendation.API = (*Client)(nil)
	_ user.API           = (*Client)(nil)
)

func (c *Client) DashboardStats(ctx context.Context) (analytics.DashboardStats, error) {
	var stats analytics.DashboardStats
	err := c.get(ctx, "/graphes/dashboard", nil, &stats)
	return stats, err
}

func (c *Client) StudentRecommendations(ctx context.Context, studentID int64, limit int) (recommendation.Response, error) {
	var res recommendation.Response
	query := map[string]string{"limit": strconv.Itoa(limit)}
	err := c.get(ctx, fmt.Sprintf("/recommendations/student/%d", studentID), query, &res)
	return res, err
}

func (c *Client) Login(ctx context.Context, creds user.Credentials) (user.AuthResponse, error) {
	var res user.AuthResponse
	err := c.post(ctx, "/auth/login", creds, &res)
	return res, err
}

// registerRequest leaves the password confirmation out of the payload.
type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (c *Client) Register(ctx context.Context, nu user.NewUser) (user.AuthResponse, error) {
	var res user.AuthResponse
	req := registerRequest{FullName: nu.FullName, Email: nu.Email, Password: nu.Password, Role: string(nu.Role)}
	err := c.post(ctx, "/auth/register", req, &res)
	return res, err
}
