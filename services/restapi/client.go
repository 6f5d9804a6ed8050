// Package restapi is the client of the SkillFlow REST services.
//
// One Client is shared by the application; Client.As scopes it to a signed-in user.
// Calls are never retried and are aborted when their context is done.
package restapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

const (
	apiPrefix       = "/api/v1"
	RequestIDHeader = "X-Request-ID"
)

type Client struct {
	baseURL string
	http    *rest.Client
	logger  core.Logger
	token   string
}

// New returns an anonymous client of the API found at conf.API.BaseURL.
func New(conf *core.Config, logger core.Logger) *Client {
	return NewWithHTTPClient(conf.API.BaseURL, &http.Client{Timeout: conf.API.Timeout}, logger)
}

func NewWithHTTPClient(baseURL string, hc *http.Client, logger core.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &rest.Client{HTTPClient: hc},
		logger:  logger,
	}
}

// As returns a client sending the bearer token of ident. An empty token sends no Authorization header.
func (c *Client) As(ident session.Identity) *Client {
	scoped := *c
	scoped.token = ident.Token
	return &scoped
}

type verifier interface {
	Verify() error
}

func (c *Client) do(ctx context.Context, method rest.Method, path string, query map[string]string, in, out interface{}) error {
	path = apiPrefix + path
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{
			"Accept":        "application/json",
			"Content-Type":  "application/json",
			RequestIDHeader: uuid.New().String(),
		},
		QueryParams: query,
	}
	if c.token != "" {
		req.Headers["Authorization"] = "Bearer " + c.token
	}
	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s", method, path)
		}
		req.Body = body
	}

	start := time.Now()
	res, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		return &Error{Kind: KindTransport, Method: string(method), Path: path, Err: err}
	}
	c.logger.Debug(fmt.Sprintf("%s %s: %d", method, path, res.StatusCode), map[string]interface{}{
		"requestId": req.Headers[RequestIDHeader],
		"duration":  time.Since(start).String(),
	})
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return newStatusError(method, path, res)
	}

	if out == nil || res.Body == "" {
		return nil
	}
	if err = json.Unmarshal([]byte(res.Body), out); err != nil {
		return errors.Wrapf(err, "decoding %s %s", method, path)
	}
	if v, ok := out.(verifier); ok {
		if err = v.Verify(); err != nil {
			return errors.Wrapf(err, "invalid response to %s %s", method, path)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	return c.do(ctx, rest.Get, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, rest.Post, path, nil, in, out)
}

func (c *Client) put(ctx context.Context, path string, in, out interface{}) error {
	return c.do(ctx, rest.Put, path, nil, in, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, rest.Delete, path, nil, nil, nil)
}
