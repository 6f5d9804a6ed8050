package restapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/core/user"
	logsvc "github.com/skillflow360/skillflow/services/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewWithHTTPClient(srv.URL, srv.Client(), logsvc.NewNopLogger())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestClient_headers(t *testing.T) {
	var got http.Header
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		writeJSON(w, http.StatusOK, `[]`)
	})

	_, err := c.ListPublishedEvaluations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/evaluations/published", path)
	assert.Empty(t, got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	firstID := got.Get(RequestIDHeader)
	assert.NotEmpty(t, firstID)

	scoped := c.As(session.Identity{Token: "tok-1"})
	_, err = scoped.ListPublishedEvaluations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", got.Get("Authorization"))
	assert.NotEqual(t, firstID, got.Get(RequestIDHeader))

	// scoping does not leak into the shared client
	_, err = c.ListPublishedEvaluations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestClient_StartEvaluation(t *testing.T) {
	var body evaluation.StartRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/evaluations/7/start", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusCreated, `{
			"submissionId": 42, "evaluationId": 7, "title": "Go basics",
			"startedAt": "2024-03-01T10:00:00Z",
			"questions": [{"id": 1, "label": "Q1", "options": ["a","b"], "position": 1}]
		}`)
	})

	req := evaluation.StartRequest{StudentID: 3, StudentFullName: "Amina Diallo", StudentLevel: "L3"}
	res, err := c.StartEvaluation(context.Background(), 7, req)
	require.NoError(t, err)
	assert.Equal(t, req, body)
	assert.EqualValues(t, 42, res.SubmissionID)
	assert.Equal(t, "Go basics", res.Title)
	assert.False(t, res.Introduction.Valid)
	require.Len(t, res.Questions, 1)
	assert.Equal(t, []string{"a", "b"}, res.Questions[0].Options)
}

func TestClient_queries(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		switch r.URL.Path {
		case "/api/v1/submissions":
			writeJSON(w, http.StatusOK, `[]`)
		case "/api/v1/recommendations/student/5":
			writeJSON(w, http.StatusOK, `{"studentId": 5, "recommendations": []}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	_, err := c.ListStudentSubmissions(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"studentId": "5"}, query)

	_, err = c.StudentRecommendations(context.Background(), 5, 6)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"limit": "6"}, query)
}

func TestClient_Register_omitsConfirmation(t *testing.T) {
	var payload map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		writeJSON(w, http.StatusOK, `{"id": 1, "email": "a@b.io", "fullName": "A B", "role": "STUDENT", "token": "t"}`)
	})

	res, err := c.Register(context.Background(), user.NewUser{
		FullName: "A B", Email: "a@b.io", Password: "Str0ng!pass", PasswordConfirm: "Str0ng!pass", Role: session.RoleStudent,
	})
	require.NoError(t, err)
	assert.Equal(t, session.RoleStudent, res.Role)
	assert.NotContains(t, payload, "passwordConfirm")
	assert.Equal(t, "STUDENT", payload["role"])
}

func TestClient_statusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantMessage string
		wantUser    string
		wantHTTP    int
	}{
		{
			name: "unauthorized", status: 401, body: `{"message":"jwt expired"}`,
			wantKind: KindUnauthorized, wantMessage: "jwt expired",
			wantUser: "your session has expired, please sign in again", wantHTTP: 401,
		},
		{
			name: "forbidden", status: 403, body: ``,
			wantKind: KindForbidden, wantUser: "access denied", wantHTTP: 403,
		},
		{
			name: "not found", status: 404, body: `{"error":"Not Found"}`,
			wantKind: KindNotFound, wantMessage: "Not Found", wantUser: "Not Found", wantHTTP: 404,
		},
		{
			name: "conflict", status: 409, body: `{"message":"  evaluation already started  "}`,
			wantKind: KindBadRequest, wantMessage: "evaluation already started",
			wantUser: "evaluation already started", wantHTTP: 409,
		},
		{
			name: "unprocessable without message", status: 422, body: `not json`,
			wantKind: KindBadRequest, wantUser: "the request could not be processed", wantHTTP: 422,
		},
		{
			name: "server", status: 503, body: `{"message":"db down"}`,
			wantKind: KindServer, wantMessage: "db down",
			wantUser: "the server encountered an error, try again later", wantHTTP: 502,
		},
		{
			name: "unexpected", status: 418, body: `{}`,
			wantKind: KindUnexpected, wantUser: "the request could not be processed", wantHTTP: 502,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.GetSubmission(context.Background(), 9)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.wantKind, apiErr.Kind)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantUser, apiErr.UserMessage())
			assert.Equal(t, tt.wantHTTP, apiErr.HTTPStatus())
			assert.Equal(t, "/api/v1/submissions/9", apiErr.Path)
			assert.Equal(t, tt.status, core.StatusCode(err))
		})
	}
}

func TestClient_invalidResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"submissionId": 0, "title": "x"}`)
	})

	_, err := c.StartEvaluation(context.Background(), 1, evaluation.StartRequest{StudentID: 1})
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "without submission id")
	assert.Zero(t, core.StatusCode(err))
}

func TestClient_transportErrors(t *testing.T) {
	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewWithHTTPClient(srv.URL, &http.Client{}, logsvc.NewNopLogger())

		err := c.DeleteEvaluation(context.Background(), 1)
		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, KindTransport, apiErr.Kind)
		assert.Equal(t, http.StatusBadGateway, apiErr.HTTPStatus())
		assert.Zero(t, core.StatusCode(err))
	})

	t.Run("context done", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := c.ListEvaluations(ctx)
		var apiErr *Error
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, KindTransport, apiErr.Kind)
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}
