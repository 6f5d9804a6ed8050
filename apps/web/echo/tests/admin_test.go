package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core/analytics"
	"github.com/skillflow360/skillflow/core/session"
)

func Test_adminApi_competences(t *testing.T) {
	env := setup(t)
	admin, _ := env.signIn(t, session.RoleAdmin, 1)
	env.api.handle(http.MethodPost, "/competences", http.StatusOK, `{"id": 5, "code": "GO-101", "name": "Go basics", "description": null}`)
	env.api.handle(http.MethodDelete, "/competences/5", http.StatusNoContent, ``)
	env.api.handle(http.MethodDelete, "/competences/6", http.StatusNotFound, `{"error": "competence 6 not found"}`)

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/api/admin/competences", body: []byte(`{"description": "x"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"code": "this field is required",
				"name": "this field is required",
			}),
		},
		{
			name: "create", method: http.MethodPost, path: "/api/admin/competences",
			body:     []byte(`{"code": "GO-101", "name": "Go basics"}`),
			wantCode: http.StatusCreated,
			wantData: []byte(`{"id": 5, "code": "GO-101", "name": "Go basics", "description": null}`),
		},
		{
			name: "delete (invalid id)", method: http.MethodDelete, path: "/api/admin/competences/zero",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid competence id"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/api/admin/competences/5", wantCode: http.StatusNoContent},
		{
			name: "delete (unknown)", method: http.MethodDelete, path: "/api/admin/competences/6",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "competence 6 not found"}),
		},
	}
	for i := range tests {
		tests[i].cookie = admin
	}
	env.run(t, tests)

	// only valid requests reached the API
	var creates int
	for _, c := range env.api.Calls() {
		if c.Method == http.MethodPost {
			creates++
			assert.Equal(t, "Bearer token-ADMIN", c.Auth)
		}
	}
	assert.Equal(t, 1, creates)
}

func Test_adminApi_evaluations(t *testing.T) {
	env := setup(t)
	admin, _ := env.signIn(t, session.RoleAdmin, 1)
	env.api.handle(http.MethodGet, "/evaluations", http.StatusOK, `[
		{"id": 7, "title": "Go basics", "prerequisiteLevel": "BEGINNER", "activityId": 2, "status": "PUBLISHED", "questionsCount": 2},
		{"id": 8, "title": "Concurrency", "prerequisiteLevel": "ADVANCED", "activityId": 3, "status": "DRAFT", "questionsCount": 0}
	]`)
	env.api.handle(http.MethodGet, "/evaluations/8", http.StatusOK,
		`{"id": 8, "title": "Concurrency", "prerequisiteLevel": "ADVANCED", "activityId": 3, "status": "DRAFT", "questionsCount": 0}`)
	env.api.handle(http.MethodPut, "/evaluations/8/publish", http.StatusOK,
		`{"id": 8, "title": "Concurrency", "prerequisiteLevel": "ADVANCED", "activityId": 3, "status": "PUBLISHED", "questionsCount": 0}`)

	rec := env.do(http.MethodGet, "/api/admin/evaluations", admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Evaluations []struct{ ID int64 } `json:"evaluations"`
		KPIs        struct {
			Total     int `json:"total"`
			Published int `json:"published"`
		} `json:"kpis"`
	}
	unmarshallBody(t, rec, &res)
	assert.Len(t, res.Evaluations, 2)
	assert.Equal(t, 2, res.KPIs.Total)
	assert.Equal(t, 1, res.KPIs.Published)

	rec = env.do(http.MethodPost, "/api/admin/evaluations/8/publish", admin)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	call := env.api.lastCall(t, http.MethodPut, "/evaluations/8/publish")
	assert.JSONEq(t, `{"published": true}`, string(call.Body))
}

func Test_adminApi_dashboard(t *testing.T) {
	env := setup(t)
	admin, _ := env.signIn(t, session.RoleAdmin, 1)

	tests := []struct {
		name     string
		code     int
		body     string
		wantCode int
		wantErr  error
	}{
		{name: "server error", code: http.StatusInternalServerError, body: `{}`, wantCode: http.StatusBadGateway, wantErr: analytics.ErrServer},
		{name: "token rejected", code: http.StatusUnauthorized, body: `{}`, wantCode: http.StatusUnauthorized, wantErr: analytics.ErrAuthRequired},
		{name: "not an admin", code: http.StatusForbidden, body: `{}`, wantCode: http.StatusForbidden, wantErr: analytics.ErrAccessDenied},
		{name: "other", code: http.StatusNotFound, body: `{}`, wantCode: http.StatusBadGateway, wantErr: analytics.ErrUnavailable},
		{
			name: "ok", code: http.StatusOK, wantCode: http.StatusOK,
			body: `{
				"generatedAt": "2024-03-01T10:00:00Z",
				"totalStudents": 12,
				"totalEvaluations": 4,
				"publishedEvaluations": 3,
				"totalActivities": 9,
				"totalSubmissions": 20,
				"submittedCount": 15,
				"inProgressCount": 5,
				"atRiskStudentsCount": 2,
				"scoreDistribution": [],
				"topActivities": [],
				"studentsPerformance": []
			}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.api.handle(http.MethodGet, "/graphes/dashboard", tt.code, tt.body)
			rec := env.do(http.MethodGet, "/api/admin/dashboard", admin)
			if tt.wantErr != nil {
				checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: marchallObj(t, httpErr{Error: tt.wantErr.Error()})}, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var dash analytics.Dashboard
			unmarshallBody(t, rec, &dash)
			assert.Equal(t, 75, dash.SubmissionRate)
			assert.Equal(t, 75, dash.PublicationRate)
			assert.Equal(t, 2, dash.AtRiskStudents)
		})
	}
}
