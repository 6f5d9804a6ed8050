package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoweb "github.com/skillflow360/skillflow/apps/web/echo"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/session"
)

const (
	startResponse = `{
		"submissionId": 42,
		"evaluationId": 7,
		"title": "Go basics",
		"introduction": "Ten minutes, no notes.",
		"startedAt": "2024-03-01T10:00:00Z",
		"questions": []
	}`
	studentQuestions = `[
		{"id": 2, "label": "What does defer do?", "options": ["runs at return", "runs now"], "position": 2},
		{"id": 1, "label": "Zero value of a map?", "options": ["nil", "empty map"], "position": 1}
	]`
	submitResponse = `{"submissionId": 42, "score": 67, "submittedAt": "2024-03-01T10:20:00Z", "status": "SUBMITTED"}`
)

// startEvaluation starts evaluation 7 for the cookie's user and returns the attempt view.
func startEvaluation(t *testing.T, env *testEnv, cookie *http.Cookie) evaluation.View {
	t.Helper()
	env.api.handle(http.MethodPost, "/evaluations/7/start", http.StatusOK, startResponse)
	env.api.handle(http.MethodGet, "/evaluations/7/questions/student", http.StatusOK, studentQuestions)

	rec := env.do(http.MethodPost, "/api/student/evaluations/7/attempts", cookie)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var view evaluation.View
	unmarshallBody(t, rec, &view)
	return view
}

func Test_attemptApi_flow(t *testing.T) {
	env := setup(t)
	cookie, _ := env.signIn(t, session.RoleStudent, 3)
	env.api.handle(http.MethodPost, "/submissions/42/submit", http.StatusOK, submitResponse)

	view := startEvaluation(t, env, cookie)
	assert.NotEmpty(t, view.AttemptID)
	assert.Equal(t, evaluation.StateAnswering, view.State)
	assert.EqualValues(t, 42, view.SubmissionID)
	assert.Equal(t, "Go basics", view.Title)
	require.Len(t, view.Questions, 2)
	assert.EqualValues(t, 1, view.Questions[0].ID, "questions are ordered by position")
	assert.Equal(t, 1, view.Questions[0].Number)

	startCall := env.api.lastCall(t, http.MethodPost, "/evaluations/7/start")
	assert.Equal(t, "Bearer token-STUDENT", startCall.Auth)
	assert.JSONEq(t, `{"studentId": 3, "studentFullName": "Amina Diallo", "studentLevel": "L3"}`, string(startCall.Body))

	base := "/api/student/attempts/" + view.AttemptID
	attemptErr := func(err error) []byte { return marchallObj(t, httpErr{Error: err.Error()}) }

	tests := []httpTest{
		{name: "choose", method: http.MethodPut, path: base + "/answers/1", body: []byte(`{"option": "nil"}`), wantCode: http.StatusOK},
		{name: "change mind", method: http.MethodPut, path: base + "/answers/1", body: []byte(`{"option": "empty map"}`), wantCode: http.StatusOK},
		{
			name: "unknown question", method: http.MethodPut, path: base + "/answers/99", body: []byte(`{"option": "x"}`),
			wantCode: http.StatusBadRequest, wantData: attemptErr(evaluation.ErrUnknownQuestion),
		},
		{
			name: "unknown attempt", path: "/api/student/attempts/nope", cookie: cookie,
			wantCode: http.StatusNotFound, wantData: attemptErr(evaluation.ErrAttemptNotFound),
		},
	}
	for i := range tests {
		tests[i].cookie = cookie
	}
	env.run(t, tests)

	rec := env.do(http.MethodGet, base, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshallBody(t, rec, &view)
	assert.Equal(t, 1, view.Answered)
	assert.Equal(t, 50, view.Completion)
	assert.Equal(t, "empty map", view.Questions[0].Chosen)

	// submit
	rec = env.do(http.MethodPost, base+"/submit", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res echoweb.SubmitResult
	unmarshallBody(t, rec, &res)
	assert.EqualValues(t, 42, res.SubmissionID)
	assert.Equal(t, 67, res.Score)
	assert.Equal(t, "/student/submissions/42/result", res.Redirect)

	submitCall := env.api.lastCall(t, http.MethodPost, "/submissions/42/submit")
	assert.JSONEq(t, `{
		"studentId": 3,
		"answers": [
			{"questionId": 1, "chosenAnswer": "empty map"},
			{"questionId": 2, "chosenAnswer": ""}
		]
	}`, string(submitCall.Body))

	// the result email went out
	sent := env.mailer.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "amina@skillflow.io", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Score: 67 / 100")

	// a second submit is refused without calling the API
	rec = env.do(http.MethodPost, base+"/submit", cookie)
	checkCodeAndData(t, httpTest{wantCode: http.StatusConflict, wantData: attemptErr(evaluation.ErrAlreadySubmitted)}, rec)
	rec = env.do(http.MethodPut, base+"/answers/2", cookie, []byte(`{"option": "runs now"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the page can still be reloaded and replays the redirect
	rec = env.do(http.MethodGet, base, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var after evaluation.View
	unmarshallBody(t, rec, &after)
	assert.Equal(t, evaluation.StateSubmitted, after.State)
	assert.Equal(t, "/student/submissions/42/result", after.ResultPath)
	assert.Equal(t, 1, env.attempts.Len())

	var submits int
	for _, c := range env.api.Calls() {
		if strings.HasSuffix(c.Path, "/submit") {
			submits++
		}
	}
	assert.Equal(t, 1, submits)
	assert.Len(t, env.mailer.SentMessages(), 1)
}

func Test_attemptApi_ownership(t *testing.T) {
	env := setup(t)
	owner, _ := env.signIn(t, session.RoleStudent, 3)
	intruder, _ := env.signIn(t, session.RoleStudent, 9)

	view := startEvaluation(t, env, owner)
	base := "/api/student/attempts/" + view.AttemptID
	notFound := marchallObj(t, httpErr{Error: evaluation.ErrAttemptNotFound.Error()})

	tests := []httpTest{
		{name: "read", path: base, cookie: intruder, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "submit", method: http.MethodPost, path: base + "/submit", cookie: intruder, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "abandon", method: http.MethodDelete, path: base, cookie: intruder, wantCode: http.StatusNotFound, wantData: notFound},
		{name: "owner abandons", method: http.MethodDelete, path: base, cookie: owner, wantCode: http.StatusNoContent},
		{name: "gone", path: base, cookie: owner, wantCode: http.StatusNotFound, wantData: notFound},
	}
	env.run(t, tests)
}

func Test_attemptApi_startErrors(t *testing.T) {
	env := setup(t)
	cookie, _ := env.signIn(t, session.RoleStudent, 3)
	env.api.handle(http.MethodPost, "/evaluations/8/start", http.StatusConflict, `{"message":"evaluation is not published"}`)
	env.api.handle(http.MethodPost, "/evaluations/9/start", http.StatusServiceUnavailable, `oops`)

	tests := []httpTest{
		{
			name: "invalid id", method: http.MethodPost, path: "/api/student/evaluations/abc/attempts", cookie: cookie,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid evaluation id"}),
		},
		{
			name: "refused upstream", method: http.MethodPost, path: "/api/student/evaluations/8/attempts", cookie: cookie,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "evaluation is not published"}),
		},
		{
			name: "upstream down", method: http.MethodPost, path: "/api/student/evaluations/9/attempts", cookie: cookie,
			wantCode: http.StatusBadGateway, wantData: marchallObj(t, httpErr{Error: "the server encountered an error, try again later"}),
		},
	}
	env.run(t, tests)

	assert.Zero(t, env.attempts.Len())
}

func Test_studentApi_result(t *testing.T) {
	env := setup(t)
	cookie, _ := env.signIn(t, session.RoleStudent, 3)
	env.api.handle(http.MethodGet, "/submissions/42", http.StatusOK, `{
		"submissionId": 42,
		"evaluationId": 7,
		"evaluationTitle": "Go basics",
		"activityId": 2,
		"prerequisiteLevel": "BEGINNER",
		"studentId": 3,
		"studentFullName": "Amina Diallo",
		"studentLevel": "L3",
		"score": 67,
		"startedAt": "2024-03-01T10:00:00Z",
		"submittedAt": "2024-03-01T10:20:00Z",
		"status": "SUBMITTED",
		"answers": [
			{"questionId": 1, "questionLabel": "Zero value of a map?", "chosenAnswer": "nil", "correctAnswer": "nil", "correct": true},
			{"questionId": 2, "questionLabel": "What does defer do?", "chosenAnswer": "runs at return", "correctAnswer": "runs at return", "correct": true},
			{"questionId": 3, "questionLabel": "Is a slice a pointer?", "chosenAnswer": "", "correctAnswer": "no", "correct": false}
		]
	}`)

	rec := env.do(http.MethodGet, "/api/student/submissions/42/result", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res evaluation.Result
	unmarshallBody(t, rec, &res)
	assert.Equal(t, 67, res.Score)
	assert.Equal(t, 100, res.MaxScore)
	assert.Equal(t, 2, res.CorrectCount)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 33, res.PointsPerQuestion)
	assert.Equal(t, evaluation.GradeNeedsImprovement, res.Grade)

	rec = env.do(http.MethodGet, "/api/student/submissions/0/result", cookie)
	checkCodeAndData(t, httpTest{wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid submission id"})}, rec)
}

func Test_studentApi_history(t *testing.T) {
	env := setup(t)
	cookie, _ := env.signIn(t, session.RoleStudent, 3)
	env.api.handle(http.MethodGet, "/submissions", http.StatusOK, `[]`)

	rec := env.do(http.MethodGet, "/api/student/submissions", cookie)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, rec)
	assert.Equal(t, "studentId=3", env.api.lastCall(t, http.MethodGet, "/submissions").Query)
}

func Test_studentApi_overview(t *testing.T) {
	env := setup(t)
	cookie, _ := env.signIn(t, session.RoleStudent, 3)
	env.api.handle(http.MethodGet, "/evaluations/published", http.StatusOK, `[
		{"id": 7, "title": "Go basics", "prerequisiteLevel": "BEGINNER", "activityId": 2, "status": "PUBLISHED", "questionsCount": 2}
	]`)
	env.api.handle(http.MethodGet, "/recommendations/student/3", http.StatusInternalServerError, `{"message":"boom"}`)

	rec := env.do(http.MethodGet, "/api/student/overview", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res echoweb.OverviewResponse
	unmarshallBody(t, rec, &res)
	require.Len(t, res.Evaluations, 1)
	assert.Equal(t, "Go basics", res.Evaluations[0].Title)
	assert.Nil(t, res.Recommendations.Next)
	assert.Empty(t, res.Recommendations.Others)
	assert.Equal(t, "the server encountered an error, try again later", res.RecommendationsError)
	assert.Equal(t, "limit=6", env.api.lastCall(t, http.MethodGet, "/recommendations/student/3").Query)

	// the evaluations are required
	env.api.handle(http.MethodGet, "/evaluations/published", http.StatusInternalServerError, `{}`)
	rec = env.do(http.MethodGet, "/api/student/overview", cookie)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func Test_studentApi_recommendations(t *testing.T) {
	env := setup(t)
	cookie, _ := env.signIn(t, session.RoleStudent, 3)
	env.api.handle(http.MethodGet, "/recommendations/student/3", http.StatusOK, `{
		"generatedAt": "2024-03-01T10:00:00Z",
		"studentId": 3,
		"strategy": "weakest-first",
		"studentAvgScore": 55.5,
		"targetLevel": "BEGINNER",
		"recommendations": [
			{"activityId": 1, "title": "Maps in depth", "level": "BEGINNER", "priorityScore": 0.9, "reason": "low score on maps"},
			{"activityId": 2, "title": "Goroutines", "level": "ADVANCED", "priorityScore": 0.5, "reason": "next step"},
			{"activityId": 3, "title": "Slices", "level": "BEGINNER", "priorityScore": 0.4, "reason": "low score on slices"}
		]
	}`)

	rec := env.do(http.MethodGet, "/api/student/recommendations?level=beginner&limit=3", cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "limit=3", env.api.lastCall(t, http.MethodGet, "/recommendations/student/3").Query)

	var view struct {
		Next   *struct{ ActivityID int64 } `json:"next"`
		Others []struct{ ActivityID int64 } `json:"others"`
	}
	unmarshallBody(t, rec, &view)
	require.NotNil(t, view.Next)
	assert.EqualValues(t, 1, view.Next.ActivityID)
	require.Len(t, view.Others, 1)
	assert.EqualValues(t, 3, view.Others[0].ActivityID)
}
