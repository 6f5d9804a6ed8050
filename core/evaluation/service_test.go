package evaluation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core"
)

type fakeAdminAPI struct {
	evals     map[int64]Evaluation
	published []PublishRequest
	created   []NewEvaluation
	questions []NewQuestion
}

func (f *fakeAdminAPI) ListEvaluations(context.Context) ([]Evaluation, error) {
	var evals []Evaluation
	for _, e := range f.evals {
		evals = append(evals, e)
	}
	return evals, nil
}

func (f *fakeAdminAPI) GetEvaluation(_ context.Context, id int64) (Evaluation, error) {
	return f.evals[id], nil
}

func (f *fakeAdminAPI) CreateEvaluation(_ context.Context, ne NewEvaluation) (Evaluation, error) {
	f.created = append(f.created, ne)
	return Evaluation{ID: 1, Title: ne.Title, Status: StatusDraft}, nil
}

func (f *fakeAdminAPI) UpdateEvaluation(_ context.Context, id int64, ne NewEvaluation) (Evaluation, error) {
	return Evaluation{ID: id, Title: ne.Title}, nil
}

func (f *fakeAdminAPI) DeleteEvaluation(context.Context, int64) error { return nil }

func (f *fakeAdminAPI) PublishEvaluation(_ context.Context, id int64, req PublishRequest) (Evaluation, error) {
	f.published = append(f.published, req)
	return f.evals[id], nil
}

func (f *fakeAdminAPI) AddQuestion(_ context.Context, _ int64, nq NewQuestion) (Question, error) {
	f.questions = append(f.questions, nq)
	return Question{ID: 1, Label: nq.Label, Options: nq.Options, CorrectAnswer: nq.CorrectAnswer}, nil
}

func (f *fakeAdminAPI) ListQuestions(context.Context, int64) ([]Question, error) { return nil, nil }

func (f *fakeAdminAPI) ListSubmissions(context.Context, int64) ([]SubmissionRow, error) {
	return nil, nil
}

func newTestService(api AdminAPI) *Service {
	validate, translator := core.NewValidator()
	InitValidators(validate, translator)
	return NewService(api, validate, translator)
}

func TestService_List(t *testing.T) {
	api := &fakeAdminAPI{evals: map[int64]Evaluation{
		1: {ID: 1, Status: StatusPublished},
		2: {ID: 2, Status: StatusDraft},
		3: {ID: 3, Status: StatusPublished},
	}}
	evals, kpis, err := newTestService(api).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, evals, 3)
	assert.Equal(t, KPIs{Total: 3, Published: 2}, kpis)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name   string
		ne     NewEvaluation
		fields map[string]string
	}{
		{
			name: "valid",
			ne:   NewEvaluation{Title: "  Go basics ", PrerequisiteLevel: "beginner", ActivityID: 4},
		},
		{
			name: "missing fields",
			ne:   NewEvaluation{Title: "   "},
			fields: map[string]string{
				"title":             "this field is required",
				"prerequisiteLevel": "this field is required",
				"activityId":        "this field is required",
			},
		},
		{
			name:   "unknown level",
			ne:     NewEvaluation{Title: "t", PrerequisiteLevel: "EXPERT", ActivityID: 4},
			fields: map[string]string{"prerequisiteLevel": "prerequisiteLevel has an invalid value"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAdminAPI{}
			_, err := newTestService(api).Create(context.Background(), tc.ne)
			if tc.fields == nil {
				require.NoError(t, err)
				require.Len(t, api.created, 1)
				assert.Equal(t, "Go basics", api.created[0].Title)
				assert.Equal(t, LevelBeginner, api.created[0].PrerequisiteLevel)
				return
			}
			require.True(t, core.IsValidationError(err), "got %v", err)
			assert.Equal(t, tc.fields, err.(*core.ValidationError).FieldMap())
			assert.Empty(t, api.created, "nothing is sent when input is invalid")
		})
	}
}

func TestService_AddQuestion(t *testing.T) {
	tests := []struct {
		name    string
		nq      NewQuestion
		wantErr string // field in error
	}{
		{"valid", NewQuestion{Label: "2+2?", Options: []string{" 3", "4 ", ""}, CorrectAnswer: "4"}, ""},
		{"correct answer not an option", NewQuestion{Label: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "5"}, "correctAnswer"},
		{"too few options", NewQuestion{Label: "2+2?", Options: []string{"4", "  "}, CorrectAnswer: "4"}, "options"},
		{"missing label", NewQuestion{Options: []string{"3", "4"}, CorrectAnswer: "4"}, "label"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAdminAPI{}
			q, err := newTestService(api).AddQuestion(context.Background(), 1, tc.nq)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, []string{"3", "4"}, q.Options)
				return
			}
			require.True(t, core.IsValidationError(err), "got %v", err)
			assert.Contains(t, err.(*core.ValidationError).FieldMap(), tc.wantErr)
			assert.Empty(t, api.questions)
		})
	}

	_, err := newTestService(&fakeAdminAPI{}).AddQuestion(context.Background(), 0, NewQuestion{})
	assert.Equal(t, ErrInvalidEvaluationID, err)
}

func TestService_TogglePublish(t *testing.T) {
	api := &fakeAdminAPI{evals: map[int64]Evaluation{
		1: {ID: 1, Status: StatusDraft},
		2: {ID: 2, Status: StatusPublished},
	}}
	svc := newTestService(api)

	_, err := svc.TogglePublish(context.Background(), 1)
	require.NoError(t, err)
	_, err = svc.TogglePublish(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []PublishRequest{{Published: true}, {Published: false}}, api.published)

	_, err = svc.TogglePublish(context.Background(), -1)
	assert.Equal(t, ErrInvalidEvaluationID, err)
}
