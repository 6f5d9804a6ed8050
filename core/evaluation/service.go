package evaluation

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core"
)

// AdminAPI is the part of the upstream API used to author evaluations.
type AdminAPI interface {
	ListEvaluations(ctx context.Context) ([]Evaluation, error)
	GetEvaluation(ctx context.Context, id int64) (Evaluation, error)
	CreateEvaluation(ctx context.Context, ne NewEvaluation) (Evaluation, error)
	UpdateEvaluation(ctx context.Context, id int64, ne NewEvaluation) (Evaluation, error)
	DeleteEvaluation(ctx context.Context, id int64) error
	PublishEvaluation(ctx context.Context, id int64, req PublishRequest) (Evaluation, error)
	AddQuestion(ctx context.Context, evaluationID int64, nq NewQuestion) (Question, error)
	ListQuestions(ctx context.Context, evaluationID int64) ([]Question, error)
	ListSubmissions(ctx context.Context, evaluationID int64) ([]SubmissionRow, error)
}

// KPIs are the counters shown above the evaluations table.
type KPIs struct {
	Total     int `json:"total"`
	Published int `json:"published"`
}

func ComputeKPIs(evals []Evaluation) KPIs {
	k := KPIs{Total: len(evals)}
	for _, e := range evals {
		if e.IsPublished() {
			k.Published++
		}
	}
	return k
}

// Service validates authoring input locally before calling the API.
type Service struct {
	api        AdminAPI
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(api AdminAPI, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{api: api, validate: validate, translator: translator}
}

func (svc *Service) List(ctx context.Context) ([]Evaluation, KPIs, error) {
	evals, err := svc.api.ListEvaluations(ctx)
	if err != nil {
		return nil, KPIs{}, err
	}
	return evals, ComputeKPIs(evals), nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Evaluation, error) {
	if id <= 0 {
		return Evaluation{}, ErrInvalidEvaluationID
	}
	return svc.api.GetEvaluation(ctx, id)
}

func (svc *Service) Create(ctx context.Context, ne NewEvaluation) (Evaluation, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Evaluation{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.CreateEvaluation(ctx, ne)
}

func (svc *Service) Update(ctx context.Context, id int64, ne NewEvaluation) (Evaluation, error) {
	if id <= 0 {
		return Evaluation{}, ErrInvalidEvaluationID
	}
	if err := ne.Validate(svc.validate); err != nil {
		return Evaluation{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.UpdateEvaluation(ctx, id, ne)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidEvaluationID
	}
	return svc.api.DeleteEvaluation(ctx, id)
}

// TogglePublish publishes a draft and unpublishes a published evaluation.
func (svc *Service) TogglePublish(ctx context.Context, id int64) (Evaluation, error) {
	eval, err := svc.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	return svc.api.PublishEvaluation(ctx, id, PublishRequest{Published: !eval.IsPublished()})
}

func (svc *Service) AddQuestion(ctx context.Context, evaluationID int64, nq NewQuestion) (Question, error) {
	if evaluationID <= 0 {
		return Question{}, ErrInvalidEvaluationID
	}
	if err := nq.Validate(svc.validate); err != nil {
		return Question{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.AddQuestion(ctx, evaluationID, nq)
}

func (svc *Service) Questions(ctx context.Context, evaluationID int64) ([]Question, error) {
	if evaluationID <= 0 {
		return nil, ErrInvalidEvaluationID
	}
	return svc.api.ListQuestions(ctx, evaluationID)
}

func (svc *Service) Submissions(ctx context.Context, evaluationID int64) ([]SubmissionRow, error) {
	if evaluationID <= 0 {
		return nil, ErrInvalidEvaluationID
	}
	rows, err := svc.api.ListSubmissions(ctx, evaluationID)
	return rows, errors.Wrap(err, "listing submissions")
}
