package restapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/skillflow360/skillflow/core/evaluation"
)

var (
	_ evaluation.StudentAPI = (*Client)(nil)
	_ evaluation.AdminAPI   = (*Client)(nil)
)

// Admin

func (c *Client) ListEvaluations(ctx context.Context) ([]evaluation.Evaluation, error) {
	var evals []evaluation.Evaluation
	err := c.get(ctx, "/evaluations", nil, &evals)
	return evals, err
}

func (c *Client) GetEvaluation(ctx context.Context, id int64) (evaluation.Evaluation, error) {
	var eval evaluation.Evaluation
	err := c.get(ctx, fmt.Sprintf("/evaluations/%d", id), nil, &eval)
	return eval, err
}

func (c *Client) CreateEvaluation(ctx context.Context, ne evaluation.NewEvaluation) (evaluation.Evaluation, error) {
	var eval evaluation.Evaluation
	err := c.post(ctx, "/evaluations", ne, &eval)
	return eval, err
}

func (c *Client) UpdateEvaluation(ctx context.Context, id int64, ne evaluation.NewEvaluation) (evaluation.Evaluation, error) {
	var eval evaluation.Evaluation
	err := c.put(ctx, fmt.Sprintf("/evaluations/%d", id), ne, &eval)
	return eval, err
}

func (c *Client) DeleteEvaluation(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/evaluations/%d", id))
}

func (c *Client) PublishEvaluation(ctx context.Context, id int64, req evaluation.PublishRequest) (evaluation.Evaluation, error) {
	var eval evaluation.Evaluation
	err := c.put(ctx, fmt.Sprintf("/evaluations/%d/publish", id), req, &eval)
	return eval, err
}

func (c *Client) AddQuestion(ctx context.Context, evaluationID int64, nq evaluation.NewQuestion) (evaluation.Question, error) {
	var q evaluation.Question
	err := c.post(ctx, fmt.Sprintf("/evaluations/%d/questions", evaluationID), nq, &q)
	return q, err
}

func (c *Client) ListQuestions(ctx context.Context, evaluationID int64) ([]evaluation.Question, error) {
	var qs []evaluation.Question
	err := c.get(ctx, fmt.Sprintf("/evaluations/%d/questions/prof", evaluationID), nil, &qs)
	return qs, err
}

func (c *Client) ListSubmissions(ctx context.Context, evaluationID int64) ([]evaluation.SubmissionRow, error) {
	var rows []evaluation.SubmissionRow
	err := c.get(ctx, fmt.Sprintf("/evaluations/%d/submissions", evaluationID), nil, &rows)
	return rows, err
}

// Student

func (c *Client) ListPublishedEvaluations(ctx context.Context) ([]evaluation.Evaluation, error) {
	var evals []evaluation.Evaluation
	err := c.get(ctx, "/evaluations/published", nil, &evals)
	return evals, err
}

func (c *Client) StartEvaluation(ctx context.Context, evaluationID int64, req evaluation.StartRequest) (evaluation.StartResponse, error) {
	var res evaluation.StartResponse
	err := c.post(ctx, fmt.Sprintf("/evaluations/%d/start", evaluationID), req, &res)
	return res, err
}

func (c *Client) ListStudentQuestions(ctx context.Context, evaluationID int64) ([]evaluation.StudentQuestion, error) {
	var qs []evaluation.StudentQuestion
	err := c.get(ctx, fmt.Sprintf("/evaluations/%d/questions/student", evaluationID), nil, &qs)
	return qs, err
}

func (c *Client) SubmitAnswers(ctx context.Context, submissionID int64, req evaluation.SubmitRequest) (evaluation.SubmitResponse, error) {
	var res evaluation.SubmitResponse
	err := c.post(ctx, fmt.Sprintf("/submissions/%d/submit", submissionID), req, &res)
	return res, err
}

func (c *Client) GetSubmission(ctx context.Context, submissionID int64) (evaluation.SubmissionDetail, error) {
	var detail evaluation.SubmissionDetail
	err := c.get(ctx, fmt.Sprintf("/submissions/%d", submissionID), nil, &detail)
	return detail, err
}

func (c *Client) ListStudentSubmissions(ctx context.Context, studentID int64) ([]evaluation.SubmissionRow, error) {
	var rows []evaluation.SubmissionRow
	query := map[string]string{"studentId": strconv.FormatInt(studentID, 10)}
	err := c.get(ctx, "/submissions", query, &rows)
	return rows, err
}
