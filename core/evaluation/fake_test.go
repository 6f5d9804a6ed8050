package evaluation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// fakeAPI records calls; each hook may be left nil for a canned success.
type fakeAPI struct {
	startCalls     int32
	questionsCalls int32
	submitCalls    int32
	detailCalls    int32

	startFn  func(ctx context.Context, id int64, req StartRequest) (StartResponse, error)
	submitFn func(ctx context.Context, sid int64, req SubmitRequest) (SubmitResponse, error)
	detail   SubmissionDetail

	mu        sync.Mutex
	questions []StudentQuestion
	submitted []SubmitRequest
	started   []StartRequest
}

func newFakeAPI(questions ...StudentQuestion) *fakeAPI {
	return &fakeAPI{questions: questions}
}

func (f *fakeAPI) ListPublishedEvaluations(context.Context) ([]Evaluation, error) { return nil, nil }

func (f *fakeAPI) StartEvaluation(ctx context.Context, id int64, req StartRequest) (StartResponse, error) {
	atomic.AddInt32(&f.startCalls, 1)
	f.mu.Lock()
	f.started = append(f.started, req)
	f.mu.Unlock()
	if f.startFn != nil {
		return f.startFn(ctx, id, req)
	}
	return StartResponse{SubmissionID: 42, EvaluationID: id, Title: "Go basics", StartedAt: time.Now()}, nil
}

func (f *fakeAPI) ListStudentQuestions(context.Context, int64) ([]StudentQuestion, error) {
	atomic.AddInt32(&f.questionsCalls, 1)
	return f.questions, nil
}

func (f *fakeAPI) SubmitAnswers(ctx context.Context, sid int64, req SubmitRequest) (SubmitResponse, error) {
	atomic.AddInt32(&f.submitCalls, 1)
	f.mu.Lock()
	f.submitted = append(f.submitted, req)
	f.mu.Unlock()
	if f.submitFn != nil {
		return f.submitFn(ctx, sid, req)
	}
	return SubmitResponse{SubmissionID: sid, Score: 67, Status: SubmissionSubmitted}, nil
}

func (f *fakeAPI) GetSubmission(context.Context, int64) (SubmissionDetail, error) {
	atomic.AddInt32(&f.detailCalls, 1)
	return f.detail, nil
}

func (f *fakeAPI) ListStudentSubmissions(context.Context, int64) ([]SubmissionRow, error) {
	return nil, nil
}

func (f *fakeAPI) lastSubmitted() SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted[len(f.submitted)-1]
}

func threeQuestions() []StudentQuestion {
	return []StudentQuestion{
		{ID: 10, Label: "q1", Options: []string{"a", "b"}, Position: 1},
		{ID: 11, Label: "q2", Options: []string{"a", "b"}, Position: 2},
		{ID: 12, Label: "q3", Options: []string{"a", "b"}, Position: 3},
	}
}
