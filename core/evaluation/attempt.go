package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/sync/singleflight"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

var (
	ErrInvalidEvaluationID = core.NewInputError("invalid evaluation id")
	ErrNoSubmission        = core.NewInputError("no submission in progress: restart the evaluation and try again")
	ErrAlreadyStarted      = errors.New("attempt already started")
	ErrAlreadySubmitted    = errors.New("answers already submitted")
	ErrNotAnswering        = errors.New("attempt is not accepting answers")
	ErrUnknownQuestion     = errors.New("question not part of this evaluation")
	ErrClosed              = errors.New("attempt closed")
)

// StudentAPI is the part of the upstream API used while taking an evaluation.
type StudentAPI interface {
	ListPublishedEvaluations(ctx context.Context) ([]Evaluation, error)
	StartEvaluation(ctx context.Context, evaluationID int64, req StartRequest) (StartResponse, error)
	ListStudentQuestions(ctx context.Context, evaluationID int64) ([]StudentQuestion, error)
	SubmitAnswers(ctx context.Context, submissionID int64, req SubmitRequest) (SubmitResponse, error)
	GetSubmission(ctx context.Context, submissionID int64) (SubmissionDetail, error)
	ListStudentSubmissions(ctx context.Context, studentID int64) ([]SubmissionRow, error)
}

type State int

const (
	StateLoading State = iota
	StateAnswering
	StateSubmitting
	StateSubmitted
	StateFailed
)

var stateNames = [...]string{"LOADING", "ANSWERING", "SUBMITTING", "SUBMITTED", "FAILED"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("invalid attempt state %q", text)
}

// ResultPath is where the student is sent once a submission is accepted.
func ResultPath(submissionID int64) string {
	return fmt.Sprintf("/student/submissions/%d/result", submissionID)
}

// Attempt drives one student through one evaluation: start, answer, submit.
// Answers are kept locally until submitted; nothing is sent while answering.
//
// Close aborts in-flight calls; a result arriving after Close is dropped.
type Attempt struct {
	ID string

	api     StudentAPI
	student session.Identity
	ctx     context.Context
	cancel  context.CancelFunc
	submits singleflight.Group

	mu           sync.Mutex
	state        State
	started      bool
	closed       bool
	evaluationID int64
	submissionID int64
	title        string
	introduction null.String
	startedAt    time.Time
	questions    []StudentQuestion
	answers      map[int64]string
	err          error
	result       *SubmitResponse
	lastUsed     time.Time
}

func NewAttempt(api StudentAPI, student session.Identity) *Attempt {
	ctx, cancel := context.WithCancel(context.Background())
	return &Attempt{
		ID:       uuid.New().String(),
		api:      api,
		student:  student,
		ctx:      ctx,
		cancel:   cancel,
		answers:  make(map[int64]string),
		lastUsed: time.Now(),
	}
}

// opContext is cancelled when either ctx or the attempt is done.
func (a *Attempt) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// Start creates (or resumes, server side) the submission and fetches the questions.
// It may be called once per attempt. A failure is final: a new Attempt is needed to retry.
func (a *Attempt) Start(ctx context.Context, evaluationID int64) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.started {
		a.mu.Unlock()
		return ErrAlreadyStarted
	}
	a.started = true
	a.evaluationID = evaluationID
	a.touch()
	if evaluationID <= 0 {
		a.state = StateFailed
		a.err = ErrInvalidEvaluationID
		a.mu.Unlock()
		return ErrInvalidEvaluationID
	}
	a.mu.Unlock()

	opCtx, done := a.opContext(ctx)
	defer done()

	req := StartRequest{
		StudentID:       a.student.UserID,
		StudentFullName: a.student.DisplayName(),
		StudentLevel:    a.student.Level(),
	}
	res, err := a.api.StartEvaluation(opCtx, evaluationID, req)
	var questions []StudentQuestion
	if err == nil {
		questions, err = a.api.ListStudentQuestions(opCtx, evaluationID)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if err != nil {
		a.state = StateFailed
		a.err = errors.Wrap(err, "starting evaluation")
		return a.err
	}

	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })
	a.submissionID = res.SubmissionID
	a.title = res.Title
	a.introduction = res.Introduction
	a.startedAt = res.StartedAt
	a.questions = questions
	a.state = StateAnswering
	a.err = nil
	return nil
}

// Choose records the option picked for a question, replacing any previous choice.
// The option is not checked against the question's options: the server decides at submit time.
func (a *Attempt) Choose(questionID int64, option string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if a.state != StateAnswering {
		return ErrNotAnswering
	}
	if !a.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	a.touch()
	a.answers[questionID] = option
	return nil
}

// Reset forgets every local choice.
func (a *Attempt) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	if a.state != StateAnswering {
		return ErrNotAnswering
	}
	a.touch()
	a.answers = make(map[int64]string)
	return nil
}

// Submit sends one answer per question, in question order, unanswered ones as "".
// Concurrent calls share a single request; once accepted, further calls get ErrAlreadySubmitted.
// The shared request lives as long as the attempt; ctx only bounds how long this caller waits.
// On failure the attempt goes back to answering with the answers kept.
func (a *Attempt) Submit(ctx context.Context) (SubmitResponse, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return SubmitResponse{}, ErrClosed
	}
	if a.submissionID == 0 {
		a.mu.Unlock()
		return SubmitResponse{}, ErrNoSubmission
	}
	if a.state == StateSubmitted {
		a.mu.Unlock()
		return SubmitResponse{}, ErrAlreadySubmitted
	}
	sid := a.submissionID
	a.touch()
	a.mu.Unlock()

	ch := a.submits.DoChan(strconv.FormatInt(sid, 10), func() (interface{}, error) {
		return a.submit(a.ctx, sid)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return SubmitResponse{}, r.Err
		}
		return r.Val.(SubmitResponse), nil
	case <-ctx.Done():
		return SubmitResponse{}, errors.Wrap(ctx.Err(), "submitting answers")
	}
}

func (a *Attempt) submit(ctx context.Context, sid int64) (SubmitResponse, error) {
	a.mu.Lock()
	switch a.state {
	case StateSubmitted:
		a.mu.Unlock()
		return SubmitResponse{}, ErrAlreadySubmitted
	case StateAnswering:
	default:
		a.mu.Unlock()
		return SubmitResponse{}, ErrNotAnswering
	}
	req := SubmitRequest{StudentID: a.student.UserID, Answers: a.entries()}
	a.state = StateSubmitting
	a.mu.Unlock()

	opCtx, done := a.opContext(ctx)
	defer done()
	res, err := a.api.SubmitAnswers(opCtx, sid, req)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return SubmitResponse{}, ErrClosed
	}
	if err != nil {
		a.state = StateAnswering
		a.err = errors.Wrap(err, "submitting answers")
		return SubmitResponse{}, a.err
	}
	a.state = StateSubmitted
	a.err = nil
	a.result = &res
	return res, nil
}

// entries builds the submitted answers. Callers must hold a.mu.
func (a *Attempt) entries() []AnswerEntry {
	entries := make([]AnswerEntry, 0, len(a.questions))
	for _, q := range a.questions {
		entries = append(entries, AnswerEntry{
			QuestionID:   q.ID,
			ChosenAnswer: strings.TrimSpace(a.answers[q.ID]),
		})
	}
	return entries
}

func (a *Attempt) hasQuestion(id int64) bool {
	for _, q := range a.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// answeredCount counts questions with a non-blank choice. Callers must hold a.mu.
func (a *Attempt) answeredCount() int {
	var n int
	for _, q := range a.questions {
		if strings.TrimSpace(a.answers[q.ID]) != "" {
			n++
		}
	}
	return n
}

// Completion is the share of answered questions, in percent.
func (a *Attempt) Completion() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return core.Percent(a.answeredCount(), len(a.questions))
}

// Unanswered lists the questions still without a choice.
func (a *Attempt) Unanswered() []StudentQuestion {
	a.mu.Lock()
	defer a.mu.Unlock()
	var qs []StudentQuestion
	for _, q := range a.questions {
		if strings.TrimSpace(a.answers[q.ID]) == "" {
			qs = append(qs, q)
		}
	}
	return qs
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err is the error that last moved the attempt to FAILED or back to ANSWERING.
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Close abandons the attempt: in-flight requests are cancelled and their results ignored.
func (a *Attempt) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.cancel()
}

func (a *Attempt) Closed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

func (a *Attempt) Owner() session.Identity { return a.student }

func (a *Attempt) LastUsed() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastUsed
}

func (a *Attempt) touch() { a.lastUsed = time.Now() }

// QuestionView is a question with the local choice.
type QuestionView struct {
	StudentQuestion
	Number   int    `json:"number"`
	Chosen   string `json:"chosen"`
	Answered bool   `json:"answered"`
}

// View is a snapshot of the attempt, as rendered to the student.
type View struct {
	AttemptID    string         `json:"attemptId"`
	EvaluationID int64          `json:"evaluationId"`
	SubmissionID int64          `json:"submissionId,omitempty"`
	Title        string         `json:"title"`
	Introduction null.String    `json:"introduction"`
	StartedAt    time.Time      `json:"startedAt"`
	State        State          `json:"state"`
	Questions    []QuestionView `json:"questions"`
	Answered     int            `json:"answered"`
	Total        int            `json:"total"`
	Completion   int            `json:"completion"`
	Error        string         `json:"error,omitempty"`
	Score        null.Int       `json:"score"`
	ResultPath   string         `json:"resultPath,omitempty"`
}

func (a *Attempt) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := View{
		AttemptID:    a.ID,
		EvaluationID: a.evaluationID,
		SubmissionID: a.submissionID,
		Title:        a.title,
		Introduction: a.introduction,
		StartedAt:    a.startedAt,
		State:        a.state,
		Questions:    make([]QuestionView, 0, len(a.questions)),
		Answered:     a.answeredCount(),
		Total:        len(a.questions),
	}
	v.Completion = core.Percent(v.Answered, v.Total)
	for i, q := range a.questions {
		chosen := a.answers[q.ID]
		v.Questions = append(v.Questions, QuestionView{
			StudentQuestion: q,
			Number:          i + 1,
			Chosen:          chosen,
			Answered:        strings.TrimSpace(chosen) != "",
		})
	}
	if a.err != nil {
		v.Error = a.err.Error()
	}
	if a.result != nil {
		v.Score = null.IntFrom(a.result.Score)
		v.ResultPath = ResultPath(a.result.SubmissionID)
	}
	return v
}
