package evaluation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skillflow360/skillflow/core"
)

const (
	MinScore = 0
	MaxScore = 100
)

// Level is the prerequisite tier of an evaluation, ordered from BEGINNER to ADVANCED.
type Level string

const (
	LevelBeginner     Level = "BEGINNER"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelAdvanced     Level = "ADVANCED"
)

var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

func (l Level) IsValid() bool { return l.Rank() > 0 }

// Rank orders levels: 1 for BEGINNER up to 3 for ADVANCED, 0 when unknown.
func (l Level) Rank() int {
	for i, lvl := range Levels {
		if l == lvl {
			return i + 1
		}
	}
	return 0
}

func (l *Level) UnmarshalJSON(data []byte) error {
	s, err := unmarshalEnum(data)
	if err != nil {
		return err
	}
	if lvl := Level(s); lvl.IsValid() {
		*l = lvl
		return nil
	}
	return errors.Errorf("invalid prerequisite level %q", s)
}

// Status is the lifecycle status of an evaluation.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
)

func (s Status) IsValid() bool { return s == StatusDraft || s == StatusPublished }

func (s *Status) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	if err != nil {
		return err
	}
	if st := Status(v); st.IsValid() {
		*s = st
		return nil
	}
	return errors.Errorf("invalid evaluation status %q", v)
}

// SubmissionStatus is the lifecycle status of a Submission. It moves from IN_PROGRESS to SUBMITTED once.
type SubmissionStatus string

const (
	SubmissionInProgress SubmissionStatus = "IN_PROGRESS"
	SubmissionSubmitted  SubmissionStatus = "SUBMITTED"
)

func (s SubmissionStatus) IsValid() bool {
	return s == SubmissionInProgress || s == SubmissionSubmitted
}

func (s *SubmissionStatus) UnmarshalJSON(data []byte) error {
	v, err := unmarshalEnum(data)
	if err != nil {
		return err
	}
	if st := SubmissionStatus(v); st.IsValid() {
		*s = st
		return nil
	}
	return errors.Errorf("invalid submission status %q", v)
}

// unmarshalEnum decodes a JSON string, normalized to upper case.
func unmarshalEnum(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(s)), nil
}

type Evaluation struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	PrerequisiteLevel Level       `json:"prerequisiteLevel"`
	ActivityID        int64       `json:"activityId"`
	Introduction      null.String `json:"introduction"`
	Status            Status      `json:"status"`
	QuestionsCount    null.Int    `json:"questionsCount"`
}

func (e Evaluation) IsPublished() bool { return e.Status == StatusPublished }

// NewEvaluation contains information needed to create or update an Evaluation.
type NewEvaluation struct {
	Title             string `json:"title" validate:"required"`
	PrerequisiteLevel Level  `json:"prerequisiteLevel" validate:"required,enum"`
	ActivityID        int64  `json:"activityId" validate:"required,gt=0"`
	Introduction      string `json:"introduction,omitempty"`
}

func (ne *NewEvaluation) Validate(validate *validator.Validate) error {
	ne.Title = core.CleanString(ne.Title)
	ne.Introduction = core.CleanString(ne.Introduction)
	ne.PrerequisiteLevel = Level(strings.ToUpper(core.CleanString(string(ne.PrerequisiteLevel))))
	return validate.Struct(ne)
}

// Question is the admin view of a question; it carries the correct answer.
type Question struct {
	ID            int64    `json:"id"`
	Label         string   `json:"label"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Position      int      `json:"position"`
}

// StudentQuestion is the student view of a question. The correct answer is never sent to students.
type StudentQuestion struct {
	ID       int64    `json:"id"`
	Label    string   `json:"label"`
	Options  []string `json:"options"`
	Position int      `json:"position"`
}

// NewQuestion contains information needed to add a Question to an Evaluation.
type NewQuestion struct {
	Label         string   `json:"label" validate:"required"`
	Options       []string `json:"options" validate:"min=2,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Label = core.CleanString(nq.Label)
	nq.CorrectAnswer = core.CleanString(nq.CorrectAnswer)
	opts := make([]string, 0, len(nq.Options))
	for _, opt := range nq.Options {
		if opt = core.CleanString(opt); opt != "" {
			opts = append(opts, opt)
		}
	}
	nq.Options = opts
	return validate.Struct(nq)
}

// PublishRequest toggles the publication of an Evaluation.
type PublishRequest struct {
	Published bool `json:"published"`
}

// StartRequest identifies the student starting an evaluation.
type StartRequest struct {
	StudentID       int64  `json:"studentId"`
	StudentFullName string `json:"studentFullName"`
	StudentLevel    string `json:"studentLevel"`
}

type StartResponse struct {
	SubmissionID int64             `json:"submissionId"`
	EvaluationID int64             `json:"evaluationId"`
	Title        string            `json:"title"`
	Introduction null.String       `json:"introduction"`
	StartedAt    time.Time         `json:"startedAt"`
	Questions    []StudentQuestion `json:"questions"`
}

func (r StartResponse) Verify() error {
	if r.SubmissionID <= 0 {
		return errors.New("start response without submission id")
	}
	return nil
}

// AnswerEntry is the answer to one question. An empty ChosenAnswer means unanswered.
type AnswerEntry struct {
	QuestionID   int64  `json:"questionId"`
	ChosenAnswer string `json:"chosenAnswer"`
}

type SubmitRequest struct {
	StudentID int64         `json:"studentId"`
	Answers   []AnswerEntry `json:"answers"`
}

type SubmitResponse struct {
	SubmissionID int64            `json:"submissionId"`
	Score        int              `json:"score"`
	SubmittedAt  time.Time        `json:"submittedAt"`
	Status       SubmissionStatus `json:"status"`
}

func (r SubmitResponse) Verify() error {
	if r.SubmissionID <= 0 {
		return errors.New("submit response without submission id")
	}
	return verifyScore(null.IntFrom(r.Score))
}

// SubmissionRow is one line of the submissions listing.
type SubmissionRow struct {
	SubmissionID      int64            `json:"submissionId"`
	StudentFullName   string           `json:"studentFullName"`
	StudentLevel      string           `json:"studentLevel"`
	EvaluationTitle   string           `json:"evaluationTitle"`
	ActivityID        int64            `json:"activityId"`
	PrerequisiteLevel Level            `json:"prerequisiteLevel"`
	Score             null.Int         `json:"score"`
	StartedAt         time.Time        `json:"startedAt"`
	SubmittedAt       null.Time        `json:"submittedAt"`
	Status            SubmissionStatus `json:"status"`
}

// AnswerDetail is an answer as seen after submission, with its correction.
type AnswerDetail struct {
	QuestionID    int64       `json:"questionId"`
	QuestionLabel string      `json:"questionLabel"`
	ChosenAnswer  string      `json:"chosenAnswer"`
	CorrectAnswer null.String `json:"correctAnswer"`
	Correct       bool        `json:"correct"`
}

// Unanswered reports whether the student left the question blank.
func (a AnswerDetail) Unanswered() bool { return strings.TrimSpace(a.ChosenAnswer) == "" }

type SubmissionDetail struct {
	SubmissionID      int64            `json:"submissionId"`
	EvaluationID      int64            `json:"evaluationId"`
	EvaluationTitle   string           `json:"evaluationTitle"`
	ActivityID        int64            `json:"activityId"`
	PrerequisiteLevel Level            `json:"prerequisiteLevel"`
	StudentID         int64            `json:"studentId"`
	StudentFullName   string           `json:"studentFullName"`
	StudentLevel      string           `json:"studentLevel"`
	Score             null.Int         `json:"score"` // absent while IN_PROGRESS
	StartedAt         time.Time        `json:"startedAt"`
	SubmittedAt       null.Time        `json:"submittedAt"` // absent while IN_PROGRESS
	Status            SubmissionStatus `json:"status"`
	Answers           []AnswerDetail   `json:"answers"`
}

func (d SubmissionDetail) Verify() error {
	return verifyScore(d.Score)
}

func verifyScore(score null.Int) error {
	if score.Valid && (score.Int < MinScore || score.Int > MaxScore) {
		return fmt.Errorf("score %d out of range [%d,%d]", score.Int, MinScore, MaxScore)
	}
	return nil
}
