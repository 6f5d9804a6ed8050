package evaluation

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestGradeOf(t *testing.T) {
	tests := []struct {
		score int
		want  Grade
	}{
		{100, GradePassed},
		{80, GradePassed},
		{79, GradeNeedsImprovement},
		{60, GradeNeedsImprovement},
		{59, GradeFailed},
		{0, GradeFailed},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, GradeOf(tc.score), "score %d", tc.score)
	}
}

func TestNewResult(t *testing.T) {
	answers := func(correct ...bool) []AnswerDetail {
		var as []AnswerDetail
		for i, c := range correct {
			as = append(as, AnswerDetail{QuestionID: int64(i + 1), ChosenAnswer: "x", Correct: c})
		}
		return as
	}

	tests := []struct {
		name      string
		detail    SubmissionDetail
		score     int
		correct   int
		points    int
		grade     Grade
	}{
		{
			name:    "score taken verbatim",
			detail:  SubmissionDetail{Score: null.IntFrom(67), Answers: answers(true, true, false)},
			score:   67,
			correct: 2,
			points:  33,
			grade:   GradeNeedsImprovement,
		},
		{
			name:    "server score wins over answers",
			detail:  SubmissionDetail{Score: null.IntFrom(90), Answers: answers(false, false)},
			score:   90,
			correct: 0,
			points:  50,
			grade:   GradePassed,
		},
		{
			name:    "missing score is zero",
			detail:  SubmissionDetail{Status: SubmissionInProgress, Answers: answers(true)},
			score:   0,
			correct: 1,
			points:  100,
			grade:   GradeFailed,
		},
		{
			name:   "no answers",
			detail: SubmissionDetail{Score: null.IntFrom(0)},
			grade:  GradeFailed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := NewResult(tc.detail)
			assert.Equal(t, tc.score, res.Score)
			assert.Equal(t, tc.correct, res.CorrectCount)
			assert.Equal(t, len(tc.detail.Answers), res.Total)
			assert.Equal(t, tc.points, res.PointsPerQuestion)
			assert.Equal(t, tc.grade, res.Grade)
			assert.Equal(t, MaxScore, res.MaxScore)
		})
	}
}

func TestReview(t *testing.T) {
	api := newFakeAPI()
	api.detail = SubmissionDetail{SubmissionID: 5, Score: null.IntFrom(85), Answers: []AnswerDetail{{Correct: true}}}

	_, err := Review(context.Background(), api, 0)
	assert.Equal(t, ErrInvalidSubmissionID, err)
	assert.Zero(t, atomic.LoadInt32(&api.detailCalls))

	res, err := Review(context.Background(), api, 5)
	require.NoError(t, err)
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, GradePassed, res.Grade)
	assert.Equal(t, int64(5), res.Detail.SubmissionID)
}

func TestAnswerDetail_Unanswered(t *testing.T) {
	assert.True(t, AnswerDetail{ChosenAnswer: "  "}.Unanswered())
	assert.False(t, AnswerDetail{ChosenAnswer: "a"}.Unanswered())
}

func TestSubmissionDetail_Verify(t *testing.T) {
	assert.NoError(t, SubmissionDetail{}.Verify())
	assert.NoError(t, SubmissionDetail{Score: null.IntFrom(100)}.Verify())
	assert.Error(t, SubmissionDetail{Score: null.IntFrom(101)}.Verify())
	assert.Error(t, SubmitResponse{SubmissionID: 1, Score: -1}.Verify())
	assert.Error(t, SubmitResponse{Score: 10}.Verify())
	assert.Error(t, StartResponse{}.Verify())
}
