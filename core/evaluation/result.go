package evaluation

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core"
)

var ErrInvalidSubmissionID = core.NewInputError("invalid submission id")

type Grade string

const (
	GradePassed           Grade = "PASSED"
	GradeNeedsImprovement Grade = "NEEDS_IMPROVEMENT"
	GradeFailed           Grade = "FAILED"

	passedScore           = 80
	needsImprovementScore = 60
)

// GradeOf classifies a score the way the result card does.
func GradeOf(score int) Grade {
	switch {
	case score >= passedScore:
		return GradePassed
	case score >= needsImprovementScore:
		return GradeNeedsImprovement
	default:
		return GradeFailed
	}
}

// Result is the read-only summary of a submission.
// Score is the server's score; it is never recomputed from the answers.
type Result struct {
	Detail            SubmissionDetail `json:"detail"`
	Score             int              `json:"score"`
	MaxScore          int              `json:"maxScore"`
	CorrectCount      int              `json:"correctCount"`
	Total             int              `json:"total"`
	PointsPerQuestion int              `json:"pointsPerQuestion"`
	Grade             Grade            `json:"grade"`
}

func NewResult(detail SubmissionDetail) Result {
	res := Result{
		Detail:   detail,
		MaxScore: MaxScore,
		Total:    len(detail.Answers),
	}
	if detail.Score.Valid {
		res.Score = detail.Score.Int
	}
	for _, a := range detail.Answers {
		if a.Correct {
			res.CorrectCount++
		}
	}
	if res.Total > 0 {
		res.PointsPerQuestion = int(math.Round(float64(MaxScore) / float64(res.Total)))
	}
	res.Grade = GradeOf(res.Score)
	return res
}

// Review fetches a submission and summarizes it.
func Review(ctx context.Context, api StudentAPI, submissionID int64) (Result, error) {
	if submissionID <= 0 {
		return Result{}, ErrInvalidSubmissionID
	}
	detail, err := api.GetSubmission(ctx, submissionID)
	if err != nil {
		return Result{}, errors.Wrap(err, "fetching submission")
	}
	return NewResult(detail), nil
}
