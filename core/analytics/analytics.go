// Package analytics derives the figures of the admin dashboard from the stats computed upstream.
package analytics

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skillflow360/skillflow/core"
)

type ScoreBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type TopActivity struct {
	ActivityID       int64   `json:"activityId"`
	ActivityTitle    string  `json:"activityTitle"`
	AvgScore         float64 `json:"avgScore"`
	SubmissionsCount int     `json:"submissionsCount"`
}

type StudentPerformance struct {
	StudentID        int64    `json:"studentId"`
	StudentName      string   `json:"studentName"`
	AvgScore         float64  `json:"avgScore"`
	LastScore        null.Int `json:"lastScore"`
	SubmissionsCount int      `json:"submissionsCount"`
	AtRisk           bool     `json:"atRisk"`
}

type DashboardStats struct {
	GeneratedAt          time.Time            `json:"generatedAt"`
	TotalStudents        null.Int             `json:"totalStudents"`
	TotalEvaluations     int                  `json:"totalEvaluations"`
	PublishedEvaluations int                  `json:"publishedEvaluations"`
	TotalActivities      int                  `json:"totalActivities"`
	TotalSubmissions     int                  `json:"totalSubmissions"`
	SubmittedCount       int                  `json:"submittedCount"`
	InProgressCount      int                  `json:"inProgressCount"`
	AtRiskStudentsCount  null.Int             `json:"atRiskStudentsCount"`
	ScoreDistribution    []ScoreBucket        `json:"scoreDistribution"`
	TopActivities        []TopActivity        `json:"topActivities"`
	StudentsPerformance  []StudentPerformance `json:"studentsPerformance"`
}

// Dashboard is the stats and the figures derived from them for display.
type Dashboard struct {
	DashboardStats
	SubmissionRate  int `json:"submissionRate"`
	PublicationRate int `json:"publicationRate"`
	AtRiskStudents  int `json:"atRiskStudents"`
}

func NewDashboard(stats DashboardStats) Dashboard {
	d := Dashboard{
		DashboardStats:  stats,
		SubmissionRate:  core.Percent(stats.SubmittedCount, stats.TotalSubmissions),
		PublicationRate: core.Percent(stats.PublishedEvaluations, stats.TotalEvaluations),
	}
	if stats.AtRiskStudentsCount.Valid {
		d.AtRiskStudents = stats.AtRiskStudentsCount.Int
	} else {
		for _, s := range stats.StudentsPerformance {
			if s.AtRisk {
				d.AtRiskStudents++
			}
		}
	}
	return d
}

var (
	ErrAuthRequired = errors.New("authentication required, please sign in again")
	ErrAccessDenied = errors.New("access denied, administrator role required")
	ErrServer       = errors.New("server error, please try again later")
	ErrUnavailable  = errors.New("could not load the statistics")
)

// ExplainError turns a failed dashboard fetch into the message shown to the admin.
func ExplainError(err error) error {
	if err == nil {
		return nil
	}
	switch code := core.StatusCode(err); {
	case code == http.StatusUnauthorized:
		return ErrAuthRequired
	case code == http.StatusForbidden:
		return ErrAccessDenied
	case code >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrUnavailable
	}
}

type API interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// Dashboard fetches the stats. Errors are already explained with ExplainError.
func (svc *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	stats, err := svc.api.DashboardStats(ctx)
	if err != nil {
		return Dashboard{}, ExplainError(err)
	}
	return NewDashboard(stats), nil
}
