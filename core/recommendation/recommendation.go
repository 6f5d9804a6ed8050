// Package recommendation presents the activities the recommendation service ranks for a student.
package recommendation

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

const DefaultLimit = 6

var ErrNotStudent = core.NewInputError("recommendations are only available to students")

type Item struct {
	ActivityID    int64   `json:"activityId"`
	Title         string  `json:"title"`
	Level         string  `json:"level"`
	PriorityScore float64 `json:"priorityScore"`
	Reason        string  `json:"reason"`
}

// Confidence is the priority score clamped to [0,100].
func (it Item) Confidence() int {
	p := it.PriorityScore
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	c := int(math.Round(p))
	switch {
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return c
}

type ConfidenceLabel string

const (
	VeryRelevant ConfidenceLabel = "very relevant"
	Relevant     ConfidenceLabel = "relevant"
	ToExplore    ConfidenceLabel = "to explore"
)

func LabelOf(confidence int) ConfidenceLabel {
	switch {
	case confidence >= 80:
		return VeryRelevant
	case confidence >= 60:
		return Relevant
	default:
		return ToExplore
	}
}

type Response struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	StudentID       int64     `json:"studentId"`
	Strategy        string    `json:"strategy"`
	StudentAvgScore float64   `json:"studentAvgScore"`
	TargetLevel     string    `json:"targetLevel"`
	Recommendations []Item    `json:"recommendations"`
}

// Filter narrows the recommendations. Level is ALL, BEGINNER, INTERMEDIATE or ADVANCED.
type Filter struct {
	Search string
	Level  string
}

func (f Filter) matches(it Item) bool {
	if q := core.CleanString(f.Search, true /* lower */); q != "" &&
		!strings.Contains(strings.ToLower(it.Title), q) &&
		!strings.Contains(strings.ToLower(it.Reason), q) {
		return false
	}
	lvl := strings.ToUpper(core.CleanString(f.Level))
	return lvl == "" || lvl == "ALL" || strings.ToUpper(it.Level) == lvl
}

// RankedItem is an item with its display confidence.
type RankedItem struct {
	Item
	Confidence int             `json:"confidence"`
	Label      ConfidenceLabel `json:"label"`
}

// View is what the recommendations page shows: the next activity to do, then the others.
type View struct {
	GeneratedAt     time.Time    `json:"generatedAt"`
	Strategy        string       `json:"strategy"`
	StudentAvgScore float64      `json:"studentAvgScore"`
	TargetLevel     string       `json:"targetLevel"`
	Next            *RankedItem  `json:"next"`
	Others          []RankedItem `json:"others"`
}

// NewView filters the items, keeping the server ranking.
func NewView(res Response, filter Filter) View {
	v := View{
		GeneratedAt:     res.GeneratedAt,
		Strategy:        res.Strategy,
		StudentAvgScore: res.StudentAvgScore,
		TargetLevel:     res.TargetLevel,
		Others:          make([]RankedItem, 0),
	}
	for _, it := range res.Recommendations {
		if !filter.matches(it) {
			continue
		}
		conf := it.Confidence()
		ri := RankedItem{Item: it, Confidence: conf, Label: LabelOf(conf)}
		if v.Next == nil {
			v.Next = &ri
			continue
		}
		v.Others = append(v.Others, ri)
	}
	return v
}

type API interface {
	StudentRecommendations(ctx context.Context, studentID int64, limit int) (Response, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// ForStudent fetches up to limit recommendations (DefaultLimit when limit <= 0) for the student.
func (svc *Service) ForStudent(ctx context.Context, student session.Identity, limit int, filter Filter) (View, error) {
	if !student.IsStudent() {
		return View{}, ErrNotStudent
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	res, err := svc.api.StudentRecommendations(ctx, student.UserID, limit)
	if err != nil {
		return View{}, err
	}
	return NewView(res, filter), nil
}
