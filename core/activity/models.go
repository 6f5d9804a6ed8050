// Package activity holds the learning activities attached to competences, and their resources.
package activity

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skillflow360/skillflow/core"
)

type Type string

const (
	TypeExercise Type = "EXERCICE"
	TypeLab      Type = "TP"
	TypeQuiz     Type = "QUIZ"
	TypeProject  Type = "PROJET"
)

var Types = []Type{TypeExercise, TypeLab, TypeQuiz, TypeProject}

func (t Type) IsValid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

func (t *Type) UnmarshalJSON(data []byte) error {
	s, err := unmarshalUpper(data)
	if err != nil {
		return err
	}
	if v := Type(s); v.IsValid() {
		*t = v
		return nil
	}
	return errors.Errorf("invalid activity type %q", s)
}

// Level is the difficulty of an activity.
type Level string

const (
	LevelEasy   Level = "EASY"
	LevelMedium Level = "MEDIUM"
	LevelHard   Level = "HARD"
)

var Levels = []Level{LevelEasy, LevelMedium, LevelHard}

func (l Level) IsValid() bool { return l == LevelEasy || l == LevelMedium || l == LevelHard }

// order sorts the hardest activities first.
func (l Level) order() int {
	switch l {
	case LevelHard:
		return 0
	case LevelMedium:
		return 1
	default:
		return 2
	}
}

func (l *Level) UnmarshalJSON(data []byte) error {
	s, err := unmarshalUpper(data)
	if err != nil {
		return err
	}
	if v := Level(s); v.IsValid() {
		*l = v
		return nil
	}
	return errors.Errorf("invalid activity level %q", s)
}

type ResourceType string

const (
	ResourcePDF     ResourceType = "PDF"
	ResourceVideo   ResourceType = "VIDEO"
	ResourceLink    ResourceType = "LINK"
	ResourceArticle ResourceType = "ARTICLE"
	ResourceOther   ResourceType = "AUTRE"
)

var ResourceTypes = []ResourceType{ResourcePDF, ResourceVideo, ResourceLink, ResourceArticle, ResourceOther}

func (t ResourceType) IsValid() bool {
	for _, v := range ResourceTypes {
		if t == v {
			return true
		}
	}
	return false
}

// UnmarshalJSON maps unknown resource types to AUTRE rather than failing.
func (t *ResourceType) UnmarshalJSON(data []byte) error {
	s, err := unmarshalUpper(data)
	if err != nil {
		return err
	}
	if v := ResourceType(s); v.IsValid() {
		*t = v
	} else {
		*t = ResourceOther
	}
	return nil
}

func unmarshalUpper(data []byte) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimSpace(s)), nil
}

type Activity struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  null.String `json:"description"`
	Type         Type        `json:"type"`
	Duration     int         `json:"duration"`
	Level        Level       `json:"level"`
	CompetenceID int64       `json:"competenceId"`
}

// NewActivity contains information needed to create or update an Activity.
type NewActivity struct {
	Title        string      `json:"title" validate:"required"`
	Description  null.String `json:"description"`
	Type         Type        `json:"type" validate:"required,enum"`
	Duration     int         `json:"duration" validate:"min=1"`
	Level        Level       `json:"level" validate:"required,enum"`
	CompetenceID int64       `json:"competenceId" validate:"required,gt=0"`
}

func (na *NewActivity) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	if desc := core.CleanString(na.Description.String); na.Description.Valid && desc != "" {
		na.Description = null.StringFrom(desc)
	} else {
		na.Description = null.String{}
	}
	na.Type = Type(strings.ToUpper(core.CleanString(string(na.Type))))
	na.Level = Level(strings.ToUpper(core.CleanString(string(na.Level))))
	return validate.Struct(na)
}

type Resource struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Type        ResourceType `json:"type"`
	URL         string       `json:"url"`
	Description null.String  `json:"description"`
	ActivityID  int64        `json:"activityId,omitempty"`
}

type NewResource struct {
	Title       string       `json:"title" validate:"required"`
	Type        ResourceType `json:"type" validate:"required,enum"`
	URL         string       `json:"url" validate:"required,url"`
	Description string       `json:"description,omitempty"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.URL = core.CleanString(nr.URL)
	nr.Description = core.CleanString(nr.Description)
	nr.Type = ResourceType(strings.ToUpper(core.CleanString(string(nr.Type))))
	return validate.Struct(nr)
}

// Filter narrows the student listing. Zero values match everything.
type Filter struct {
	Search string
	Type   Type
	Level  Level
}

// Apply keeps activities matching every criterion, hardest first.
// Search is a case-insensitive match on title or description.
func (f Filter) Apply(activities []Activity) []Activity {
	q := core.CleanString(f.Search, true /* lower */)
	typ := Type(strings.ToUpper(core.CleanString(string(f.Type))))
	lvl := Level(strings.ToUpper(core.CleanString(string(f.Level))))

	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if q != "" &&
			!strings.Contains(strings.ToLower(a.Title), q) &&
			!strings.Contains(strings.ToLower(a.Description.String), q) {
			continue
		}
		if typ != "" && typ != "ALL" && a.Type != typ {
			continue
		}
		if lvl != "" && lvl != "ALL" && a.Level != lvl {
			continue
		}
		out = append(out, a)
	}
	sortByLevel(out)
	return out
}
