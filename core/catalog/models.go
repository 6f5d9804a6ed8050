// Package catalog holds the competence framework: competences, their sub-competences,
// levels and resources, and the prerequisite graph between competences.
package catalog

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/skillflow360/skillflow/core"
)

// LevelType is the scale a competence level belongs to.
type LevelType string

const (
	LevelBloom   LevelType = "BLOOM"
	LevelCEFR    LevelType = "CEFR"
	LevelInterne LevelType = "INTERNE"
)

var LevelTypes = []LevelType{LevelBloom, LevelCEFR, LevelInterne}

func (t LevelType) IsValid() bool {
	for _, lt := range LevelTypes {
		if t == lt {
			return true
		}
	}
	return false
}

func (t *LevelType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if lt := LevelType(strings.ToUpper(strings.TrimSpace(s))); lt.IsValid() {
		*t = lt
		return nil
	}
	return errors.Errorf("invalid level type %q", s)
}

// PrerequisiteType tells whether a prerequisite must or should be met.
type PrerequisiteType string

const (
	PrerequisiteMandatory   PrerequisiteType = "OBLIGATOIRE"
	PrerequisiteRecommended PrerequisiteType = "RECOMMANDE"
)

func (t PrerequisiteType) IsValid() bool {
	return t == PrerequisiteMandatory || t == PrerequisiteRecommended
}

func (t *PrerequisiteType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if pt := PrerequisiteType(strings.ToUpper(strings.TrimSpace(s))); pt.IsValid() {
		*t = pt
		return nil
	}
	return errors.Errorf("invalid prerequisite type %q", s)
}

// Ref references another entity by id, as nested in API payloads: {"id": 1}.
type Ref struct {
	ID int64 `json:"id"`
}

type Competence struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
}

type NewCompetence struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (nc *NewCompetence) Validate(validate *validator.Validate) error {
	nc.Code = core.CleanString(nc.Code)
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type SubCompetence struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
	Competence  *Ref        `json:"competence,omitempty"`
}

// NewSubCompetence is sent with the parent competence on creation only.
type NewSubCompetence struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Competence  *Ref   `json:"competence,omitempty"`
}

func (ns *NewSubCompetence) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

type Level struct {
	ID          int64       `json:"id"`
	Type        LevelType   `json:"type"`
	Label       string      `json:"label"`
	Description null.String `json:"description"`
	Competence  *Ref        `json:"competence,omitempty"`
}

type NewLevel struct {
	Type        LevelType `json:"type" validate:"required,enum"`
	Label       string    `json:"label" validate:"required"`
	Description string    `json:"description"`
	Competence  *Ref      `json:"competence,omitempty"`
}

func (nl *NewLevel) Validate(validate *validator.Validate) error {
	nl.Type = LevelType(strings.ToUpper(core.CleanString(string(nl.Type))))
	nl.Label = core.CleanString(nl.Label)
	nl.Description = core.CleanString(nl.Description)
	return validate.Struct(nl)
}

type Resource struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Competence *Ref   `json:"competence,omitempty"`
}

type NewResource struct {
	Title      string `json:"title" validate:"required"`
	URL        string `json:"url" validate:"required,url"`
	Competence *Ref   `json:"competence,omitempty"`
}

func (nr *NewResource) Validate(validate *validator.Validate) error {
	nr.Title = core.CleanString(nr.Title)
	nr.URL = core.CleanString(nr.URL)
	return validate.Struct(nr)
}

// Prerequisite states that Source must (or should) be acquired before Target.
type Prerequisite struct {
	ID     int64            `json:"id"`
	Source Ref              `json:"source"`
	Target Ref              `json:"target"`
	Type   PrerequisiteType `json:"type"`
}

type NewPrerequisite struct {
	Source Ref              `json:"source"`
	Target Ref              `json:"target"`
	Type   PrerequisiteType `json:"type" validate:"required,enum"`
}

func (np *NewPrerequisite) Validate(validate *validator.Validate) error {
	np.Type = PrerequisiteType(strings.ToUpper(core.CleanString(string(np.Type))))
	return validate.Struct(np)
}

// CompetenceTree is a competence with its sub-competences, as listed to students.
type CompetenceTree struct {
	Competence
	SubCompetences []SubCompetence `json:"subCompetences"`
}

// CompetenceDetail gathers everything attached to a competence, as shown on its admin page.
type CompetenceDetail struct {
	Competence     Competence      `json:"competence"`
	SubCompetences []SubCompetence `json:"subCompetences"`
	Levels         []Level         `json:"levels"`
	Resources      []Resource      `json:"resources"`
	Prerequisites  []Prerequisite  `json:"prerequisites"`
}
