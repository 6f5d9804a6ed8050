package catalog

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/skillflow360/skillflow/core"
)

var (
	ErrNotFound            = errors.New("competence not found")
	ErrInvalidCompetenceID = core.NewInputError("invalid competence id")
	ErrInvalidID           = core.NewInputError("invalid id")
)

// maxConcurrentFetches bounds the per-competence requests issued while building trees.
const maxConcurrentFetches = 4

type API interface {
	ListCompetences(ctx context.Context) ([]Competence, error)
	CreateCompetence(ctx context.Context, nc NewCompetence) (Competence, error)
	UpdateCompetence(ctx context.Context, id int64, nc NewCompetence) (Competence, error)
	DeleteCompetence(ctx context.Context, id int64) error

	ListSubCompetences(ctx context.Context, competenceID int64) ([]SubCompetence, error)
	CreateSubCompetence(ctx context.Context, ns NewSubCompetence) (SubCompetence, error)
	UpdateSubCompetence(ctx context.Context, id int64, ns NewSubCompetence) (SubCompetence, error)
	DeleteSubCompetence(ctx context.Context, id int64) error

	ListLevels(ctx context.Context, competenceID int64) ([]Level, error)
	CreateLevel(ctx context.Context, nl NewLevel) (Level, error)
	UpdateLevel(ctx context.Context, id int64, nl NewLevel) (Level, error)
	DeleteLevel(ctx context.Context, id int64) error

	ListCompetenceResources(ctx context.Context, competenceID int64) ([]Resource, error)
	CreateCompetenceResource(ctx context.Context, nr NewResource) (Resource, error)
	UpdateCompetenceResource(ctx context.Context, id int64, nr NewResource) (Resource, error)
	DeleteCompetenceResource(ctx context.Context, id int64) error

	ListPrerequisites(ctx context.Context) ([]Prerequisite, error)
	CreatePrerequisite(ctx context.Context, np NewPrerequisite) (Prerequisite, error)
	UpdatePrerequisite(ctx context.Context, id int64, np NewPrerequisite) (Prerequisite, error)
	DeletePrerequisite(ctx context.Context, id int64) error
}

type Service struct {
	api        API
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(api API, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{api: api, validate: validate, translator: translator}
}

func (svc *Service) invalid(err error) error {
	return core.TranslateErrors(err, svc.translator)
}

func checkIDs(ids ...int64) error {
	for _, id := range ids {
		if id <= 0 {
			return ErrInvalidID
		}
	}
	return nil
}

// Competences

func (svc *Service) Competences(ctx context.Context) ([]Competence, error) {
	return svc.api.ListCompetences(ctx)
}

func (svc *Service) CreateCompetence(ctx context.Context, nc NewCompetence) (Competence, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Competence{}, svc.invalid(err)
	}
	return svc.api.CreateCompetence(ctx, nc)
}

func (svc *Service) UpdateCompetence(ctx context.Context, id int64, nc NewCompetence) (Competence, error) {
	if id <= 0 {
		return Competence{}, ErrInvalidCompetenceID
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Competence{}, svc.invalid(err)
	}
	return svc.api.UpdateCompetence(ctx, id, nc)
}

func (svc *Service) DeleteCompetence(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidCompetenceID
	}
	return svc.api.DeleteCompetence(ctx, id)
}

// Detail loads a competence with everything attached to it.
// The prerequisites kept are those where the competence is either end.
func (svc *Service) Detail(ctx context.Context, id int64) (CompetenceDetail, error) {
	if id <= 0 {
		return CompetenceDetail{}, ErrInvalidCompetenceID
	}

	var (
		detail  CompetenceDetail
		all     []Competence
		prereqs []Prerequisite
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = svc.api.ListCompetences(gctx)
		return err
	})
	g.Go(func() (err error) {
		detail.SubCompetences, err = svc.api.ListSubCompetences(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		detail.Levels, err = svc.api.ListLevels(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		detail.Resources, err = svc.api.ListCompetenceResources(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		prereqs, err = svc.api.ListPrerequisites(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return CompetenceDetail{}, err
	}

	found := false
	for _, c := range all {
		if c.ID == id {
			detail.Competence, found = c, true
			break
		}
	}
	if !found {
		return CompetenceDetail{}, ErrNotFound
	}
	detail.Prerequisites = make([]Prerequisite, 0)
	for _, p := range prereqs {
		if p.Source.ID == id || p.Target.ID == id {
			detail.Prerequisites = append(detail.Prerequisites, p)
		}
	}
	return detail, nil
}

// Tree lists every competence with its sub-competences, in the API order.
func (svc *Service) Tree(ctx context.Context) ([]CompetenceTree, error) {
	comps, err := svc.api.ListCompetences(ctx)
	if err != nil {
		return nil, err
	}

	trees := make([]CompetenceTree, len(comps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, c := range comps {
		i, c := i, c
		trees[i].Competence = c
		g.Go(func() error {
			subs, err := svc.api.ListSubCompetences(gctx, c.ID)
			if err != nil {
				return errors.Wrapf(err, "listing sub-competences of %d", c.ID)
			}
			trees[i].SubCompetences = subs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

// Sub-competences

func (svc *Service) CreateSubCompetence(ctx context.Context, competenceID int64, ns NewSubCompetence) (SubCompetence, error) {
	if competenceID <= 0 {
		return SubCompetence{}, ErrInvalidCompetenceID
	}
	if err := ns.Validate(svc.validate); err != nil {
		return SubCompetence{}, svc.invalid(err)
	}
	ns.Competence = &Ref{ID: competenceID}
	return svc.api.CreateSubCompetence(ctx, ns)
}

func (svc *Service) UpdateSubCompetence(ctx context.Context, id int64, ns NewSubCompetence) (SubCompetence, error) {
	if err := checkIDs(id); err != nil {
		return SubCompetence{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return SubCompetence{}, svc.invalid(err)
	}
	ns.Competence = nil
	return svc.api.UpdateSubCompetence(ctx, id, ns)
}

func (svc *Service) DeleteSubCompetence(ctx context.Context, id int64) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return svc.api.DeleteSubCompetence(ctx, id)
}

// Levels

func (svc *Service) CreateLevel(ctx context.Context, competenceID int64, nl NewLevel) (Level, error) {
	if competenceID <= 0 {
		return Level{}, ErrInvalidCompetenceID
	}
	if err := nl.Validate(svc.validate); err != nil {
		return Level{}, svc.invalid(err)
	}
	nl.Competence = &Ref{ID: competenceID}
	return svc.api.CreateLevel(ctx, nl)
}

func (svc *Service) UpdateLevel(ctx context.Context, id int64, nl NewLevel) (Level, error) {
	if err := checkIDs(id); err != nil {
		return Level{}, err
	}
	if err := nl.Validate(svc.validate); err != nil {
		return Level{}, svc.invalid(err)
	}
	nl.Competence = nil
	return svc.api.UpdateLevel(ctx, id, nl)
}

func (svc *Service) DeleteLevel(ctx context.Context, id int64) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return svc.api.DeleteLevel(ctx, id)
}

// Resources

func (svc *Service) CreateResource(ctx context.Context, competenceID int64, nr NewResource) (Resource, error) {
	if competenceID <= 0 {
		return Resource{}, ErrInvalidCompetenceID
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Resource{}, svc.invalid(err)
	}
	nr.Competence = &Ref{ID: competenceID}
	return svc.api.CreateCompetenceResource(ctx, nr)
}

func (svc *Service) UpdateResource(ctx context.Context, id int64, nr NewResource) (Resource, error) {
	if err := checkIDs(id); err != nil {
		return Resource{}, err
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Resource{}, svc.invalid(err)
	}
	nr.Competence = nil
	return svc.api.UpdateCompetenceResource(ctx, id, nr)
}

func (svc *Service) DeleteResource(ctx context.Context, id int64) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return svc.api.DeleteCompetenceResource(ctx, id)
}

// Prerequisites

func (svc *Service) Prerequisites(ctx context.Context) ([]Prerequisite, error) {
	return svc.api.ListPrerequisites(ctx)
}

func (svc *Service) CreatePrerequisite(ctx context.Context, np NewPrerequisite) (Prerequisite, error) {
	if err := np.Validate(svc.validate); err != nil {
		return Prerequisite{}, svc.invalid(err)
	}
	return svc.api.CreatePrerequisite(ctx, np)
}

func (svc *Service) UpdatePrerequisite(ctx context.Context, id int64, np NewPrerequisite) (Prerequisite, error) {
	if err := checkIDs(id); err != nil {
		return Prerequisite{}, err
	}
	if err := np.Validate(svc.validate); err != nil {
		return Prerequisite{}, svc.invalid(err)
	}
	return svc.api.UpdatePrerequisite(ctx, id, np)
}

func (svc *Service) DeletePrerequisite(ctx context.Context, id int64) error {
	if err := checkIDs(id); err != nil {
		return err
	}
	return svc.api.DeletePrerequisite(ctx, id)
}
