package activity

import (
	"context"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/skillflow360/skillflow/core"
)

var (
	ErrInvalidActivityID = core.NewInputError("invalid activity id")
	ErrInvalidResourceID = core.NewInputError("invalid resource id")
)

type API interface {
	ListActivities(ctx context.Context) ([]Activity, error)
	GetActivity(ctx context.Context, id int64) (Activity, error)
	CreateActivity(ctx context.Context, na NewActivity) (Activity, error)
	UpdateActivity(ctx context.Context, id int64, na NewActivity) (Activity, error)
	DeleteActivity(ctx context.Context, id int64) error

	ListActivityResources(ctx context.Context, activityID int64) ([]Resource, error)
	CreateActivityResource(ctx context.Context, activityID int64, nr NewResource) (Resource, error)
	UpdateActivityResource(ctx context.Context, id int64, nr NewResource) (Resource, error)
	DeleteActivityResource(ctx context.Context, id int64) error
}

type Service struct {
	api        API
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(api API, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{api: api, validate: validate, translator: translator}
}

func (svc *Service) List(ctx context.Context) ([]Activity, error) {
	return svc.api.ListActivities(ctx)
}

// Browse lists the activities a student may filter through.
func (svc *Service) Browse(ctx context.Context, filter Filter) ([]Activity, error) {
	activities, err := svc.api.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(activities), nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Activity, error) {
	if id <= 0 {
		return Activity{}, ErrInvalidActivityID
	}
	return svc.api.GetActivity(ctx, id)
}

func (svc *Service) Create(ctx context.Context, na NewActivity) (Activity, error) {
	if err := na.Validate(svc.validate); err != nil {
		return Activity{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.CreateActivity(ctx, na)
}

func (svc *Service) Update(ctx context.Context, id int64, na NewActivity) (Activity, error) {
	if id <= 0 {
		return Activity{}, ErrInvalidActivityID
	}
	if err := na.Validate(svc.validate); err != nil {
		return Activity{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.UpdateActivity(ctx, id, na)
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidActivityID
	}
	return svc.api.DeleteActivity(ctx, id)
}

func (svc *Service) Resources(ctx context.Context, activityID int64) ([]Resource, error) {
	if activityID <= 0 {
		return nil, ErrInvalidActivityID
	}
	return svc.api.ListActivityResources(ctx, activityID)
}

func (svc *Service) AddResource(ctx context.Context, activityID int64, nr NewResource) (Resource, error) {
	if activityID <= 0 {
		return Resource{}, ErrInvalidActivityID
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Resource{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.CreateActivityResource(ctx, activityID, nr)
}

func (svc *Service) UpdateResource(ctx context.Context, id int64, nr NewResource) (Resource, error) {
	if id <= 0 {
		return Resource{}, ErrInvalidResourceID
	}
	if err := nr.Validate(svc.validate); err != nil {
		return Resource{}, core.TranslateErrors(err, svc.translator)
	}
	return svc.api.UpdateActivityResource(ctx, id, nr)
}

func (svc *Service) DeleteResource(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidResourceID
	}
	return svc.api.DeleteActivityResource(ctx, id)
}

func sortByLevel(activities []Activity) {
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Level.order() < activities[j].Level.order()
	})
}
