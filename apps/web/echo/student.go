package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/skillflow360/skillflow/core/activity"
	"github.com/skillflow360/skillflow/core/catalog"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/recommendation"
	"github.com/skillflow360/skillflow/services/restapi"
)

type studentApi struct {
	deps ServerDeps
}

func registerStudentAPI(g *echo.Group, deps ServerDeps) {
	api := studentApi{deps: deps}

	g.GET("/overview", api.overview)
	g.GET("/competences", api.competenceTree)
	g.GET("/competences/:id", api.competenceDetail)
	g.GET("/activities", api.listActivities)
	g.GET("/activities/:id", api.retrieveActivity)
	g.GET("/evaluations", api.listEvaluations)
	g.GET("/recommendations", api.recommendations)

	g.GET("/submissions", api.history)
	g.GET("/submissions/:id/result", api.result)

	registerAttemptAPI(g, deps)
}

func (api *studentApi) client(ctx echo.Context) *restapi.Client {
	return api.deps.API.As(getContextIdentity(ctx))
}

func (api *studentApi) catalog(ctx echo.Context) *catalog.Service {
	return catalog.NewService(api.client(ctx), api.deps.Validate, api.deps.Translator)
}

func (api *studentApi) activities(ctx echo.Context) *activity.Service {
	return activity.NewService(api.client(ctx), api.deps.Validate, api.deps.Translator)
}

// OverviewResponse is the student landing page: what can be taken now and what to do next.
type OverviewResponse struct {
	Evaluations          []evaluation.Evaluation `json:"evaluations"`
	Recommendations      recommendation.View     `json:"recommendations"`
	RecommendationsError string                  `json:"recommendationsError,omitempty"`
}

func (api *studentApi) overview(ctx echo.Context) error {
	ident := getContextIdentity(ctx)
	client := api.client(ctx)

	var res OverviewResponse
	var recErr error
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() error {
		evals, err := client.ListPublishedEvaluations(gctx)
		if err != nil {
			return errors.Wrap(err, "listing published evaluations")
		}
		res.Evaluations = nonNil(evals)
		return nil
	})
	g.Go(func() error {
		// recommendations are optional on this page
		res.Recommendations, recErr = recommendation.NewService(client).ForStudent(gctx, ident, 0, recommendation.Filter{})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if recErr != nil {
		api.deps.Logger.Warn("loading recommendations", recErr, ident)
		res.Recommendations = recommendation.View{Others: []recommendation.RankedItem{}}
		res.RecommendationsError = userMessage(recErr)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *studentApi) competenceTree(ctx echo.Context) error {
	tree, err := api.catalog(ctx).Tree(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building competence tree")
	}
	return ctx.JSON(http.StatusOK, nonNil(tree))
}

func (api *studentApi) competenceDetail(ctx echo.Context) error {
	detail, err := api.catalog(ctx).Detail(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "getting competence")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *studentApi) listActivities(ctx echo.Context) error {
	acts, err := api.activities(ctx).Browse(ctx.Request().Context(), bindActivityFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "listing activities")
	}
	return ctx.JSON(http.StatusOK, acts)
}

// ActivityDetail is an activity with its resources.
type ActivityDetail struct {
	Activity  activity.Activity   `json:"activity"`
	Resources []activity.Resource `json:"resources"`
}

func (api *studentApi) retrieveActivity(ctx echo.Context) error {
	svc := api.activities(ctx)
	id := paramID(ctx, "id")

	var detail ActivityDetail
	g, gctx := errgroup.WithContext(ctx.Request().Context())
	g.Go(func() (err error) {
		detail.Activity, err = svc.Get(gctx, id)
		return errors.Wrap(err, "getting activity")
	})
	g.Go(func() (err error) {
		detail.Resources, err = svc.Resources(gctx, id)
		return errors.Wrap(err, "listing activity resources")
	})
	if err := g.Wait(); err != nil {
		return err
	}
	detail.Resources = nonNil(detail.Resources)
	return ctx.JSON(http.StatusOK, detail)
}

func (api *studentApi) listEvaluations(ctx echo.Context) error {
	evals, err := api.client(ctx).ListPublishedEvaluations(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing published evaluations")
	}
	return ctx.JSON(http.StatusOK, nonNil(evals))
}

func (api *studentApi) recommendations(ctx echo.Context) error {
	filter, limit := bindRecommendationFilter(ctx)
	view, err := recommendation.NewService(api.client(ctx)).ForStudent(ctx.Request().Context(), getContextIdentity(ctx), limit, filter)
	if err != nil {
		return errors.Wrap(err, "loading recommendations")
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *studentApi) history(ctx echo.Context) error {
	ident := getContextIdentity(ctx)
	rows, err := api.client(ctx).ListStudentSubmissions(ctx.Request().Context(), ident.UserID)
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return ctx.JSON(http.StatusOK, nonNil(rows))
}

func (api *studentApi) result(ctx echo.Context) error {
	res, err := evaluation.Review(ctx.Request().Context(), api.client(ctx), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "reviewing submission")
	}
	return ctx.JSON(http.StatusOK, res)
}

// userMessage is the text shown for a failure rendered inline in a page.
func userMessage(err error) string {
	var apiErr *restapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return errors.Cause(err).Error()
}
