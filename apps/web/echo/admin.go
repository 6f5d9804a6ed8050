package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core/activity"
	"github.com/skillflow360/skillflow/core/analytics"
	"github.com/skillflow360/skillflow/core/catalog"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/services/restapi"
)

type adminApi struct {
	deps ServerDeps
}

func registerAdminAPI(g *echo.Group, deps ServerDeps) {
	api := adminApi{deps: deps}

	cg := g.Group("/competences")
	cg.GET("", api.listCompetences)
	cg.POST("", api.createCompetence)
	cg.GET("/tree", api.competenceTree)
	cg.GET("/:id", api.competenceDetail)
	cg.PUT("/:id", api.updateCompetence)
	cg.DELETE("/:id", api.deleteCompetence)
	cg.POST("/:id/subcompetences", api.createSubCompetence)
	cg.POST("/:id/levels", api.createLevel)
	cg.POST("/:id/resources", api.createCompetenceResource)

	g.PUT("/subcompetences/:id", api.updateSubCompetence)
	g.DELETE("/subcompetences/:id", api.deleteSubCompetence)
	g.PUT("/levels/:id", api.updateLevel)
	g.DELETE("/levels/:id", api.deleteLevel)
	g.PUT("/resources/:id", api.updateCompetenceResource)
	g.DELETE("/resources/:id", api.deleteCompetenceResource)

	pg := g.Group("/prerequisites")
	pg.GET("", api.listPrerequisites)
	pg.POST("", api.createPrerequisite)
	pg.PUT("/:id", api.updatePrerequisite)
	pg.DELETE("/:id", api.deletePrerequisite)

	ag := g.Group("/activities")
	ag.GET("", api.listActivities)
	ag.POST("", api.createActivity)
	ag.GET("/:id", api.retrieveActivity)
	ag.PUT("/:id", api.updateActivity)
	ag.DELETE("/:id", api.deleteActivity)
	ag.GET("/:id/resources", api.listActivityResources)
	ag.POST("/:id/resources", api.createActivityResource)
	g.PUT("/activity-resources/:id", api.updateActivityResource)
	g.DELETE("/activity-resources/:id", api.deleteActivityResource)

	eg := g.Group("/evaluations")
	eg.GET("", api.listEvaluations)
	eg.POST("", api.createEvaluation)
	eg.GET("/:id", api.retrieveEvaluation)
	eg.PUT("/:id", api.updateEvaluation)
	eg.DELETE("/:id", api.deleteEvaluation)
	eg.POST("/:id/publish", api.togglePublish)
	eg.GET("/:id/questions", api.listQuestions)
	eg.POST("/:id/questions", api.addQuestion)
	eg.GET("/:id/submissions", api.listSubmissions)

	g.GET("/dashboard", api.dashboard)
}

func (api *adminApi) client(ctx echo.Context) *restapi.Client {
	return api.deps.API.As(getContextIdentity(ctx))
}

func (api *adminApi) catalog(ctx echo.Context) *catalog.Service {
	return catalog.NewService(api.client(ctx), api.deps.Validate, api.deps.Translator)
}

func (api *adminApi) activities(ctx echo.Context) *activity.Service {
	return activity.NewService(api.client(ctx), api.deps.Validate, api.deps.Translator)
}

func (api *adminApi) evaluations(ctx echo.Context) *evaluation.Service {
	return evaluation.NewService(api.client(ctx), api.deps.Validate, api.deps.Translator)
}

// Competences

func (api *adminApi) listCompetences(ctx echo.Context) error {
	comps, err := api.catalog(ctx).Competences(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing competences")
	}
	return ctx.JSON(http.StatusOK, nonNil(comps))
}

func (api *adminApi) competenceTree(ctx echo.Context) error {
	tree, err := api.catalog(ctx).Tree(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building competence tree")
	}
	return ctx.JSON(http.StatusOK, nonNil(tree))
}

func (api *adminApi) competenceDetail(ctx echo.Context) error {
	detail, err := api.catalog(ctx).Detail(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "getting competence")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *adminApi) createCompetence(ctx echo.Context) error {
	var data catalog.NewCompetence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompetence")
	}
	comp, err := api.catalog(ctx).CreateCompetence(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating competence")
	}
	return ctx.JSON(http.StatusCreated, comp)
}

func (api *adminApi) updateCompetence(ctx echo.Context) error {
	var data catalog.NewCompetence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompetence")
	}
	comp, err := api.catalog(ctx).UpdateCompetence(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating competence")
	}
	return ctx.JSON(http.StatusOK, comp)
}

func (api *adminApi) deleteCompetence(ctx echo.Context) error {
	if err := api.catalog(ctx).DeleteCompetence(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting competence")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) createSubCompetence(ctx echo.Context) error {
	var data catalog.NewSubCompetence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubCompetence")
	}
	sub, err := api.catalog(ctx).CreateSubCompetence(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "creating sub-competence")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *adminApi) updateSubCompetence(ctx echo.Context) error {
	var data catalog.NewSubCompetence
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubCompetence")
	}
	sub, err := api.catalog(ctx).UpdateSubCompetence(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating sub-competence")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *adminApi) deleteSubCompetence(ctx echo.Context) error {
	if err := api.catalog(ctx).DeleteSubCompetence(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting sub-competence")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) createLevel(ctx echo.Context) error {
	var data catalog.NewLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLevel")
	}
	lvl, err := api.catalog(ctx).CreateLevel(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "creating level")
	}
	return ctx.JSON(http.StatusCreated, lvl)
}

func (api *adminApi) updateLevel(ctx echo.Context) error {
	var data catalog.NewLevel
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLevel")
	}
	lvl, err := api.catalog(ctx).UpdateLevel(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating level")
	}
	return ctx.JSON(http.StatusOK, lvl)
}

func (api *adminApi) deleteLevel(ctx echo.Context) error {
	if err := api.catalog(ctx).DeleteLevel(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting level")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) createCompetenceResource(ctx echo.Context) error {
	var data catalog.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	res, err := api.catalog(ctx).CreateResource(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *adminApi) updateCompetenceResource(ctx echo.Context) error {
	var data catalog.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	res, err := api.catalog(ctx).UpdateResource(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *adminApi) deleteCompetenceResource(ctx echo.Context) error {
	if err := api.catalog(ctx).DeleteResource(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Prerequisites

func (api *adminApi) listPrerequisites(ctx echo.Context) error {
	ps, err := api.catalog(ctx).Prerequisites(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing prerequisites")
	}
	return ctx.JSON(http.StatusOK, nonNil(ps))
}

func (api *adminApi) createPrerequisite(ctx echo.Context) error {
	var data catalog.NewPrerequisite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrerequisite")
	}
	p, err := api.catalog(ctx).CreatePrerequisite(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating prerequisite")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *adminApi) updatePrerequisite(ctx echo.Context) error {
	var data catalog.NewPrerequisite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrerequisite")
	}
	p, err := api.catalog(ctx).UpdatePrerequisite(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating prerequisite")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *adminApi) deletePrerequisite(ctx echo.Context) error {
	if err := api.catalog(ctx).DeletePrerequisite(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting prerequisite")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Activities

func (api *adminApi) listActivities(ctx echo.Context) error {
	acts, err := api.activities(ctx).Browse(ctx.Request().Context(), bindActivityFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "listing activities")
	}
	return ctx.JSON(http.StatusOK, acts)
}

func (api *adminApi) retrieveActivity(ctx echo.Context) error {
	act, err := api.activities(ctx).Get(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "getting activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *adminApi) createActivity(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	act, err := api.activities(ctx).Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating activity")
	}
	return ctx.JSON(http.StatusCreated, act)
}

func (api *adminApi) updateActivity(ctx echo.Context) error {
	var data activity.NewActivity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewActivity")
	}
	act, err := api.activities(ctx).Update(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating activity")
	}
	return ctx.JSON(http.StatusOK, act)
}

func (api *adminApi) deleteActivity(ctx echo.Context) error {
	if err := api.activities(ctx).Delete(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting activity")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) listActivityResources(ctx echo.Context) error {
	res, err := api.activities(ctx).Resources(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "listing activity resources")
	}
	return ctx.JSON(http.StatusOK, nonNil(res))
}

func (api *adminApi) createActivityResource(ctx echo.Context) error {
	var data activity.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	res, err := api.activities(ctx).AddResource(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "creating activity resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *adminApi) updateActivityResource(ctx echo.Context) error {
	var data activity.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	res, err := api.activities(ctx).UpdateResource(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating activity resource")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *adminApi) deleteActivityResource(ctx echo.Context) error {
	if err := api.activities(ctx).DeleteResource(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting activity resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Evaluations

type evaluationsResponse struct {
	Evaluations []evaluation.Evaluation `json:"evaluations"`
	KPIs        evaluation.KPIs         `json:"kpis"`
}

func (api *adminApi) listEvaluations(ctx echo.Context) error {
	evals, kpis, err := api.evaluations(ctx).List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing evaluations")
	}
	return ctx.JSON(http.StatusOK, evaluationsResponse{Evaluations: nonNil(evals), KPIs: kpis})
}

func (api *adminApi) retrieveEvaluation(ctx echo.Context) error {
	eval, err := api.evaluations(ctx).Get(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "getting evaluation")
	}
	return ctx.JSON(http.StatusOK, eval)
}

func (api *adminApi) createEvaluation(ctx echo.Context) error {
	var data evaluation.NewEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvaluation")
	}
	eval, err := api.evaluations(ctx).Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating evaluation")
	}
	return ctx.JSON(http.StatusCreated, eval)
}

func (api *adminApi) updateEvaluation(ctx echo.Context) error {
	var data evaluation.NewEvaluation
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvaluation")
	}
	eval, err := api.evaluations(ctx).Update(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "updating evaluation")
	}
	return ctx.JSON(http.StatusOK, eval)
}

func (api *adminApi) deleteEvaluation(ctx echo.Context) error {
	if err := api.evaluations(ctx).Delete(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting evaluation")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) togglePublish(ctx echo.Context) error {
	eval, err := api.evaluations(ctx).TogglePublish(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "toggling publication")
	}
	return ctx.JSON(http.StatusOK, eval)
}

func (api *adminApi) listQuestions(ctx echo.Context) error {
	qs, err := api.evaluations(ctx).Questions(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "listing questions")
	}
	return ctx.JSON(http.StatusOK, nonNil(qs))
}

func (api *adminApi) addQuestion(ctx echo.Context) error {
	var data evaluation.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	q, err := api.evaluations(ctx).AddQuestion(ctx.Request().Context(), paramID(ctx, "id"), data)
	if err != nil {
		return errors.Wrap(err, "adding question")
	}
	return ctx.JSON(http.StatusCreated, q)
}

func (api *adminApi) listSubmissions(ctx echo.Context) error {
	rows, err := api.evaluations(ctx).Submissions(ctx.Request().Context(), paramID(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return ctx.JSON(http.StatusOK, nonNil(rows))
}

// Dashboard

func (api *adminApi) dashboard(ctx echo.Context) error {
	dash, err := analytics.NewService(api.client(ctx)).Dashboard(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, dash)
}

// nonNil renders empty lists as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
