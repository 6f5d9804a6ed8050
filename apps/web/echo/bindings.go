package echoweb

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/activity"
	"github.com/skillflow360/skillflow/core/recommendation"
)

// paramID returns the positive id in the named path param, 0 when invalid.
// The services reject 0 before calling the API.
func paramID(ctx echo.Context, name string) int64 {
	return core.ParseID(ctx.Param(name))
}

func bindActivityFilter(ctx echo.Context) activity.Filter {
	return activity.Filter{
		Search: ctx.QueryParam("search"),
		Type:   activity.Type(ctx.QueryParam("type")),
		Level:  activity.Level(ctx.QueryParam("level")),
	}
}

func bindRecommendationFilter(ctx echo.Context) (recommendation.Filter, int) {
	limit, err := strconv.Atoi(ctx.QueryParam("limit"))
	if err != nil {
		limit = 0
	}
	return recommendation.Filter{
		Search: ctx.QueryParam("search"),
		Level:  ctx.QueryParam("level"),
	}, limit
}
