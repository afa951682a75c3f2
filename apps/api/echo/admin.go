package echoapi

import (
	"net/http"
	"time"
	_ "time/tzdata" // viewer time zones on hosts without zoneinfo

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/analytics"
)

const (
	recentUsersLimit    = 5
	popularLessonsLimit = 5
)

type adminApi struct {
	analyticsSvc *analytics.Service
	defaultLoc   *time.Location
}

func registerAdminAPI(e *echo.Echo, g *gate, deps ServerDeps) {
	api := adminApi{analyticsSvc: deps.AnalyticsSvc, defaultLoc: deps.Conf.Analytics.Location()}

	ag := e.Group("/admin", g.requireStaff)
	ag.GET("", api.overview)
	ag.GET("/users", api.users)
	ag.GET("/lessons", api.lessons)
	ag.GET("/analytics", api.analyticsDetail)
}

// Handlers

func (api *adminApi) overview(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var (
		page adminPage
		err  error
	)
	if page.Overview, err = api.analyticsSvc.Overview(reqCtx); err != nil {
		return errors.Wrap(err, "getting overview")
	}
	if page.RecentUsers, err = api.analyticsSvc.RecentUsers(reqCtx, recentUsersLimit); err != nil {
		return errors.Wrap(err, "getting recent users")
	}
	if page.PopularLessons, err = api.analyticsSvc.PopularLessons(reqCtx, popularLessonsLimit); err != nil {
		return errors.Wrap(err, "getting popular lessons")
	}
	return ctx.JSON(http.StatusOK, page)
}

// users lists profiles with their activity counts, ?ordering=name,-created_at
func (api *adminApi) users(ctx echo.Context) error {
	var ord Ordering
	ord.Bind(ctx)

	users, err := api.analyticsSvc.Users(ctx.Request().Context(), ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing users")
	}
	return ctx.JSON(http.StatusOK, adminUsersPage{Users: users})
}

func (api *adminApi) lessons(ctx echo.Context) error {
	groups, err := api.analyticsSvc.LessonsByCategory(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "grouping lessons")
	}
	return ctx.JSON(http.StatusOK, adminLessonsPage{Groups: groups})
}

// analyticsDetail buckets the activity histogram in the viewer's time zone, ?tz=Africa/Kinshasa
func (api *adminApi) analyticsDetail(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	loc := api.defaultLoc
	if name := ctx.QueryParam(timeZoneParam); name != "" {
		tz, err := time.LoadLocation(name)
		if err != nil {
			return core.NewValidationError(err, core.FieldError{Field: timeZoneParam, Error: "unknown time zone"})
		}
		loc = tz
	}

	var (
		page = analyticsPage{TimeZone: loc.String()}
		err  error
	)
	if page.Overview, err = api.analyticsSvc.Overview(reqCtx); err != nil {
		return errors.Wrap(err, "getting overview")
	}
	if page.Categories, err = api.analyticsSvc.CategoryCompletions(reqCtx); err != nil {
		return errors.Wrap(err, "getting category completions")
	}
	if page.Activity, err = api.analyticsSvc.ActivityHistogram(reqCtx, core.NowFunc(), loc); err != nil {
		return errors.Wrap(err, "getting activity histogram")
	}
	if page.Metrics, err = api.analyticsSvc.Metrics(reqCtx); err != nil {
		return errors.Wrap(err, "getting metrics")
	}
	return ctx.JSON(http.StatusOK, page)
}
