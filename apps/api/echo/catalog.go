package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/progress"
)

const modulesPath = "/modules"

type catalogApi struct {
	catalogSvc  *catalog.Service
	progressSvc *progress.Service
}

func registerCatalogAPI(e *echo.Echo, g *gate, deps ServerDeps) {
	api := catalogApi{catalogSvc: deps.CatalogSvc, progressSvc: deps.ProgressSvc}

	e.GET(modulesPath, api.listModules)
	e.GET(modulesPath+"/:categoryId", api.categoryDetail, g.requireAuth)
}

// Handlers

func (api *catalogApi) listModules(ctx echo.Context) error {
	cats, err := api.catalogSvc.ListCategories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing categories")
	}
	_, authed := contextIdentity(ctx)
	return ctx.JSON(http.StatusOK, modulesPage{Authenticated: authed, Categories: cats})
}

func (api *catalogApi) categoryDetail(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ident := mustIdentity(ctx)

	cat, err := api.catalogSvc.GetCategory(reqCtx, ctx.Param("categoryId"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrCategoryNotFound {
			return ctx.Redirect(http.StatusFound, modulesPath)
		}
		return errors.Wrap(err, "getting category")
	}
	lessons, err := api.catalogSvc.CategoryLessons(reqCtx, cat.ID)
	if err != nil {
		return errors.Wrap(err, "listing category lessons")
	}

	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	statuses, err := api.progressSvc.StatusMap(reqCtx, ident.ID, ids)
	if err != nil {
		return errors.Wrap(err, "getting lesson statuses")
	}

	page := categoryPage{Category: cat, Lessons: make([]lessonWithStatus, 0, len(lessons)), Total: len(lessons)}
	for _, l := range lessons {
		st := statuses[l.ID]
		if st == progress.StatusCompleted {
			page.Completed++
		}
		page.Lessons = append(page.Lessons, lessonWithStatus{Lesson: l, Status: st})
	}
	page.Percentage = core.Percentage(page.Completed, page.Total)
	return ctx.JSON(http.StatusOK, page)
}
