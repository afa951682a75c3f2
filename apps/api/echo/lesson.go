package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/comment"
	"github.com/trezcool/academia/core/progress"
)

type lessonApi struct {
	catalogSvc  *catalog.Service
	progressSvc *progress.Service
	commentSvc  *comment.Service
	logger      core.Logger
}

func registerLessonAPI(e *echo.Echo, g *gate, deps ServerDeps) {
	api := lessonApi{
		catalogSvc:  deps.CatalogSvc,
		progressSvc: deps.ProgressSvc,
		commentSvc:  deps.CommentSvc,
		logger:      deps.Logger,
	}

	lg := e.Group("/lesson/:lessonId", g.requireAuth)
	lg.GET("", api.lessonDetail)
	lg.POST("/progress", api.markComplete)
	lg.DELETE("/progress", api.markIncomplete)
	lg.POST("/comments", api.addComment)
}

// Handlers

func (api *lessonApi) lessonDetail(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ident := mustIdentity(ctx)

	lesson, err := api.catalogSvc.GetLesson(reqCtx, ctx.Param("lessonId"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrLessonNotFound {
			return ctx.Redirect(http.StatusFound, modulesPath)
		}
		return errors.Wrap(err, "getting lesson")
	}

	page := lessonPage{Lesson: lesson}
	if lesson.CategoryID != "" {
		cat, err := api.catalogSvc.GetCategory(reqCtx, lesson.CategoryID)
		switch {
		case err == nil:
			page.Category = &cat
		case errors.Cause(err) != catalog.ErrCategoryNotFound:
			return errors.Wrap(err, "getting lesson category")
		}
	}
	if page.Navigation, err = api.catalogSvc.LessonNavigation(reqCtx, lesson); err != nil {
		return errors.Wrap(err, "getting lesson navigation")
	}
	if page.Status, err = api.progressSvc.GetStatus(reqCtx, ident.ID, lesson.ID); err != nil {
		return errors.Wrap(err, "getting lesson status")
	}
	if page.Comments, err = api.commentSvc.List(reqCtx, lesson.ID); err != nil {
		return errors.Wrap(err, "listing comments")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *lessonApi) markComplete(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ident := mustIdentity(ctx)
	lessonID := ctx.Param("lessonId")

	prev, err := api.progressSvc.GetStatus(reqCtx, ident.ID, lessonID)
	if err != nil {
		return api.progressFailed(ctx, err, progress.StatusNotStarted)
	}
	if _, err = api.progressSvc.MarkComplete(reqCtx, ident, lessonID); err != nil {
		if errors.Cause(err) == catalog.ErrLessonNotFound {
			return errLessonNotFound
		}
		return api.progressFailed(ctx, err, prev)
	}
	return ctx.JSON(http.StatusOK, progressResponse{LessonID: lessonID, Status: progress.StatusCompleted})
}

func (api *lessonApi) markIncomplete(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ident := mustIdentity(ctx)
	lessonID := ctx.Param("lessonId")

	if _, err := api.catalogSvc.GetLesson(reqCtx, lessonID); err != nil {
		if errors.Cause(err) == catalog.ErrLessonNotFound {
			return errLessonNotFound
		}
		return errors.Wrap(err, "getting lesson")
	}
	prev, err := api.progressSvc.GetStatus(reqCtx, ident.ID, lessonID)
	if err != nil {
		return api.progressFailed(ctx, err, progress.StatusCompleted)
	}
	if err = api.progressSvc.MarkIncomplete(reqCtx, ident.ID, lessonID); err != nil {
		return api.progressFailed(ctx, err, prev)
	}
	return ctx.JSON(http.StatusOK, progressResponse{LessonID: lessonID, Status: progress.StatusNotStarted})
}

// progressFailed logs a failed toggle and answers with the status the lesson had before it.
func (api *lessonApi) progressFailed(ctx echo.Context, err error, prev progress.Status) error {
	msg := http.StatusText(http.StatusInternalServerError)
	api.logger.Error(fmt.Sprintf("toggling progress of lesson %q", ctx.Param("lessonId")), err, mustIdentity(ctx))
	return ctx.JSON(http.StatusInternalServerError, progressFailure{Error: msg, Status: prev})
}

func (api *lessonApi) addComment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ident := mustIdentity(ctx)

	lesson, err := api.catalogSvc.GetLesson(reqCtx, ctx.Param("lessonId"))
	if err != nil {
		if errors.Cause(err) == catalog.ErrLessonNotFound {
			return errLessonNotFound
		}
		return errors.Wrap(err, "getting lesson")
	}

	var data commentRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to commentRequest")
	}
	c, err := api.commentSvc.Add(reqCtx, comment.NewComment{LessonID: lesson.ID, AuthorID: ident.ID, Text: data.Text})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}
