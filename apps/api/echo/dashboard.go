package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/core/progress"
)

type dashboardApi struct {
	profileSvc  *profile.Service
	progressSvc *progress.Service
	validate    *validator.Validate
}

func registerDashboardAPI(e *echo.Echo, g *gate, deps ServerDeps) {
	api := dashboardApi{profileSvc: deps.ProfileSvc, progressSvc: deps.ProgressSvc, validate: deps.Validate}

	dg := e.Group(dashboardPath, g.requireAuth)
	dg.GET("", api.overview)
	dg.GET("/profile", api.getProfile)
	dg.PUT("/profile", api.saveProfile)
	dg.GET("/certificates", api.certificates)
}

// Handlers

func (api *dashboardApi) overview(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ident := mustIdentity(ctx)

	p, err := api.profileSvc.GetOrDefault(reqCtx, ident)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	sum, err := api.progressSvc.Summary(reqCtx, ident.ID)
	if err != nil {
		return errors.Wrap(err, "summarizing progress")
	}

	return ctx.JSON(http.StatusOK, dashboardPage{
		Greeting:     fmt.Sprintf("Welcome back, %s!", profile.DisplayName(p, ident)),
		Overall:      sum.Percentage,
		Motivation:   sum.Motivation,
		Categories:   sum.Categories,
		Recent:       sum.Recent,
		Achievements: sum.Achievements,
		Stats:        dashboardStats{Completed: sum.Completed, Total: sum.Total, StudyHours: sum.StudyHours},
	})
}

func (api *dashboardApi) getProfile(ctx echo.Context) error {
	ident := mustIdentity(ctx)
	p, err := api.profileSvc.GetOrDefault(ctx.Request().Context(), ident)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, profilePage{Profile: p, DisplayName: profile.DisplayName(p, ident)})
}

func (api *dashboardApi) saveProfile(ctx echo.Context) error {
	ident := mustIdentity(ctx)

	var data profile.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.profileSvc.Save(ctx.Request().Context(), ident, data)
	if err != nil {
		return errors.Wrap(err, "saving profile")
	}
	return ctx.JSON(http.StatusOK, profilePage{Profile: p, DisplayName: profile.DisplayName(p, ident)})
}

func (api *dashboardApi) certificates(ctx echo.Context) error {
	certs, err := api.progressSvc.Certificates(ctx.Request().Context(), mustIdentity(ctx).ID)
	if err != nil {
		return errors.Wrap(err, "listing certificates")
	}
	return ctx.JSON(http.StatusOK, certificatesPage{Certificates: certs})
}
