package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/identity"
	"github.com/trezcool/academia/core/profile"
)

const (
	contextIdentityKey = "identity"
	sessionTokenKey    = "access_token"

	loginPath     = "/auth/login"
	dashboardPath = "/dashboard"
)

func newSessionStore(conf *core.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(conf.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   conf.Session.MaxAge,
		HttpOnly: true,
		Secure:   conf.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// gate resolves the request identity and guards the authenticated and staff areas.
type gate struct {
	provider   identity.Provider
	profiles   *profile.Service
	store      *sessions.CookieStore
	cookieName string
	logger     core.Logger
}

func newGate(provider identity.Provider, profiles *profile.Service, store *sessions.CookieStore, conf *core.Config, logger core.Logger) *gate {
	return &gate{
		provider:   provider,
		profiles:   profiles,
		store:      store,
		cookieName: conf.Session.CookieName,
		logger:     logger,
	}
}

// token reads the access token from the session cookie, then from the Authorization header.
func (g *gate) token(ctx echo.Context) string {
	if sess, err := g.store.Get(ctx.Request(), g.cookieName); err == nil {
		if tok, ok := sess.Values[sessionTokenKey].(string); ok && tok != "" {
			return tok
		}
	}
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// identify attaches the caller's identity to the context, if any.
// Any provider failure leaves the request unauthenticated.
func (g *gate) identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tok := g.token(ctx)
		if tok == "" {
			return next(ctx)
		}
		ident, err := g.provider.CurrentIdentity(ctx.Request().Context(), tok)
		switch {
		case err == nil && !ident.IsZero():
			ctx.Set(contextIdentityKey, ident)
		case err != nil && errors.Cause(err) != identity.ErrNoSession:
			g.logger.Warn(fmt.Sprintf("resolving identity: %v", err), err)
		}
		return next(ctx)
	}
}

// requireAuth redirects anonymous requests to the login page before any handler runs.
func (g *gate) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ident, ok := contextIdentity(ctx)
		if !ok {
			return ctx.Redirect(http.StatusFound, loginPath)
		}
		g.ensureProfile(ctx, ident)
		return next(ctx)
	}
}

// ensureProfile registers first-time users. The request goes on if the store is unavailable.
func (g *gate) ensureProfile(ctx echo.Context, ident identity.Identity) {
	if _, err := g.profiles.Ensure(ctx.Request().Context(), ident); err != nil {
		g.logger.Warn(fmt.Sprintf("creating profile: %v", err), err, ident)
	}
}

// requireStaff lets admins and teachers through. Anyone else, including callers whose
// role cannot be read, is sent to the dashboard.
func (g *gate) requireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuth(func(ctx echo.Context) error {
		ident, _ := contextIdentity(ctx)
		p, err := g.profiles.Get(ctx.Request().Context(), ident.ID)
		if err != nil {
			if errors.Cause(err) != profile.ErrNotFound {
				g.logger.Warn(fmt.Sprintf("reading role: %v", err), err, ident)
			}
			return ctx.Redirect(http.StatusFound, dashboardPath)
		}
		if !p.CanAccessAdmin() {
			return ctx.Redirect(http.StatusFound, dashboardPath)
		}
		return next(ctx)
	})
}

func contextIdentity(ctx echo.Context) (identity.Identity, bool) {
	ident, ok := ctx.Get(contextIdentityKey).(identity.Identity)
	return ident, ok && !ident.IsZero()
}

// mustIdentity returns the identity set by requireAuth.
func mustIdentity(ctx echo.Context) identity.Identity {
	ident, _ := contextIdentity(ctx)
	return ident
}

type authApi struct {
	gate     *gate
	loginURL string
	deps     ServerDeps
}

func registerAuthAPI(e *echo.Echo, g *gate, deps ServerDeps) {
	api := authApi{gate: g, loginURL: deps.Conf.Identity.LoginURL, deps: deps}

	ag := e.Group("/auth")
	ag.GET("/login", api.login)
	ag.POST("/session", api.createSession)
	ag.POST("/logout", api.logout)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	_, authed := contextIdentity(ctx)
	return ctx.JSON(http.StatusOK, loginPage{LoginURL: api.loginURL, Authenticated: authed})
}

func (api *authApi) createSession(ctx echo.Context) error {
	var data sessionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to sessionRequest")
	}
	if err := api.deps.Validate.Struct(data); err != nil {
		return err
	}

	ident, err := api.gate.provider.CurrentIdentity(ctx.Request().Context(), data.AccessToken)
	if err != nil || ident.IsZero() {
		if err != nil && errors.Cause(err) != identity.ErrNoSession {
			api.deps.Logger.Warn(fmt.Sprintf("resolving identity: %v", err), err)
		}
		return errInvalidSession
	}
	api.gate.ensureProfile(ctx, ident)

	sess, _ := api.gate.store.Get(ctx.Request(), api.gate.cookieName) // a fresh session is returned on decode errors
	sess.Values[sessionTokenKey] = data.AccessToken
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return ctx.JSON(http.StatusOK, ident)
}

func (api *authApi) logout(ctx echo.Context) error {
	if tok := api.gate.token(ctx); tok != "" {
		if err := api.gate.provider.SignOut(ctx.Request().Context(), tok); err != nil {
			api.deps.Logger.Warn(fmt.Sprintf("signing out: %v", err), err)
		}
	}

	sess, _ := api.gate.store.Get(ctx.Request(), api.gate.cookieName)
	sess.Options.MaxAge = -1
	delete(sess.Values, sessionTokenKey)
	if err := sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}
