package identitysvc

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/identity"
)

const (
	userEndpoint   = "/auth/v1/user"
	logoutEndpoint = "/auth/v1/logout"
)

// GoTrueProvider asks the hosted auth service who owns a token.
type GoTrueProvider struct {
	client *resty.Client
}

var _ identity.Provider = (*GoTrueProvider)(nil)

type gotrueUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

func NewGoTrueProvider(conf core.IdentityConfig) (*GoTrueProvider, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.URL, "identity.url"),
		vala.StringNotEmpty(conf.APIKey, "identity.apiKey"),
	).Check(); err != nil {
		return nil, err
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(conf.URL, "/")).
		SetHeader("apikey", conf.APIKey).
		SetHeader("Accept", "application/json")
	if conf.Timeout > 0 {
		client.SetTimeout(conf.Timeout)
	}
	return &GoTrueProvider{client: client}, nil
}

func (p *GoTrueProvider) CurrentIdentity(ctx context.Context, token string) (identity.Identity, error) {
	if token == "" {
		return identity.Identity{}, identity.ErrNoSession
	}

	var usr gotrueUser
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&usr).
		Get(userEndpoint)
	if err != nil {
		return identity.Identity{}, errors.Wrap(err, "requesting auth user")
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return identity.Identity{}, identity.ErrInvalidToken
	case resp.IsError():
		return identity.Identity{}, errors.Errorf("auth service responded %s", resp.Status())
	case usr.ID == "":
		return identity.Identity{}, identity.ErrInvalidToken
	}

	return identity.Identity{ID: usr.ID, Email: usr.Email, Name: usr.UserMetadata.Name}, nil
}

// SignOut revokes the session; an already invalid token counts as signed out.
func (p *GoTrueProvider) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		Post(logoutEndpoint)
	if err != nil {
		return errors.Wrap(err, "requesting logout")
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return nil
	}
	if resp.IsError() {
		return errors.Errorf("auth service responded %s", resp.Status())
	}
	return nil
}

// NewProvider picks the provider configured by identity.provider.
func NewProvider(conf core.IdentityConfig) (identity.Provider, error) {
	switch conf.Provider {
	case "", "token":
		p, err := NewTokenProvider(conf)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gotrue":
		p, err := NewGoTrueProvider(conf)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Errorf("unknown identity provider %q", conf.Provider)
	}
}
