// Package identitysvc implements identity.Provider for the hosted auth service.
package identitysvc

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/identity"
)

const tokenAudience = "authenticated"

// Claims are the access token claims issued by the auth service.
type Claims struct {
	jwt.StandardClaims
	Email        string       `json:"email,omitempty"`
	Role         string       `json:"role,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

type UserMetadata struct {
	Name string `json:"name,omitempty"`
}

// TokenProvider verifies access tokens locally with the shared HS256 secret. Sessions are
// stateless so SignOut has nothing to revoke.
type TokenProvider struct {
	secret []byte
}

var _ identity.Provider = (*TokenProvider)(nil)

func NewTokenProvider(conf core.IdentityConfig) (*TokenProvider, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.JWTSecret, "identity.jwtSecret"),
	).Check(); err != nil {
		return nil, err
	}
	return &TokenProvider{secret: []byte(conf.JWTSecret)}, nil
}

func (p *TokenProvider) CurrentIdentity(_ context.Context, token string) (identity.Identity, error) {
	if token == "" {
		return identity.Identity{}, identity.ErrNoSession
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return identity.Identity{}, identity.ErrInvalidToken
	}

	return identity.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.UserMetadata.Name,
	}, nil
}

func (p *TokenProvider) SignOut(context.Context, string) error {
	return nil
}

// Issue signs an access token for ident, valid for ttl. Used for local development and tests.
func (p *TokenProvider) Issue(ident identity.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   ident.ID,
			Audience:  tokenAudience,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Email:        ident.Email,
		Role:         tokenAudience,
		UserMetadata: UserMetadata{Name: ident.Name},
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}
