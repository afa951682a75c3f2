package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/identity"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/storage/database/dummy"
	"github.com/trezcool/academia/tests"
)

func newService() (*profile.Service, profile.Repository) {
	repo := dummydb.NewProfileRepository(dummydb.Open())
	return profile.NewService(repo), repo
}

func TestService_GetOrDefault(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	testutil.CreateProfile(t, repo, "user-1", "Awe", "awe@test.cd", profile.RoleTeacher)

	p, err := svc.GetOrDefault(ctx, identity.Identity{ID: "user-1", Email: "other@test.cd"})
	require.NoError(t, err)
	assert.Equal(t, "Awe", p.Name)
	assert.Equal(t, profile.RoleTeacher, p.Role)

	p, err = svc.GetOrDefault(ctx, identity.Identity{ID: "user-2", Email: "new@test.cd", Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, profile.Profile{ID: "user-2", Email: "new@test.cd", Name: "New", Role: profile.RoleStudent}, p)

	_, err = svc.Get(ctx, "user-2")
	assert.Equal(t, profile.ErrNotFound, err) // defaults are not persisted
}

func TestService_Ensure(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateProfile(t, repo, "user-1", "Awe M.", "awe@test.cd", profile.RoleTeacher, created)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	t.Run("new user", func(t *testing.T) {
		p, err := svc.Ensure(ctx, identity.Identity{ID: "user-2", Email: " New@Test.cd ", Name: " New "})
		require.NoError(t, err)
		assert.Equal(t, profile.Profile{
			ID: "user-2", Email: "new@test.cd", Name: "New", Role: profile.RoleStudent, CreatedAt: now, UpdatedAt: now,
		}, p)

		stored, err := svc.Get(ctx, "user-2")
		require.NoError(t, err)
		assert.Equal(t, p, stored)
	})

	t.Run("existing profile is left alone", func(t *testing.T) {
		p, err := svc.Ensure(ctx, identity.Identity{ID: "user-1", Email: "other@test.cd", Name: "Awe"})
		require.NoError(t, err)
		assert.Equal(t, "Awe M.", p.Name)
		assert.Equal(t, "awe@test.cd", p.Email)
		assert.Equal(t, profile.RoleTeacher, p.Role)
		assert.Equal(t, created, p.CreatedAt)
	})

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_Save(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateProfile(t, repo, "user-1", "Old", "awe@test.cd", profile.RoleAdmin, created)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	testutil.FreezeTime(t, now)

	p, err := svc.Save(ctx, identity.Identity{ID: "user-1", Email: " AWE@test.cd "}, profile.UpdateProfile{
		Name:    " Awe ",
		Bio:     "Gopher\n",
		Website: "https://awe.test",
	})
	require.NoError(t, err)
	assert.Equal(t, "Awe", p.Name)
	assert.Equal(t, "awe@test.cd", p.Email)
	assert.Equal(t, "Gopher", p.Bio)
	assert.Equal(t, profile.RoleAdmin, p.Role)
	assert.True(t, created.Equal(p.CreatedAt))
	assert.True(t, now.Equal(p.UpdatedAt))

	p, err = svc.Save(ctx, identity.Identity{ID: "user-2", Email: "new@test.cd"}, profile.UpdateProfile{})
	require.NoError(t, err)
	assert.Equal(t, profile.RoleStudent, p.Role)
	assert.True(t, now.Equal(p.CreatedAt))

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestService_SetRole(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	testutil.CreateProfile(t, repo, "user-1", "Awe", "awe@test.cd", "")

	tests := []struct {
		name     string
		email    string
		role     string
		wantRole string
		wantErr  error
	}{
		{name: "invalid role", email: "awe@test.cd", role: "boss", wantErr: profile.ErrInvalidRole},
		{name: "unknown email", email: "ghost@test.cd", role: profile.RoleAdmin, wantErr: profile.ErrNotFound},
		{name: "teacher", email: "awe@test.cd", role: profile.RoleTeacher, wantRole: profile.RoleTeacher},
		{name: "case insensitive email", email: " AWE@Test.cd", role: profile.RoleAdmin, wantRole: profile.RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.SetRole(ctx, tt.email, tt.role)
			if tt.wantErr != nil {
				if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
					err = vErr.Err
				}
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, p.Role)
			assert.True(t, p.CanAccessAdmin())
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		p     profile.Profile
		ident identity.Identity
		want  string
	}{
		{name: "profile name", p: profile.Profile{Name: " Awe "}, ident: identity.Identity{Name: "Token"}, want: "Awe"},
		{name: "identity name", p: profile.Profile{Name: "  "}, ident: identity.Identity{Name: "Token"}, want: "Token"},
		{name: "fallback", want: "Student"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, profile.DisplayName(tt.p, tt.ident))
		})
	}
}

func TestProfile_CanAccessAdmin(t *testing.T) {
	assert.False(t, profile.Profile{Role: profile.RoleStudent}.CanAccessAdmin())
	assert.False(t, profile.Profile{}.CanAccessAdmin())
	assert.True(t, profile.Profile{Role: profile.RoleTeacher}.CanAccessAdmin())
	assert.True(t, profile.Profile{Role: profile.RoleAdmin}.CanAccessAdmin())
}

func TestSetRole_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)

	assert.NoError(t, profile.SetRole{Email: "awe@test.cd", Role: profile.RoleTeacher}.Validate(validate))

	err := core.TranslateValidationErrors(profile.SetRole{Email: "lol", Role: "boss"}.Validate(validate), translator)
	require.True(t, core.IsValidationError(err))
	fields := errors.Cause(err).(*core.ValidationError).FieldMap()
	assert.Contains(t, fields, "email")
	assert.Equal(t, "invalid role, must be one of: student, teacher, admin", fields["role"])
}
