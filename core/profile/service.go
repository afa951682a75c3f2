package profile

import (
	"context"
	"errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/identity"
)

const defaultDisplayName = "Student"

var (
	// errors
	ErrNotFound    = errors.New("profile not found")
	ErrInvalidRole = errors.New("invalid role")
)

type (
	Repository interface {
		GetProfile(ctx context.Context, id string) (Profile, error)
		GetProfileByEmail(ctx context.Context, email string) (Profile, error)
		// UpsertProfile creates the profile or updates its editable fields; Role and CreatedAt of
		// an existing profile are left untouched.
		UpsertProfile(ctx context.Context, p Profile) (Profile, error)
		// CreateProfileIfMissing inserts p unless a profile with its ID exists, and returns the stored profile.
		CreateProfileIfMissing(ctx context.Context, p Profile) (Profile, error)
		SetProfileRole(ctx context.Context, id, role string) (Profile, error)
		// QueryProfiles returns profiles in the requested order (newest first when empty). limit <= 0 means no limit.
		QueryProfiles(ctx context.Context, ordering []core.DBOrdering, limit int) ([]Profile, error)
		CountProfiles(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id string) (Profile, error) {
	return svc.repo.GetProfile(ctx, id)
}

// GetOrDefault returns the stored profile, or a blank student profile built from the
// identity when none has been saved yet.
func (svc *Service) GetOrDefault(ctx context.Context, ident identity.Identity) (Profile, error) {
	p, err := svc.repo.GetProfile(ctx, ident.ID)
	if err == ErrNotFound {
		return Profile{ID: ident.ID, Email: ident.Email, Name: ident.Name, Role: RoleStudent}, nil
	}
	return p, err
}

// Ensure creates a student profile seeded from the identity the first time a user is seen.
// An existing profile is returned unchanged.
func (svc *Service) Ensure(ctx context.Context, ident identity.Identity) (Profile, error) {
	now := core.NowFunc()
	return svc.repo.CreateProfileIfMissing(ctx, Profile{
		ID:        ident.ID,
		Email:     core.CleanString(ident.Email, true /* lower */),
		Name:      core.CleanString(ident.Name),
		Role:      RoleStudent,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Save upserts the caller's profile with the provided editable fields.
func (svc *Service) Save(ctx context.Context, ident identity.Identity, up UpdateProfile) (Profile, error) {
	now := core.NowFunc()
	p := Profile{
		ID:               ident.ID,
		Email:            core.CleanString(ident.Email, true /* lower */),
		Name:             core.CleanString(up.Name),
		Role:             RoleStudent,
		Bio:              core.CleanString(up.Bio),
		TelegramUsername: core.CleanString(up.TelegramUsername),
		Website:          core.CleanString(up.Website),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return svc.repo.UpsertProfile(ctx, p)
}

// SetRole changes the role of the profile registered with email.
func (svc *Service) SetRole(ctx context.Context, email, role string) (Profile, error) {
	if !IsValidRole(role) {
		return Profile{}, core.NewValidationError(ErrInvalidRole, core.FieldError{Field: "role", Error: roleText})
	}
	p, err := svc.repo.GetProfileByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return Profile{}, err
	}
	return svc.repo.SetProfileRole(ctx, p.ID, role)
}

func (svc *Service) Query(ctx context.Context, ordering []core.DBOrdering, limit int) ([]Profile, error) {
	return svc.repo.QueryProfiles(ctx, ordering, limit)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountProfiles(ctx)
}

// DisplayName picks the profile name, then the identity name, then a generic fallback.
func DisplayName(p Profile, ident identity.Identity) string {
	if name := core.CleanString(p.Name); name != "" {
		return name
	}
	if name := core.CleanString(ident.Name); name != "" {
		return name
	}
	return defaultDisplayName
}
