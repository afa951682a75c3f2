package sqlxrepos

import (
	"context"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/profile"
)

// profileColumns are the sortable columns, keyed by their API name.
var profileColumns = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"email":      "email",
	"role":       "role",
}

const profileSelect = `SELECT id, name, email, role, bio, telegram_username, website, created_at, updated_at FROM profiles`

type profileRow struct {
	ID               string      `db:"id"`
	Name             string      `db:"name"`
	Email            string      `db:"email"`
	Role             string      `db:"role"`
	Bio              null.String `db:"bio"`
	TelegramUsername null.String `db:"telegram_username"`
	Website          null.String `db:"website"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func (r profileRow) toProfile() profile.Profile {
	return profile.Profile{
		ID:               r.ID,
		Name:             r.Name,
		Email:            r.Email,
		Role:             r.Role,
		Bio:              r.Bio.String,
		TelegramUsername: r.TelegramUsername.String,
		Website:          r.Website.String,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

type profileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

func NewProfileRepository(db *sqlx.DB) profile.Repository {
	return &profileRepository{db: db}
}

func (repo profileRepository) get(ctx context.Context, where string, arg interface{}) (profile.Profile, error) {
	var row profileRow
	if err := repo.db.GetContext(ctx, &row, profileSelect+" WHERE "+where, arg); err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound)
	}
	return row.toProfile(), nil
}

func (repo profileRepository) GetProfile(ctx context.Context, id string) (profile.Profile, error) {
	return repo.get(ctx, "id = $1", id)
}

func (repo profileRepository) GetProfileByEmail(ctx context.Context, email string) (profile.Profile, error) {
	return repo.get(ctx, "lower(email) = lower($1)", email)
}

func (repo profileRepository) UpsertProfile(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	role := p.Role
	if role == "" {
		role = profile.RoleStudent
	}
	q := `INSERT INTO profiles (id, name, email, role, bio, telegram_username, website, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			bio = EXCLUDED.bio,
			telegram_username = EXCLUDED.telegram_username,
			website = EXCLUDED.website,
			updated_at = EXCLUDED.updated_at
		RETURNING id, name, email, role, bio, telegram_username, website, created_at, updated_at`

	var row profileRow
	err := repo.db.GetContext(ctx, &row, q,
		p.ID, p.Name, p.Email, role,
		null.NewString(p.Bio, p.Bio != ""),
		null.NewString(p.TelegramUsername, p.TelegramUsername != ""),
		null.NewString(p.Website, p.Website != ""),
		p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	)
	if err != nil {
		return profile.Profile{}, errors.Wrap(err, "upserting profile")
	}
	return row.toProfile(), nil
}

func (repo profileRepository) CreateProfileIfMissing(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	role := p.Role
	if role == "" {
		role = profile.RoleStudent
	}
	q := `INSERT INTO profiles (id, name, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	if _, err := repo.db.ExecContext(ctx, q, p.ID, p.Name, p.Email, role, p.CreatedAt.UTC(), p.UpdatedAt.UTC()); err != nil {
		return profile.Profile{}, errors.Wrap(err, "inserting profile")
	}
	return repo.GetProfile(ctx, p.ID)
}

func (repo profileRepository) SetProfileRole(ctx context.Context, id, role string) (profile.Profile, error) {
	q := `UPDATE profiles SET role = $2, updated_at = $3 WHERE id = $1
		RETURNING id, name, email, role, bio, telegram_username, website, created_at, updated_at`

	var row profileRow
	if err := repo.db.GetContext(ctx, &row, q, id, role, core.NowFunc()); err != nil {
		return profile.Profile{}, trapNoRowsErr(err, profile.ErrNotFound)
	}
	return row.toProfile(), nil
}

func (repo profileRepository) QueryProfiles(ctx context.Context, ordering []core.DBOrdering, limit int) ([]profile.Profile, error) {
	q := profileSelect + orderBy(core.AllowedOrderings(ordering, profileColumns), "created_at DESC")
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}

	var rows []profileRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	profiles := make([]profile.Profile, 0, len(rows))
	for _, r := range rows {
		profiles = append(profiles, r.toProfile())
	}
	return profiles, nil
}

func (repo profileRepository) CountProfiles(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT count(*) FROM profiles`); err != nil {
		return 0, errors.Wrap(err, "counting profiles")
	}
	return n, nil
}
