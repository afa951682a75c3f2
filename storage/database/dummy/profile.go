package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/profile"
)

type profileRepository struct {
	db     *profileTable
	faults *faults
}

var _ profile.Repository = (*profileRepository)(nil) // interface compliance check

var profileFields = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"email":      "email",
	"role":       "role",
}

func NewProfileRepository(db *DB) profile.Repository {
	return &profileRepository{db: db.profile, faults: db.faults}
}

func (repo *profileRepository) GetProfile(_ context.Context, id string) (profile.Profile, error) {
	if err := repo.faults.readErr(); err != nil {
		return profile.Profile{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) GetProfileByEmail(_ context.Context, email string) (profile.Profile, error) {
	if err := repo.faults.readErr(); err != nil {
		return profile.Profile{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, p := range repo.db.table {
		if strings.EqualFold(p.Email, email) {
			return *p, nil
		}
	}
	return profile.Profile{}, profile.ErrNotFound
}

func (repo *profileRepository) UpsertProfile(_ context.Context, p profile.Profile) (profile.Profile, error) {
	if err := repo.faults.writeErr(); err != nil {
		return profile.Profile{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[p.ID]; ok {
		orig.Name = p.Name
		orig.Email = p.Email
		orig.Bio = p.Bio
		orig.TelegramUsername = p.TelegramUsername
		orig.Website = p.Website
		orig.UpdatedAt = p.UpdatedAt
		return *orig, nil
	}
	if p.Role == "" {
		p.Role = profile.RoleStudent
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *profileRepository) CreateProfileIfMissing(_ context.Context, p profile.Profile) (profile.Profile, error) {
	if err := repo.faults.writeErr(); err != nil {
		return profile.Profile{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[p.ID]; ok {
		return *orig, nil
	}
	if p.Role == "" {
		p.Role = profile.RoleStudent
	}
	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *profileRepository) SetProfileRole(_ context.Context, id, role string) (profile.Profile, error) {
	if err := repo.faults.writeErr(); err != nil {
		return profile.Profile{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	p, ok := repo.db.table[id]
	if !ok {
		return profile.Profile{}, profile.ErrNotFound
	}
	p.Role = role
	p.UpdatedAt = core.NowFunc()
	return *p, nil
}

func (repo *profileRepository) QueryProfiles(_ context.Context, ordering []core.DBOrdering, limit int) ([]profile.Profile, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	profiles := make([]profile.Profile, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		profiles = append(profiles, *p)
	}
	ordering = core.AllowedOrderings(ordering, profileFields)
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		for _, ord := range ordering {
			c := compareProfiles(profiles[i], profiles[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return profiles[i].ID < profiles[j].ID
	})
	if limit > 0 && len(profiles) > limit {
		profiles = profiles[:limit]
	}
	return profiles, nil
}

func (repo *profileRepository) CountProfiles(_ context.Context) (int, error) {
	if err := repo.faults.readErr(); err != nil {
		return 0, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func compareProfiles(a, b profile.Profile, field string) int {
	switch field {
	case "name":
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "role":
		return strings.Compare(a.Role, b.Role)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return 0
	}
}
