package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/academia/core/catalog"
)

type catalogRepository struct {
	db     *catalogTable
	faults *faults
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db.catalog, faults: db.faults}
}

func (repo *catalogRepository) QueryCategories(_ context.Context) ([]catalog.Category, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	cats := make([]catalog.Category, 0, len(repo.db.categories))
	for _, c := range repo.db.categories {
		cats = append(cats, *c)
	}
	sort.SliceStable(cats, func(i, j int) bool {
		if cats[i].CreatedAt.Equal(cats[j].CreatedAt) {
			return cats[i].ID < cats[j].ID
		}
		return cats[i].CreatedAt.Before(cats[j].CreatedAt)
	})
	return cats, nil
}

func (repo *catalogRepository) GetCategory(_ context.Context, id string) (catalog.Category, error) {
	if err := repo.faults.readErr(); err != nil {
		return catalog.Category{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.categories[id]; ok {
		return *c, nil
	}
	return catalog.Category{}, catalog.ErrCategoryNotFound
}

func (repo *catalogRepository) lessons(filter func(catalog.Lesson) bool) []catalog.Lesson {
	lessons := make([]catalog.Lesson, 0, len(repo.db.lessons))
	for _, l := range repo.db.lessons {
		if filter == nil || filter(*l) {
			lessons = append(lessons, *l)
		}
	}
	return lessons
}

func (repo *catalogRepository) QueryLessons(_ context.Context) ([]catalog.Lesson, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := repo.lessons(nil)
	catCreated := make(map[string]int64, len(repo.db.categories))
	for id, c := range repo.db.categories {
		catCreated[id] = c.CreatedAt.UnixNano()
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		ci, cj := catCreated[lessons[i].CategoryID], catCreated[lessons[j].CategoryID]
		if ci != cj {
			return ci < cj
		}
		if lessons[i].CategoryID != lessons[j].CategoryID {
			return lessons[i].CategoryID < lessons[j].CategoryID
		}
		if lessons[i].OrderIndex != lessons[j].OrderIndex {
			return lessons[i].OrderIndex < lessons[j].OrderIndex
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})
	return lessons, nil
}

func (repo *catalogRepository) QueryCategoryLessons(_ context.Context, categoryID string) ([]catalog.Lesson, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	lessons := repo.lessons(func(l catalog.Lesson) bool { return l.CategoryID == categoryID })
	catalog.SortLessons(lessons)
	return lessons, nil
}

func (repo *catalogRepository) GetLesson(_ context.Context, id string) (catalog.Lesson, error) {
	if err := repo.faults.readErr(); err != nil {
		return catalog.Lesson{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.lessons[id]; ok {
		return *l, nil
	}
	return catalog.Lesson{}, catalog.ErrLessonNotFound
}

func (repo *catalogRepository) CountLessons(_ context.Context) (int, error) {
	if err := repo.faults.readErr(); err != nil {
		return 0, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.lessons), nil
}

func (repo *catalogRepository) CountLessonsByCategory(_ context.Context) (map[string]int, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int, len(repo.db.categories))
	for _, l := range repo.db.lessons {
		counts[l.CategoryID]++
	}
	return counts, nil
}

func (repo *catalogRepository) CreateCategory(_ context.Context, c catalog.Category) (catalog.Category, error) {
	if err := repo.faults.writeErr(); err != nil {
		return catalog.Category{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	repo.db.categories[c.ID] = &c
	return c, nil
}

func (repo *catalogRepository) CreateLesson(_ context.Context, l catalog.Lesson) (catalog.Lesson, error) {
	if err := repo.faults.writeErr(); err != nil {
		return catalog.Lesson{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	repo.db.lessons[l.ID] = &l
	return l, nil
}
