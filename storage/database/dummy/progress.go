package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/academia/core/progress"
)

type progressRepository struct {
	db      *progressTable
	catalog *catalogTable
	faults  *faults
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress, catalog: db.catalog, faults: db.faults}
}

func (repo *progressRepository) UpsertProgress(_ context.Context, p progress.Progress) (progress.Progress, error) {
	if err := repo.faults.writeErr(); err != nil {
		return progress.Progress{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	p.CompletedAt = p.CompletedAt.UTC()
	repo.db.table[progressKey{userID: p.UserID, lessonID: p.LessonID}] = &p
	return p, nil
}

func (repo *progressRepository) DeleteProgress(_ context.Context, userID, lessonID string) error {
	if err := repo.faults.writeErr(); err != nil {
		return err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.table, progressKey{userID: userID, lessonID: lessonID})
	return nil
}

func (repo *progressRepository) GetProgress(_ context.Context, userID, lessonID string) (progress.Progress, error) {
	if err := repo.faults.readErr(); err != nil {
		return progress.Progress{}, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[progressKey{userID: userID, lessonID: lessonID}]; ok {
		return *p, nil
	}
	return progress.Progress{}, progress.ErrNotFound
}

func (repo *progressRepository) query(filter func(progress.Progress) bool) []progress.Progress {
	rows := make([]progress.Progress, 0)
	for _, p := range repo.db.table {
		if filter(*p) {
			rows = append(rows, *p)
		}
	}
	return rows
}

func (repo *progressRepository) QueryUserProgress(_ context.Context, userID string) ([]progress.Progress, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(p progress.Progress) bool { return p.UserID == userID }), nil
}

func (repo *progressRepository) QueryRecentCompletions(_ context.Context, userID string, limit int) ([]progress.Completion, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.catalog.RLock()
	defer repo.catalog.RUnlock()

	rows := repo.query(func(p progress.Progress) bool {
		return p.UserID == userID && p.Status == progress.StatusCompleted
	})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CompletedAt.After(rows[j].CompletedAt) })

	completions := make([]progress.Completion, 0, len(rows))
	for _, p := range rows {
		if limit > 0 && len(completions) == limit {
			break
		}
		lesson, ok := repo.catalog.lessons[p.LessonID]
		if !ok {
			continue
		}
		c := progress.Completion{
			UserID:      p.UserID,
			LessonID:    p.LessonID,
			LessonTitle: lesson.Title,
			CategoryID:  lesson.CategoryID,
			CompletedAt: p.CompletedAt,
		}
		if cat, ok := repo.catalog.categories[lesson.CategoryID]; ok {
			c.CategoryName = cat.Name
		}
		completions = append(completions, c)
	}
	return completions, nil
}

func (repo *progressRepository) CountCompleted(_ context.Context) (int, error) {
	if err := repo.faults.readErr(); err != nil {
		return 0, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	return len(repo.query(func(p progress.Progress) bool { return p.Status == progress.StatusCompleted })), nil
}

func (repo *progressRepository) CountCompletedByLesson(_ context.Context) (map[string]int, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, p := range repo.db.table {
		if p.Status == progress.StatusCompleted {
			counts[p.LessonID]++
		}
	}
	return counts, nil
}

func (repo *progressRepository) CountCompletedByUser(_ context.Context) (map[string]int, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, p := range repo.db.table {
		if p.Status == progress.StatusCompleted {
			counts[p.UserID]++
		}
	}
	return counts, nil
}

func (repo *progressRepository) QueryCompletionsSince(_ context.Context, since time.Time) ([]progress.Progress, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	return repo.query(func(p progress.Progress) bool {
		return p.Status == progress.StatusCompleted && !p.CompletedAt.Before(since)
	}), nil
}
