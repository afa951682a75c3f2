package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/academia/core/comment"
)

type commentRepository struct {
	db       *commentTable
	profiles *profileTable
	faults   *faults
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *DB) comment.Repository {
	return &commentRepository{db: db.comment, profiles: db.profile, faults: db.faults}
}

func (repo *commentRepository) authorName(authorID string) string {
	repo.profiles.RLock()
	defer repo.profiles.RUnlock()
	if p, ok := repo.profiles.table[authorID]; ok {
		return p.Name
	}
	return ""
}

func (repo *commentRepository) CreateComment(_ context.Context, c comment.Comment) (comment.Comment, error) {
	if err := repo.faults.writeErr(); err != nil {
		return comment.Comment{}, err
	}
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.NewString()
	c.CreatedAt = c.CreatedAt.UTC()
	c.AuthorName = ""
	repo.db.table[c.ID] = &c
	repo.db.next++
	repo.db.seq[c.ID] = repo.db.next

	c.AuthorName = repo.authorName(c.AuthorID)
	return c, nil
}

func (repo *commentRepository) QueryLessonComments(_ context.Context, lessonID string) ([]comment.Comment, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	comments := make([]comment.Comment, 0)
	for _, c := range repo.db.table {
		if c.LessonID == lessonID {
			cc := *c
			cc.AuthorName = repo.authorName(c.AuthorID)
			comments = append(comments, cc)
		}
	}
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return repo.db.seq[comments[i].ID] > repo.db.seq[comments[j].ID]
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (repo *commentRepository) CountComments(_ context.Context) (int, error) {
	if err := repo.faults.readErr(); err != nil {
		return 0, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func (repo *commentRepository) CountCommentsByUser(_ context.Context) (map[string]int, error) {
	if err := repo.faults.readErr(); err != nil {
		return nil, err
	}
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, c := range repo.db.table {
		counts[c.AuthorID]++
	}
	return counts, nil
}
