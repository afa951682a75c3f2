package comment

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

type (
	Repository interface {
		// CreateComment stores c and returns it with ID and AuthorName filled in.
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		// QueryLessonComments returns the lesson's comments newest first, the latest insert first on
		// equal timestamps. AuthorName is empty when the author has no profile name.
		QueryLessonComments(ctx context.Context, lessonID string) ([]Comment, error)
		CountComments(ctx context.Context) (int, error)
		// CountCommentsByUser returns {authorID: comments}.
		CountCommentsByUser(ctx context.Context) (map[string]int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Add stores a trimmed comment. Invalid text returns validator.ValidationErrors and nothing is written.
func (svc *Service) Add(ctx context.Context, nc NewComment) (Comment, error) {
	nc.Text = core.CleanString(nc.Text)
	if err := nc.Validate(svc.validate); err != nil {
		return Comment{}, err
	}

	c, err := svc.repo.CreateComment(ctx, Comment{
		LessonID:  nc.LessonID,
		AuthorID:  nc.AuthorID,
		Text:      nc.Text,
		CreatedAt: core.NowFunc(),
	})
	if err != nil {
		return Comment{}, err
	}
	return withAuthorName(c), nil
}

// List returns the lesson's comments, most recent first.
func (svc *Service) List(ctx context.Context, lessonID string) ([]Comment, error) {
	comments, err := svc.repo.QueryLessonComments(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		comments[i] = withAuthorName(comments[i])
	}
	sort.SliceStable(comments, func(i, j int) bool { return comments[i].CreatedAt.After(comments[j].CreatedAt) })
	return comments, nil
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountComments(ctx)
}

func (svc *Service) CountByUser(ctx context.Context) (map[string]int, error) {
	return svc.repo.CountCommentsByUser(ctx)
}

func withAuthorName(c Comment) Comment {
	if core.CleanString(c.AuthorName) == "" {
		c.AuthorName = AnonymousName
	}
	return c
}
