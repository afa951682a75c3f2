package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/comment"
)

type commentRow struct {
	ID         string      `db:"id"`
	LessonID   string      `db:"lesson_id"`
	AuthorID   string      `db:"user_id"`
	AuthorName null.String `db:"author_name"`
	Text       string      `db:"content"`
	CreatedAt  time.Time   `db:"created_at"`
}

func (r commentRow) toComment() comment.Comment {
	return comment.Comment{
		ID:         r.ID,
		LessonID:   r.LessonID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName.String,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type commentRepository struct {
	db *sqlx.DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *sqlx.DB) comment.Repository {
	return &commentRepository{db: db}
}

func (repo commentRepository) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	q := `WITH inserted AS (
			INSERT INTO comments (lesson_id, user_id, content, created_at) VALUES ($1, $2, $3, $4)
			RETURNING id, lesson_id, user_id, content, created_at
		)
		SELECT i.id, i.lesson_id, i.user_id, p.name AS author_name, i.content, i.created_at
		FROM inserted i LEFT JOIN profiles p ON p.id = i.user_id`

	var row commentRow
	if err := repo.db.GetContext(ctx, &row, q, c.LessonID, c.AuthorID, c.Text, c.CreatedAt.UTC()); err != nil {
		return comment.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return row.toComment(), nil
}

func (repo commentRepository) QueryLessonComments(ctx context.Context, lessonID string) ([]comment.Comment, error) {
	q := `SELECT c.id, c.lesson_id, c.user_id, p.name AS author_name, c.content, c.created_at
		FROM comments c LEFT JOIN profiles p ON p.id = c.user_id
		WHERE c.lesson_id = $1
		ORDER BY c.created_at DESC, c.seq DESC`

	var rows []commentRow
	if err := repo.db.SelectContext(ctx, &rows, q, lessonID); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]comment.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.toComment())
	}
	return comments, nil
}

func (repo commentRepository) CountComments(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT count(*) FROM comments`); err != nil {
		return 0, errors.Wrap(err, "counting comments")
	}
	return n, nil
}

func (repo commentRepository) CountCommentsByUser(ctx context.Context) (map[string]int, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT user_id, count(*) FROM comments GROUP BY user_id`)
	if err != nil {
		return nil, errors.Wrap(err, "counting comments by user")
	}
	counts, err := scanCounts(rows)
	return counts, errors.Wrap(err, "scanning comment counts")
}
