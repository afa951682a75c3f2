package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/progress"
)

const progressSelect = `SELECT user_id, lesson_id, status, completed_at FROM user_progress`

type progressRow struct {
	UserID      string    `db:"user_id"`
	LessonID    string    `db:"lesson_id"`
	Status      string    `db:"status"`
	CompletedAt null.Time `db:"completed_at"`
}

func (r progressRow) toProgress() progress.Progress {
	return progress.Progress{
		UserID:      r.UserID,
		LessonID:    r.LessonID,
		Status:      progress.Status(r.Status),
		CompletedAt: r.CompletedAt.Time.UTC(),
	}
}

func toProgresses(rows []progressRow) []progress.Progress {
	ps := make([]progress.Progress, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.toProgress())
	}
	return ps
}

type completionRow struct {
	UserID       string      `db:"user_id"`
	LessonID     string      `db:"lesson_id"`
	LessonTitle  string      `db:"lesson_title"`
	CategoryID   null.String `db:"category_id"`
	CategoryName null.String `db:"category_name"`
	CompletedAt  time.Time   `db:"completed_at"`
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

func (repo progressRepository) UpsertProgress(ctx context.Context, p progress.Progress) (progress.Progress, error) {
	q := `INSERT INTO user_progress (user_id, lesson_id, status, completed_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET status = EXCLUDED.status, completed_at = EXCLUDED.completed_at
		RETURNING user_id, lesson_id, status, completed_at`

	var row progressRow
	completedAt := null.NewTime(p.CompletedAt.UTC(), !p.CompletedAt.IsZero())
	if err := repo.db.GetContext(ctx, &row, q, p.UserID, p.LessonID, string(p.Status), completedAt); err != nil {
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return row.toProgress(), nil
}

func (repo progressRepository) DeleteProgress(ctx context.Context, userID, lessonID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM user_progress WHERE user_id = $1 AND lesson_id = $2`, userID, lessonID)
	return errors.Wrap(err, "deleting progress")
}

func (repo progressRepository) GetProgress(ctx context.Context, userID, lessonID string) (progress.Progress, error) {
	if !isUUID(lessonID) {
		return progress.Progress{}, progress.ErrNotFound
	}
	var row progressRow
	if err := repo.db.GetContext(ctx, &row, progressSelect+" WHERE user_id = $1 AND lesson_id = $2", userID, lessonID); err != nil {
		return progress.Progress{}, trapNoRowsErr(err, progress.ErrNotFound)
	}
	return row.toProgress(), nil
}

func (repo progressRepository) QueryUserProgress(ctx context.Context, userID string) ([]progress.Progress, error) {
	var rows []progressRow
	if err := repo.db.SelectContext(ctx, &rows, progressSelect+" WHERE user_id = $1", userID); err != nil {
		return nil, errors.Wrap(err, "querying user progress")
	}
	return toProgresses(rows), nil
}

func (repo progressRepository) QueryRecentCompletions(ctx context.Context, userID string, limit int) ([]progress.Completion, error) {
	q := `SELECT p.user_id, p.lesson_id, l.title AS lesson_title, l.category_id, c.name AS category_name, p.completed_at
		FROM user_progress p
		JOIN lessons l ON l.id = p.lesson_id
		LEFT JOIN categories c ON c.id = l.category_id
		WHERE p.user_id = $1 AND p.status = $2 AND p.completed_at IS NOT NULL
		ORDER BY p.completed_at DESC
		LIMIT $3`

	var rows []completionRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, string(progress.StatusCompleted), limit); err != nil {
		return nil, errors.Wrap(err, "querying recent completions")
	}
	completions := make([]progress.Completion, 0, len(rows))
	for _, r := range rows {
		completions = append(completions, progress.Completion{
			UserID:       r.UserID,
			LessonID:     r.LessonID,
			LessonTitle:  r.LessonTitle,
			CategoryID:   r.CategoryID.String,
			CategoryName: r.CategoryName.String,
			CompletedAt:  r.CompletedAt.UTC(),
		})
	}
	return completions, nil
}

func (repo progressRepository) CountCompleted(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT count(*) FROM user_progress WHERE status = $1`, string(progress.StatusCompleted)); err != nil {
		return 0, errors.Wrap(err, "counting completions")
	}
	return n, nil
}

func (repo progressRepository) countCompletedBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT `+column+`, count(*) FROM user_progress WHERE status = $1 GROUP BY `+column,
		string(progress.StatusCompleted),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "counting completions by %s", column)
	}
	counts, err := scanCounts(rows)
	return counts, errors.Wrap(err, "scanning completion counts")
}

func (repo progressRepository) CountCompletedByLesson(ctx context.Context) (map[string]int, error) {
	return repo.countCompletedBy(ctx, "lesson_id")
}

func (repo progressRepository) CountCompletedByUser(ctx context.Context) (map[string]int, error) {
	return repo.countCompletedBy(ctx, "user_id")
}

func (repo progressRepository) QueryCompletionsSince(ctx context.Context, since time.Time) ([]progress.Progress, error) {
	var rows []progressRow
	q := progressSelect + " WHERE status = $1 AND completed_at >= $2"
	if err := repo.db.SelectContext(ctx, &rows, q, string(progress.StatusCompleted), since.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	return toProgresses(rows), nil
}
