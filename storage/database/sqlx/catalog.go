package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/academia/core/catalog"
)

const (
	categorySelect = `SELECT id, name, description, created_at FROM categories`
	lessonSelect   = `SELECT id, category_id, title, content, video_url, order_index, created_at FROM lessons`
)

type categoryRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (r categoryRow) toCategory() catalog.Category {
	return catalog.Category{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type lessonRow struct {
	ID         string      `db:"id"`
	CategoryID null.String `db:"category_id"`
	Title      string      `db:"title"`
	Content    null.String `db:"content"`
	VideoURL   null.String `db:"video_url"`
	OrderIndex int         `db:"order_index"`
	CreatedAt  time.Time   `db:"created_at"`
}

func (r lessonRow) toLesson() catalog.Lesson {
	return catalog.Lesson{
		ID:         r.ID,
		CategoryID: r.CategoryID.String,
		Title:      r.Title,
		Content:    r.Content.String,
		VideoURL:   r.VideoURL.String,
		OrderIndex: r.OrderIndex,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func toLessons(rows []lessonRow) []catalog.Lesson {
	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.toLesson())
	}
	return lessons
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) QueryCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []categoryRow
	if err := repo.db.SelectContext(ctx, &rows, categorySelect+" ORDER BY created_at ASC, id ASC"); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	cats := make([]catalog.Category, 0, len(rows))
	for _, r := range rows {
		cats = append(cats, r.toCategory())
	}
	return cats, nil
}

func (repo catalogRepository) GetCategory(ctx context.Context, id string) (catalog.Category, error) {
	if !isUUID(id) {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	var row categoryRow
	if err := repo.db.GetContext(ctx, &row, categorySelect+" WHERE id = $1", id); err != nil {
		return catalog.Category{}, trapNoRowsErr(err, catalog.ErrCategoryNotFound)
	}
	return row.toCategory(), nil
}

func (repo catalogRepository) QueryLessons(ctx context.Context) ([]catalog.Lesson, error) {
	q := `SELECT l.id, l.category_id, l.title, l.content, l.video_url, l.order_index, l.created_at
		FROM lessons l LEFT JOIN categories c ON c.id = l.category_id
		ORDER BY c.created_at ASC NULLS LAST, l.category_id, l.order_index ASC, l.created_at ASC`

	var rows []lessonRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	return toLessons(rows), nil
}

func (repo catalogRepository) QueryCategoryLessons(ctx context.Context, categoryID string) ([]catalog.Lesson, error) {
	if !isUUID(categoryID) {
		return []catalog.Lesson{}, nil
	}
	var rows []lessonRow
	q := lessonSelect + " WHERE category_id = $1 ORDER BY order_index ASC, created_at ASC"
	if err := repo.db.SelectContext(ctx, &rows, q, categoryID); err != nil {
		return nil, errors.Wrap(err, "querying category lessons")
	}
	return toLessons(rows), nil
}

func (repo catalogRepository) GetLesson(ctx context.Context, id string) (catalog.Lesson, error) {
	if !isUUID(id) {
		return catalog.Lesson{}, catalog.ErrLessonNotFound
	}
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, lessonSelect+" WHERE id = $1", id); err != nil {
		return catalog.Lesson{}, trapNoRowsErr(err, catalog.ErrLessonNotFound)
	}
	return row.toLesson(), nil
}

func (repo catalogRepository) CountLessons(ctx context.Context) (int, error) {
	var n int
	if err := repo.db.GetContext(ctx, &n, `SELECT count(*) FROM lessons`); err != nil {
		return 0, errors.Wrap(err, "counting lessons")
	}
	return n, nil
}

func (repo catalogRepository) CountLessonsByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := repo.db.QueryContext(ctx,
		`SELECT category_id, count(*) FROM lessons WHERE category_id IS NOT NULL GROUP BY category_id`)
	if err != nil {
		return nil, errors.Wrap(err, "counting lessons by category")
	}
	counts, err := scanCounts(rows)
	return counts, errors.Wrap(err, "scanning lesson counts")
}

func (repo catalogRepository) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	q := `INSERT INTO categories (name, description, created_at) VALUES ($1, $2, $3)
		RETURNING id, name, description, created_at`

	var row categoryRow
	err := repo.db.GetContext(ctx, &row, q, c.Name, null.NewString(c.Description, c.Description != ""), c.CreatedAt.UTC())
	if err != nil {
		return catalog.Category{}, errors.Wrap(err, "inserting category")
	}
	return row.toCategory(), nil
}

func (repo catalogRepository) CreateLesson(ctx context.Context, l catalog.Lesson) (catalog.Lesson, error) {
	q := `INSERT INTO lessons (category_id, title, content, video_url, order_index, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, category_id, title, content, video_url, order_index, created_at`

	var row lessonRow
	err := repo.db.GetContext(ctx, &row, q,
		null.NewString(l.CategoryID, l.CategoryID != ""),
		l.Title,
		null.NewString(l.Content, l.Content != ""),
		null.NewString(l.VideoURL, l.VideoURL != ""),
		l.OrderIndex,
		l.CreatedAt.UTC(),
	)
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "inserting lesson")
	}
	return row.toLesson(), nil
}
