package catalog

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	// errors
	ErrCategoryNotFound = errors.New("category not found")
	ErrLessonNotFound   = errors.New("lesson not found")
)

type (
	Repository interface {
		// QueryCategories returns all categories in ascending creation order.
		QueryCategories(ctx context.Context) ([]Category, error)
		GetCategory(ctx context.Context, id string) (Category, error)
		// QueryLessons returns all lessons ordered by category then OrderIndex.
		QueryLessons(ctx context.Context) ([]Lesson, error)
		// QueryCategoryLessons returns the lessons of a category in ascending OrderIndex.
		QueryCategoryLessons(ctx context.Context, categoryID string) ([]Lesson, error)
		GetLesson(ctx context.Context, id string) (Lesson, error)
		CountLessons(ctx context.Context) (int, error)
		// CountLessonsByCategory returns {categoryID: lessonCount}.
		CountLessonsByCategory(ctx context.Context) (map[string]int, error)

		CreateCategory(ctx context.Context, c Category) (Category, error)
		CreateLesson(ctx context.Context, l Lesson) (Lesson, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListCategories returns every category in creation order, with its lesson count.
func (svc *Service) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	cats, err := svc.repo.QueryCategories(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := svc.repo.CountLessonsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		summaries = append(summaries, CategorySummary{Category: c, LessonCount: counts[c.ID]})
	}
	return summaries, nil
}

func (svc *Service) GetCategory(ctx context.Context, id string) (Category, error) {
	return svc.repo.GetCategory(ctx, id)
}

func (svc *Service) CategoryLessons(ctx context.Context, categoryID string) ([]Lesson, error) {
	lessons, err := svc.repo.QueryCategoryLessons(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	SortLessons(lessons)
	return lessons, nil
}

func (svc *Service) GetLesson(ctx context.Context, id string) (Lesson, error) {
	return svc.repo.GetLesson(ctx, id)
}

// AllLessons returns every lesson ordered by category then OrderIndex.
func (svc *Service) AllLessons(ctx context.Context) ([]Lesson, error) {
	return svc.repo.QueryLessons(ctx)
}

// LessonNavigation returns the siblings of lesson and its previous/next neighbours.
func (svc *Service) LessonNavigation(ctx context.Context, lesson Lesson) (Navigation, error) {
	lessons, err := svc.CategoryLessons(ctx, lesson.CategoryID)
	if err != nil {
		return Navigation{}, err
	}
	return Navigate(lessons, lesson.ID), nil
}

func (svc *Service) CountLessons(ctx context.Context) (int, error) {
	return svc.repo.CountLessons(ctx)
}

func (svc *Service) CountLessonsByCategory(ctx context.Context) (map[string]int, error) {
	return svc.repo.CountLessonsByCategory(ctx)
}

// Import stores the categories and their lessons, stamping creation times in order.
func (svc *Service) Import(ctx context.Context, entries []ImportCategory) (int, int, error) {
	var nCats, nLessons int
	now := core.NowFunc()
	for i, entry := range entries {
		cat, err := svc.repo.CreateCategory(ctx, Category{
			Name:        core.CleanString(entry.Name),
			Description: core.CleanString(entry.Description),
			CreatedAt:   now.Add(time.Duration(i) * time.Millisecond),
		})
		if err != nil {
			return nCats, nLessons, errors.Wrapf(err, "creating category %q", entry.Name)
		}
		nCats++

		for j, il := range entry.Lessons {
			orderIndex := j + 1
			if il.OrderIndex != nil {
				orderIndex = *il.OrderIndex
			}
			if _, err = svc.repo.CreateLesson(ctx, Lesson{
				CategoryID: cat.ID,
				Title:      core.CleanString(il.Title),
				Content:    il.Content,
				VideoURL:   core.CleanString(il.VideoURL),
				OrderIndex: orderIndex,
				CreatedAt:  now.Add(time.Duration(j) * time.Millisecond),
			}); err != nil {
				return nCats, nLessons, errors.Wrapf(err, "creating lesson %q", il.Title)
			}
			nLessons++
		}
	}
	return nCats, nLessons, nil
}

// SortLessons sorts lessons by ascending OrderIndex. Ties keep creation order.
func SortLessons(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		if lessons[i].OrderIndex == lessons[j].OrderIndex {
			return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
		}
		return lessons[i].OrderIndex < lessons[j].OrderIndex
	})
}

// Navigate locates lessonID in the ordered lessons. Position is -1 when it is absent.
func Navigate(lessons []Lesson, lessonID string) Navigation {
	nav := Navigation{Lessons: lessons, Position: -1}
	for i, l := range lessons {
		if l.ID != lessonID {
			continue
		}
		nav.Position = i
		if i > 0 {
			nav.Previous = lessons[i-1].Ref()
		}
		if i < len(lessons)-1 {
			nav.Next = lessons[i+1].Ref()
		}
		break
	}
	return nav
}
