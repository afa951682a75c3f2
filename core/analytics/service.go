// Package analytics derives the admin panel figures. Every figure is recomputed from the
// store on each call.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/core/progress"
)

type (
	ProfileStore interface {
		QueryProfiles(ctx context.Context, ordering []core.DBOrdering, limit int) ([]profile.Profile, error)
		CountProfiles(ctx context.Context) (int, error)
	}

	CatalogStore interface {
		ListCategories(ctx context.Context) ([]catalog.CategorySummary, error)
		AllLessons(ctx context.Context) ([]catalog.Lesson, error)
	}

	ProgressStore interface {
		CountCompleted(ctx context.Context) (int, error)
		CountCompletedByLesson(ctx context.Context) (map[string]int, error)
		CountCompletedByUser(ctx context.Context) (map[string]int, error)
		QueryCompletionsSince(ctx context.Context, since time.Time) ([]progress.Progress, error)
	}

	CommentStore interface {
		CountComments(ctx context.Context) (int, error)
		CountCommentsByUser(ctx context.Context) (map[string]int, error)
	}

	Service struct {
		profiles ProfileStore
		catalog  CatalogStore
		progress ProgressStore
		comments CommentStore
	}
)

func NewService(profiles ProfileStore, cat CatalogStore, prog ProgressStore, comments CommentStore) *Service {
	return &Service{profiles: profiles, catalog: cat, progress: prog, comments: comments}
}

func (svc *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		ov  Overview
		err error
	)
	if ov.Users, err = svc.profiles.CountProfiles(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "counting profiles")
	}
	lessons, err := svc.catalog.AllLessons(ctx)
	if err != nil {
		return Overview{}, errors.Wrap(err, "listing lessons")
	}
	ov.Lessons = len(lessons)
	if ov.Comments, err = svc.comments.CountComments(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "counting comments")
	}
	if ov.Completed, err = svc.progress.CountCompleted(ctx); err != nil {
		return Overview{}, errors.Wrap(err, "counting completions")
	}
	return ov, nil
}

// CategoryCompletions sums the completions of each category's lessons.
func (svc *Service) CategoryCompletions(ctx context.Context) ([]CategoryCompletion, error) {
	cats, err := svc.catalog.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	lessons, err := svc.catalog.AllLessons(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing lessons")
	}
	byLesson, err := svc.progress.CountCompletedByLesson(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting completions by lesson")
	}
	users, err := svc.profiles.CountProfiles(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting profiles")
	}

	totals := make(map[string]int, len(cats))
	for _, l := range lessons {
		totals[l.CategoryID] += byLesson[l.ID]
	}
	if users < 1 {
		users = 1
	}

	ccs := make([]CategoryCompletion, 0, len(cats))
	for _, c := range cats {
		share := core.Percentage(totals[c.ID], users)
		if share > 100 {
			share = 100
		}
		ccs = append(ccs, CategoryCompletion{
			CategoryID:  c.ID,
			Name:        c.Name,
			Lessons:     c.LessonCount,
			Completions: totals[c.ID],
			UserShare:   share,
		})
	}
	return ccs, nil
}

// ActivityHistogram counts completions per calendar day in loc over the HistogramDays days ending
// on now's day. Days without completions are present with a zero count, oldest first.
func (svc *Service) ActivityHistogram(ctx context.Context, now time.Time, loc *time.Location) ([]DayActivity, error) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	y, m, d := now.Date()
	first := time.Date(y, m, d-(HistogramDays-1), 0, 0, 0, 0, loc)

	rows, err := svc.progress.QueryCompletionsSince(ctx, first)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}

	days := make([]DayActivity, 0, HistogramDays)
	index := make(map[string]int, HistogramDays)
	for i := 0; i < HistogramDays; i++ {
		day := time.Date(y, m, d-(HistogramDays-1)+i, 0, 0, 0, 0, loc)
		key := day.Format("2006-01-02")
		index[key] = i
		days = append(days, DayActivity{Date: key, Weekday: day.Weekday().String()[:3]})
	}
	for _, p := range rows {
		key := p.CompletedAt.In(loc).Format("2006-01-02")
		if i, ok := index[key]; ok {
			days[i].Completions++
		}
	}
	return days, nil
}

// Metrics averages over registered users only; activity of unknown user IDs is left out.
func (svc *Service) Metrics(ctx context.Context) (Metrics, error) {
	profiles, err := svc.profiles.QueryProfiles(ctx, nil, 0)
	if err != nil {
		return Metrics{}, errors.Wrap(err, "querying profiles")
	}
	if len(profiles) == 0 {
		return Metrics{}, nil
	}
	lessons, err := svc.catalog.AllLessons(ctx)
	if err != nil {
		return Metrics{}, errors.Wrap(err, "listing lessons")
	}
	completed, err := svc.progress.CountCompletedByUser(ctx)
	if err != nil {
		return Metrics{}, errors.Wrap(err, "counting completions by user")
	}
	comments, err := svc.comments.CountCommentsByUser(ctx)
	if err != nil {
		return Metrics{}, errors.Wrap(err, "counting comments by user")
	}

	var (
		rates                   float64
		totalDone, totalComment int
	)
	for _, p := range profiles {
		done := completed[p.ID]
		totalDone += done
		totalComment += comments[p.ID]
		if len(lessons) > 0 {
			rate := float64(done) / float64(len(lessons)) * 100
			if rate > 100 {
				rate = 100
			}
			rates += rate
		}
	}

	users := float64(len(profiles))
	var met Metrics
	if len(lessons) > 0 {
		met.AverageCompletionRate = core.Round1(rates / users)
	}
	met.CompletionsPerUser = core.Round1(float64(totalDone) / users)
	met.CommentsPerUser = core.Round1(float64(totalComment) / users)
	return met, nil
}

func (svc *Service) RecentUsers(ctx context.Context, limit int) ([]profile.Profile, error) {
	return svc.profiles.QueryProfiles(ctx, nil, limit)
}

// PopularLessons returns the lessons with the most completions. Lessons never completed are left out.
func (svc *Service) PopularLessons(ctx context.Context, limit int) ([]LessonStat, error) {
	stats, err := svc.lessonStats(ctx)
	if err != nil {
		return nil, err
	}

	popular := make([]LessonStat, 0, len(stats))
	for _, ls := range stats {
		if ls.Completions > 0 {
			popular = append(popular, ls)
		}
	}
	sort.SliceStable(popular, func(i, j int) bool { return popular[i].Completions > popular[j].Completions })
	if limit > 0 && len(popular) > limit {
		popular = popular[:limit]
	}
	return popular, nil
}

// Users lists profiles with their completion and comment counts.
func (svc *Service) Users(ctx context.Context, ordering []core.DBOrdering) ([]UserActivity, error) {
	profiles, err := svc.profiles.QueryProfiles(ctx, ordering, 0)
	if err != nil {
		return nil, errors.Wrap(err, "querying profiles")
	}
	completed, err := svc.progress.CountCompletedByUser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting completions by user")
	}
	comments, err := svc.comments.CountCommentsByUser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting comments by user")
	}

	users := make([]UserActivity, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, UserActivity{Profile: p, CompletedLessons: completed[p.ID], Comments: comments[p.ID]})
	}
	return users, nil
}

// LessonsByCategory groups lessons under their category, in category order then OrderIndex.
// Lessons without a known category are gathered last under "No category".
func (svc *Service) LessonsByCategory(ctx context.Context) ([]LessonGroup, error) {
	cats, err := svc.catalog.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	stats, err := svc.lessonStats(ctx)
	if err != nil {
		return nil, err
	}

	groups := make([]LessonGroup, 0, len(cats)+1)
	index := make(map[string]int, len(cats))
	for i, c := range cats {
		index[c.ID] = i
		groups = append(groups, LessonGroup{CategoryID: c.ID, CategoryName: c.Name, Lessons: []LessonStat{}})
	}
	var orphans []LessonStat
	for _, ls := range stats {
		if i, ok := index[ls.CategoryID]; ok {
			groups[i].Lessons = append(groups[i].Lessons, ls)
		} else {
			orphans = append(orphans, ls)
		}
	}
	if len(orphans) > 0 {
		groups = append(groups, LessonGroup{CategoryName: uncategorizedName, Lessons: orphans})
	}

	for _, g := range groups {
		sort.SliceStable(g.Lessons, func(i, j int) bool { return g.Lessons[i].OrderIndex < g.Lessons[j].OrderIndex })
	}
	return groups, nil
}

func (svc *Service) lessonStats(ctx context.Context) ([]LessonStat, error) {
	cats, err := svc.catalog.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	lessons, err := svc.catalog.AllLessons(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing lessons")
	}
	byLesson, err := svc.progress.CountCompletedByLesson(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "counting completions by lesson")
	}

	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	stats := make([]LessonStat, 0, len(lessons))
	for _, l := range lessons {
		name, ok := names[l.CategoryID]
		if !ok {
			name = uncategorizedName
		}
		stats = append(stats, LessonStat{
			ID:           l.ID,
			Title:        l.Title,
			CategoryID:   l.CategoryID,
			CategoryName: name,
			OrderIndex:   l.OrderIndex,
			Completions:  byLesson[l.ID],
		})
	}
	return stats, nil
}
