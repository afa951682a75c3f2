package progress

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/identity"
)

const RecentActivityLimit = 5

var (
	// errors
	ErrNotFound = errors.New("progress not found")
)

type (
	Repository interface {
		// UpsertProgress inserts the row or overwrites the existing (UserID, LessonID) row.
		UpsertProgress(ctx context.Context, p Progress) (Progress, error)
		// DeleteProgress removes the (userID, lessonID) row; a missing row is not an error.
		DeleteProgress(ctx context.Context, userID, lessonID string) error
		GetProgress(ctx context.Context, userID, lessonID string) (Progress, error)
		QueryUserProgress(ctx context.Context, userID string) ([]Progress, error)
		// QueryRecentCompletions returns the latest completions of userID, most recent first.
		QueryRecentCompletions(ctx context.Context, userID string, limit int) ([]Completion, error)

		CountCompleted(ctx context.Context) (int, error)
		// CountCompletedByLesson returns {lessonID: completions}.
		CountCompletedByLesson(ctx context.Context) (map[string]int, error)
		// CountCompletedByUser returns {userID: completions}.
		CountCompletedByUser(ctx context.Context) (map[string]int, error)
		// QueryCompletionsSince returns completed rows with CompletedAt >= since.
		QueryCompletionsSince(ctx context.Context, since time.Time) ([]Progress, error)
	}

	// Catalog is the read side of the lesson catalog the tracker aggregates over.
	Catalog interface {
		GetLesson(ctx context.Context, id string) (catalog.Lesson, error)
		ListCategories(ctx context.Context) ([]catalog.CategorySummary, error)
		AllLessons(ctx context.Context) ([]catalog.Lesson, error)
	}

	Service struct {
		repo    Repository
		catalog Catalog
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, cat Catalog, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, catalog: cat, mailSvc: mailSvc, logger: logger}
}

// MarkComplete records lessonID as completed by the user. Repeated calls leave a single row.
// Completing the last lesson of a category sends the certificate e-mail.
func (svc *Service) MarkComplete(ctx context.Context, ident identity.Identity, lessonID string) (Progress, error) {
	lesson, err := svc.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return Progress{}, err
	}
	prev, err := svc.GetStatus(ctx, ident.ID, lessonID)
	if err != nil {
		return Progress{}, errors.Wrap(err, "getting prior status")
	}

	p, err := svc.repo.UpsertProgress(ctx, Progress{
		UserID:      ident.ID,
		LessonID:    lessonID,
		Status:      StatusCompleted,
		CompletedAt: core.NowFunc(),
	})
	if err != nil {
		return Progress{}, errors.Wrap(err, "upserting progress")
	}

	if prev != StatusCompleted && lesson.CategoryID != "" {
		svc.notifyCertificate(ctx, ident, lesson.CategoryID)
	}
	return p, nil
}

// MarkIncomplete removes the progress row, returning the lesson to not started.
func (svc *Service) MarkIncomplete(ctx context.Context, userID, lessonID string) error {
	if err := svc.repo.DeleteProgress(ctx, userID, lessonID); err != nil {
		return errors.Wrap(err, "deleting progress")
	}
	return nil
}

func (svc *Service) GetStatus(ctx context.Context, userID, lessonID string) (Status, error) {
	p, err := svc.repo.GetProgress(ctx, userID, lessonID)
	if err != nil {
		if err == ErrNotFound {
			return StatusNotStarted, nil
		}
		return "", err
	}
	return p.Status, nil
}

// StatusMap returns the status of each of lessonIDs for the user.
func (svc *Service) StatusMap(ctx context.Context, userID string, lessonIDs []string) (map[string]Status, error) {
	rows, err := svc.repo.QueryUserProgress(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user progress")
	}
	stored := make(map[string]Status, len(rows))
	for _, p := range rows {
		stored[p.LessonID] = p.Status
	}

	statuses := make(map[string]Status, len(lessonIDs))
	for _, id := range lessonIDs {
		if st, ok := stored[id]; ok {
			statuses[id] = st
		} else {
			statuses[id] = StatusNotStarted
		}
	}
	return statuses, nil
}

func (svc *Service) AggregateByCategory(ctx context.Context, userID string) ([]CategoryProgress, error) {
	snap, err := svc.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.categoryProgress(), nil
}

// OverallCompletionRate is round(completed/total*100) over the whole catalog, 0 without lessons.
func (svc *Service) OverallCompletionRate(ctx context.Context, userID string) (int, error) {
	snap, err := svc.snapshot(ctx, userID)
	if err != nil {
		return 0, err
	}
	return core.Percentage(snap.completedCount(), len(snap.lessons)), nil
}

func (svc *Service) RecentActivity(ctx context.Context, userID string, limit int) ([]Completion, error) {
	recent, err := svc.repo.QueryRecentCompletions(ctx, userID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying recent completions")
	}
	return recent, nil
}

func (svc *Service) Certificates(ctx context.Context, userID string) ([]Certificate, error) {
	snap, err := svc.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.certificates(), nil
}

// Summary gathers the dashboard figures of a user.
func (svc *Service) Summary(ctx context.Context, userID string) (Summary, error) {
	snap, err := svc.snapshot(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	recent, err := svc.RecentActivity(ctx, userID, RecentActivityLimit)
	if err != nil {
		return Summary{}, err
	}

	completed, total := snap.completedCount(), len(snap.lessons)
	pct := core.Percentage(completed, total)
	return Summary{
		Completed:    completed,
		Total:        total,
		Percentage:   pct,
		StudyHours:   StudyHours(completed),
		Motivation:   Motivation(pct),
		Categories:   snap.categoryProgress(),
		Recent:       recent,
		Achievements: Achievements(completed, total),
	}, nil
}

func (svc *Service) notifyCertificate(ctx context.Context, ident identity.Identity, categoryID string) {
	if svc.mailSvc == nil || ident.Email == "" {
		return
	}
	certs, err := svc.Certificates(ctx, ident.ID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("computing certificates: %v", err), err, ident)
		return
	}
	for _, cert := range certs {
		if cert.CategoryID != categoryID || !cert.Available {
			continue
		}
		to := mail.Address{Name: ident.Name, Address: ident.Email}
		msg, err := NewCertificateMessage(to, cert)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("preparing certificate email: %v", err), err, ident)
			return
		}
		svc.mailSvc.SendMessages(msg)
		return
	}
}

// snapshot is the catalog and a user's progress, read once per request.
type snapshot struct {
	categories []catalog.CategorySummary
	lessons    []catalog.Lesson
	progress   map[string]Progress // {lessonID: Progress}
}

func (svc *Service) snapshot(ctx context.Context, userID string) (snapshot, error) {
	cats, err := svc.catalog.ListCategories(ctx)
	if err != nil {
		return snapshot{}, errors.Wrap(err, "listing categories")
	}
	lessons, err := svc.catalog.AllLessons(ctx)
	if err != nil {
		return snapshot{}, errors.Wrap(err, "listing lessons")
	}
	rows, err := svc.repo.QueryUserProgress(ctx, userID)
	if err != nil {
		return snapshot{}, errors.Wrap(err, "querying user progress")
	}

	snap := snapshot{categories: cats, lessons: lessons, progress: make(map[string]Progress, len(rows))}
	for _, p := range rows {
		snap.progress[p.LessonID] = p
	}
	return snap, nil
}

func (s snapshot) isCompleted(lessonID string) bool {
	p, ok := s.progress[lessonID]
	return ok && p.Status == StatusCompleted
}

func (s snapshot) completedCount() int {
	var n int
	for _, l := range s.lessons {
		if s.isCompleted(l.ID) {
			n++
		}
	}
	return n
}

func (s snapshot) categoryProgress() []CategoryProgress {
	completed := make(map[string]int, len(s.categories))
	totals := make(map[string]int, len(s.categories))
	for _, l := range s.lessons {
		totals[l.CategoryID]++
		if s.isCompleted(l.ID) {
			completed[l.CategoryID]++
		}
	}

	cps := make([]CategoryProgress, 0, len(s.categories))
	for _, c := range s.categories {
		cps = append(cps, CategoryProgress{
			CategoryID:   c.ID,
			CategoryName: c.Name,
			Completed:    completed[c.ID],
			Total:        totals[c.ID],
			Percentage:   core.Percentage(completed[c.ID], totals[c.ID]),
		})
	}
	return cps
}

func (s snapshot) certificates() []Certificate {
	latest := make(map[string]time.Time, len(s.categories))
	for _, l := range s.lessons {
		if p, ok := s.progress[l.ID]; ok && p.Status == StatusCompleted && p.CompletedAt.After(latest[l.CategoryID]) {
			latest[l.CategoryID] = p.CompletedAt
		}
	}

	cps := s.categoryProgress()
	certs := make([]Certificate, 0, len(cps))
	for _, cp := range cps {
		cert := Certificate{CategoryProgress: cp}
		if cp.Total > 0 && cp.Completed == cp.Total {
			cert.Available = true
			cert.EarnedAt = latest[cp.CategoryID]
		}
		certs = append(certs, cert)
	}
	return certs
}
