// Package testutil builds fixtures on top of the in-memory repositories.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/comment"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/core/progress"
	logsvc "github.com/trezcool/academia/services/logger"
)

// NewLogger returns a disabled Rollbar logger printing nowhere.
func NewLogger(conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// FreezeTime makes core.NowFunc return now until the test ends.
func FreezeTime(t *testing.T, now time.Time) {
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { core.NowFunc = orig })
}

func CreateProfile(t *testing.T, repo profile.Repository, id, name, email, role string, createdAt ...time.Time) profile.Profile {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	ctx := context.Background()
	p, err := repo.UpsertProfile(ctx, profile.Profile{
		ID:        id,
		Name:      name,
		Email:     email,
		Role:      profile.RoleStudent,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	if role != "" && role != p.Role {
		if p, err = repo.SetProfileRole(ctx, id, role); err != nil {
			t.Fatalf("CreateProfile() failed: %v", err)
		}
	}
	return p
}

func CreateCategory(t *testing.T, repo catalog.Repository, name string, createdAt ...time.Time) catalog.Category {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	c, err := repo.CreateCategory(context.Background(), catalog.Category{Name: name, CreatedAt: tstamp})
	if err != nil {
		t.Fatalf("CreateCategory() failed: %v", err)
	}
	return c
}

func CreateLesson(t *testing.T, repo catalog.Repository, categoryID, title string, orderIndex int) catalog.Lesson {
	l, err := repo.CreateLesson(context.Background(), catalog.Lesson{
		CategoryID: categoryID,
		Title:      title,
		Content:    "Content of " + title,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return l
}

// Complete stores a completed progress row for the lesson.
func Complete(t *testing.T, repo progress.Repository, userID, lessonID string, completedAt ...time.Time) progress.Progress {
	tstamp := time.Now().UTC()
	if len(completedAt) > 0 {
		tstamp = completedAt[0]
	}
	p, err := repo.UpsertProgress(context.Background(), progress.Progress{
		UserID:      userID,
		LessonID:    lessonID,
		Status:      progress.StatusCompleted,
		CompletedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}
	return p
}

func CreateComment(t *testing.T, repo comment.Repository, lessonID, authorID, text string, createdAt ...time.Time) comment.Comment {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	c, err := repo.CreateComment(context.Background(), comment.Comment{
		LessonID:  lessonID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateComment() failed: %v", err)
	}
	return c
}
