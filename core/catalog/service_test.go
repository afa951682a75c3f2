package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/storage/database/dummy"
	"github.com/trezcool/academia/tests"
)

func lessonRefs(lessons []catalog.Lesson) []string {
	ids := make([]string, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestSortLessons(t *testing.T) {
	now := time.Now()
	lessons := []catalog.Lesson{
		{ID: "c", OrderIndex: 3, CreatedAt: now},
		{ID: "b2", OrderIndex: 2, CreatedAt: now.Add(time.Second)},
		{ID: "a", OrderIndex: 1, CreatedAt: now},
		{ID: "b1", OrderIndex: 2, CreatedAt: now},
	}
	catalog.SortLessons(lessons)
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, lessonRefs(lessons))
}

func TestNavigate(t *testing.T) {
	lessons := []catalog.Lesson{
		{ID: "l1", Title: "Intro", OrderIndex: 1},
		{ID: "l2", Title: "Types", OrderIndex: 2},
		{ID: "l3", Title: "Generics", OrderIndex: 3},
	}

	tests := []struct {
		name     string
		lessonID string
		wantPos  int
		wantPrev *catalog.LessonRef
		wantNext *catalog.LessonRef
	}{
		{name: "first", lessonID: "l1", wantPos: 0, wantNext: &catalog.LessonRef{ID: "l2", Title: "Types"}},
		{
			name: "middle", lessonID: "l2", wantPos: 1,
			wantPrev: &catalog.LessonRef{ID: "l1", Title: "Intro"},
			wantNext: &catalog.LessonRef{ID: "l3", Title: "Generics"},
		},
		{name: "last", lessonID: "l3", wantPos: 2, wantPrev: &catalog.LessonRef{ID: "l2", Title: "Types"}},
		{name: "absent", lessonID: "lol", wantPos: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := catalog.Navigate(lessons, tt.lessonID)
			assert.Equal(t, tt.wantPos, nav.Position)
			assert.Equal(t, tt.wantPrev, nav.Previous)
			assert.Equal(t, tt.wantNext, nav.Next)
			assert.Len(t, nav.Lessons, 3)
		})
	}

	nav := catalog.Navigate(lessons[:1], "l1")
	assert.Nil(t, nav.Previous)
	assert.Nil(t, nav.Next)
}

func TestService_ListCategories(t *testing.T) {
	repo := dummydb.NewCatalogRepository(dummydb.Open())
	svc := catalog.NewService(repo)

	now := time.Now().UTC()
	sqlCat := testutil.CreateCategory(t, repo, "SQL", now)
	goCat := testutil.CreateCategory(t, repo, "Go", now.Add(-time.Hour))
	testutil.CreateLesson(t, repo, goCat.ID, "Intro", 1)
	testutil.CreateLesson(t, repo, goCat.ID, "Types", 2)

	cats, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, goCat.ID, cats[0].ID)
	assert.Equal(t, 2, cats[0].LessonCount)
	assert.Equal(t, sqlCat.ID, cats[1].ID)
	assert.Equal(t, 0, cats[1].LessonCount)
}

func TestService_LessonNavigation(t *testing.T) {
	repo := dummydb.NewCatalogRepository(dummydb.Open())
	svc := catalog.NewService(repo)
	ctx := context.Background()

	goCat := testutil.CreateCategory(t, repo, "Go")
	other := testutil.CreateCategory(t, repo, "Other")
	third := testutil.CreateLesson(t, repo, goCat.ID, "Generics", 3)
	first := testutil.CreateLesson(t, repo, goCat.ID, "Intro", 1)
	second := testutil.CreateLesson(t, repo, goCat.ID, "Types", 2)
	testutil.CreateLesson(t, repo, other.ID, "Elsewhere", 1)

	nav, err := svc.LessonNavigation(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, lessonRefs(nav.Lessons))
	assert.Equal(t, 1, nav.Position)
	assert.Equal(t, first.ID, nav.Previous.ID)
	assert.Equal(t, third.ID, nav.Next.ID)

	_, err = svc.GetLesson(ctx, "lol")
	assert.Equal(t, catalog.ErrLessonNotFound, err)
	_, err = svc.GetCategory(ctx, "lol")
	assert.Equal(t, catalog.ErrCategoryNotFound, err)
}

func TestService_Import(t *testing.T) {
	repo := dummydb.NewCatalogRepository(dummydb.Open())
	svc := catalog.NewService(repo)
	ctx := context.Background()

	ten := 10
	nCats, nLessons, err := svc.Import(ctx, []catalog.ImportCategory{
		{
			Name: " Go ",
			Lessons: []catalog.ImportLesson{
				{Title: "Intro"},
				{Title: "Appendix", OrderIndex: &ten},
				{Title: " Types ", VideoURL: "https://video.test/types"},
			},
		},
		{Name: "SQL", Description: "Queries"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, nCats)
	assert.Equal(t, 3, nLessons)

	cats, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Go", cats[0].Name) // file order is kept
	assert.Equal(t, 3, cats[0].LessonCount)
	assert.Equal(t, "SQL", cats[1].Name)
	assert.Equal(t, "Queries", cats[1].Description)

	lessons, err := svc.CategoryLessons(ctx, cats[0].ID)
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, "Intro", lessons[0].Title)
	assert.Equal(t, 1, lessons[0].OrderIndex)
	assert.Equal(t, "Types", lessons[1].Title)
	assert.Equal(t, 3, lessons[1].OrderIndex)
	assert.Equal(t, "Appendix", lessons[2].Title)
	assert.Equal(t, 10, lessons[2].OrderIndex)
}
