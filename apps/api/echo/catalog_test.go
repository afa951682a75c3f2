package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/progress"
	"github.com/trezcool/academia/tests"
)

type modulesPage struct {
	Authenticated bool                      `json:"authenticated"`
	Categories    []catalog.CategorySummary `json:"categories"`
}

type categoryPage struct {
	Category catalog.Category `json:"category"`
	Lessons  []struct {
		catalog.Lesson
		Status progress.Status `json:"status"`
	} `json:"lessons"`
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func Test_catalogApi_listModules(t *testing.T) {
	env := setup(t)

	now := time.Now().UTC()
	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go", now.Add(-2*time.Hour))
	sqlCat := testutil.CreateCategory(t, env.stores.Catalog, "SQL", now.Add(-time.Hour))
	testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Types", 2)
	usr := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "User", "user@test.cd", "")

	for _, tt := range []httpTest{
		{name: "anonymous", wantCode: http.StatusOK},
		{name: "authenticated", token: getToken(t, env, usr), wantCode: http.StatusOK, extra: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/modules", tt.token)
			env.app.ServeHTTP(rec, req)
			require.Equal(t, tt.wantCode, rec.Code)

			var page modulesPage
			unmarchallObj(t, rec, &page)
			assert.Equal(t, tt.extra == true, page.Authenticated)
			require.Len(t, page.Categories, 2)
			assert.Equal(t, goCat.ID, page.Categories[0].ID)
			assert.Equal(t, 2, page.Categories[0].LessonCount)
			assert.Equal(t, sqlCat.ID, page.Categories[1].ID)
			assert.Equal(t, 0, page.Categories[1].LessonCount)
		})
	}
}

func Test_catalogApi_categoryDetail(t *testing.T) {
	env := setup(t)

	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go")
	empty := testutil.CreateCategory(t, env.stores.Catalog, "Empty")
	third := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Generics", 3)
	first := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	second := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Types", 2)
	usr := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "User", "user@test.cd", "")
	testutil.Complete(t, env.stores.Progress, usr.ID, second.ID)
	testutil.Complete(t, env.stores.Progress, "someone-else", first.ID)
	token := getToken(t, env, usr)

	t.Run("unknown category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/modules/lol", token)
		env.app.ServeHTTP(rec, req)
		checkRedirect(t, rec, http.StatusFound, "/modules")
	})

	t.Run("lessons in order with statuses", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/modules/"+goCat.ID, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page categoryPage
		unmarchallObj(t, rec, &page)
		assert.Equal(t, goCat.Name, page.Category.Name)
		require.Len(t, page.Lessons, 3)
		assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{page.Lessons[0].ID, page.Lessons[1].ID, page.Lessons[2].ID})
		assert.Equal(t, progress.StatusNotStarted, page.Lessons[0].Status)
		assert.Equal(t, progress.StatusCompleted, page.Lessons[1].Status)
		assert.Equal(t, progress.StatusNotStarted, page.Lessons[2].Status)
		assert.Equal(t, 1, page.Completed)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, 33, page.Percentage)
	})

	t.Run("empty category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/modules/"+empty.ID, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page categoryPage
		unmarchallObj(t, rec, &page)
		assert.Empty(t, page.Lessons)
		assert.Equal(t, 0, page.Percentage)
	})
}
