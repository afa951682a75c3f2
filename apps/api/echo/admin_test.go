package echoapi_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/tests"
)

type adminPage struct {
	Overview       analytics.Overview     `json:"overview"`
	RecentUsers    []profile.Profile      `json:"recent_users"`
	PopularLessons []analytics.LessonStat `json:"popular_lessons"`
}

type analyticsPage struct {
	Overview   analytics.Overview             `json:"overview"`
	Categories []analytics.CategoryCompletion `json:"categories"`
	Activity   []analytics.DayActivity        `json:"activity"`
	Metrics    analytics.Metrics              `json:"metrics"`
	TimeZone   string                         `json:"time_zone"`
}

type adminFixtures struct {
	env   testEnv
	token string
}

func adminSetup(t *testing.T, now time.Time) adminFixtures {
	env := setup(t)
	testutil.FreezeTime(t, now)

	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go", now.Add(-time.Hour))
	sqlCat := testutil.CreateCategory(t, env.stores.Catalog, "SQL", now)
	g1 := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	g2 := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Types", 2)
	s1 := testutil.CreateLesson(t, env.stores.Catalog, sqlCat.ID, "Select", 1)
	testutil.CreateLesson(t, env.stores.Catalog, sqlCat.ID, "Join", 2)

	admin := testutil.CreateProfile(t, env.stores.Profiles, "admin-1", "Admin", "admin@test.cd", profile.RoleAdmin, now.Add(-2*time.Hour))
	awe := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "Awe", "awe@test.cd", "", now.Add(-time.Hour))

	testutil.Complete(t, env.stores.Progress, awe.ID, g1.ID, now.Add(-1*time.Minute))
	testutil.Complete(t, env.stores.Progress, awe.ID, g2.ID, now.Add(-25*time.Hour))
	testutil.Complete(t, env.stores.Progress, admin.ID, g1.ID, now.Add(-2*time.Minute))
	testutil.Complete(t, env.stores.Progress, admin.ID, s1.ID, now.Add(-10*24*time.Hour)) // outside the histogram
	testutil.CreateComment(t, env.stores.Comments, g1.ID, awe.ID, "first!")
	testutil.CreateLesson(t, env.stores.Catalog, "deleted-category", "Orphan", 1)

	return adminFixtures{env: env, token: getToken(t, env, admin)}
}

func Test_adminApi_overview(t *testing.T) {
	fx := adminSetup(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	req, rec := newAuthRequest(http.MethodGet, "/admin", fx.token)
	fx.env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page adminPage
	unmarchallObj(t, rec, &page)
	assert.Equal(t, analytics.Overview{Users: 2, Lessons: 5, Comments: 1, Completed: 4}, page.Overview)
	require.Len(t, page.RecentUsers, 2)
	assert.Equal(t, "user-1", page.RecentUsers[0].ID) // newest first
	require.Len(t, page.PopularLessons, 3)
	assert.Equal(t, "Intro", page.PopularLessons[0].Title)
	assert.Equal(t, 2, page.PopularLessons[0].Completions)
}

func Test_adminApi_users(t *testing.T) {
	fx := adminSetup(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		name    string
		path    string
		wantIDs []string
	}{
		{name: "default ordering", path: "/admin/users", wantIDs: []string{"user-1", "admin-1"}},
		{name: "by name", path: "/admin/users?ordering=name", wantIDs: []string{"admin-1", "user-1"}},
		{name: "by name desc", path: "/admin/users?ordering=-name", wantIDs: []string{"user-1", "admin-1"}},
		{name: "unknown field", path: "/admin/users?ordering=lol", wantIDs: []string{"user-1", "admin-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, fx.token)
			fx.env.app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var page struct {
				Users []analytics.UserActivity `json:"users"`
			}
			unmarchallObj(t, rec, &page)
			ids := make([]string, 0, len(page.Users))
			for _, u := range page.Users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)

			for _, u := range page.Users {
				if u.ID == "user-1" {
					assert.Equal(t, 2, u.CompletedLessons)
					assert.Equal(t, 1, u.Comments)
				}
			}
		})
	}
}

func Test_adminApi_lessons(t *testing.T) {
	fx := adminSetup(t, time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))

	req, rec := newAuthRequest(http.MethodGet, "/admin/lessons", fx.token)
	fx.env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Groups []analytics.LessonGroup `json:"groups"`
	}
	unmarchallObj(t, rec, &page)
	require.Len(t, page.Groups, 3)
	assert.Equal(t, "Go", page.Groups[0].CategoryName)
	require.Len(t, page.Groups[0].Lessons, 2)
	assert.Equal(t, "Intro", page.Groups[0].Lessons[0].Title)
	assert.Equal(t, 2, page.Groups[0].Lessons[0].Completions)
	assert.Equal(t, "Types", page.Groups[0].Lessons[1].Title)
	assert.Equal(t, "SQL", page.Groups[1].CategoryName)
	assert.Len(t, page.Groups[1].Lessons, 2)

	orphans := page.Groups[2]
	assert.Equal(t, "No category", orphans.CategoryName)
	require.Len(t, orphans.Lessons, 1)
	assert.Equal(t, "Orphan", orphans.Lessons[0].Title)
	assert.Zero(t, orphans.Lessons[0].Completions)
}

func Test_adminApi_analytics(t *testing.T) {
	// 23:30 UTC on the 10th is already the 11th in Kinshasa (UTC+1)
	now := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	fx := adminSetup(t, now)

	t.Run("unknown time zone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/admin/analytics?tz=Mars/Olympus", fx.token)
		fx.env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"tz": "unknown time zone"}),
		}, rec)
	})

	t.Run("default time zone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/admin/analytics", fx.token)
		fx.env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page analyticsPage
		unmarchallObj(t, rec, &page)
		assert.Equal(t, "UTC", page.TimeZone)
		require.Len(t, page.Activity, analytics.HistogramDays)
		assert.Equal(t, "2024-03-04", page.Activity[0].Date)
		assert.Equal(t, "2024-03-10", page.Activity[6].Date)
		assert.Equal(t, "Sun", page.Activity[6].Weekday)
		assert.Equal(t, 2, page.Activity[6].Completions)
		assert.Equal(t, 1, page.Activity[5].Completions)

		assert.Equal(t, analytics.Metrics{AverageCompletionRate: 40, CompletionsPerUser: 2, CommentsPerUser: 0.5}, page.Metrics)
		require.Len(t, page.Categories, 2)
		assert.Equal(t, 3, page.Categories[0].Completions)
		assert.Equal(t, 100, page.Categories[0].UserShare)
		assert.Equal(t, 1, page.Categories[1].Completions)
		assert.Equal(t, 50, page.Categories[1].UserShare)
	})

	t.Run("viewer time zone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/admin/analytics?tz=Africa/Kinshasa", fx.token)
		fx.env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page analyticsPage
		unmarchallObj(t, rec, &page)
		assert.Equal(t, "Africa/Kinshasa", page.TimeZone)
		require.Len(t, page.Activity, analytics.HistogramDays)
		assert.Equal(t, "2024-03-11", page.Activity[6].Date)
		assert.Equal(t, 2, page.Activity[6].Completions)
		assert.Equal(t, 0, page.Activity[5].Completions)
		assert.Equal(t, 1, page.Activity[4].Completions) // 22:30 UTC on the 9th is 23:30 local
	})
}
