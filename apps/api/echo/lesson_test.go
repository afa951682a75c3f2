package echoapi_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/comment"
	"github.com/trezcool/academia/core/progress"
	"github.com/trezcool/academia/tests"
)

type lessonPage struct {
	Lesson     catalog.Lesson     `json:"lesson"`
	Category   *catalog.Category  `json:"category"`
	Navigation catalog.Navigation `json:"navigation"`
	Status     progress.Status    `json:"status"`
	Comments   []comment.Comment  `json:"comments"`
}

type progressResponse struct {
	LessonID string          `json:"lesson_id"`
	Status   progress.Status `json:"status"`
}

type progressFailure struct {
	Error  string          `json:"error"`
	Status progress.Status `json:"status"`
}

func Test_lessonApi_lessonDetail(t *testing.T) {
	env := setup(t)

	now := time.Now().UTC()
	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go")
	first := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	second := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Types", 2)
	third := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Generics", 3)
	orphan := testutil.CreateLesson(t, env.stores.Catalog, "", "Orphan", 1)

	usr := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "Awe", "user@test.cd", "")
	testutil.CreateProfile(t, env.stores.Profiles, "user-2", "", "nameless@test.cd", "")
	testutil.Complete(t, env.stores.Progress, usr.ID, second.ID)
	old := testutil.CreateComment(t, env.stores.Comments, second.ID, usr.ID, "first!", now.Add(-time.Hour))
	latest := testutil.CreateComment(t, env.stores.Comments, second.ID, "user-2", "thanks", now)
	token := getToken(t, env, usr)

	t.Run("unknown lesson", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/lesson/lol", token)
		env.app.ServeHTTP(rec, req)
		checkRedirect(t, rec, http.StatusFound, "/modules")
	})

	t.Run("middle lesson", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/lesson/"+second.ID, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var page lessonPage
		unmarchallObj(t, rec, &page)
		assert.Equal(t, second.ID, page.Lesson.ID)
		require.NotNil(t, page.Category)
		assert.Equal(t, goCat.Name, page.Category.Name)
		assert.Equal(t, progress.StatusCompleted, page.Status)

		nav := page.Navigation
		assert.Len(t, nav.Lessons, 3)
		assert.Equal(t, 1, nav.Position)
		require.NotNil(t, nav.Previous)
		require.NotNil(t, nav.Next)
		assert.Equal(t, first.ID, nav.Previous.ID)
		assert.Equal(t, third.ID, nav.Next.ID)

		require.Len(t, page.Comments, 2)
		assert.Equal(t, latest.ID, page.Comments[0].ID)
		assert.Equal(t, comment.AnonymousName, page.Comments[0].AuthorName)
		assert.Equal(t, old.ID, page.Comments[1].ID)
		assert.Equal(t, "Awe", page.Comments[1].AuthorName)
	})

	t.Run("first lesson", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/lesson/"+first.ID, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page lessonPage
		unmarchallObj(t, rec, &page)
		assert.Equal(t, progress.StatusNotStarted, page.Status)
		assert.Nil(t, page.Navigation.Previous)
		require.NotNil(t, page.Navigation.Next)
		assert.Equal(t, second.ID, page.Navigation.Next.ID)
		assert.Empty(t, page.Comments)
	})

	t.Run("lesson without category", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/lesson/"+orphan.ID, token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var page lessonPage
		unmarchallObj(t, rec, &page)
		assert.Nil(t, page.Category)
	})
}

func Test_lessonApi_progress(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go")
	lesson := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Types", 2)
	usr := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "User", "user@test.cd", "")
	token := getToken(t, env, usr)
	path := "/lesson/" + lesson.ID + "/progress"

	countRows := func() int {
		rows, err := env.stores.Progress.QueryUserProgress(ctx, usr.ID)
		require.NoError(t, err)
		return len(rows)
	}

	tests := []httpTest{
		{
			name: "unknown lesson", method: http.MethodPost, path: "/lesson/lol/progress", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "lesson not found"}), extra: 0,
		},
		{
			name: "complete", method: http.MethodPost, path: path, wantCode: http.StatusOK,
			wantData: marchallObj(t, progressResponse{LessonID: lesson.ID, Status: progress.StatusCompleted}), extra: 1,
		},
		{
			name: "complete again", method: http.MethodPost, path: path, wantCode: http.StatusOK,
			wantData: marchallObj(t, progressResponse{LessonID: lesson.ID, Status: progress.StatusCompleted}), extra: 1,
		},
		{
			name: "incomplete", method: http.MethodDelete, path: path, wantCode: http.StatusOK,
			wantData: marchallObj(t, progressResponse{LessonID: lesson.ID, Status: progress.StatusNotStarted}), extra: 0,
		},
		{
			name: "incomplete again", method: http.MethodDelete, path: path, wantCode: http.StatusOK,
			wantData: marchallObj(t, progressResponse{LessonID: lesson.ID, Status: progress.StatusNotStarted}), extra: 0,
		},
		{
			name: "incomplete unknown lesson", method: http.MethodDelete, path: "/lesson/lol/progress", wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "lesson not found"}), extra: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, token)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
			assert.Equal(t, tt.extra, countRows())
		})
	}

	t.Run("write failure reports the prior status", func(t *testing.T) {
		env.db.FailWrites(errors.New("disk full"))
		defer env.db.FailWrites(nil)

		req, rec := newAuthRequest(http.MethodPost, path, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusInternalServerError,
			wantData: marchallObj(t, progressFailure{Error: errInternal.Error, Status: progress.StatusNotStarted}),
		}, rec)
	})

	t.Run("delete failure reports completed", func(t *testing.T) {
		testutil.Complete(t, env.stores.Progress, usr.ID, lesson.ID)
		env.db.FailWrites(errors.New("disk full"))
		defer env.db.FailWrites(nil)

		req, rec := newAuthRequest(http.MethodDelete, path, token)
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusInternalServerError,
			wantData: marchallObj(t, progressFailure{Error: errInternal.Error, Status: progress.StatusCompleted}),
		}, rec)
		assert.Equal(t, 1, countRows())
	})
}

func Test_lessonApi_certificateEmail(t *testing.T) {
	env := setup(t)

	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go")
	first := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	second := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Types", 2)
	usr := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "Awe", "awe@test.cd", "")
	token := getToken(t, env, usr)

	complete := func(lessonID string) {
		req, rec := newAuthRequest(http.MethodPost, "/lesson/"+lessonID+"/progress", token)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	complete(first.ID)
	assert.Empty(t, env.mailSvc.SentMessages())

	complete(second.ID)
	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "awe@test.cd", sent[0].To[0].Address)
	assert.Contains(t, sent[0].Subject, "Go")

	// completing an already completed lesson sends nothing new
	complete(second.ID)
	assert.Len(t, env.mailSvc.SentMessages(), 1)
}

func Test_lessonApi_addComment(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	goCat := testutil.CreateCategory(t, env.stores.Catalog, "Go")
	lesson := testutil.CreateLesson(t, env.stores.Catalog, goCat.ID, "Intro", 1)
	usr := testutil.CreateProfile(t, env.stores.Profiles, "user-1", "Awe", "awe@test.cd", "")
	token := getToken(t, env, usr)
	path := "/lesson/" + lesson.ID + "/comments"

	tests := []httpTest{
		{
			name: "unknown lesson", path: "/lesson/lol/comments", body: []byte(`{"text": "hi"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "lesson not found"}),
		},
		{
			name: "empty text", path: path, body: []byte(`{"text": ""}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"text": "this field cannot be blank"}),
		},
		{
			name: "whitespace text", path: path, body: []byte(`{"text": "  \n\t "}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"text": "this field cannot be blank"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			n, err := env.stores.Comments.CountComments(ctx)
			require.NoError(t, err)
			assert.Zero(t, n, "no comment should be stored")
		})
	}

	t.Run("too long", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, token, marchallObj(t, map[string]string{"text": strings.Repeat("a", 2001)}))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

		var errs map[string]string
		unmarchallObj(t, rec, &errs)
		assert.Contains(t, errs["text"], "maximum")

		n, err := env.stores.Comments.CountComments(ctx)
		require.NoError(t, err)
		assert.Zero(t, n, "no comment should be stored")
	})

	t.Run("valid", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, token, []byte(`{"text": "  Great lesson!  "}`))
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var c comment.Comment
		unmarchallObj(t, rec, &c)
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, lesson.ID, c.LessonID)
		assert.Equal(t, usr.ID, c.AuthorID)
		assert.Equal(t, "Awe", c.AuthorName)
		assert.Equal(t, "Great lesson!", c.Text)

		comments, err := env.stores.Comments.QueryLessonComments(ctx, lesson.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})
}
