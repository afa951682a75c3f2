package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/comment"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/core/progress"
)

var (
	orderingParam = "ordering"
	timeZoneParam = "tz"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads a comma separated field list, "-" marking descending fields: ?ordering=-created_at,name
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Requests

type (
	sessionRequest struct {
		AccessToken string `json:"access_token" validate:"required"`
	}

	commentRequest struct {
		Text string `json:"text"`
	}
)

// Responses

type (
	loginPage struct {
		LoginURL      string `json:"login_url"`
		Authenticated bool   `json:"authenticated"`
	}

	modulesPage struct {
		Authenticated bool                      `json:"authenticated"`
		Categories    []catalog.CategorySummary `json:"categories"`
	}

	lessonWithStatus struct {
		catalog.Lesson
		Status progress.Status `json:"status"`
	}

	categoryPage struct {
		Category   catalog.Category   `json:"category"`
		Lessons    []lessonWithStatus `json:"lessons"`
		Completed  int                `json:"completed"`
		Total      int                `json:"total"`
		Percentage int                `json:"percentage"`
	}

	lessonPage struct {
		Lesson     catalog.Lesson     `json:"lesson"`
		Category   *catalog.Category  `json:"category"`
		Navigation catalog.Navigation `json:"navigation"`
		Status     progress.Status    `json:"status"`
		Comments   []comment.Comment  `json:"comments"`
	}

	progressResponse struct {
		LessonID string          `json:"lesson_id"`
		Status   progress.Status `json:"status"`
	}

	// progressFailure lets the client revert its toggle to the prior status.
	progressFailure struct {
		Error  string          `json:"error"`
		Status progress.Status `json:"status"`
	}

	dashboardStats struct {
		Completed  int `json:"completed"`
		Total      int `json:"total"`
		StudyHours int `json:"study_hours"`
	}

	dashboardPage struct {
		Greeting     string                      `json:"greeting"`
		Overall      int                         `json:"overall"`
		Motivation   string                      `json:"motivation"`
		Categories   []progress.CategoryProgress `json:"categories"`
		Recent       []progress.Completion       `json:"recent"`
		Achievements []progress.Achievement      `json:"achievements"`
		Stats        dashboardStats              `json:"stats"`
	}

	profilePage struct {
		Profile     profile.Profile `json:"profile"`
		DisplayName string          `json:"display_name"`
	}

	certificatesPage struct {
		Certificates []progress.Certificate `json:"certificates"`
	}

	adminPage struct {
		Overview       analytics.Overview     `json:"overview"`
		RecentUsers    []profile.Profile      `json:"recent_users"`
		PopularLessons []analytics.LessonStat `json:"popular_lessons"`
	}

	adminUsersPage struct {
		Users []analytics.UserActivity `json:"users"`
	}

	adminLessonsPage struct {
		Groups []analytics.LessonGroup `json:"groups"`
	}

	analyticsPage struct {
		Overview   analytics.Overview             `json:"overview"`
		Categories []analytics.CategoryCompletion `json:"categories"`
		Activity   []analytics.DayActivity        `json:"activity"`
		Metrics    analytics.Metrics              `json:"metrics"`
		TimeZone   string                         `json:"time_zone"`
	}
)
