package analytics

import "github.com/trezcool/academia/core/profile"

// the trailing window of the activity histogram, today included
const HistogramDays = 7

const uncategorizedName = "No category"

type Overview struct {
	Users     int `json:"users"`
	Lessons   int `json:"lessons"`
	Comments  int `json:"comments"`
	Completed int `json:"completed"`
}

type CategoryCompletion struct {
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Lessons     int    `json:"lessons"`
	Completions int    `json:"completions"`
	UserShare   int    `json:"user_share"` // completions per user, as a percentage capped at 100
}

type DayActivity struct {
	Date        string `json:"date"` // YYYY-MM-DD in the viewer's time zone
	Weekday     string `json:"weekday"`
	Completions int    `json:"completions"`
}

type Metrics struct {
	AverageCompletionRate float64 `json:"average_completion_rate"` // mean per-user completion percentage
	CompletionsPerUser    float64 `json:"completions_per_user"`
	CommentsPerUser       float64 `json:"comments_per_user"`
}

type LessonStat struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	OrderIndex   int    `json:"order_index"`
	Completions  int    `json:"completions"`
}

type LessonGroup struct {
	CategoryID   string       `json:"category_id"`
	CategoryName string       `json:"category_name"`
	Lessons      []LessonStat `json:"lessons"`
}

type UserActivity struct {
	profile.Profile
	CompletedLessons int `json:"completed_lessons"`
	Comments         int `json:"comments"`
}
