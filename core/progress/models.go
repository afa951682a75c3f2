package progress

import (
	"math"
	"time"
)

// minutes of study credited per completed lesson
const minutesPerLesson = 18

type Status string

const (
	StatusNotStarted Status = "not_started" // no stored row
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Progress struct {
	UserID      string    `json:"user_id"`
	LessonID    string    `json:"lesson_id"`
	Status      Status    `json:"status"`
	CompletedAt time.Time `json:"completed_at"`
}

// Completion is a completed lesson, annotated for the activity feeds.
type Completion struct {
	UserID       string    `json:"-"`
	LessonID     string    `json:"lesson_id"`
	LessonTitle  string    `json:"lesson_title"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	CompletedAt  time.Time `json:"completed_at"`
}

type CategoryProgress struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Completed    int    `json:"completed"`
	Total        int    `json:"total"`
	Percentage   int    `json:"percentage"`
}

type Certificate struct {
	CategoryProgress
	Available bool      `json:"available"`
	EarnedAt  time.Time `json:"earned_at"` // latest completion in the category, when Available
}

type Achievement struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Threshold   int    `json:"threshold"`
	Unlocked    bool   `json:"unlocked"`
}

// Summary is everything the dashboard shows about a user's progress.
type Summary struct {
	Completed    int                `json:"completed"`
	Total        int                `json:"total"`
	Percentage   int                `json:"percentage"`
	StudyHours   int                `json:"study_hours"`
	Motivation   string             `json:"motivation"`
	Categories   []CategoryProgress `json:"categories"`
	Recent       []Completion       `json:"recent"`
	Achievements []Achievement      `json:"achievements"`
}

// Achievements lists the badges with their unlocked state.
// The "all lessons" badge stays locked while the catalog is empty.
func Achievements(completed, total int) []Achievement {
	badges := []Achievement{
		{Key: "first_step", Title: "First step", Description: "Complete your first lesson", Threshold: 1},
		{Key: "on_a_roll", Title: "On a roll", Description: "Complete 5 lessons", Threshold: 5},
		{Key: "dedicated", Title: "Dedicated", Description: "Complete 10 lessons", Threshold: 10},
		{Key: "expert", Title: "Expert", Description: "Complete 15 lessons", Threshold: 15},
		{Key: "graduate", Title: "Graduate", Description: "Complete every lesson", Threshold: total},
	}
	for i := range badges {
		badges[i].Unlocked = badges[i].Threshold > 0 && completed >= badges[i].Threshold
	}
	return badges
}

// StudyHours estimates the hours spent studying from the number of completed lessons.
func StudyHours(completed int) int {
	return int(math.Round(float64(completed*minutesPerLesson) / 60))
}

// Motivation returns the encouragement shown for an overall completion percentage.
func Motivation(pct int) string {
	switch {
	case pct < 25:
		return "Great start! Keep going to discover new skills."
	case pct < 50:
		return "Nice progress! You are building solid foundations."
	case pct < 75:
		return "Excellent work! More than halfway there."
	default:
		return "Outstanding! You are almost done with the course."
	}
}
