package catalog

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategorySummary is a Category annotated with the number of lessons it holds.
type CategorySummary struct {
	Category
	LessonCount int `json:"lesson_count"`
}

type Lesson struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	VideoURL   string    `json:"video_url"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
}

// LessonRef is the minimal lesson data needed for navigation links.
type LessonRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (l Lesson) Ref() *LessonRef {
	return &LessonRef{ID: l.ID, Title: l.Title}
}

// Navigation places a lesson among its siblings.
type Navigation struct {
	Lessons  []Lesson   `json:"lessons"` // siblings in ascending OrderIndex
	Position int        `json:"position"`
	Previous *LessonRef `json:"previous"`
	Next     *LessonRef `json:"next"`
}

// ImportCategory is a category and its lessons as read from a catalog file.
type ImportCategory struct {
	Name        string         `json:"name" validate:"notblank"`
	Description string         `json:"description"`
	Lessons     []ImportLesson `json:"lessons" validate:"dive"`
}

type ImportLesson struct {
	Title      string `json:"title" validate:"notblank"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url" validate:"omitempty,url"`
	OrderIndex *int   `json:"order_index"` // defaults to the position in the file, starting at 1
}
