package comment

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const AnonymousName = "Anonymous"

type Comment struct {
	ID         string    `json:"id"`
	LessonID   string    `json:"lesson_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type NewComment struct {
	LessonID string `json:"-"`
	AuthorID string `json:"-"`
	Text     string `json:"text" validate:"notblank,max=2000"`
}

func (nc NewComment) Validate(validate *validator.Validate) error {
	return validate.Struct(nc)
}
