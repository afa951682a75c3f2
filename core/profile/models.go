package profile

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

var (
	AllRoles   = []string{RoleStudent, RoleTeacher, RoleAdmin}
	StaffRoles = []string{RoleTeacher, RoleAdmin}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type Profile struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Bio              string    `json:"bio"`
	TelegramUsername string    `json:"telegram_username"`
	Website          string    `json:"website"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanAccessAdmin reports whether the profile may use the admin panel.
func (p Profile) CanAccessAdmin() bool {
	for _, r := range StaffRoles {
		if p.Role == r {
			return true
		}
	}
	return false
}

type UpdateProfile struct {
	Name             string `json:"name" validate:"max=100"`
	Bio              string `json:"bio" validate:"max=1000"`
	TelegramUsername string `json:"telegram_username" validate:"omitempty,max=32"`
	Website          string `json:"website" validate:"omitempty,url"`
}

func (up UpdateProfile) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

type SetRole struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,role"`
}

func (sr SetRole) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
