package forms

import (
	"strings"

	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserProfileForm edits the public profile of the signed-in user.
type UserProfileForm struct {
	FirstName string `form:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" json:"last_name" validate:"max=150"`
	Username  string `form:"username" json:"username" validate:"required,max=150,username"`
	Email     string `form:"email" json:"email" validate:"omitempty,max=254,email"`

	Errors Errors `form:"-" json:"errors,omitempty"`
}

func NewUserProfileForm(user *models.User) *UserProfileForm {
	f := &UserProfileForm{Errors: Errors{}}
	if user != nil {
		f.FirstName = user.FirstName
		f.LastName = user.LastName
		f.Username = user.Username
		f.Email = user.Email
	}
	return f
}

func BindUserProfile(c *fiber.Ctx) (*UserProfileForm, error) {
	f := &UserProfileForm{}
	if err := bind(c, f); err != nil {
		return nil, err
	}
	f.Errors = Errors{}
	return f, nil
}

func (f *UserProfileForm) Valid() bool {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *UserProfileForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Errors.Add(field, msg)
}

func (f *UserProfileForm) Apply(user *models.User) {
	user.FirstName = f.FirstName
	user.LastName = f.LastName
	user.Username = f.Username
	user.Email = f.Email
}
