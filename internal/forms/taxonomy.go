package forms

import (
	"regexp"
	"strings"

	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// MsgSlug is shown for a slug with characters outside [-a-zA-Z0-9_].
const MsgSlug = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."

// CategoryForm creates a category from the admin.
type CategoryForm struct {
	Title       string `form:"title" json:"title" validate:"required,max=256"`
	Description string `form:"description" json:"description" validate:"required"`
	Slug        string `form:"slug" json:"slug" validate:"required,max=64,slug"`
	IsPublished *bool  `form:"is_published" json:"is_published"`

	Errors Errors `form:"-" json:"errors,omitempty"`
}

func BindCategory(c *fiber.Ctx) (*CategoryForm, error) {
	f := &CategoryForm{}
	if err := bind(c, f); err != nil {
		return nil, err
	}
	f.Errors = Errors{}
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	return f, nil
}

func (f *CategoryForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *CategoryForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Errors.Add(field, msg)
}

// Category builds the row. Publication defaults to on.
func (f *CategoryForm) Category() *models.Category {
	return &models.Category{
		Title:       f.Title,
		Description: f.Description,
		Slug:        f.Slug,
		IsPublished: f.IsPublished == nil || *f.IsPublished,
	}
}

// LocationForm creates a location from the admin.
type LocationForm struct {
	Name        string `form:"name" json:"name" validate:"required,max=256"`
	IsPublished *bool  `form:"is_published" json:"is_published"`

	Errors Errors `form:"-" json:"errors,omitempty"`
}

func BindLocation(c *fiber.Ctx) (*LocationForm, error) {
	f := &LocationForm{}
	if err := bind(c, f); err != nil {
		return nil, err
	}
	f.Errors = Errors{}
	f.Name = strings.TrimSpace(f.Name)
	return f, nil
}

func (f *LocationForm) Valid() bool {
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *LocationForm) Location() *models.Location {
	return &models.Location{
		Name:        f.Name,
		IsPublished: f.IsPublished == nil || *f.IsPublished,
	}
}
