package forms

import (
	"strings"

	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CommentForm edits a comment's text.
type CommentForm struct {
	Text   string `form:"text" json:"text" validate:"required"`
	Errors Errors `form:"-" json:"errors,omitempty"`
}

// NewCommentForm returns a form bound to comment, or an empty one.
func NewCommentForm(comment *models.Comment) *CommentForm {
	f := &CommentForm{Errors: Errors{}}
	if comment != nil {
		f.Text = comment.Text
	}
	return f
}

// BindComment decodes a submitted comment form.
func BindComment(c *fiber.Ctx) (*CommentForm, error) {
	f := &CommentForm{}
	if err := bind(c, f); err != nil {
		return nil, err
	}
	f.Errors = Errors{}
	return f, nil
}

func (f *CommentForm) Valid() bool {
	f.Text = strings.TrimSpace(f.Text)
	f.Errors = check(f)
	return len(f.Errors) == 0
}

func (f *CommentForm) Apply(comment *models.Comment) {
	comment.Text = f.Text
}
