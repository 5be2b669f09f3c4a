// Package forms binds and validates the blog's HTML/JSON form submissions.
// A form that fails validation keeps the submitted values and a per-field
// error list so the page can be redisplayed.
package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"blogicum/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Field error messages shown next to inputs.
const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	MsgInvalidDate   = "Enter a valid date/time."
	MsgInvalidEmail  = "Enter a valid email address."
	MsgInvalidValue  = "Enter a valid value."
	MsgUsername      = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgUsernameTaken = "A user with that username already exists."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return validation.ValidateUsername(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Errors maps a form field name to its messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one error.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// check runs the struct validator and translates its failures.
func check(form any) Errors {
	errs := Errors{}
	err := validate.Struct(form)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("__all__", MsgInvalidValue)
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "email":
		return MsgInvalidEmail
	case "username":
		return MsgUsername
	case "number", "numeric":
		return MsgInvalidChoice
	case "slug":
		return MsgSlug
	default:
		return MsgInvalidValue
	}
}

// bind decodes the request body into dest using the form tags for
// urlencoded/multipart bodies and json tags for JSON.
func bind(c *fiber.Ctx, dest any) error {
	if len(c.Body()) == 0 && !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil
	}
	if err := c.BodyParser(dest); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return fmt.Errorf("parse form body: %w", err)
	}
	return nil
}

// Choice is an optional foreign key picked from a select box. Empty means
// no selection. JSON bodies may send it as a number, string, or null.
type Choice string

// UnmarshalJSON accepts 3, "3", "" and null.
func (c *Choice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Choice(strings.TrimSpace(s))
		return nil
	}
	*c = Choice(data)
	return nil
}

// ID returns the selected primary key, nil for no selection.
func (c Choice) ID() (*uint, error) {
	raw := strings.TrimSpace(string(c))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("invalid choice %q", raw)
	}
	id := uint(n)
	return &id, nil
}

// ChoiceOf renders an optional key back into a select value.
func ChoiceOf(id *uint) Choice {
	if id == nil {
		return ""
	}
	return Choice(strconv.FormatUint(uint64(*id), 10))
}
