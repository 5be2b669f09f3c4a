package forms

import (
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Location is the time zone naive pub_date values are interpreted in.
var Location = time.UTC

var pubDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// PostForm edits every user-facing field of a Post. Author and
// publication status are set by the caller.
type PostForm struct {
	Title    string `form:"title" json:"title" validate:"required,max=256"`
	Text     string `form:"text" json:"text" validate:"required"`
	PubDate  string `form:"pub_date" json:"pub_date" validate:"required"`
	Category Choice `form:"category" json:"category" validate:"omitempty,number"`
	Location Choice `form:"location" json:"location" validate:"omitempty,number"`
	Image    string `form:"image" json:"image" validate:"max=512"`

	Errors Errors `form:"-" json:"errors,omitempty"`

	pubDate    time.Time
	categoryID *uint
	locationID *uint
}

// NewPostForm returns a form pre-filled from post, or an empty form when
// post is nil.
func NewPostForm(post *models.Post) *PostForm {
	f := &PostForm{Errors: Errors{}}
	if post == nil {
		return f
	}
	f.Title = post.Title
	f.Text = post.Text
	f.PubDate = post.PubDate.In(Location).Format(pubDateLayouts[0])
	f.Category = ChoiceOf(post.CategoryID)
	f.Location = ChoiceOf(post.LocationID)
	f.Image = post.Image
	return f
}

// BindPost decodes a submitted post form.
func BindPost(c *fiber.Ctx) (*PostForm, error) {
	f := &PostForm{}
	if err := bind(c, f); err != nil {
		return nil, err
	}
	f.Errors = Errors{}
	f.Title = strings.TrimSpace(f.Title)
	f.Image = strings.TrimSpace(f.Image)
	return f, nil
}

// Valid validates the form and caches the parsed values used by Apply.
func (f *PostForm) Valid() bool {
	f.Errors = check(f)

	if !f.Errors.Has("pub_date") {
		t, ok := parsePubDate(f.PubDate)
		if ok {
			f.pubDate = t
		} else {
			f.Errors.Add("pub_date", MsgInvalidDate)
		}
	}
	if !f.Errors.Has("category") {
		f.categoryID = f.choice("category", f.Category)
	}
	if !f.Errors.Has("location") {
		f.locationID = f.choice("location", f.Location)
	}
	return len(f.Errors) == 0
}

// CategoryID is the parsed category selection. Only meaningful after Valid.
func (f *PostForm) CategoryID() *uint { return f.categoryID }

// LocationID is the parsed location selection. Only meaningful after Valid.
func (f *PostForm) LocationID() *uint { return f.locationID }

// AddError attaches an error found outside struct validation.
func (f *PostForm) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Errors.Add(field, msg)
}

// Apply copies the validated values onto post. Loaded relations that no
// longer match the chosen ids are dropped.
func (f *PostForm) Apply(post *models.Post) {
	post.Title = f.Title
	post.Text = f.Text
	post.PubDate = f.pubDate
	post.CategoryID = f.categoryID
	post.LocationID = f.locationID
	post.Image = f.Image
	if post.Category != nil && (f.categoryID == nil || post.Category.ID != *f.categoryID) {
		post.Category = nil
	}
	if post.Location != nil && (f.locationID == nil || post.Location.ID != *f.locationID) {
		post.Location = nil
	}
}

func (f *PostForm) choice(field string, c Choice) *uint {
	id, err := c.ID()
	if err != nil {
		f.Errors.Add(field, MsgInvalidChoice)
		return nil
	}
	return id
}

func parsePubDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, Location); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
