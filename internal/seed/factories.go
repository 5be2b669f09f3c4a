// Package seed provides helpers to create demo data for the blog database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"blogicum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated account.
const DefaultPassword = "password123"

// FactoryOptions tune generated data.
type FactoryOptions struct {
	// SkipBcrypt stores a cheap MinCost hash; meant for tests.
	SkipBcrypt bool
	// MaxDays bounds how far back pub_date is spread.
	MaxDays int
	// Seed makes generation reproducible when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	opts         FactoryOptions
	rnd          *rand.Rand
	faker        *gofakeit.Faker
	passwordHash string
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts FactoryOptions) (*Factory, error) {
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cost := bcrypt.DefaultCost
	if opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	// #nosec G404: acceptable for seeding
	return &Factory{
		db:           db,
		opts:         opts,
		rnd:          rand.New(rand.NewSource(seed)),
		faker:        gofakeit.New(seed),
		passwordHash: string(hash),
	}, nil
}

// CreateUser constructs and persists a user. Optional overrides may modify
// the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := fmt.Sprintf("%s_%s%d", strings.ToLower(first), strings.ToLower(last), f.faker.Number(100, 999))
	user := &models.User{
		Username:  sanitizeUsername(username),
		Email:     f.faker.Email(),
		FirstName: first,
		LastName:  last,
		Password:  f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateLocation persists a published location named after a random city.
func (f *Factory) CreateLocation(overrides ...func(*models.Location)) (*models.Location, error) {
	location := &models.Location{Name: f.faker.City(), IsPublished: true}
	for _, override := range overrides {
		override(location)
	}
	if err := f.db.Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// BuildPost constructs a published post by author without persisting it.
// category and location may be nil.
func (f *Factory) BuildPost(author *models.User, category *models.Category, location *models.Location, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:       strings.TrimSuffix(f.faker.Sentence(5), "."),
		Text:        f.faker.Paragraph(2, 4, 12, "\n\n"),
		PubDate:     f.pastInstant(),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}
	if location != nil {
		post.LocationID = &location.ID
	}
	if f.rnd.Float32() < 0.3 {
		post.Image = fmt.Sprintf("posts_images/%s.jpg", f.faker.UUID())
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in batches of batchSize.
func (f *Factory) CreatePostsBatch(posts []*models.Post, batchSize int) error {
	if len(posts) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return f.db.Omit(clause.Associations).CreateInBatches(posts, batchSize).Error
}

// CreateComment persists a comment by author on post.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		Text:     f.faker.Sentence(f.rnd.Intn(12) + 4),
		PostID:   post.ID,
		AuthorID: author.ID,
	}
	for _, override := range overrides {
		override(comment)
	}
	if err := f.db.Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// pastInstant spreads dates over the last MaxDays.
func (f *Factory) pastInstant() time.Time {
	back := time.Duration(f.rnd.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().UTC().Add(-back - time.Minute).Truncate(time.Second)
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
