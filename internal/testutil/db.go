// Package testutil provides shared database fixtures for tests.
package testutil

import (
	"testing"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Now is the reference instant fixtures are dated around.
var Now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// NewSQLiteDB returns a migrated in-memory database with foreign keys
// enforced. A single connection keeps every query on the same memory DB.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// Fixtures inserts rows straight through GORM.
type Fixtures struct {
	T  *testing.T
	DB *gorm.DB
}

func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{T: t, DB: db}
}

func (f *Fixtures) create(v any) {
	f.T.Helper()
	require.NoError(f.T, f.DB.Omit(clause.Associations).Create(v).Error)
}

// User creates a user whose password hash is passwordHash.
func (f *Fixtures) User(username, passwordHash string) *models.User {
	f.T.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: passwordHash}
	f.create(u)
	return u
}

func (f *Fixtures) Admin(username, passwordHash string) *models.User {
	f.T.Helper()
	u := f.User(username, passwordHash)
	require.NoError(f.T, f.DB.Model(u).Update("is_admin", true).Error)
	u.IsAdmin = true
	return u
}

func (f *Fixtures) Category(title, slug string, published bool) *models.Category {
	f.T.Helper()
	c := &models.Category{Title: title, Description: "About " + title, Slug: slug, IsPublished: published}
	f.create(c)
	return c
}

func (f *Fixtures) Location(name string, published bool) *models.Location {
	f.T.Helper()
	l := &models.Location{Name: name, IsPublished: published}
	f.create(l)
	return l
}

// PostOpts describes a post fixture. Zero PubDate means an hour before Now.
type PostOpts struct {
	Title    string
	Author   *models.User
	Category *models.Category
	Location *models.Location
	Draft    bool
	PubDate  time.Time
}

func (f *Fixtures) Post(o PostOpts) *models.Post {
	f.T.Helper()
	if o.PubDate.IsZero() {
		o.PubDate = Now.Add(-time.Hour)
	}
	p := &models.Post{
		Title:       o.Title,
		Text:        "Text of " + o.Title,
		PubDate:     o.PubDate.UTC(),
		IsPublished: !o.Draft,
		AuthorID:    o.Author.ID,
	}
	if o.Category != nil {
		p.CategoryID = &o.Category.ID
	}
	if o.Location != nil {
		p.LocationID = &o.Location.ID
	}
	f.create(p)
	return p
}

func (f *Fixtures) Comment(post *models.Post, author *models.User, text string) *models.Comment {
	f.T.Helper()
	c := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	f.create(c)
	return c
}
