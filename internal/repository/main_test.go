package repository

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a Postgres-dialect GORM handle backed by sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database with foreign keys enforced.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t)
}

type fixture struct {
	db  *gorm.DB
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		db:  setupSQLiteDB(t),
		now: testutil.Now,
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "hash"}
	require.NoError(t, f.db.Create(u).Error)
	return u
}

func (f *fixture) category(t *testing.T, slug string, published bool) *models.Category {
	t.Helper()
	c := &models.Category{Title: slug, Description: "about " + slug, Slug: slug, IsPublished: published}
	require.NoError(t, f.db.Create(c).Error)
	return c
}

func (f *fixture) post(t *testing.T, author *models.User, category *models.Category, title string, published bool, pubDate time.Time) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:       title,
		Text:        "text of " + title,
		PubDate:     pubDate,
		IsPublished: published,
		AuthorID:    author.ID,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	require.NoError(t, NewPostRepository(f.db).Create(context.Background(), p))
	return p
}

func (f *fixture) comment(t *testing.T, post *models.Post, author *models.User, text string, at time.Time) *models.Comment {
	t.Helper()
	c := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID, CreatedAt: at}
	require.NoError(t, NewCommentRepository(f.db).Create(context.Background(), c))
	return c
}

func postIDs(posts []*models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
