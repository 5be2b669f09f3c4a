package repository

import (
	"context"
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

const commentCountColumn = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// QueryOption adjusts the canonical post query built by PostQuery.
type QueryOption func(*postQuery)

type postQuery struct {
	unfiltered      bool
	withoutComments bool
	now             time.Time
	authorID        uint
	categoryID      uint
}

// Unfiltered drops the public visibility rules, e.g. for an author's own profile.
func Unfiltered() QueryOption {
	return func(q *postQuery) { q.unfiltered = true }
}

// WithoutCommentCount skips the comment_count column.
func WithoutCommentCount() QueryOption {
	return func(q *postQuery) { q.withoutComments = true }
}

// At evaluates visibility against now instead of the wall clock.
func At(now time.Time) QueryOption {
	return func(q *postQuery) { q.now = now }
}

// ByAuthor restricts the query to one author's posts.
func ByAuthor(userID uint) QueryOption {
	return func(q *postQuery) { q.authorID = userID }
}

// InCategory restricts the query to one category.
func InCategory(categoryID uint) QueryOption {
	return func(q *postQuery) { q.categoryID = categoryID }
}

func buildPostQuery(opts []QueryOption) postQuery {
	var q postQuery
	for _, opt := range opts {
		opt(&q)
	}
	if q.now.IsZero() {
		q.now = time.Now()
	}
	// Stored timestamps are UTC; SQLite compares them as text.
	q.now = q.now.UTC()
	return q
}

// scope applies the visibility filter and scoping without select, preload or order,
// so the same conditions serve both the listing and its count.
func (q postQuery) scope(db *gorm.DB) *gorm.DB {
	if !q.unfiltered {
		db = db.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND posts.pub_date < ? AND categories.is_published = ?", true, q.now, true)
	}
	if q.authorID != 0 {
		db = db.Where("posts.author_id = ?", q.authorID)
	}
	if q.categoryID != 0 {
		db = db.Where("posts.category_id = ?", q.categoryID)
	}
	return db
}

// PostQuery is the single source of truth for post listings. By default it
// returns only publicly visible posts (published, pub_date in the past, in a
// published category), annotated with comment_count, with author, location
// and category loaded, newest first.
func PostQuery(db *gorm.DB, opts ...QueryOption) *gorm.DB {
	q := buildPostQuery(opts)

	tx := db.Model(&models.Post{}).Scopes(q.scope)
	if q.withoutComments {
		tx = tx.Select("posts.*")
	} else {
		tx = tx.Select("posts.*, " + commentCountColumn)
	}
	return tx.
		Preload("Author").
		Preload("Location").
		Preload("Category").
		Order("posts.pub_date DESC").
		Order("posts.id DESC")
}

// CountPosts returns how many rows PostQuery would yield for the same options.
func CountPosts(ctx context.Context, db *gorm.DB, opts ...QueryOption) (int64, error) {
	q := buildPostQuery(opts)
	var total int64
	err := db.WithContext(ctx).Model(&models.Post{}).Scopes(q.scope).Count(&total).Error
	return total, err
}
