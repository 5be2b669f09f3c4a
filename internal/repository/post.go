package repository

import (
	"context"
	"errors"
	"time"

	"blogicum/internal/cache"
	"blogicum/internal/models"
	"blogicum/internal/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostPage is one page of a post listing as rendered into page_obj.
type PostPage struct {
	pagination.Page
	Posts []*models.Post `json:"object_list"`
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID loads a post in any state with its relations.
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// GetVisibleByID loads a post only if it is publicly visible at now.
	GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error)
	List(ctx context.Context, rawPage string, perPage int, opts ...QueryOption) (*PostPage, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post and its comments in one transaction.
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Location").
			Preload("Category").
			First(&post, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post", id)
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	var post models.Post
	err := PostQuery(readDB(r.db).WithContext(ctx), At(now), WithoutCommentCount()).
		Where("posts.id = ?", id).
		Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, rawPage string, perPage int, opts ...QueryOption) (*PostPage, error) {
	db := readDB(r.db)

	// Pin the clock so the count and the page agree on visibility.
	q := buildPostQuery(opts)
	opts = append(opts, At(q.now))

	total, err := CountPosts(ctx, db, opts...)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	page := pagination.NewPage(rawPage, total, perPage)
	posts := make([]*models.Post, 0, page.Limit())
	if total > 0 {
		if err := PostQuery(db.WithContext(ctx), opts...).
			Offset(page.Offset()).
			Limit(page.Limit()).
			Find(&posts).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return &PostPage{Page: page, Posts: posts}, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return err
		}
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
