package service

import (
	"context"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/pagination"
	"blogicum/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint) (*models.Post, error)
	getVisibleByIDFn func(context.Context, uint, time.Time) (*models.Post, error)
	listFn           func(context.Context, string, int, ...repository.QueryOption) (*repository.PostPage, error)
	updateFn         func(context.Context, *models.Post) error
	deleteFn         func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetVisibleByID(ctx context.Context, id uint, now time.Time) (*models.Post, error) {
	return s.getVisibleByIDFn(ctx, id, now)
}
func (s *postRepoStub) List(ctx context.Context, rawPage string, perPage int, opts ...repository.QueryOption) (*repository.PostPage, error) {
	return s.listFn(ctx, rawPage, perPage, opts...)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		getVisibleByIDFn: func(_ context.Context, id uint, _ time.Time) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		listFn: func(_ context.Context, raw string, perPage int, _ ...repository.QueryOption) (*repository.PostPage, error) {
			return &repository.PostPage{Page: pagination.NewPage(raw, 0, perPage)}, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getForPostFn func(context.Context, uint, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetForPost(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	return s.getForPostFn(ctx, postID, commentID)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getForPostFn: func(_ context.Context, _ uint, id uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", id)
		},
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// categoryRepoStub serves categories from a map keyed by id.
type categoryRepoStub struct {
	byID map[uint]*models.Category
}

func (s *categoryRepoStub) Create(_ context.Context, c *models.Category) error {
	c.ID = uint(len(s.byID) + 1)
	s.byID[c.ID] = c
	return nil
}
func (s *categoryRepoStub) GetByID(_ context.Context, id uint) (*models.Category, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, models.NewNotFoundError("Category", id)
}
func (s *categoryRepoStub) GetPublishedBySlug(_ context.Context, slug string) (*models.Category, error) {
	for _, c := range s.byID {
		if c.Slug == slug && c.IsPublished {
			return c, nil
		}
	}
	return nil, models.NewNotFoundError("Category", slug)
}
func (s *categoryRepoStub) List(_ context.Context) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	return out, nil
}

// locationRepoStub serves locations from a map keyed by id.
type locationRepoStub struct {
	byID map[uint]*models.Location
}

func (s *locationRepoStub) Create(_ context.Context, l *models.Location) error {
	l.ID = uint(len(s.byID) + 1)
	s.byID[l.ID] = l
	return nil
}
func (s *locationRepoStub) GetByID(_ context.Context, id uint) (*models.Location, error) {
	if l, ok := s.byID[id]; ok {
		return l, nil
	}
	return nil, models.NewNotFoundError("Location", id)
}
func (s *locationRepoStub) List(_ context.Context) ([]*models.Location, error) {
	out := make([]*models.Location, 0, len(s.byID))
	for _, l := range s.byID {
		out = append(out, l)
	}
	return out, nil
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestPostService(posts *postRepoStub, comments *commentRepoStub) *PostService {
	categories := &categoryRepoStub{byID: map[uint]*models.Category{
		1: {ID: 1, Slug: "travel", IsPublished: true},
		2: {ID: 2, Slug: "secret", IsPublished: false},
	}}
	locations := &locationRepoStub{byID: map[uint]*models.Location{
		1: {ID: 1, Name: "Moscow", IsPublished: true},
	}}
	return NewPostService(posts, comments, categories, locations, 0).WithClock(fixedClock)
}
