package service

import (
	"context"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/pagination"
	"blogicum/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	categoryRepo repository.CategoryRepository
	locationRepo repository.LocationRepository
	perPage      int
	now          Clock
}

// PostDetail is everything the post page shows.
type PostDetail struct {
	Post     *models.Post
	Comments []*models.Comment
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	categoryRepo repository.CategoryRepository,
	locationRepo repository.LocationRepository,
	perPage int,
) *PostService {
	if perPage <= 0 {
		perPage = pagination.PostsPerPage
	}
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
		perPage:      perPage,
		now:          systemClock,
	}
}

// WithClock replaces the visibility clock.
func (s *PostService) WithClock(now Clock) *PostService {
	s.now = now
	return s
}

// Feed returns a page of publicly visible posts, newest first.
func (s *PostService) Feed(ctx context.Context, rawPage string) (*repository.PostPage, error) {
	return s.postRepo.List(ctx, rawPage, s.perPage, repository.At(s.now()))
}

// Detail loads a post with its comments. The author sees the post in any
// state; everyone else only while it is publicly visible.
func (s *PostService) Detail(ctx context.Context, postID, viewerID uint) (*PostDetail, error) {
	span, ctx := observability.StartSpan(ctx, "service.post", "detail", attribute.Int("post.id", int(postID)))
	defer span.End()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if viewerID == 0 || post.AuthorID != viewerID {
		post, err = s.postRepo.GetVisibleByID(ctx, postID, s.now())
		if err != nil {
			return nil, err
		}
	}

	comments, err := s.commentRepo.ListByPost(ctx, post.ID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return &PostDetail{Post: post, Comments: comments}, nil
}

// CategoryFeed returns a published category and a page of its visible posts.
func (s *PostService) CategoryFeed(ctx context.Context, slug, rawPage string) (*models.Category, *repository.PostPage, error) {
	category, err := s.categoryRepo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.postRepo.List(ctx, rawPage, s.perPage, repository.At(s.now()), repository.InCategory(category.ID))
	if err != nil {
		return nil, nil, err
	}
	return category, page, nil
}

// ProfileFeed lists an author's posts. The author sees all of them,
// drafts and scheduled ones included; other viewers see the public ones.
func (s *PostService) ProfileFeed(ctx context.Context, author *models.User, viewerID uint, rawPage string) (*repository.PostPage, error) {
	opts := []repository.QueryOption{repository.At(s.now()), repository.ByAuthor(author.ID)}
	if viewerID != 0 && viewerID == author.ID {
		opts = append(opts, repository.Unfiltered())
	}
	return s.postRepo.List(ctx, rawPage, s.perPage, opts...)
}

// Create saves a new published post for authorID. It returns ErrInvalidForm
// when form has field errors.
func (s *PostService) Create(ctx context.Context, authorID uint, form *forms.PostForm) (*models.Post, error) {
	if !s.validate(ctx, form) {
		return nil, ErrInvalidForm
	}

	post := &models.Post{AuthorID: authorID, IsPublished: true}
	form.Apply(post)
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordContentEvent("post", "create")
	return post, nil
}

// GetForEdit loads a post its author is about to change. Other users get
// FORBIDDEN.
func (s *PostService) GetForEdit(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only change your own posts")
	}
	return post, nil
}

// Update applies form to the author's post.
func (s *PostService) Update(ctx context.Context, postID, userID uint, form *forms.PostForm) (*models.Post, error) {
	post, err := s.GetForEdit(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !s.validate(ctx, form) {
		return post, ErrInvalidForm
	}

	form.Apply(post)
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	observability.RecordContentEvent("post", "update")
	return post, nil
}

// Delete removes the author's post together with its comments.
func (s *PostService) Delete(ctx context.Context, postID, userID uint) error {
	if _, err := s.GetForEdit(ctx, postID, userID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	observability.RecordContentEvent("post", "delete")
	return nil
}

// Choices returns the categories and locations a post form can select.
func (s *PostService) Choices(ctx context.Context) ([]*models.Category, []*models.Location, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return categories, locations, nil
}

// validate runs the form checks and then confirms the chosen category and
// location exist.
func (s *PostService) validate(ctx context.Context, form *forms.PostForm) bool {
	if !form.Valid() {
		return false
	}
	if id := form.CategoryID(); id != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *id); err != nil {
			form.AddError("category", forms.MsgInvalidChoice)
		}
	}
	if id := form.LocationID(); id != nil {
		if _, err := s.locationRepo.GetByID(ctx, *id); err != nil {
			form.AddError("location", forms.MsgInvalidChoice)
		}
	}
	return len(form.Errors) == 0
}
