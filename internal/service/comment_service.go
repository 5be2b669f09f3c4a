package service

import (
	"context"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// Add attaches a comment by authorID to the post. A missing post is
// NOT_FOUND; an invalid form is ErrInvalidForm and nothing is saved.
func (s *CommentService) Add(ctx context.Context, postID, authorID uint, form *forms.CommentForm) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if !form.Valid() {
		return nil, ErrInvalidForm
	}

	comment := &models.Comment{PostID: postID, AuthorID: authorID}
	form.Apply(comment)
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordContentEvent("comment", "create")
	return comment, nil
}

// GetOwned loads a comment of the post that userID wrote. A comment of
// another post is NOT_FOUND; somebody else's comment is FORBIDDEN.
func (s *CommentService) GetOwned(ctx context.Context, postID, commentID, userID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetForPost(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only change your own comments")
	}
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, postID, commentID, userID uint, form *forms.CommentForm) (*models.Comment, error) {
	comment, err := s.GetOwned(ctx, postID, commentID, userID)
	if err != nil {
		return nil, err
	}
	if !form.Valid() {
		return comment, ErrInvalidForm
	}

	form.Apply(comment)
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	observability.RecordContentEvent("comment", "update")
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, postID, commentID, userID uint) error {
	comment, err := s.GetOwned(ctx, postID, commentID, userID)
	if err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return err
	}
	observability.RecordContentEvent("comment", "delete")
	return nil
}
