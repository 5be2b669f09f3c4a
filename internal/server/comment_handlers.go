package server

import (
	"errors"
	"log/slog"

	"blogicum/internal/featureflags"
	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddComment handles POST /posts/:id/comment. Whatever happens to the form,
// the reader lands back on the post.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	userID, _ := currentUserID(c)

	if !s.featureFlags.Enabled(featureflags.Comments, userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Comments are disabled"))
	}

	form, err := forms.BindComment(c)
	if err != nil {
		return badBody(c, err)
	}
	if _, err := s.commentService.Add(c.UserContext(), postID, userID, form); err != nil {
		if !errors.Is(err, service.ErrInvalidForm) {
			return fail(c, err)
		}
		middleware.Logger.DebugContext(c.UserContext(), "comment rejected",
			slog.Uint64("post_id", uint64(postID)), slog.Any("errors", form.Errors))
	}
	return redirect(c, postURL(postID))
}

// EditComment handles GET and POST /posts/:id/edit_comment/:comment_id.
func (s *Server) EditComment(c *fiber.Ctx) error {
	postID, commentID, err := commentParams(c)
	if err != nil {
		return fail(c, err)
	}
	userID, _ := currentUserID(c)
	ctx := c.UserContext()

	comment, err := s.commentService.GetOwned(ctx, postID, commentID, userID)
	if err != nil {
		return fail(c, err)
	}

	if c.Method() != fiber.MethodPost {
		return render(c, "blog/comment.html", fiber.Map{
			"form":    forms.NewCommentForm(comment),
			"comment": comment,
		})
	}

	form, err := forms.BindComment(c)
	if err != nil {
		return badBody(c, err)
	}
	if _, err := s.commentService.Update(ctx, postID, commentID, userID, form); err != nil {
		if errors.Is(err, service.ErrInvalidForm) {
			return render(c, "blog/comment.html", fiber.Map{
				"form":    form,
				"comment": comment,
			})
		}
		return fail(c, err)
	}
	return redirect(c, postURL(postID))
}

// DeleteComment handles GET and POST /posts/:id/delete_comment/:comment_id.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, commentID, err := commentParams(c)
	if err != nil {
		return fail(c, err)
	}
	userID, _ := currentUserID(c)
	ctx := c.UserContext()

	comment, err := s.commentService.GetOwned(ctx, postID, commentID, userID)
	if err != nil {
		return fail(c, err)
	}

	if c.Method() != fiber.MethodPost {
		return render(c, "blog/comment.html", fiber.Map{"comment": comment})
	}

	if err := s.commentService.Delete(ctx, postID, commentID, userID); err != nil {
		return fail(c, err)
	}
	return redirect(c, postURL(postID))
}

func commentParams(c *fiber.Ctx) (uint, uint, error) {
	postID, err := parseID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}
