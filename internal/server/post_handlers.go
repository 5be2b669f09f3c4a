package server

import (
	"errors"

	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.postService.Feed(c.UserContext(), c.Query("page"))
	if err != nil {
		return fail(c, err)
	}
	return render(c, "blog/index.html", fiber.Map{"page_obj": page})
}

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	viewerID, _ := currentUserID(c)

	detail, err := s.postService.Detail(c.UserContext(), postID, viewerID)
	if err != nil {
		return fail(c, err)
	}
	return render(c, "blog/detail.html", fiber.Map{
		"post":     detail.Post,
		"comments": detail.Comments,
		"form":     forms.NewCommentForm(nil),
	})
}

// CategoryPosts handles GET /category/:slug
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	category, page, err := s.postService.CategoryFeed(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return fail(c, err)
	}
	return render(c, "blog/category.html", fiber.Map{
		"category": category,
		"page_obj": page,
	})
}

// CreatePost handles GET and POST /posts/create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	ctx := c.UserContext()

	if c.Method() != fiber.MethodPost {
		return s.renderPostForm(c, forms.NewPostForm(nil), nil)
	}

	form, err := forms.BindPost(c)
	if err != nil {
		return badBody(c, err)
	}
	if _, err := s.postService.Create(ctx, userID, form); err != nil {
		if errors.Is(err, service.ErrInvalidForm) {
			return s.renderPostForm(c, form, nil)
		}
		return fail(c, err)
	}

	author, err := s.userService.GetByID(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return redirect(c, profileURL(author.Username))
}

// EditPost handles GET and POST /posts/:id/edit. Anyone but the author is
// sent back to the post.
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	userID, _ := currentUserID(c)
	ctx := c.UserContext()

	post, err := s.postService.GetForEdit(ctx, postID, userID)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			return redirect(c, postURL(postID))
		}
		return fail(c, err)
	}

	if c.Method() != fiber.MethodPost {
		return s.renderPostForm(c, forms.NewPostForm(post), post)
	}

	form, err := forms.BindPost(c)
	if err != nil {
		return badBody(c, err)
	}
	if _, err := s.postService.Update(ctx, postID, userID, form); err != nil {
		if errors.Is(err, service.ErrInvalidForm) {
			return s.renderPostForm(c, form, post)
		}
		return fail(c, err)
	}
	return redirect(c, postURL(postID))
}

// DeletePost handles GET and POST /posts/:id/delete. GET shows the post
// form as a confirmation page.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return fail(c, err)
	}
	userID, _ := currentUserID(c)
	ctx := c.UserContext()

	post, err := s.postService.GetForEdit(ctx, postID, userID)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			return redirect(c, postURL(postID))
		}
		return fail(c, err)
	}

	if c.Method() != fiber.MethodPost {
		return render(c, "blog/create.html", fiber.Map{
			"form":     forms.NewPostForm(post),
			"instance": post,
			"delete":   true,
		})
	}

	if err := s.postService.Delete(ctx, postID, userID); err != nil {
		return fail(c, err)
	}
	return redirect(c, "/")
}

// renderPostForm shows the create/edit page. instance is nil on create.
func (s *Server) renderPostForm(c *fiber.Ctx, form *forms.PostForm, instance *models.Post) error {
	categories, locations, err := s.postService.Choices(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	data := fiber.Map{
		"form":       form,
		"categories": categories,
		"locations":  locations,
	}
	if instance != nil {
		data["instance"] = instance
	}
	return render(c, "blog/create.html", data)
}
