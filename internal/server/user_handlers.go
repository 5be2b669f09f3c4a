package server

import (
	"errors"

	"blogicum/internal/forms"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Profile handles GET /profile/:username
func (s *Server) Profile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	profile, err := s.userService.GetByUsername(ctx, c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	viewerID, _ := currentUserID(c)

	page, err := s.postService.ProfileFeed(ctx, profile, viewerID, c.Query("page"))
	if err != nil {
		return fail(c, err)
	}
	return render(c, "blog/profile.html", fiber.Map{
		"profile":   profile,
		"full_name": profile.FullName(),
		"page_obj":  page,
	})
}

// ProfileEdit handles GET and POST /profile/edit
func (s *Server) ProfileEdit(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	ctx := c.UserContext()

	if c.Method() != fiber.MethodPost {
		user, err := s.userService.GetByID(ctx, userID)
		if err != nil {
			return fail(c, err)
		}
		return render(c, "blog/user.html", fiber.Map{"form": forms.NewUserProfileForm(user)})
	}

	form, err := forms.BindUserProfile(c)
	if err != nil {
		return badBody(c, err)
	}
	user, err := s.userService.UpdateProfile(ctx, userID, form)
	if err != nil {
		if errors.Is(err, service.ErrInvalidForm) {
			return render(c, "blog/user.html", fiber.Map{"form": form})
		}
		return fail(c, err)
	}
	return redirect(c, profileURL(user.Username))
}
