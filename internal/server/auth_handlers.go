package server

import (
	"errors"
	"log/slog"
	"time"

	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/repository"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// LoginPage handles GET /auth/login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return render(c, "registration/login.html", fiber.Map{"next": c.Query("next")})
}

// Signup handles POST /auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.Registration, 0) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Page", c.Path()))
	}

	var in service.SignupInput
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}

	user, err := s.userService.Register(c.UserContext(), in)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return fail(c, err)
	}

	token, err := s.issueSession(c, user)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /auth/login. Browser forms with a local next
// parameter are redirected there once the cookie is set.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}

	token, err := s.issueSession(c, user)
	if err != nil {
		return fail(c, err)
	}
	if next, ok := localRedirect(req.Next); ok {
		return redirect(c, next)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /auth/logout. The token's jti stays blacklisted
// until the token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)

	if s.redis != nil && jti != "" {
		if ttl := time.Until(exp); ttl > 0 {
			if err := s.redis.Set(c.UserContext(), blacklistPrefix+jti, "1", ttl).Err(); err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "failed to blacklist token",
					slog.String("error", err.Error()))
			}
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Locals("userID", nil)
	return render(c, "registration/logged_out.html", nil)
}

// issueSession signs a token for user and stores it in the access cookie.
func (s *Server) issueSession(c *fiber.Ctx, user *models.User) (string, error) {
	ttl := time.Duration(s.config.JWTTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, claims, err := middleware.IssueToken(s.config.JWTSecret, user.ID, user.Username, ttl)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}
