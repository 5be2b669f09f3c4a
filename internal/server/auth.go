package server

import (
	"errors"
	"log/slog"
	"net/url"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:"

// Authenticate resolves the optional access token on every request. A valid
// token for an existing user stores userID, username, jti and tokenExp in
// Locals; a missing, invalid or revoked token leaves the request anonymous.
func (s *Server) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := middleware.ExtractToken(c)
		if raw == "" {
			return c.Next()
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, raw)
		if err != nil {
			return c.Next()
		}

		if revoked, err := s.isRevoked(c, claims.JTI); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token blacklist lookup failed",
				slog.String("error", err.Error()))
		} else if revoked {
			return c.Next()
		}

		// The display name comes from the user row; the claim goes stale
		// after a rename.
		username := claims.Username
		user, err := s.userRepo.GetByID(c.UserContext(), claims.UserID)
		switch {
		case models.HasCode(err, models.CodeNotFound):
			return c.Next()
		case err != nil:
			middleware.Logger.WarnContext(c.UserContext(), "session user lookup failed",
				slog.String("error", err.Error()))
		default:
			username = user.Username
		}

		c.Locals("userID", claims.UserID)
		c.Locals("username", username)
		c.Locals("jti", claims.JTI)
		c.Locals("tokenExp", claims.ExpiresAt)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))
		return c.Next()
	}
}

func (s *Server) isRevoked(c *fiber.Ctx, jti string) (bool, error) {
	if s.redis == nil || jti == "" {
		return false, nil
	}
	err := s.redis.Get(c.UserContext(), blacklistPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LoginRequired sends anonymous visitors to the login page with a next
// parameter pointing back at the requested URL.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := currentUserID(c); ok {
			return c.Next()
		}
		target := s.config.LoginURL
		if target == "" {
			target = "/auth/login"
		}
		return redirect(c, target+"?next="+url.QueryEscape(c.OriginalURL()))
	}
}

// AdminRequired must run after LoginRequired.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := currentUserID(c)
		user, err := s.userRepo.GetByID(c.UserContext(), userID)
		if err != nil {
			if models.HasCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusForbidden,
					models.NewForbiddenError("Admin access required"))
			}
			return fail(c, err)
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
