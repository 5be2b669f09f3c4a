package server

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// render writes a view document: the template name plus its context.
func render(c *fiber.Ctx, template string, data fiber.Map) error {
	doc := fiber.Map{"template": template}
	for k, v := range data {
		doc[k] = v
	}
	if uid, ok := currentUserID(c); ok {
		doc["user"] = fiber.Map{"id": uid, "username": c.Locals("username")}
	}
	return c.JSON(doc)
}

func redirect(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusFound)
}

// fail renders err as an error document. AppErrors keep their code; a bare
// gorm.ErrRecordNotFound becomes a 404 and anything else a 500.
func fail(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		if appErr.Code == models.CodeInternal {
			logError(c, err)
		}
		return models.RespondWithError(c, models.StatusFor(appErr.Code), err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Page", c.Path()))
	default:
		logError(c, err)
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
}

func logError(c *fiber.Ctx, err error) {
	middleware.Logger.ErrorContext(c.UserContext(), "request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
}

// parseID reads a positive integer route parameter. Routes constrain their
// ids to <int>, so anything else is reported as a missing page.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError("Page", c.Params(param))
	}
	return uint(id), nil
}

// currentUserID returns the id set by Authenticate, if any.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d", id)
}

func profileURL(username string) string {
	return "/profile/" + username
}

// localRedirect accepts only same-site absolute paths.
func localRedirect(next string) (string, bool) {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	return next, true
}

// badBody answers a request whose body could not be decoded at all.
func badBody(c *fiber.Ctx, err error) error {
	middleware.Logger.DebugContext(c.UserContext(), "malformed body", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Malformed request body"))
}
