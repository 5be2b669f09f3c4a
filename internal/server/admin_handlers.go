package server

import (
	"blogicum/internal/admin"
	"blogicum/internal/database"
	"blogicum/internal/forms"
	"blogicum/internal/models"
	"blogicum/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// AdminIndex handles GET /admin
func (s *Server) AdminIndex(c *fiber.Ctx) error {
	return render(c, "admin/index.html", fiber.Map{
		"models":              s.adminSite.Names(),
		"empty_value_display": s.adminSite.EmptyValueDisplay,
	})
}

// AdminChangelist handles GET /admin/:model?q=&page=&<filter>=
func (s *Server) AdminChangelist(c *fiber.Ctx) error {
	filters := map[string]string{}
	for k, v := range c.Queries() {
		if k == "q" || k == "page" {
			continue
		}
		filters[k] = v
	}

	db := database.GetReadDB()
	if db == nil {
		db = s.db
	}
	list, err := s.adminSite.List(c.UserContext(), db, c.Params("model"), admin.ListQuery{
		Search:  c.Query("q"),
		Filters: filters,
		Page:    c.Query("page"),
	})
	if err != nil {
		return fail(c, err)
	}
	return render(c, "admin/change_list.html", fiber.Map{"cl": list})
}

// AdminCreateCategory handles POST /admin/categories. An empty slug is
// filled in from the title.
func (s *Server) AdminCreateCategory(c *fiber.Ctx) error {
	form, err := forms.BindCategory(c)
	if err != nil {
		return badBody(c, err)
	}
	if form.Slug == "" {
		if m, ok := s.adminSite.Model("category"); ok {
			form.Slug = m.Prepopulate("slug", map[string]string{"title": form.Title})
		}
	}
	if !form.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"form": form})
	}

	category := form.Category()
	if err := s.categoryRepo.Create(c.UserContext(), category); err != nil {
		if models.HasCode(err, models.CodeValidation) {
			form.AddError("slug", "Category with this Slug already exists.")
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"form": form})
		}
		return fail(c, err)
	}
	observability.RecordContentEvent("category", "create")
	return c.Status(fiber.StatusCreated).JSON(category)
}

// AdminCreateLocation handles POST /admin/locations
func (s *Server) AdminCreateLocation(c *fiber.Ctx) error {
	form, err := forms.BindLocation(c)
	if err != nil {
		return badBody(c, err)
	}
	if !form.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"form": form})
	}

	location := form.Location()
	if err := s.locationRepo.Create(c.UserContext(), location); err != nil {
		return fail(c, err)
	}
	observability.RecordContentEvent("location", "create")
	return c.Status(fiber.StatusCreated).JSON(location)
}

// GetFeatureFlags handles GET /admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := currentUserID(c)
	return c.JSON(fiber.Map{
		"flags":   s.featureFlags.Snapshot(userID),
		"raw":     s.featureFlags.Raw(),
		"invalid": s.featureFlags.Invalid(),
	})
}
