package seed

import (
	"fmt"

	"blogicum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategory is a category every installation starts with.
type BuiltInCategory struct {
	Title       string
	Slug        string
	Description string
}

// BuiltInCategories are created by Taxonomy.
var BuiltInCategories = []BuiltInCategory{
	{Title: "Travel", Slug: "travel", Description: "Trips, routes and places worth the detour."},
	{Title: "Food", Slug: "food", Description: "Recipes, restaurants and kitchen experiments."},
	{Title: "Books", Slug: "books", Description: "Reviews, reading lists and quotes."},
	{Title: "Technology", Slug: "technology", Description: "Gadgets, software and the people who build them."},
	{Title: "Everyday life", Slug: "everyday-life", Description: "Notes about everything else."},
}

// BuiltInLocations are created by Taxonomy.
var BuiltInLocations = []string{"Moscow", "Saint Petersburg", "Kazan", "Planet Earth"}

// Taxonomy creates the built-in categories and locations. It is idempotent:
// existing categories keep their slug and get their title and description
// refreshed.
func Taxonomy(db *gorm.DB) ([]*models.Category, []*models.Location, error) {
	categories := make([]*models.Category, 0, len(BuiltInCategories))
	for _, item := range BuiltInCategories {
		category := &models.Category{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
			IsPublished: true,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description"}),
		}).Create(category).Error
		if err != nil {
			return nil, nil, fmt.Errorf("seed category %s: %w", item.Slug, err)
		}
		if err := db.Where("slug = ?", item.Slug).First(category).Error; err != nil {
			return nil, nil, fmt.Errorf("reload category %s: %w", item.Slug, err)
		}
		categories = append(categories, category)
	}

	locations := make([]*models.Location, 0, len(BuiltInLocations))
	for _, name := range BuiltInLocations {
		location := &models.Location{}
		err := db.Where(models.Location{Name: name}).
			Attrs(models.Location{IsPublished: true}).
			FirstOrCreate(location).Error
		if err != nil {
			return nil, nil, fmt.Errorf("seed location %s: %w", name, err)
		}
		locations = append(locations, location)
	}
	return categories, locations, nil
}
