package seed

import (
	"fmt"
	"log/slog"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	// DraftRatio is the share of posts saved unpublished, 0..1.
	DraftRatio  float64
	ShouldClean bool
	BatchSize   int
	FactoryOptions
}

// Summary counts what a run created.
type Summary struct {
	Users      int
	Categories int
	Locations  int
	Posts      int
	Comments   int
}

// Seed populates the database with demo users, the built-in taxonomy,
// posts and comments.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	log := middleware.Logger.With(slog.String("component", "seed"))
	log.Info("Starting database seeding",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts))

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	factory, err := NewFactory(db, opts.FactoryOptions)
	if err != nil {
		return nil, err
	}

	categories, locations, err := Taxonomy(db)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		user, err := factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	if len(users) == 0 && opts.NumPosts > 0 {
		return nil, fmt.Errorf("cannot seed %d posts without users", opts.NumPosts)
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for range opts.NumPosts {
		author := users[factory.rnd.Intn(len(users))]
		category := categories[factory.rnd.Intn(len(categories))]
		var location *models.Location
		if factory.rnd.Float32() < 0.7 {
			location = locations[factory.rnd.Intn(len(locations))]
		}
		post := factory.BuildPost(author, category, location)
		if factory.rnd.Float64() < opts.DraftRatio {
			post.IsPublished = false
		}
		posts = append(posts, post)
	}
	if err := factory.CreatePostsBatch(posts, opts.BatchSize); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}

	comments := 0
	for _, post := range posts {
		for range opts.CommentsPerPost {
			author := users[factory.rnd.Intn(len(users))]
			if _, err := factory.CreateComment(author, post); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			comments++
		}
	}

	summary := &Summary{
		Users:      len(users),
		Categories: len(categories),
		Locations:  len(locations),
		Posts:      len(posts),
		Comments:   comments,
	}
	log.Info("Database seeding completed",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments))
	return summary, nil
}

func clearData(db *gorm.DB) error {
	middleware.Logger.Info("Clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comments, posts, categories, locations, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"comments", "posts", "categories", "locations", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
