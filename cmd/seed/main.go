// Command seed populates the database with demo data.
package main

import (
	"flag"
	"log"

	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	comments := flag.Int("comments", 3, "Comments per post")
	drafts := flag.Float64("drafts", 0.1, "Share of posts left unpublished")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Hash passwords at minimum bcrypt cost")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		DraftRatio:      *drafts,
		ShouldClean:     *shouldClean,
		FactoryOptions:  seed.FactoryOptions{SkipBcrypt: *fast},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d categories, %d locations, %d posts, %d comments",
		summary.Users, summary.Categories, summary.Locations, summary.Posts, summary.Comments)
	log.Printf("All generated users have the password: %s", seed.DefaultPassword)
}
