// Command seed fills the karmafeed database with demo users, posts, comment
// forests and likes.
package main

import (
	"flag"
	"log/slog"
	"os"

	"karmafeed/internal/config"
	"karmafeed/internal/database"
	"karmafeed/internal/middleware"
	"karmafeed/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	maxComments := flag.Int("comments", 20, "Maximum comments per post")
	maxDepth := flag.Int("depth", seed.DefaultMaxDepth, "Maximum comment nesting depth")
	likeRate := flag.Float64("like-rate", 0.2, "Chance that a user likes a given post or comment")
	likeSpread := flag.Duration("like-spread", seed.DefaultLikeSpread, "How far back like timestamps reach")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt; seeded users cannot log in")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		MaxDepth:           *maxDepth,
		LikeRate:           *likeRate,
		LikeSpread:         *likeSpread,
		ShouldClean:        *shouldClean,
		Factory: seed.FactoryOptions{
			SkipBcrypt: *fast,
			RandSeed:   *randSeed,
		},
	})
	if err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	middleware.Logger.Info("database populated",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments))
	if !*fast {
		middleware.Logger.Info("all seeded users share one password", slog.String("password", seed.DefaultPassword))
	}
}
