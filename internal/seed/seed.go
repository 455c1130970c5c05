package seed

import (
	"fmt"
	"log/slog"
	"time"

	"karmafeed/internal/middleware"
	"karmafeed/internal/models"

	"gorm.io/gorm"
)

const (
	// DefaultMaxDepth bounds the nesting of generated comment forests.
	DefaultMaxDepth = 5
	// DefaultLikeSpread spreads likes over twice the leaderboard window so
	// both in-window and expired activity exist.
	DefaultLikeSpread = 48 * time.Hour
	defaultPostAge    = 72 * time.Hour
)

// Options configuration for the seeder
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	MaxDepth           int
	// LikeRate is the chance, in [0, 1], that a given user likes a given post or comment.
	LikeRate    float64
	LikeSpread  time.Duration
	ShouldClean bool
	Factory     FactoryOptions
}

// Summary reports what a seeding run created.
type Summary struct {
	Users        int
	Posts        int
	Comments     int
	PostLikes    int
	CommentLikes int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxCommentsPerPost < 0 {
		o.MaxCommentsPerPost = 0
	}
	if o.LikeSpread <= 0 {
		o.LikeSpread = DefaultLikeSpread
	}
	if o.LikeRate <= 0 || o.LikeRate > 1 {
		o.LikeRate = 0.2
	}
	return o
}

// Seed populates the database with users, posts, comment forests and likes.
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	if opts.NumUsers <= 0 {
		return nil, fmt.Errorf("seed requires at least one user")
	}
	middleware.Logger.Info("seeding database",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
		slog.Bool("clean", opts.ShouldClean))

	if opts.ShouldClean && !opts.Factory.DryRun {
		if err := Clean(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts.Factory)
	summary := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)

	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rng.Intn(len(users))]
		post, err := f.CreatePost(author, defaultPostAge)
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		summary.Posts++

		comments, err := seedForest(f, users, post, opts)
		if err != nil {
			return nil, err
		}
		summary.Comments += len(comments)

		n, err := seedPostLikes(f, users, post, opts)
		if err != nil {
			return nil, err
		}
		summary.PostLikes += n

		for _, c := range comments {
			n, err := seedCommentLikes(f, users, c, opts)
			if err != nil {
				return nil, err
			}
			summary.CommentLikes += n
		}
	}

	middleware.Logger.Info("seeding completed",
		slog.Int("users", summary.Users),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
		slog.Int("post_likes", summary.PostLikes),
		slog.Int("comment_likes", summary.CommentLikes))
	return summary, nil
}

// seedForest creates a random comment forest on post whose depth never
// exceeds opts.MaxDepth. Comments are returned in creation order.
func seedForest(f *Factory, users []*models.User, post *models.Post, opts Options) ([]*models.Comment, error) {
	if opts.MaxCommentsPerPost == 0 {
		return nil, nil
	}
	count := f.rng.Intn(opts.MaxCommentsPerPost + 1)
	comments := make([]*models.Comment, 0, count)
	depth := make(map[uint]int, count)

	for i := 0; i < count; i++ {
		var parent *models.Comment
		// Roughly a third of comments start a new thread.
		if len(comments) > 0 && f.rng.Intn(3) != 0 {
			candidate := comments[f.rng.Intn(len(comments))]
			if depth[candidate.ID] < opts.MaxDepth {
				parent = candidate
			}
		}

		author := users[f.rng.Intn(len(users))]
		comment, err := f.CreateComment(author, post, parent)
		if err != nil {
			return nil, fmt.Errorf("failed to create comment: %w", err)
		}
		depth[comment.ID] = 1
		if parent != nil {
			depth[comment.ID] = depth[parent.ID] + 1
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

func seedPostLikes(f *Factory, users []*models.User, post *models.Post, opts Options) (int, error) {
	n := 0
	for _, idx := range f.rng.Perm(len(users)) {
		if f.rng.Float64() >= opts.LikeRate {
			continue
		}
		if _, err := f.LikePost(users[idx], post, opts.LikeSpread); err != nil {
			return n, fmt.Errorf("failed to like post: %w", err)
		}
		n++
	}
	return n, nil
}

func seedCommentLikes(f *Factory, users []*models.User, comment *models.Comment, opts Options) (int, error) {
	n := 0
	for _, idx := range f.rng.Perm(len(users)) {
		if f.rng.Float64() >= opts.LikeRate {
			continue
		}
		if _, err := f.LikeComment(users[idx], comment, opts.LikeSpread); err != nil {
			return n, fmt.Errorf("failed to like comment: %w", err)
		}
		n++
	}
	return n, nil
}

// Clean removes all feed data. PostgreSQL also resets identity sequences.
func Clean(db *gorm.DB) error {
	middleware.Logger.Info("clearing existing data")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comment_likes, post_likes, comments, posts, users RESTART IDENTITY CASCADE`).Error
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"comment_likes", "post_likes", "comments", "posts", "users"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
