// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"karmafeed/internal/middleware"
	"karmafeed/internal/models"
	"karmafeed/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// FactoryOptions tunes how entities are generated.
type FactoryOptions struct {
	// DryRun assigns synthetic IDs instead of writing to the database.
	DryRun bool
	// SkipBcrypt stores a placeholder hash; seeded users cannot log in.
	SkipBcrypt bool
	// RandSeed makes generated content reproducible when non-zero.
	RandSeed int64
	// Now anchors generated timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	opts         FactoryOptions
	rng          *rand.Rand
	passwordHash string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

var usernameStrip = regexp.MustCompile(`[^A-Za-z0-9_]`)

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts FactoryOptions) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		nextID: 1000,
	}
}

func (f *Factory) now() time.Time {
	return f.opts.Now().UTC()
}

func (f *Factory) hash() string {
	if f.passwordHash != "" {
		return f.passwordHash
	}
	if f.opts.SkipBcrypt {
		f.passwordHash = "seed-placeholder"
		return f.passwordHash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		middleware.Logger.Warn("seed password hash failed, using placeholder")
		f.passwordHash = "seed-placeholder"
		return f.passwordHash
	}
	f.passwordHash = string(hashed)
	return f.passwordHash
}

func (f *Factory) create(v any, assignID func(uint)) error {
	if f.opts.DryRun {
		f.nextID++
		assignID(f.nextID)
		return nil
	}
	return f.db.Omit(clause.Associations).Create(v).Error
}

// Username derives a valid, unique username from fake data and a sequence number.
func (f *Factory) Username(seq int) string {
	base := usernameStrip.ReplaceAllString(gofakeit.Username(), "")
	if len(base) < validation.MinUsernameLength {
		base = "user"
	}
	suffix := fmt.Sprintf("_%d", seq)
	if maxBase := validation.MaxUsernameLength - len(suffix); len(base) > maxBase {
		base = base[:maxBase]
	}
	return strings.ToLower(base) + suffix
}

// CreateUser constructs and persists a sample user.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(seq int, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:     f.Username(seq),
		PasswordHash: f.hash(),
		CreatedAt:    f.now().Add(-time.Duration(f.rng.Intn(30*24)) * time.Hour),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.create(user, func(id uint) { user.ID = id }); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post by user created within the last maxAge. It is not persisted.
func (f *Factory) BuildPost(user *models.User, maxAge time.Duration) *models.Post {
	return &models.Post{
		UserID:    user.ID,
		Content:   gofakeit.Paragraph(1, f.rng.Intn(4)+1, 12, "\n"),
		CreatedAt: f.now().Add(-f.jitter(maxAge)),
	}
}

// CreatePost constructs and persists a sample post.
func (f *Factory) CreatePost(user *models.User, maxAge time.Duration, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, maxAge)
	for _, override := range overrides {
		override(post)
	}
	if err := f.create(post, func(id uint) { post.ID = id }); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post. When parent is non-nil the comment
// is a reply and is timestamped after its parent.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	after := post.CreatedAt
	comment := &models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: gofakeit.Sentence(f.rng.Intn(12) + 3),
	}
	if parent != nil {
		after = parent.CreatedAt
		parentID := parent.ID
		comment.ParentID = &parentID
	}
	comment.CreatedAt = f.after(after)

	if err := f.create(comment, func(id uint) { comment.ID = id }); err != nil {
		return nil, err
	}
	return comment, nil
}

// LikePost persists a like by user on post, at a random time within the last spread.
func (f *Factory) LikePost(user *models.User, post *models.Post, spread time.Duration) (*models.PostLike, error) {
	like := &models.PostLike{
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: f.now().Add(-f.jitter(spread)),
	}
	if err := f.create(like, func(id uint) { like.ID = id }); err != nil {
		return nil, err
	}
	return like, nil
}

// LikeComment persists a like by user on comment, at a random time within the last spread.
func (f *Factory) LikeComment(user *models.User, comment *models.Comment, spread time.Duration) (*models.CommentLike, error) {
	like := &models.CommentLike{
		UserID:    user.ID,
		CommentID: comment.ID,
		CreatedAt: f.now().Add(-f.jitter(spread)),
	}
	if err := f.create(like, func(id uint) { like.ID = id }); err != nil {
		return nil, err
	}
	return like, nil
}

// jitter returns a random duration in [0, window), with second granularity.
func (f *Factory) jitter(window time.Duration) time.Duration {
	secs := int64(window / time.Second)
	if secs <= 0 {
		return 0
	}
	return time.Duration(f.rng.Int63n(secs)) * time.Second
}

// after returns a time between t and now, never before t.
func (f *Factory) after(t time.Time) time.Time {
	now := f.now()
	if !now.After(t) {
		return t.Add(time.Second)
	}
	return t.Add(f.jitter(now.Sub(t)) + time.Second).Truncate(time.Second)
}
