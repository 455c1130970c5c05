// Package testutil provides shared database fixtures for package tests.
package testutil

import (
	"sync/atomic"
	"testing"
	"time"

	"karmafeed/internal/database"
	"karmafeed/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a private in-memory database with the production GORM
// settings and the full schema applied.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(database.SQLiteDSN("")), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// QueryCounter counts read statements issued through a *gorm.DB.
type QueryCounter struct {
	n atomic.Int64
}

// Reads returns the number of read statements seen so far.
func (c *QueryCounter) Reads() int64 {
	return c.n.Load()
}

// Reset sets the counter back to zero.
func (c *QueryCounter) Reset() {
	c.n.Store(0)
}

// CountReads registers callbacks that count every Find/First/Count/Scan.
func CountReads(t *testing.T, db *gorm.DB) *QueryCounter {
	t.Helper()
	counter := &QueryCounter{}
	inc := func(*gorm.DB) { counter.n.Add(1) }

	require.NoError(t, db.Callback().Query().After("gorm:query").Register("testutil:count_query", inc))
	require.NoError(t, db.Callback().Row().After("gorm:row").Register("testutil:count_row", inc))
	return counter
}

// Clock hands out strictly increasing, second-aligned UTC timestamps.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at start, truncated to the second.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC().Truncate(time.Second)}
}

// Next advances the clock by one second and returns the new time.
func (c *Clock) Next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePost inserts a post authored by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, content string, at time.Time) *models.Post {
	t.Helper()
	post := &models.Post{UserID: userID, Content: content, CreatedAt: at, UpdatedAt: at}
	require.NoError(t, db.Omit("User").Create(post).Error)
	return post
}

// CreateComment inserts a comment; parentID may be nil for a top-level comment.
func CreateComment(t *testing.T, db *gorm.DB, postID, userID uint, parentID *uint, content string, at time.Time) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		PostID:    postID,
		UserID:    userID,
		ParentID:  parentID,
		Content:   content,
		CreatedAt: at,
		UpdatedAt: at,
	}
	require.NoError(t, db.Omit("User", "Post", "Parent").Create(comment).Error)
	return comment
}

// LikePost inserts a post like created at the given time.
func LikePost(t *testing.T, db *gorm.DB, userID, postID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Omit("User", "Post").Create(&models.PostLike{UserID: userID, PostID: postID, CreatedAt: at}).Error)
}

// LikeComment inserts a comment like created at the given time.
func LikeComment(t *testing.T, db *gorm.DB, userID, commentID uint, at time.Time) {
	t.Helper()
	require.NoError(t, db.Omit("User", "Comment").Create(&models.CommentLike{UserID: userID, CommentID: commentID, CreatedAt: at}).Error)
}
