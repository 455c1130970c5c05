package repository

import (
	"context"
	"testing"
	"time"

	"karmafeed/internal/models"
	"karmafeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_List(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	older := testutil.CreatePost(t, db, alice.ID, "older", at)
	tieA := testutil.CreatePost(t, db, bob.ID, "tie a", at.Add(time.Minute))
	tieB := testutil.CreatePost(t, db, alice.ID, "tie b", at.Add(time.Minute))

	testutil.LikePost(t, db, bob.ID, older.ID, at.Add(time.Hour))
	testutil.LikePost(t, db, alice.ID, older.ID, at.Add(time.Hour))
	testutil.CreateComment(t, db, older.ID, bob.ID, nil, "c1", at.Add(time.Hour))

	t.Run("Newest First With Id Tie Break", func(t *testing.T) {
		posts, err := repo.List(ctx, 10, 0, 0)
		require.NoError(t, err)
		require.Len(t, posts, 3)
		assert.Equal(t, []uint{tieB.ID, tieA.ID, older.ID}, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
		assert.Equal(t, "bob", posts[1].Author.Username)
	})

	t.Run("Counts And Viewer Flag", func(t *testing.T) {
		posts, err := repo.List(ctx, 10, 0, bob.ID)
		require.NoError(t, err)
		last := posts[2]
		assert.Equal(t, int64(2), last.LikeCount)
		assert.Equal(t, int64(1), last.CommentCount)
		assert.True(t, last.UserHasLiked)
		assert.False(t, posts[0].UserHasLiked)
	})

	t.Run("Pagination", func(t *testing.T) {
		posts, err := repo.List(ctx, 2, 2, 0)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, older.ID, posts[0].ID)
	})
}

func TestPostRepository_GetByIDAndExists(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := &models.Post{UserID: alice.ID, Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, models.Author{ID: alice.ID, Username: "alice"}, got.Author)
	assert.False(t, got.UserHasLiked)

	_, err = repo.GetByID(ctx, post.ID+100, 0)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	exists, err := repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, post.ID+100)
	require.NoError(t, err)
	assert.False(t, exists)
}
