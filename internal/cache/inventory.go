package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
	PostsListKey  = "posts:list"
)

var (
	UserTTL = 5 * time.Minute
	PostTTL = time.Minute
	ListTTL = time.Minute
)

// ConfigureTTL sets the lifetime of post and list entries. Non-positive values are ignored.
func ConfigureTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	PostTTL = ttl
	ListTTL = ttl
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// Invalidate deletes the given keys.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePostsList(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}

// InvalidatePost drops a post detail along with the list it appears in.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID), PostsListKey)
}
