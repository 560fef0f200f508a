package cache

import (
	"context"
	"fmt"
	"time"
)

// Key inventory. Every cached value and its TTL is declared here so
// invalidation sites can be audited against the mutations that touch them.
const (
	PostKeyPrefix      = "post:slug:%s"
	PostStatsKeyPrefix = "post:stats:%d"
	ProfileKeyPrefix   = "user:profile:%s"
	UserStatsKeyPrefix = "user:stats:%d"
	SearchKeyPrefix    = "search:%s"
)

const (
	PostTTL      = 5 * time.Minute
	PostStatsTTL = 30 * time.Second
	ProfileTTL   = 10 * time.Minute
	UserStatsTTL = 1 * time.Minute
	SearchTTL    = 30 * time.Second
)

func PostKey(slug string) string {
	return fmt.Sprintf(PostKeyPrefix, slug)
}

func PostStatsKey(postID uint) string {
	return fmt.Sprintf(PostStatsKeyPrefix, postID)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func UserStatsKey(userID uint) string {
	return fmt.Sprintf(UserStatsKeyPrefix, userID)
}

func SearchKey(query string) string {
	return fmt.Sprintf(SearchKeyPrefix, query)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost drops the cached entries touched by a post or engagement mutation.
func InvalidatePost(ctx context.Context, slug string, postID uint) {
	Invalidate(ctx, PostKey(slug))
	Invalidate(ctx, PostStatsKey(postID))
}

// InvalidateUser drops the cached entries touched by a profile or follow mutation.
func InvalidateUser(ctx context.Context, username string, userID uint) {
	Invalidate(ctx, ProfileKey(username))
	Invalidate(ctx, UserStatsKey(userID))
}
