package service

import (
	"context"
	"log/slog"

	"ikaze/internal/cache"
	"ikaze/internal/middleware"
	"ikaze/internal/models"
	"ikaze/internal/notifications"
	"ikaze/internal/repository"
)

// EngagementService owns like and follow toggles and the read-side
// status endpoints that accompany them.
type EngagementService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   *notifications.Notifier
}

// LikeStatus is the read-side payload for a post's like state.
type LikeStatus struct {
	LikeCount int64 `json:"likeCount"`
	UserLiked bool  `json:"userLiked"`
}

// LikeResult is the payload returned after a like toggle.
type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// FollowStatus is the read-side payload for a follow relationship.
type FollowStatus struct {
	IsFollowing    bool  `json:"isFollowing"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

// FollowResult is the payload returned after a follow toggle.
type FollowResult struct {
	Action         string `json:"action"`
	IsFollowing    bool   `json:"isFollowing"`
	FollowersCount int64  `json:"followersCount"`
	FollowingCount int64  `json:"followingCount"`
}

// UserStats aggregates a user's public counts.
type UserStats struct {
	PostsCount     int64 `json:"postsCount"`
	FollowersCount int64 `json:"followersCount"`
	FollowingCount int64 `json:"followingCount"`
}

func NewEngagementService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier *notifications.Notifier,
) *EngagementService {
	return &EngagementService{
		postRepo:   postRepo,
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// GetLikeStatus returns the like count for a post plus whether the
// current user has liked it. currentUserID may be 0 for anonymous reads.
func (s *EngagementService) GetLikeStatus(ctx context.Context, slug string, currentUserID uint) (*LikeStatus, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug, currentUserID)
	if err != nil {
		return nil, err
	}
	if err := draftGuard(post, currentUserID); err != nil {
		return nil, err
	}

	status := &LikeStatus{
		LikeCount: int64(post.LikeCount),
		UserLiked: post.Liked,
	}
	return status, nil
}

// ToggleLike flips the current user's like on a post. The unique
// constraint on (user_id, post_id) is the serialization point: when two
// requests race, the loser's insert or delete affects zero rows and the
// toggle reports the state the winner produced instead of failing.
func (s *EngagementService) ToggleLike(ctx context.Context, userID uint, slug string) (*LikeResult, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	if err := draftGuard(post, userID); err != nil {
		return nil, err
	}

	liked := post.Liked
	var rows int64
	if liked {
		rows, err = s.postRepo.Unlike(ctx, userID, post.ID)
	} else {
		rows, err = s.postRepo.Like(ctx, userID, post.ID)
	}
	if err != nil {
		return nil, err
	}

	outcome := "unliked"
	if !liked {
		outcome = "liked"
	}
	if rows == 0 {
		// A concurrent toggle got there first. The row is already in
		// the state this request wanted, so report it as a success.
		middleware.ToggleOutcomes.WithLabelValues("like", "raced").Inc()
		middleware.Logger.InfoContext(ctx, "like toggle raced",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("outcome", outcome),
		)
	} else {
		middleware.ToggleOutcomes.WithLabelValues("like", outcome).Inc()
	}

	cache.Invalidate(ctx, cache.PostKey(post.Slug))

	count, err := s.postRepo.CountLikes(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	result := &LikeResult{Liked: !liked, LikeCount: count}

	if result.Liked && rows > 0 && userID != post.AuthorID {
		s.notifyLike(ctx, userID, post)
	}
	return result, nil
}

func (s *EngagementService) notifyLike(ctx context.Context, actorID uint, post *models.Post) {
	if s.notifier == nil {
		return
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return
	}
	event := notifications.Event{
		Type:      notifications.EventPostLiked,
		ActorID:   actor.ID,
		ActorName: actor.Username,
		PostSlug:  post.Slug,
	}
	if err := s.notifier.PublishUser(ctx, post.AuthorID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish like event", slog.String("error", err.Error()))
	}
}

// GetFollowStatus returns follower and following counts for a user plus
// whether the current user follows them.
func (s *EngagementService) GetFollowStatus(ctx context.Context, targetID, currentUserID uint) (*FollowStatus, error) {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	status := &FollowStatus{}
	if currentUserID != 0 {
		following, err := s.followRepo.IsFollowing(ctx, currentUserID, targetID)
		if err != nil {
			return nil, err
		}
		status.IsFollowing = following
	}

	var err error
	if status.FollowersCount, err = s.followRepo.CountFollowers(ctx, targetID); err != nil {
		return nil, err
	}
	if status.FollowingCount, err = s.followRepo.CountFollowing(ctx, targetID); err != nil {
		return nil, err
	}
	return status, nil
}

// ToggleFollow flips the current user's follow on the target. Same race
// handling as ToggleLike: a zero-row insert or delete means a concurrent
// toggle won and the desired state already holds.
func (s *EngagementService) ToggleFollow(ctx context.Context, userID, targetID uint) (*FollowResult, error) {
	if userID == targetID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	following, err := s.followRepo.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}

	var rows int64
	if following {
		rows, err = s.followRepo.Unfollow(ctx, userID, targetID)
	} else {
		rows, err = s.followRepo.Follow(ctx, userID, targetID)
	}
	if err != nil {
		return nil, err
	}

	action := "unfollowed"
	if !following {
		action = "followed"
	}
	if rows == 0 {
		middleware.ToggleOutcomes.WithLabelValues("follow", "raced").Inc()
		middleware.Logger.InfoContext(ctx, "follow toggle raced",
			slog.Uint64("target_id", uint64(targetID)),
			slog.String("action", action),
		)
	} else {
		middleware.ToggleOutcomes.WithLabelValues("follow", action).Inc()
	}

	result := &FollowResult{
		Action:      action,
		IsFollowing: !following,
	}
	if result.FollowersCount, err = s.followRepo.CountFollowers(ctx, targetID); err != nil {
		return nil, err
	}
	if result.FollowingCount, err = s.followRepo.CountFollowing(ctx, targetID); err != nil {
		return nil, err
	}

	if result.IsFollowing && rows > 0 {
		s.notifyFollow(ctx, userID, target)
	}
	return result, nil
}

func (s *EngagementService) notifyFollow(ctx context.Context, actorID uint, target *models.User) {
	if s.notifier == nil {
		return
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return
	}
	event := notifications.Event{
		Type:      notifications.EventNewFollower,
		ActorID:   actor.ID,
		ActorName: actor.Username,
	}
	if err := s.notifier.PublishUser(ctx, target.ID, event); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish follow event", slog.String("error", err.Error()))
	}
}

// GetUserStats returns a user's published post, follower, and following
// counts. Results are cached briefly; toggles invalidate the key.
func (s *EngagementService) GetUserStats(ctx context.Context, userID uint) (*UserStats, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	var stats UserStats
	err := cache.Aside(ctx, cache.UserStatsKey(userID), &stats, cache.UserStatsTTL, func() error {
		var err error
		if stats.PostsCount, err = s.postRepo.CountByAuthor(ctx, userID, true); err != nil {
			return err
		}
		if stats.FollowersCount, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
			return err
		}
		stats.FollowingCount, err = s.followRepo.CountFollowing(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
