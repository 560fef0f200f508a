package service

import (
	"context"
	"testing"

	"ikaze/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	isFollowingFn    func(context.Context, uint, uint) (bool, error)
	followFn         func(context.Context, uint, uint) (int64, error)
	unfollowFn       func(context.Context, uint, uint) (int64, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
	listFollowersFn  func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn  func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) (int64, error) {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) (int64, error) {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		isFollowingFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followFn:         func(_ context.Context, _, _ uint) (int64, error) { return 1, nil },
		unfollowFn:       func(_ context.Context, _, _ uint) (int64, error) { return 1, nil },
		countFollowersFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countFollowingFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listFollowersFn:  func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
		listFollowingFn:  func(_ context.Context, _ uint, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
	}
}

func newEngagementService(postRepo *postRepoStub, followRepo *followRepoStub, userRepo *userRepoStub) *EngagementService {
	return NewEngagementService(postRepo, followRepo, userRepo, nil)
}

func TestEngagementService_GetLikeStatus(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return &models.Post{ID: 1, Slug: slug, Published: true, LikeCount: 4, Liked: true}, nil
	}
	svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

	status, err := svc.GetLikeStatus(context.Background(), "some-post", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), status.LikeCount)
	assert.True(t, status.UserLiked)
}

func TestEngagementService_DraftHiddenFromEngagement(t *testing.T) {
	t.Parallel()

	draftBySlug := func(_ context.Context, slug string, _ uint) (*models.Post, error) {
		return &models.Post{ID: 1, Slug: slug, AuthorID: 5, Published: false}, nil
	}

	t.Run("like status of a draft is not found for others", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = draftBySlug
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		_, err := svc.GetLikeStatus(context.Background(), "secret-draft", 0)
		assertNotFoundError(t, err)
	})

	t.Run("author reads their draft's like status", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = draftBySlug
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		status, err := svc.GetLikeStatus(context.Background(), "secret-draft", 5)
		require.NoError(t, err)
		assert.False(t, status.UserLiked)
	})

	t.Run("liking a draft is not found for others", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = draftBySlug
		repo.likeFn = func(_ context.Context, _, _ uint) (int64, error) {
			t.Error("no like row may be written for a hidden draft")
			return 0, nil
		}
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		_, err := svc.ToggleLike(context.Background(), 2, "secret-draft")
		assertNotFoundError(t, err)
	})

	t.Run("author likes their own draft", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = draftBySlug
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		result, err := svc.ToggleLike(context.Background(), 5, "secret-draft")
		require.NoError(t, err)
		assert.True(t, result.Liked)
	})
}

func TestEngagementService_ToggleLike(t *testing.T) {
	t.Parallel()

	post := func(liked bool) func(context.Context, string, uint) (*models.Post, error) {
		return func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug, AuthorID: 5, Published: true, Liked: liked}, nil
		}
	}

	t.Run("likes an unliked post", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = post(false)
		repo.countLikesFn = func(_ context.Context, _ uint) (int64, error) { return 3, nil }
		var likedUser, likedPost uint
		repo.likeFn = func(_ context.Context, userID, postID uint) (int64, error) {
			likedUser, likedPost = userID, postID
			return 1, nil
		}
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		res, err := svc.ToggleLike(context.Background(), 2, "some-post")
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, int64(3), res.LikeCount)
		assert.Equal(t, uint(2), likedUser)
		assert.Equal(t, uint(1), likedPost)
	})

	t.Run("unlikes a liked post", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = post(true)
		repo.countLikesFn = func(_ context.Context, _ uint) (int64, error) { return 0, nil }
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		res, err := svc.ToggleLike(context.Background(), 2, "some-post")
		require.NoError(t, err)
		assert.False(t, res.Liked)
		assert.Equal(t, int64(0), res.LikeCount)
	})

	t.Run("raced like still reports liked", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = post(false)
		// Concurrent request inserted the row first: zero rows affected.
		repo.likeFn = func(_ context.Context, _, _ uint) (int64, error) { return 0, nil }
		repo.countLikesFn = func(_ context.Context, _ uint) (int64, error) { return 1, nil }
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		res, err := svc.ToggleLike(context.Background(), 2, "some-post")
		require.NoError(t, err)
		assert.True(t, res.Liked)
		assert.Equal(t, int64(1), res.LikeCount)
	})

	t.Run("raced unlike still reports unliked", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = post(true)
		repo.unlikeFn = func(_ context.Context, _, _ uint) (int64, error) { return 0, nil }
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		res, err := svc.ToggleLike(context.Background(), 2, "some-post")
		require.NoError(t, err)
		assert.False(t, res.Liked)
	})

	t.Run("missing post surfaces not found", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getBySlugFn = func(_ context.Context, slug string, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", slug)
		}
		svc := newEngagementService(repo, noopFollowRepo(), noopUserRepo())

		_, err := svc.ToggleLike(context.Background(), 2, "no-such-post")
		require.Error(t, err)
	})
}

func TestEngagementService_GetFollowStatus(t *testing.T) {
	t.Parallel()

	follows := noopFollowRepo()
	follows.isFollowingFn = func(_ context.Context, followerID, followingID uint) (bool, error) {
		return followerID == 2 && followingID == 5, nil
	}
	follows.countFollowersFn = func(_ context.Context, _ uint) (int64, error) { return 10, nil }
	follows.countFollowingFn = func(_ context.Context, _ uint) (int64, error) { return 3, nil }
	svc := newEngagementService(noopPostRepo(), follows, noopUserRepo())

	t.Run("authenticated viewer", func(t *testing.T) {
		t.Parallel()
		status, err := svc.GetFollowStatus(context.Background(), 5, 2)
		require.NoError(t, err)
		assert.True(t, status.IsFollowing)
		assert.Equal(t, int64(10), status.FollowersCount)
		assert.Equal(t, int64(3), status.FollowingCount)
	})

	t.Run("anonymous viewer never follows", func(t *testing.T) {
		t.Parallel()
		status, err := svc.GetFollowStatus(context.Background(), 5, 0)
		require.NoError(t, err)
		assert.False(t, status.IsFollowing)
	})
}

func TestEngagementService_ToggleFollow(t *testing.T) {
	t.Parallel()

	t.Run("self follow rejected", func(t *testing.T) {
		t.Parallel()
		svc := newEngagementService(noopPostRepo(), noopFollowRepo(), noopUserRepo())
		_, err := svc.ToggleFollow(context.Background(), 5, 5)
		assertValidationError(t, err)
	})

	t.Run("follows a new user", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.countFollowersFn = func(_ context.Context, _ uint) (int64, error) { return 1, nil }
		svc := newEngagementService(noopPostRepo(), follows, noopUserRepo())

		res, err := svc.ToggleFollow(context.Background(), 2, 5)
		require.NoError(t, err)
		assert.Equal(t, "followed", res.Action)
		assert.True(t, res.IsFollowing)
		assert.Equal(t, int64(1), res.FollowersCount)
	})

	t.Run("unfollows a followed user", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.isFollowingFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		svc := newEngagementService(noopPostRepo(), follows, noopUserRepo())

		res, err := svc.ToggleFollow(context.Background(), 2, 5)
		require.NoError(t, err)
		assert.Equal(t, "unfollowed", res.Action)
		assert.False(t, res.IsFollowing)
	})

	t.Run("raced follow still reports following", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.followFn = func(_ context.Context, _, _ uint) (int64, error) { return 0, nil }
		follows.countFollowersFn = func(_ context.Context, _ uint) (int64, error) { return 1, nil }
		svc := newEngagementService(noopPostRepo(), follows, noopUserRepo())

		res, err := svc.ToggleFollow(context.Background(), 2, 5)
		require.NoError(t, err)
		assert.Equal(t, "followed", res.Action)
		assert.True(t, res.IsFollowing)
	})

	t.Run("raced unfollow still reports unfollowed", func(t *testing.T) {
		t.Parallel()
		follows := noopFollowRepo()
		follows.isFollowingFn = func(_ context.Context, _, _ uint) (bool, error) { return true, nil }
		follows.unfollowFn = func(_ context.Context, _, _ uint) (int64, error) { return 0, nil }
		svc := newEngagementService(noopPostRepo(), follows, noopUserRepo())

		res, err := svc.ToggleFollow(context.Background(), 2, 5)
		require.NoError(t, err)
		assert.Equal(t, "unfollowed", res.Action)
		assert.False(t, res.IsFollowing)
	})

	t.Run("missing target surfaces not found", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		svc := newEngagementService(noopPostRepo(), noopFollowRepo(), users)

		_, err := svc.ToggleFollow(context.Background(), 2, 99)
		require.Error(t, err)
	})
}

func TestEngagementService_GetUserStats(t *testing.T) {
	t.Parallel()

	posts := noopPostRepo()
	var publishedOnly bool
	posts.countByAuthorFn = func(_ context.Context, _ uint, published bool) (int64, error) {
		publishedOnly = published
		return 7, nil
	}
	follows := noopFollowRepo()
	follows.countFollowersFn = func(_ context.Context, _ uint) (int64, error) { return 2, nil }
	follows.countFollowingFn = func(_ context.Context, _ uint) (int64, error) { return 4, nil }
	svc := newEngagementService(posts, follows, noopUserRepo())

	stats, err := svc.GetUserStats(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.PostsCount)
	assert.Equal(t, int64(2), stats.FollowersCount)
	assert.Equal(t, int64(4), stats.FollowingCount)
	assert.True(t, publishedOnly, "drafts must not count toward public stats")
}
