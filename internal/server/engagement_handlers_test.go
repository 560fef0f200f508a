package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ikaze/internal/models"
	"ikaze/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFollowRepository is a mock of the FollowRepository interface
type MockFollowRepository struct {
	mock.Mock
}

func (m *MockFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowRepository) Follow(ctx context.Context, followerID, followingID uint) (int64, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) Unfollow(ctx context.Context, followerID, followingID uint) (int64, error) {
	args := m.Called(ctx, followerID, followingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFollowRepository) ListFollowers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockFollowRepository) ListFollowing(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func newEngagementTestServer(posts *MockPostRepository, follows *MockFollowRepository, users *MockUserRepository, userID uint) *fiber.App {
	app := fiber.New()
	s := &Server{
		followRepo:        follows,
		engagementService: service.NewEngagementService(posts, follows, users, nil),
	}

	if userID != 0 {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals("userID", userID)
			return c.Next()
		})
	}

	app.Get("/posts/:slug/like", s.GetLikeStatus)
	app.Post("/posts/:slug/like", s.ToggleLike)
	app.Get("/users/:id/follow", s.GetFollowStatus)
	app.Post("/users/:id/follow", s.ToggleFollow)
	app.Get("/users/:id/stats", s.GetUserStats)
	app.Get("/users/:id/followers", s.GetFollowers)
	return app
}

func TestGetLikeStatusHandler(t *testing.T) {
	posts := new(MockPostRepository)
	posts.On("GetBySlug", mock.Anything, "hello-world", uint(0)).
		Return(&models.Post{ID: 1, Slug: "hello-world", Published: true, LikeCount: 3, Liked: false}, nil)
	app := newEngagementTestServer(posts, new(MockFollowRepository), new(MockUserRepository), 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/hello-world/like", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		LikeCount int64 `json:"likeCount"`
		UserLiked bool  `json:"userLiked"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(3), out.LikeCount)
	assert.False(t, out.UserLiked)
}

func TestToggleLikeHandler(t *testing.T) {
	tests := []struct {
		name      string
		liked     bool
		rows      int64
		count     int64
		wantLiked bool
	}{
		{name: "Like", liked: false, rows: 1, count: 4, wantLiked: true},
		{name: "Unlike", liked: true, rows: 1, count: 3, wantLiked: false},
		{name: "Raced Like", liked: false, rows: 0, count: 4, wantLiked: true},
		{name: "Raced Unlike", liked: true, rows: 0, count: 3, wantLiked: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := new(MockPostRepository)
			posts.On("GetBySlug", mock.Anything, "hello-world", uint(2)).
				Return(&models.Post{ID: 1, Slug: "hello-world", AuthorID: 5, Published: true, Liked: tt.liked}, nil)
			if tt.liked {
				posts.On("Unlike", mock.Anything, uint(2), uint(1)).Return(tt.rows, nil)
			} else {
				posts.On("Like", mock.Anything, uint(2), uint(1)).Return(tt.rows, nil)
			}
			posts.On("CountLikes", mock.Anything, uint(1)).Return(tt.count, nil)

			users := new(MockUserRepository)
			users.On("GetByID", mock.Anything, uint(2)).Return(&models.User{ID: 2, Username: "liker"}, nil).Maybe()

			app := newEngagementTestServer(posts, new(MockFollowRepository), users, 2)

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/posts/hello-world/like", nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var out struct {
				Liked     bool  `json:"liked"`
				LikeCount int64 `json:"likeCount"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.wantLiked, out.Liked)
			assert.Equal(t, tt.count, out.LikeCount)
		})
	}
}

func TestGetFollowStatusHandler(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		app := newEngagementTestServer(new(MockPostRepository), new(MockFollowRepository), new(MockUserRepository), 0)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/abc/follow", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("anonymous viewer", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, uint(5)).Return(&models.User{ID: 5}, nil)
		follows := new(MockFollowRepository)
		follows.On("CountFollowers", mock.Anything, uint(5)).Return(int64(10), nil)
		follows.On("CountFollowing", mock.Anything, uint(5)).Return(int64(2), nil)
		app := newEngagementTestServer(new(MockPostRepository), follows, users, 0)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/5/follow", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			IsFollowing    bool  `json:"isFollowing"`
			FollowersCount int64 `json:"followersCount"`
			FollowingCount int64 `json:"followingCount"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.False(t, out.IsFollowing)
		assert.Equal(t, int64(10), out.FollowersCount)
		assert.Equal(t, int64(2), out.FollowingCount)
	})
}

func TestToggleFollowHandler(t *testing.T) {
	t.Run("self follow rejected", func(t *testing.T) {
		app := newEngagementTestServer(new(MockPostRepository), new(MockFollowRepository), new(MockUserRepository), 5)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/users/5/follow", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("follow", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, uint(5)).Return(&models.User{ID: 5}, nil)
		users.On("GetByID", mock.Anything, uint(2)).Return(&models.User{ID: 2, Username: "follower"}, nil).Maybe()
		follows := new(MockFollowRepository)
		follows.On("IsFollowing", mock.Anything, uint(2), uint(5)).Return(false, nil)
		follows.On("Follow", mock.Anything, uint(2), uint(5)).Return(int64(1), nil)
		follows.On("CountFollowers", mock.Anything, uint(5)).Return(int64(1), nil)
		follows.On("CountFollowing", mock.Anything, uint(5)).Return(int64(0), nil)
		app := newEngagementTestServer(new(MockPostRepository), follows, users, 2)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/users/5/follow", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Action         string `json:"action"`
			IsFollowing    bool   `json:"isFollowing"`
			FollowersCount int64  `json:"followersCount"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "followed", out.Action)
		assert.True(t, out.IsFollowing)
		assert.Equal(t, int64(1), out.FollowersCount)
	})

	t.Run("raced unfollow stays 200", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", mock.Anything, uint(5)).Return(&models.User{ID: 5}, nil)
		follows := new(MockFollowRepository)
		follows.On("IsFollowing", mock.Anything, uint(2), uint(5)).Return(true, nil)
		follows.On("Unfollow", mock.Anything, uint(2), uint(5)).Return(int64(0), nil)
		follows.On("CountFollowers", mock.Anything, uint(5)).Return(int64(0), nil)
		follows.On("CountFollowing", mock.Anything, uint(5)).Return(int64(0), nil)
		app := newEngagementTestServer(new(MockPostRepository), follows, users, 2)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/users/5/follow", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out struct {
			Action      string `json:"action"`
			IsFollowing bool   `json:"isFollowing"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "unfollowed", out.Action)
		assert.False(t, out.IsFollowing)
	})
}

func TestGetUserStatsHandler(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByID", mock.Anything, uint(5)).Return(&models.User{ID: 5}, nil)
	posts := new(MockPostRepository)
	posts.On("CountByAuthor", mock.Anything, uint(5), true).Return(int64(7), nil)
	follows := new(MockFollowRepository)
	follows.On("CountFollowers", mock.Anything, uint(5)).Return(int64(2), nil)
	follows.On("CountFollowing", mock.Anything, uint(5)).Return(int64(4), nil)
	app := newEngagementTestServer(posts, follows, users, 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/5/stats", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		PostsCount     int64 `json:"postsCount"`
		FollowersCount int64 `json:"followersCount"`
		FollowingCount int64 `json:"followingCount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(7), out.PostsCount)
	assert.Equal(t, int64(2), out.FollowersCount)
	assert.Equal(t, int64(4), out.FollowingCount)
}

func TestGetFollowersHandler(t *testing.T) {
	follows := new(MockFollowRepository)
	follows.On("ListFollowers", mock.Anything, uint(5), 20, 0).
		Return([]models.User{{ID: 2, Username: "alice", Email: "alice@example.com"}}, nil)
	app := newEngagementTestServer(new(MockPostRepository), follows, new(MockUserRepository), 0)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/5/followers", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Users []map[string]any `json:"users"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Users, 1)
	assert.Equal(t, "alice", out.Users[0]["username"])
	_, hasEmail := out.Users[0]["email"]
	assert.False(t, hasEmail, "public profiles must not expose email")
}
