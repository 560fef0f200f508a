// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"ikaze/internal/models"
	"ikaze/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagPool = []string{
	"go", "programming", "webdev", "databases", "devops", "travel",
	"food", "photography", "writing", "productivity", "music", "books",
}

// Seeder populates the database with fake users, posts, and engagement.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Follow{}, &models.Comment{}, &models.Post{}, &models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clearing %T: %w", model, err)
		}
	}
	log.Println("Database cleared")
	return nil
}

// Run seeds users, posts, and engagement per the options.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(opts.NumUsers)
	if err != nil {
		return err
	}
	posts, err := s.SeedPosts(users, opts.NumPosts)
	if err != nil {
		return err
	}
	return s.SeedEngagement(users, posts)
}

// SeedUsers creates count users. All of them share the password "password123".
func (s *Seeder) SeedUsers(count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		users = append(users, models.User{
			Name:     name,
			Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
			Email:    fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Password: string(hashed),
			Bio:      gofakeit.Sentence(10),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		})
	}

	if err := s.db.CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("seeding users: %w", err)
	}
	log.Printf("Seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates count posts spread over the last 90 days. Roughly one
// in five stays a draft.
func (s *Seeder) SeedPosts(users []models.User, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to author posts")
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[s.rng.Intn(len(users))]
		title := strings.TrimSuffix(gofakeit.Sentence(s.rng.Intn(5)+4), ".")
		createdAt := time.Now().
			Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour).
			Add(-time.Duration(s.rng.Intn(60)) * time.Minute)

		post := models.Post{
			Title:     title,
			Slug:      fmt.Sprintf("%s-%d", validation.Slugify(title), i),
			Content:   gofakeit.Paragraph(3, 5, 12, "\n\n"),
			Excerpt:   gofakeit.Sentence(15),
			Tags:      s.pickTags(),
			AuthorID:  author.ID,
			Published: s.rng.Intn(5) != 0,
			CreatedAt: createdAt,
		}
		if post.Published {
			publishedAt := createdAt.Add(time.Duration(s.rng.Intn(48)) * time.Hour)
			post.PublishedAt = &publishedAt
		}
		posts = append(posts, post)
	}

	if err := s.db.CreateInBatches(&posts, 100).Error; err != nil {
		return nil, fmt.Errorf("seeding posts: %w", err)
	}
	log.Printf("Seeded %d posts", len(posts))
	return posts, nil
}

// SeedEngagement wires likes, follows, and comments between the seeded
// users and posts.
func (s *Seeder) SeedEngagement(users []models.User, posts []models.Post) error {
	var likes []models.Like
	var comments []models.Comment
	for _, post := range posts {
		if !post.Published {
			continue
		}
		for _, user := range users {
			if s.rng.Intn(4) == 0 && user.ID != post.AuthorID {
				likes = append(likes, models.Like{UserID: user.ID, PostID: post.ID})
			}
			if s.rng.Intn(10) == 0 {
				comments = append(comments, models.Comment{
					Content:  gofakeit.Sentence(s.rng.Intn(15) + 3),
					AuthorID: user.ID,
					PostID:   post.ID,
				})
			}
		}
	}

	var follows []models.Follow
	for _, follower := range users {
		for _, target := range users {
			if follower.ID != target.ID && s.rng.Intn(6) == 0 {
				follows = append(follows, models.Follow{
					FollowerID:  follower.ID,
					FollowingID: target.ID,
				})
			}
		}
	}

	if len(likes) > 0 {
		if err := s.db.CreateInBatches(&likes, 200).Error; err != nil {
			return fmt.Errorf("seeding likes: %w", err)
		}
	}
	if len(comments) > 0 {
		if err := s.db.CreateInBatches(&comments, 200).Error; err != nil {
			return fmt.Errorf("seeding comments: %w", err)
		}
	}
	if len(follows) > 0 {
		if err := s.db.CreateInBatches(&follows, 200).Error; err != nil {
			return fmt.Errorf("seeding follows: %w", err)
		}
	}

	log.Printf("Seeded %d likes, %d comments, %d follows", len(likes), len(comments), len(follows))
	return nil
}

func (s *Seeder) pickTags() []string {
	n := s.rng.Intn(4) + 1
	tags := make([]string, 0, n)
	seen := map[string]struct{}{}
	for len(tags) < n {
		t := tagPool[s.rng.Intn(len(tagPool))]
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
