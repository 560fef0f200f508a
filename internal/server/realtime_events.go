package server

import (
	"log"

	"ikaze/internal/models"
	"ikaze/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// Event type constants prevent typos in event names.
const (
	EventPostPublished = "post.published"
)

// publishPostEvent broadcasts a post lifecycle event to all subscribers.
// Drafts are not announced.
func (s *Server) publishPostEvent(c *fiber.Ctx, eventType string, post *models.Post) {
	if s.notifier == nil || post == nil || !post.Published {
		return
	}
	event := notifications.Event{
		Type:      eventType,
		ActorID:   post.AuthorID,
		ActorName: post.Author.Username,
		PostSlug:  post.Slug,
	}
	if err := s.notifier.PublishBroadcast(c.Context(), event); err != nil {
		log.Printf("failed to publish %s event: %v", eventType, err)
	}
}
